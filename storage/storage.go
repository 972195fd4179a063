// Package storage provides optional SQLite-backed persistence for
// market-data snapshots/updates and order/position state, attached as a
// sink a caller can wire into a market.Channel or trade.Channel handler.
// Nothing in the core session/router/channel packages depends on it.
//
// Grounded on the teacher's database/marketdata.go: prepared statements
// initialized once in the constructor and reused for batch operations, a
// WAL-mode SQLite connection string, and explicit Close() cleanup order.
// The original insert query constants were not retrievable, so the schema
// and query text here are authored fresh for this domain.
package storage

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS book_levels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	price TEXT NOT NULL,
	size TEXT NOT NULL,
	md_req_id TEXT NOT NULL,
	is_snapshot INTEGER NOT NULL,
	recorded_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS executions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cl_ord_id TEXT NOT NULL,
	order_id TEXT NOT NULL,
	exec_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	ord_status TEXT NOT NULL,
	exec_type TEXT NOT NULL,
	order_qty TEXT,
	price TEXT,
	last_px TEXT,
	last_shares TEXT,
	cum_qty TEXT,
	leaves_qty TEXT,
	recorded_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS positions (
	symbol TEXT PRIMARY KEY,
	long_qty TEXT NOT NULL,
	short_qty TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

const (
	insertBookLevelQuery = `INSERT INTO book_levels (symbol, side, entry_id, price, size, md_req_id, is_snapshot) VALUES (?, ?, ?, ?, ?, ?, ?)`
	insertExecutionQuery = `INSERT INTO executions (cl_ord_id, order_id, exec_id, symbol, side, ord_status, exec_type, order_qty, price, last_px, last_shares, cum_qty, leaves_qty) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	upsertPositionQuery  = `INSERT INTO positions (symbol, long_qty, short_qty, updated_at) VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(symbol) DO UPDATE SET long_qty=excluded.long_qty, short_qty=excluded.short_qty, updated_at=excluded.updated_at`
)

// Store is a SQLite-backed sink for market data and trade/position state.
// Prepared statements are initialized once and reused for all inserts,
// avoiding SQL parsing overhead on the hot path.
type Store struct {
	db *sql.DB

	stmtBookLevel *sql.Stmt
	stmtExecution *sql.Stmt
	stmtPosition  *sql.Stmt
}

// Open creates or opens the SQLite database at dbPath in WAL mode and
// prepares the batch-insert statements.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	s := &Store{db: db}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: init schema: %w", err)
	}

	if s.stmtBookLevel, err = db.Prepare(insertBookLevelQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: prepare book level statement: %w", err)
	}
	if s.stmtExecution, err = db.Prepare(insertExecutionQuery); err != nil {
		_ = s.stmtBookLevel.Close()
		_ = db.Close()
		return nil, fmt.Errorf("storage: prepare execution statement: %w", err)
	}
	if s.stmtPosition, err = db.Prepare(upsertPositionQuery); err != nil {
		_ = s.stmtBookLevel.Close()
		_ = s.stmtExecution.Close()
		_ = db.Close()
		return nil, fmt.Errorf("storage: prepare position statement: %w", err)
	}

	log.Printf("storage: SQLite database initialized at %s", dbPath)
	return s, nil
}

// Close releases the prepared statements and the database handle.
func (s *Store) Close() error {
	if s.stmtBookLevel != nil {
		_ = s.stmtBookLevel.Close()
	}
	if s.stmtExecution != nil {
		_ = s.stmtExecution.Close()
	}
	if s.stmtPosition != nil {
		_ = s.stmtPosition.Close()
	}
	return s.db.Close()
}

// RecordBookLevel persists a single book level observed from a snapshot or
// incremental refresh.
func (s *Store) RecordBookLevel(symbol, side, entryID, price, size, mdReqID string, isSnapshot bool) error {
	_, err := s.stmtBookLevel.Exec(symbol, side, entryID, price, size, mdReqID, isSnapshot)
	return err
}

// RecordExecution persists an ExecutionReport.
func (s *Store) RecordExecution(clOrdID, orderID, execID, symbol, side, ordStatus, execType, orderQty, price, lastPx, lastShares, cumQty, leavesQty string) error {
	_, err := s.stmtExecution.Exec(clOrdID, orderID, execID, symbol, side, ordStatus, execType, orderQty, price, lastPx, lastShares, cumQty, leavesQty)
	return err
}

// UpsertPosition persists the latest known long/short quantity for symbol.
func (s *Store) UpsertPosition(symbol, longQty, shortQty string) error {
	_, err := s.stmtPosition.Exec(symbol, longQty, shortQty)
	return err
}
