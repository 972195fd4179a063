package storage

import (
	"path/filepath"
	"testing"
)

// TestOpen_CreatesSchemaAndPreparedStatements verifies that Open succeeds
// against a fresh database file and leaves the store ready to accept
// inserts immediately, with no separate migration step required.
func TestOpen_CreatesSchemaAndPreparedStatements(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ctrader-fix.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if store.stmtBookLevel == nil || store.stmtExecution == nil || store.stmtPosition == nil {
		t.Fatal("expected all prepared statements to be initialized")
	}
}

// TestRecordBookLevel_PersistsSnapshotAndIncrementalRows verifies that both
// snapshot and incremental book levels can be recorded without error.
func TestRecordBookLevel_PersistsSnapshotAndIncrementalRows(t *testing.T) {
	store := openTestStore(t)

	if err := store.RecordBookLevel("EURUSD", "0", "entry-1", "1.10000", "1000000", "md-req-1", true); err != nil {
		t.Fatalf("RecordBookLevel snapshot: %v", err)
	}
	if err := store.RecordBookLevel("EURUSD", "1", "entry-2", "1.10020", "500000", "", false); err != nil {
		t.Fatalf("RecordBookLevel incremental: %v", err)
	}
}

// TestRecordExecution_PersistsExecutionReport verifies RecordExecution
// accepts a full set of execution fields without error.
func TestRecordExecution_PersistsExecutionReport(t *testing.T) {
	store := openTestStore(t)

	err := store.RecordExecution(
		"clord-1", "order-1", "exec-1", "EURUSD", "1",
		"2", "F", "100000", "1.10000",
		"1.10000", "100000", "100000", "0",
	)
	if err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}
}

// TestUpsertPosition_OverwritesExistingRow verifies that upserting the same
// symbol twice updates the existing row rather than erroring on the
// primary key conflict.
func TestUpsertPosition_OverwritesExistingRow(t *testing.T) {
	store := openTestStore(t)

	if err := store.UpsertPosition("EURUSD", "100000", "0"); err != nil {
		t.Fatalf("first UpsertPosition: %v", err)
	}
	if err := store.UpsertPosition("EURUSD", "150000", "0"); err != nil {
		t.Fatalf("second UpsertPosition: %v", err)
	}

	var longQty string
	if err := store.db.QueryRow(`SELECT long_qty FROM positions WHERE symbol = ?`, "EURUSD").Scan(&longQty); err != nil {
		t.Fatalf("query position: %v", err)
	}
	if longQty != "150000" {
		t.Errorf("long_qty = %q, want 150000", longQty)
	}
}

// TestClose_IsSafeAfterUse verifies Close releases all resources cleanly
// after the store has been used.
func TestClose_IsSafeAfterUse(t *testing.T) {
	store := openTestStore(t)
	if err := store.RecordBookLevel("EURUSD", "0", "", "1.1", "1", "", true); err != nil {
		t.Fatalf("RecordBookLevel: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ctrader-fix.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
