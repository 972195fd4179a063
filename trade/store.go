// Package trade implements the Trade channel facade: security discovery,
// order entry/cancel/replace, position management, and the order store
// kept up to date from execution reports.
//
// Grounded on the teacher's OrderStore (fixclient/orderstore.go): the same
// thread-safe map-of-pointers-with-defensive-copy shape, stripped of the
// Coinbase-specific Quote/RFQ bookkeeping that has no cTrader equivalent.
package trade

import (
	"sync"
	"time"

	"github.com/gurre/ctrader-fix/message"
)

// Order is an order's current state as tracked by the client, updated from
// each inbound ExecutionReport that names its ClOrdID.
type Order struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	ClOrdID     string
	OrigClOrdID string
	OrderID     string
	Symbol      string
	Side        string
	OrdType     string
	OrdStatus   string
	ExecType    string

	OrderQty  string
	Price     string
	StopPx    string
	AvgPx     string
	CumQty    string
	LeavesQty string

	LastPx     string
	LastShares string
	ExecID     string

	OrdRejReason string
	Text         string
}

// Position is the last known state of a symbol's net position, updated
// from PositionReport messages.
type Position struct {
	Symbol   string
	LongQty  string
	ShortQty string
}

// Store provides thread-safe storage for orders and positions.
type Store struct {
	mu        sync.RWMutex
	orders    map[string]*Order // ClOrdID -> Order
	positions map[string]*Position
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		orders:    make(map[string]*Order),
		positions: make(map[string]*Position),
	}
}

// UpdateFromExecutionReport applies an ExecutionReport to the order it
// names, creating the order if this is the first report seen for it.
func (s *Store) UpdateFromExecutionReport(er message.ExecutionReport) *Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[er.ClOrdID]
	if !exists {
		order = &Order{ClOrdID: er.ClOrdID, CreatedAt: time.Now()}
		s.orders[er.ClOrdID] = order
	}

	order.UpdatedAt = time.Now()
	order.OrderID = er.OrderID
	order.OrigClOrdID = er.OrigClOrdID
	order.Symbol = er.Symbol
	order.Side = er.Side
	order.OrdStatus = er.OrdStatus
	order.ExecType = er.ExecType
	setIfNotEmpty(&order.OrderQty, er.OrderQty)
	setIfNotEmpty(&order.Price, er.Price)
	setIfNotEmpty(&order.AvgPx, er.AvgPx)
	setIfNotEmpty(&order.CumQty, er.CumQty)
	setIfNotEmpty(&order.LeavesQty, er.LeavesQty)
	setIfNotEmpty(&order.LastPx, er.LastPx)
	setIfNotEmpty(&order.LastShares, er.LastShares)
	setIfNotEmpty(&order.ExecID, er.ExecID)
	setIfNotEmpty(&order.OrdRejReason, er.OrdRejReason)
	setIfNotEmpty(&order.Text, er.Text)

	copyOrder := *order
	return &copyOrder
}

func setIfNotEmpty(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// GetOrder retrieves a defensive copy of the order tracked under clOrdID.
func (s *Store) GetOrder(clOrdID string) *Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[clOrdID]
	if !ok {
		return nil
	}
	copyOrder := *order
	return &copyOrder
}

// GetAllOrders returns a defensive copy of every tracked order.
func (s *Store) GetAllOrders() []*Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Order, 0, len(s.orders))
	for _, order := range s.orders {
		copyOrder := *order
		result = append(result, &copyOrder)
	}
	return result
}

// GetOpenOrders returns orders whose OrdStatus indicates they are still
// working.
func (s *Store) GetOpenOrders() []*Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Order, 0)
	for _, order := range s.orders {
		if isOpenStatus(order.OrdStatus) {
			copyOrder := *order
			result = append(result, &copyOrder)
		}
	}
	return result
}

// UpdatePosition applies a PositionReport entry.
func (s *Store) UpdatePosition(entry message.PositionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[entry.Symbol] = &Position{
		Symbol:   entry.Symbol,
		LongQty:  entry.LongQty,
		ShortQty: entry.ShortQty,
	}
}

// GetPosition retrieves a defensive copy of the position tracked for
// symbol.
func (s *Store) GetPosition(symbol string) *Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[symbol]
	if !ok {
		return nil
	}
	copyPos := *pos
	return &copyPos
}

// GetAllPositions returns a defensive copy of every tracked position.
func (s *Store) GetAllPositions() []*Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Position, 0, len(s.positions))
	for _, pos := range s.positions {
		copyPos := *pos
		result = append(result, &copyPos)
	}
	return result
}

func isOpenStatus(status string) bool {
	switch status {
	case "0", "1", "6", "A", "E": // New, PartiallyFilled, PendingCancel, PendingNew, PendingReplace
		return true
	default:
		return false
	}
}
