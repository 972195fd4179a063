package trade

import (
	"testing"

	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/message"
)

// TestStore_UpdateFromExecutionReport_CreatesOrder verifies that the first
// execution report seen for a ClOrdID creates the tracked order.
func TestStore_UpdateFromExecutionReport_CreatesOrder(t *testing.T) {
	store := NewStore()

	store.UpdateFromExecutionReport(message.ExecutionReport{
		ClOrdID:   "clord-1",
		OrderID:   "order-1",
		Symbol:    "EURUSD",
		Side:      constants.SideBuy,
		OrdStatus: constants.OrdStatusNew,
		ExecType:  constants.ExecTypeNew,
		OrderQty:  "1000",
		Price:     "1.1000",
	})

	order := store.GetOrder("clord-1")
	if order == nil {
		t.Fatal("expected order to be tracked")
	}
	if order.Symbol != "EURUSD" || order.OrdStatus != constants.OrdStatusNew {
		t.Errorf("unexpected order state: %+v", order)
	}
}

// TestStore_GetOrder_ReturnsDefensiveCopy verifies mutation safety: the
// caller's copy must not alias internal state.
func TestStore_GetOrder_ReturnsDefensiveCopy(t *testing.T) {
	store := NewStore()
	store.UpdateFromExecutionReport(message.ExecutionReport{ClOrdID: "clord-1", Symbol: "EURUSD"})

	retrieved := store.GetOrder("clord-1")
	retrieved.Symbol = "MODIFIED"

	original := store.GetOrder("clord-1")
	if original.Symbol == "MODIFIED" {
		t.Error("GetOrder should return a defensive copy")
	}
}

// TestStore_UpdateFromExecutionReport_PreservesPriorFields verifies that a
// later report with empty optional fields does not blank out values set by
// an earlier report (a partial fill report omitting Price, say).
func TestStore_UpdateFromExecutionReport_PreservesPriorFields(t *testing.T) {
	store := NewStore()
	store.UpdateFromExecutionReport(message.ExecutionReport{
		ClOrdID: "clord-1",
		Price:   "1.1000",
	})
	store.UpdateFromExecutionReport(message.ExecutionReport{
		ClOrdID:  "clord-1",
		CumQty:   "500",
	})

	order := store.GetOrder("clord-1")
	if order.Price != "1.1000" {
		t.Errorf("expected Price to be preserved, got %q", order.Price)
	}
	if order.CumQty != "500" {
		t.Errorf("expected CumQty to be set, got %q", order.CumQty)
	}
}

// TestStore_GetOpenOrders_FiltersByStatus verifies that only working orders
// are returned.
func TestStore_GetOpenOrders_FiltersByStatus(t *testing.T) {
	store := NewStore()
	store.UpdateFromExecutionReport(message.ExecutionReport{ClOrdID: "open-1", OrdStatus: constants.OrdStatusNew})
	store.UpdateFromExecutionReport(message.ExecutionReport{ClOrdID: "filled-1", OrdStatus: constants.OrdStatusFilled})

	open := store.GetOpenOrders()
	if len(open) != 1 || open[0].ClOrdID != "open-1" {
		t.Errorf("expected only open-1 to be open, got %+v", open)
	}
}

// TestStore_UpdatePosition verifies positions are tracked per symbol and
// retrievable by symbol.
func TestStore_UpdatePosition(t *testing.T) {
	store := NewStore()
	store.UpdatePosition(message.PositionEntry{Symbol: "EURUSD", LongQty: "1000", ShortQty: "0"})

	pos := store.GetPosition("EURUSD")
	if pos == nil || pos.LongQty != "1000" {
		t.Errorf("unexpected position: %+v", pos)
	}

	if store.GetPosition("GBPUSD") != nil {
		t.Error("expected nil for untracked symbol")
	}
}
