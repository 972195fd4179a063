package message

import (
	"github.com/gurre/ctrader-fix/constants"

	"github.com/quickfixgo/quickfix"
)

// ExecutionReport is the parsed body of an ExecutionReport (8).
type ExecutionReport struct {
	OrderID      string
	ClOrdID      string
	OrigClOrdID  string
	ExecID       string
	ExecType     string
	OrdStatus    string
	Symbol       string
	Side         string
	OrderQty     string
	Price        string
	LastPx       string
	LastShares   string
	LeavesQty    string
	CumQty       string
	AvgPx        string
	OrdRejReason string
	Text         string
}

// ParseExecutionReport reads an ExecutionReport (8) message.
func ParseExecutionReport(msg *quickfix.Message) (ExecutionReport, error) {
	var r ExecutionReport

	orderID, err := msg.Body.GetString(constants.TagOrderID)
	if err != nil {
		return r, err
	}
	r.OrderID = orderID

	r.ClOrdID, _ = msg.Body.GetString(constants.TagClOrdID)
	r.OrigClOrdID, _ = msg.Body.GetString(constants.TagOrigClOrdID)
	r.ExecID, _ = msg.Body.GetString(constants.TagExecID)
	r.ExecType, _ = msg.Body.GetString(constants.TagExecType)
	r.OrdStatus, _ = msg.Body.GetString(constants.TagOrdStatus)
	r.Symbol, _ = msg.Body.GetString(constants.TagSymbol)
	r.Side, _ = msg.Body.GetString(constants.TagSide)
	r.OrderQty, _ = msg.Body.GetString(constants.TagOrderQty)
	r.Price, _ = msg.Body.GetString(constants.TagPrice)
	r.LastPx, _ = msg.Body.GetString(constants.TagLastPx)
	r.LastShares, _ = msg.Body.GetString(constants.TagLastShares)
	r.LeavesQty, _ = msg.Body.GetString(constants.TagLeavesQty)
	r.CumQty, _ = msg.Body.GetString(constants.TagCumQty)
	r.AvgPx, _ = msg.Body.GetString(constants.TagAvgPx)
	r.OrdRejReason, _ = msg.Body.GetString(constants.TagOrdRejReason)
	r.Text, _ = msg.Body.GetString(constants.TagText)

	return r, nil
}

// OrderCancelReject is the parsed body of an OrderCancelReject (9).
type OrderCancelReject struct {
	OrderID          string
	ClOrdID          string
	OrigClOrdID      string
	OrdStatus        string
	CxlRejResponseTo string
	CxlRejReason     string
	Text             string
}

// ParseOrderCancelReject reads an OrderCancelReject (9) message.
func ParseOrderCancelReject(msg *quickfix.Message) (OrderCancelReject, error) {
	var r OrderCancelReject

	clOrdID, err := msg.Body.GetString(constants.TagClOrdID)
	if err != nil {
		return r, err
	}
	r.ClOrdID = clOrdID

	r.OrderID, _ = msg.Body.GetString(constants.TagOrderID)
	r.OrigClOrdID, _ = msg.Body.GetString(constants.TagOrigClOrdID)
	r.OrdStatus, _ = msg.Body.GetString(constants.TagOrdStatus)
	r.CxlRejResponseTo, _ = msg.Body.GetString(constants.TagCxlRejResponseTo)
	r.CxlRejReason, _ = msg.Body.GetString(constants.TagCxlRejReason)
	r.Text, _ = msg.Body.GetString(constants.TagText)

	return r, nil
}

// PositionEntry is a single position from a PositionReport (AP).
type PositionEntry struct {
	Symbol        string
	LongQty       string
	ShortQty      string
	PosMaintRptID string
}

// PositionReport is the parsed body of a PositionReport (AP).
type PositionReport struct {
	PosReqID string
	Account  string
	Entry    PositionEntry
}

// ParsePositionReport reads a PositionReport (AP) message.
func ParsePositionReport(msg *quickfix.Message) (PositionReport, error) {
	var r PositionReport

	posReqID, err := msg.Body.GetString(constants.TagPosReqID)
	if err != nil {
		return r, err
	}
	r.PosReqID = posReqID
	r.Account, _ = msg.Body.GetString(constants.TagAccount)
	r.Entry.Symbol, _ = msg.Body.GetString(constants.TagSymbol)
	r.Entry.LongQty, _ = msg.Body.GetString(constants.TagLongQty)
	r.Entry.ShortQty, _ = msg.Body.GetString(constants.TagShortQty)
	r.Entry.PosMaintRptID, _ = msg.Body.GetString(constants.TagPosMaintRptID)

	return r, nil
}
