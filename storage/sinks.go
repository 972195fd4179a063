package storage

import (
	"log"

	"github.com/shopspring/decimal"

	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/market"
	"github.com/gurre/ctrader-fix/message"
	"github.com/gurre/ctrader-fix/trade"
)

// MarketSink adapts a Store into a market.Handler, persisting every
// observed quote/book event. It is purely a durability convenience: no
// core invariant in market.Channel depends on it being attached.
type MarketSink struct {
	store *Store
}

// NewMarketSink wraps store as a market.Handler.
func NewMarketSink(store *Store) *MarketSink { return &MarketSink{store: store} }

func (s *MarketSink) OnSpot(symbolID string, bid, ask decimal.Decimal) {
	if err := s.store.RecordBookLevel(symbolID, constants.MdEntryTypeBid, "", bid.String(), "", "", true); err != nil {
		log.Printf("storage: record spot bid failed: %v", err)
	}
	if err := s.store.RecordBookLevel(symbolID, constants.MdEntryTypeOffer, "", ask.String(), "", "", true); err != nil {
		log.Printf("storage: record spot ask failed: %v", err)
	}
}

func (s *MarketSink) OnDepth(symbolID string, book *market.OrderBook) {
	for _, level := range book.Bids() {
		if err := s.store.RecordBookLevel(symbolID, constants.MdEntryTypeBid, level.EntryID, level.Price.String(), level.Size.String(), "", true); err != nil {
			log.Printf("storage: record depth bid failed: %v", err)
		}
	}
	for _, level := range book.Asks() {
		if err := s.store.RecordBookLevel(symbolID, constants.MdEntryTypeOffer, level.EntryID, level.Price.String(), level.Size.String(), "", true); err != nil {
			log.Printf("storage: record depth ask failed: %v", err)
		}
	}
}

func (s *MarketSink) OnDepthUpdate(symbolID string, diffs []message.MDIncrementalEntry) {
	for _, d := range diffs {
		if err := s.store.RecordBookLevel(symbolID, d.Type, d.EntryID, d.Price, d.Size, "", false); err != nil {
			log.Printf("storage: record depth update failed: %v", err)
		}
	}
}

func (s *MarketSink) OnMarketReject(mdReqID string, reason string) {
	log.Printf("storage: market data reject mdReqID=%s reason=%s", mdReqID, reason)
}

// TradeSink adapts a Store into a trade.Handler, persisting every
// execution report. Cancel rejects and disconnects are logged, not
// persisted.
type TradeSink struct {
	store *Store
}

// NewTradeSink wraps store as a trade.Handler.
func NewTradeSink(store *Store) *TradeSink { return &TradeSink{store: store} }

func (s *TradeSink) OnExecution(report message.ExecutionReport) {
	err := s.store.RecordExecution(
		report.ClOrdID, report.OrderID, report.ExecID, report.Symbol, report.Side,
		report.OrdStatus, report.ExecType, report.OrderQty, report.Price,
		report.LastPx, report.LastShares, report.CumQty, report.LeavesQty,
	)
	if err != nil {
		log.Printf("storage: record execution failed: %v", err)
	}
}

func (s *TradeSink) OnCancelReject(reject message.OrderCancelReject) {
	log.Printf("storage: cancel reject clOrdID=%s reason=%s", reject.ClOrdID, reject.CxlRejReason)
}

func (s *TradeSink) OnDisconnected(reason string) {
	log.Printf("storage: trade session disconnected: %s", reason)
}

var (
	_ market.Handler = (*MarketSink)(nil)
	_ trade.Handler  = (*TradeSink)(nil)
)
