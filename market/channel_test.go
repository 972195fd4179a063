package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gurre/ctrader-fix/clock"
	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/message"
	"github.com/gurre/ctrader-fix/router"
	"github.com/gurre/ctrader-fix/session"

	"github.com/quickfixgo/quickfix"
)

func newTestChannel(t *testing.T) *Channel {
	t.Helper()
	cfg := session.Config{
		Host:              "fix.example.com",
		Port:              5211,
		SenderCompID:      "demo.icmarkets.1234567",
		SenderSubID:       constants.SenderSubIDQuote,
		RequestTimeout:    50 * time.Millisecond,
		HeartBtIntSeconds: 30,
	}
	engine, err := session.New(cfg, clock.Fixed(time.Unix(0, 0)), router.New(), quickfix.NewMemoryStoreFactory(), quickfix.NewNullLogFactory())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return New(engine)
}

func buildSnapshotMessage(mdReqID, symbol string, entries []message.MDEntry) *quickfix.Message {
	msg := quickfix.NewMessage()
	msg.Header.SetField(constants.TagMsgType, quickfix.FIXString(constants.MsgTypeMarketDataSnapshot))
	msg.Body.SetField(constants.TagMdReqId, quickfix.FIXString(mdReqID))
	msg.Body.SetField(constants.TagSymbol, quickfix.FIXString(symbol))

	group := quickfix.NewRepeatingGroup(
		constants.TagNoMdEntries,
		quickfix.GroupTemplate{
			quickfix.GroupElement(constants.TagMdEntryType),
			quickfix.GroupElement(constants.TagMdEntryPx),
			quickfix.GroupElement(constants.TagMdEntrySize),
			quickfix.GroupElement(constants.TagMdEntryID),
		},
	)
	for _, e := range entries {
		g := group.Add()
		g.SetField(constants.TagMdEntryType, quickfix.FIXString(e.Type))
		g.SetField(constants.TagMdEntryPx, quickfix.FIXString(e.Price))
		g.SetField(constants.TagMdEntrySize, quickfix.FIXString(e.Size))
		g.SetField(constants.TagMdEntryID, quickfix.FIXString(e.EntryID))
	}
	msg.Body.SetGroup(group)
	return msg
}

func buildRejectMessage(mdReqID, reason string) *quickfix.Message {
	msg := quickfix.NewMessage()
	msg.Header.SetField(constants.TagMsgType, quickfix.FIXString(constants.MsgTypeMarketDataReject))
	msg.Body.SetField(constants.TagMdReqId, quickfix.FIXString(mdReqID))
	msg.Body.SetField(constants.TagMdReqRejReason, quickfix.FIXString(reason))
	return msg
}

func buildBusinessRejectMessage(refMsgType, refID, reason string) *quickfix.Message {
	msg := quickfix.NewMessage()
	msg.Header.SetField(constants.TagMsgType, quickfix.FIXString(constants.MsgTypeBusinessReject))
	msg.Body.SetField(constants.TagRefMsgType, quickfix.FIXString(refMsgType))
	msg.Body.SetField(constants.TagBusinessRejectRefID, quickfix.FIXString(refID))
	msg.Body.SetField(constants.TagBusinessRejectReason, quickfix.FIXString(reason))
	return msg
}

type recordingHandler struct {
	spotSymbol   string
	spotBid      decimal.Decimal
	spotAsk      decimal.Decimal
	depthSymbol  string
	rejectReason string
}

func (h *recordingHandler) OnSpot(symbolID string, bid, ask decimal.Decimal) {
	h.spotSymbol, h.spotBid, h.spotAsk = symbolID, bid, ask
}
func (h *recordingHandler) OnDepth(symbolID string, book *OrderBook) { h.depthSymbol = symbolID }
func (h *recordingHandler) OnDepthUpdate(string, []message.MDIncrementalEntry) {}
func (h *recordingHandler) OnMarketReject(mdReqID, reason string)    { h.rejectReason = reason }

// TestChannel_HandleSnapshot_CompletesAcceptAndNotifiesSpot verifies the
// accept-check race's success path: the first snapshot for a pending
// MDReqID both completes the registered subscribe pending and reaches the
// handler as a spot quote.
func TestChannel_HandleSnapshot_CompletesAcceptAndNotifiesSpot(t *testing.T) {
	c := newTestChannel(t)
	h := &recordingHandler{}
	c.SetHandler(h)

	mdReqID := "mdreq-1"
	key := router.SubscriptionKey{SymbolID: "EURUSD", Kind: string(Spot)}
	sub := &subscription{symbolID: "EURUSD", kind: Spot, mdReqID: mdReqID}
	c.bySymbolKind[key] = sub
	c.byMDReqID[mdReqID] = sub

	pending := c.engine.Router().Register(router.Key{MsgType: mdAcceptMsgType, CorrelationID: mdReqID}, time.Second)

	msg := buildSnapshotMessage(mdReqID, "EURUSD", []message.MDEntry{
		{EntryID: "1", Type: constants.MdEntryTypeBid, Price: "1.1000", Size: "1000000"},
		{EntryID: "2", Type: constants.MdEntryTypeOffer, Price: "1.1002", Size: "1000000"},
	})

	c.dispatch(constants.MsgTypeMarketDataSnapshot, msg)

	res := <-pending.Done()
	if res.Err != nil {
		t.Fatalf("expected accept pending to complete, got error: %v", res.Err)
	}

	if h.spotSymbol != "EURUSD" {
		t.Fatalf("expected OnSpot to fire for EURUSD, got %q", h.spotSymbol)
	}
	if !h.spotBid.Equal(decimal.RequireFromString("1.1000")) {
		t.Errorf("expected bid 1.1000, got %s", h.spotBid)
	}
	if !h.spotAsk.Equal(decimal.RequireFromString("1.1002")) {
		t.Errorf("expected ask 1.1002, got %s", h.spotAsk)
	}
}

// TestChannel_HandleReject_FailsAcceptAndNotifiesHandler verifies the
// accept-check race's failure path: a MarketDataRequestReject fails the
// registered subscribe pending with RequestRejected and notifies the
// handler.
func TestChannel_HandleReject_FailsAcceptAndNotifiesHandler(t *testing.T) {
	c := newTestChannel(t)
	h := &recordingHandler{}
	c.SetHandler(h)

	mdReqID := "mdreq-2"
	pending := c.engine.Router().Register(router.Key{MsgType: mdAcceptMsgType, CorrelationID: mdReqID}, time.Second)

	msg := buildRejectMessage(mdReqID, "0")
	c.dispatch(constants.MsgTypeMarketDataReject, msg)

	res := <-pending.Done()
	if res.Err == nil {
		t.Fatal("expected accept pending to fail")
	}
	if h.rejectReason != "0" {
		t.Errorf("expected handler notified with reason 0, got %q", h.rejectReason)
	}
}

// TestChannel_HandleSnapshot_Depth verifies depth subscriptions deliver the
// book, not a spot quote.
func TestChannel_HandleSnapshot_Depth(t *testing.T) {
	c := newTestChannel(t)
	h := &recordingHandler{}
	c.SetHandler(h)

	mdReqID := "mdreq-3"
	key := router.SubscriptionKey{SymbolID: "GBPUSD", Kind: string(Depth)}
	sub := &subscription{symbolID: "GBPUSD", kind: Depth, mdReqID: mdReqID}
	c.bySymbolKind[key] = sub
	c.byMDReqID[mdReqID] = sub
	c.engine.Router().Register(router.Key{MsgType: mdAcceptMsgType, CorrelationID: mdReqID}, time.Second)

	msg := buildSnapshotMessage(mdReqID, "GBPUSD", []message.MDEntry{
		{EntryID: "1", Type: constants.MdEntryTypeBid, Price: "1.2500", Size: "500000"},
		{EntryID: "2", Type: constants.MdEntryTypeOffer, Price: "1.2502", Size: "500000"},
	})
	c.dispatch(constants.MsgTypeMarketDataSnapshot, msg)

	if h.depthSymbol != "GBPUSD" {
		t.Errorf("expected OnDepth to fire for GBPUSD, got %q", h.depthSymbol)
	}
	if h.spotSymbol != "" {
		t.Errorf("expected no OnSpot for a depth subscription, got %q", h.spotSymbol)
	}
}

// TestChannel_HandleBusinessReject_FailsAcceptPending verifies a
// BusinessMessageReject fails the accept pending it refers to via
// BusinessRejectRefID, even though it never names mdAcceptMsgType as its
// RefMsgType.
func TestChannel_HandleBusinessReject_FailsAcceptPending(t *testing.T) {
	c := newTestChannel(t)

	mdReqID := "mdreq-4"
	pending := c.engine.Router().Register(router.Key{MsgType: mdAcceptMsgType, CorrelationID: mdReqID}, time.Second)

	msg := buildBusinessRejectMessage(constants.MsgTypeMarketDataRequest, mdReqID, "3")
	c.dispatch(constants.MsgTypeBusinessReject, msg)

	res := <-pending.Done()
	if res.Err == nil {
		t.Fatal("expected accept pending to fail on a business reject")
	}
}
