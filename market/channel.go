package market

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/gurre/ctrader-fix/builder"
	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/ctraderfix"
	"github.com/gurre/ctrader-fix/message"
	"github.com/gurre/ctrader-fix/router"
	"github.com/gurre/ctrader-fix/session"

	"github.com/quickfixgo/quickfix"
)

// mdAcceptMsgType is a synthetic router MsgType used to key the
// accept-check race described in the component design: a subscribe
// request is considered accepted on the first snapshot and rejected on a
// MarketDataRequestReject, whichever arrives first, and both share this
// one pending entry per MDReqID.
const mdAcceptMsgType = "market-data-accept"

// Kind distinguishes the two subscription flavors a symbol can have.
type Kind string

const (
	Spot  Kind = "spot"
	Depth Kind = "depth"
)

// Handler receives market data events, per the external interfaces'
// MarketHandler.
type Handler interface {
	OnSpot(symbolID string, bid, ask decimal.Decimal)
	OnDepth(symbolID string, book *OrderBook)
	OnDepthUpdate(symbolID string, diffs []message.MDIncrementalEntry)
	OnMarketReject(mdReqID string, reason string)
}

type subscription struct {
	symbolID string
	kind     Kind
	mdReqID  string
}

// Channel is the Market channel facade: it owns a session engine and a
// router, and exposes the subscribe/unsubscribe/quote operation set.
type Channel struct {
	engine *session.Engine

	mu           sync.Mutex
	bySymbolKind map[router.SubscriptionKey]*subscription
	byMDReqID    map[string]*subscription
	books        map[string]*OrderBook
	handler      Handler
}

// New constructs a Market channel bound to engine, and installs the
// engine's application dispatch handler.
func New(engine *session.Engine) *Channel {
	c := &Channel{
		engine:       engine,
		bySymbolKind: make(map[router.SubscriptionKey]*subscription),
		byMDReqID:    make(map[string]*subscription),
		books:        make(map[string]*OrderBook),
	}
	engine.SetAppHandler(c.dispatch)
	engine.Router().Tap("disconnected", func(string, string, any) {
		c.mu.Lock()
		c.bySymbolKind = make(map[router.SubscriptionKey]*subscription)
		c.byMDReqID = make(map[string]*subscription)
		c.mu.Unlock()
	})
	return c
}

// Connect opens the underlying session and blocks until logon completes.
func (c *Channel) Connect(ctx context.Context) error {
	return c.engine.Connect(ctx)
}

// Logout cancels all subscriptions and logs out, per the concurrency
// model's logout semantics (no unsubscribe messages required).
func (c *Channel) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.bySymbolKind = make(map[router.SubscriptionKey]*subscription)
	c.byMDReqID = make(map[string]*subscription)
	c.mu.Unlock()
	return c.engine.Logout(ctx)
}

// SetHandler installs the Market event handler.
func (c *Channel) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// SubscribeSpot subscribes to top-of-book spot quotes for symbolID.
func (c *Channel) SubscribeSpot(ctx context.Context, symbolID string) error {
	return c.subscribe(ctx, symbolID, Spot, "1", constants.MdUpdateTypeFullRefresh)
}

// UnsubscribeSpot cancels a spot subscription previously made for symbolID.
func (c *Channel) UnsubscribeSpot(ctx context.Context, symbolID string) error {
	return c.unsubscribe(ctx, symbolID, Spot)
}

// SubscribeDepth subscribes to full order book updates for symbolID.
func (c *Channel) SubscribeDepth(ctx context.Context, symbolID string) error {
	return c.subscribe(ctx, symbolID, Depth, "0", constants.MdUpdateTypeIncremental)
}

// UnsubscribeDepth cancels a depth subscription previously made for
// symbolID.
func (c *Channel) UnsubscribeDepth(ctx context.Context, symbolID string) error {
	return c.unsubscribe(ctx, symbolID, Depth)
}

// QuoteSpot returns the latest cached bid/ask for symbolID. It errors if a
// snapshot was never received.
func (c *Channel) QuoteSpot(symbolID string) (bid, ask decimal.Decimal, err error) {
	c.mu.Lock()
	book, ok := c.books[symbolID]
	c.mu.Unlock()
	if !ok {
		return decimal.Zero, decimal.Zero, ctraderfix.New(ctraderfix.NoSuchSubscription, symbolID)
	}
	bid, ask, ok = book.BestBidAsk()
	if !ok {
		return decimal.Zero, decimal.Zero, ctraderfix.New(ctraderfix.NoSuchSubscription, "no snapshot received for "+symbolID)
	}
	return bid, ask, nil
}

func (c *Channel) subscribe(ctx context.Context, symbolID string, kind Kind, marketDepth, updateType string) error {
	key := router.SubscriptionKey{SymbolID: symbolID, Kind: string(kind)}

	c.mu.Lock()
	if _, exists := c.bySymbolKind[key]; exists {
		c.mu.Unlock()
		return ctraderfix.New(ctraderfix.SubscriptionAlreadyActive, symbolID)
	}
	c.mu.Unlock()

	mdReqID := router.NewCorrelationID()
	sub := &subscription{symbolID: symbolID, kind: kind, mdReqID: mdReqID}

	c.mu.Lock()
	c.bySymbolKind[key] = sub
	c.byMDReqID[mdReqID] = sub
	if _, ok := c.books[symbolID]; !ok {
		c.books[symbolID] = NewOrderBook()
	}
	c.mu.Unlock()

	r := c.engine.Router()
	acceptKey := router.Key{MsgType: mdAcceptMsgType, CorrelationID: mdReqID}
	pending := r.Register(acceptKey, c.engine.RequestTimeout())

	msg := builder.BuildMarketDataRequest(builder.MarketDataRequestParams{
		MDReqID:                 mdReqID,
		Symbols:                 []string{symbolID},
		SubscriptionRequestType: constants.SubscriptionRequestTypeSubscribe,
		MarketDepth:             marketDepth,
		MDUpdateType:            updateType,
		MDEntryTypes:            []string{constants.MdEntryTypeBid, constants.MdEntryTypeOffer},
	}, c.engine.Endpoint(), c.engine.Clock().Now())

	if err := c.engine.Send(msg); err != nil {
		r.Cancel(acceptKey)
		c.removeSubscription(key, mdReqID)
		return err
	}

	select {
	case res := <-pending.Done():
		if res.Err != nil {
			c.removeSubscription(key, mdReqID)
			return res.Err
		}
		return nil
	case <-ctx.Done():
		r.Cancel(acceptKey)
		c.removeSubscription(key, mdReqID)
		return ctraderfix.New(ctraderfix.Timeout, "subscribe cancelled")
	}
}

func (c *Channel) unsubscribe(ctx context.Context, symbolID string, kind Kind) error {
	key := router.SubscriptionKey{SymbolID: symbolID, Kind: string(kind)}

	c.mu.Lock()
	sub, exists := c.bySymbolKind[key]
	c.mu.Unlock()
	if !exists {
		return ctraderfix.New(ctraderfix.NoSuchSubscription, symbolID)
	}

	marketDepth := "1"
	if kind == Depth {
		marketDepth = "0"
	}

	msg := builder.BuildMarketDataRequest(builder.MarketDataRequestParams{
		MDReqID:                 sub.mdReqID,
		Symbols:                 []string{symbolID},
		SubscriptionRequestType: constants.SubscriptionRequestTypeUnsubscribe,
		MarketDepth:             marketDepth,
	}, c.engine.Endpoint(), c.engine.Clock().Now())

	if err := c.engine.Send(msg); err != nil {
		return err
	}

	// Per the Open Question resolution (DESIGN.md): cTrader's accept signal
	// for an unsubscribe is not uniformly documented, so absence of a
	// reject within the timeout is treated as success.
	r := c.engine.Router()
	acceptKey := router.Key{MsgType: mdAcceptMsgType, CorrelationID: sub.mdReqID}
	pending := r.Register(acceptKey, c.engine.RequestTimeout())

	c.removeSubscription(key, sub.mdReqID)

	select {
	case res := <-pending.Done():
		// A MarketDataRequestReject for this MDReqID fails the unsubscribe;
		// reaching the accept-check timeout without one is success.
		if res.Err != nil && !errors.Is(res.Err, ctraderfix.ErrTimeout) {
			return res.Err
		}
		return nil
	case <-ctx.Done():
		r.Cancel(acceptKey)
		return nil
	}
}

func (c *Channel) removeSubscription(key router.SubscriptionKey, mdReqID string) {
	c.mu.Lock()
	delete(c.bySymbolKind, key)
	delete(c.byMDReqID, mdReqID)
	c.mu.Unlock()
}

// dispatch implements the inbound routing algorithm for market-data
// application messages: complete the accept-check pending if one is
// waiting, then always update book/cache state and notify the handler —
// the first snapshot both completes the subscribe call and is the first
// delivery to the handler, which is intentional, not double delivery.
func (c *Channel) dispatch(msgType string, msg *quickfix.Message) {
	switch msgType {
	case constants.MsgTypeMarketDataSnapshot:
		c.handleSnapshot(msg)
	case constants.MsgTypeMarketDataIncremental:
		c.handleIncremental(msg)
	case constants.MsgTypeMarketDataReject:
		c.handleReject(msg)
	case constants.MsgTypeBusinessReject:
		c.handleBusinessReject(msg)
	}
}

func (c *Channel) handleSnapshot(msg *quickfix.Message) {
	snap, err := message.ParseMarketDataSnapshot(msg)
	if err != nil {
		return
	}

	c.mu.Lock()
	sub, known := c.byMDReqID[snap.MDReqID]
	book, ok := c.books[snap.Symbol]
	if !ok {
		book = NewOrderBook()
		c.books[snap.Symbol] = book
	}
	handler := c.handler
	c.mu.Unlock()

	_ = book.ApplySnapshot(snap.Entries)

	c.engine.Router().Complete(router.Key{MsgType: mdAcceptMsgType, CorrelationID: snap.MDReqID}, snap)

	if handler == nil {
		return
	}
	if !known || sub.kind == Spot {
		if bid, ask, ok := book.BestBidAsk(); ok {
			handler.OnSpot(snap.Symbol, bid, ask)
		}
	}
	if known && sub.kind == Depth {
		handler.OnDepth(snap.Symbol, book)
	}
}

func (c *Channel) handleIncremental(msg *quickfix.Message) {
	inc, err := message.ParseMarketDataIncremental(msg)
	if err != nil {
		return
	}
	if len(inc.Entries) == 0 {
		return
	}
	symbolID := inc.Entries[0].Symbol

	c.mu.Lock()
	book, ok := c.books[symbolID]
	handler := c.handler
	c.mu.Unlock()
	if !ok {
		return
	}

	_ = book.ApplyIncremental(inc.Entries)

	if handler != nil {
		handler.OnDepthUpdate(symbolID, inc.Entries)
	}
}

func (c *Channel) handleReject(msg *quickfix.Message) {
	rej, err := message.ParseMarketDataReject(msg)
	if err != nil {
		return
	}

	c.engine.Router().Fail(
		router.Key{MsgType: mdAcceptMsgType, CorrelationID: rej.MDReqID},
		ctraderfix.New(ctraderfix.RequestRejected, rej.RejectReason),
	)

	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler != nil {
		handler.OnMarketReject(rej.MDReqID, rej.RejectReason)
	}
}

// handleBusinessReject fails whichever pending the rejected request was
// waiting on, keyed only by the echoed BusinessRejectRefID since a
// BusinessMessageReject never names the response MsgType the request would
// otherwise have produced.
func (c *Channel) handleBusinessReject(msg *quickfix.Message) {
	rej, err := message.ParseBusinessReject(msg)
	if err != nil {
		return
	}
	c.engine.Router().FailByCorrelationID(
		rej.BusinessRejectRefID,
		ctraderfix.New(ctraderfix.RequestRejected, rej.BusinessRejectReason),
	)
}
