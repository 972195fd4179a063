package trade

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gurre/ctrader-fix/builder"
	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/ctraderfix"
	"github.com/gurre/ctrader-fix/message"
	"github.com/gurre/ctrader-fix/router"
	"github.com/gurre/ctrader-fix/session"

	"github.com/quickfixgo/quickfix"
)

// Handler receives trade events, per the external interfaces' TradeHandler.
type Handler interface {
	OnExecution(report message.ExecutionReport)
	OnCancelReject(reject message.OrderCancelReject)
	OnDisconnected(reason string)
}

// Channel is the Trade channel facade: it owns a session engine, a
// router, and the order/position Store kept current from inbound
// execution and position reports.
type Channel struct {
	engine *session.Engine
	store  *Store

	mu      sync.Mutex
	handler Handler
}

// New constructs a Trade channel bound to engine, and installs the
// engine's application dispatch handler.
func New(engine *session.Engine) *Channel {
	c := &Channel{
		engine: engine,
		store:  NewStore(),
	}
	engine.SetAppHandler(c.dispatch)
	engine.Router().Tap("disconnected", func(_, _ string, payload any) {
		c.mu.Lock()
		h := c.handler
		c.mu.Unlock()
		if h != nil {
			reason, _ := payload.(string)
			h.OnDisconnected(reason)
		}
	})
	return c
}

// Connect opens the underlying session and blocks until logon completes.
func (c *Channel) Connect(ctx context.Context) error {
	return c.engine.Connect(ctx)
}

// Logout logs out of the trade session.
func (c *Channel) Logout(ctx context.Context) error {
	return c.engine.Logout(ctx)
}

// SetHandler installs the Trade event handler.
func (c *Channel) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Store exposes the order/position store backing this channel.
func (c *Channel) Store() *Store { return c.store }

// FetchSecurityList requests the full instrument set available to the
// account and returns the symbol list.
func (c *Channel) FetchSecurityList(ctx context.Context) ([]string, error) {
	secReqID := router.NewCorrelationID()
	r := c.engine.Router()
	key := router.Key{MsgType: constants.MsgTypeSecurityListResponse, CorrelationID: secReqID}
	pending := r.Register(key, c.engine.RequestTimeout())

	msg := builder.BuildSecurityListRequest(secReqID, c.engine.Endpoint(), c.engine.Clock().Now())
	if err := c.engine.Send(msg); err != nil {
		r.Cancel(key)
		return nil, err
	}

	select {
	case res := <-pending.Done():
		if res.Err != nil {
			return nil, res.Err
		}
		resp := res.Payload.(message.SecurityListResponse)
		return resp.Symbols, nil
	case <-ctx.Done():
		r.Cancel(key)
		return nil, ctraderfix.New(ctraderfix.Timeout, "fetch_security_list cancelled")
	}
}

// FetchPositions requests the full position set for the account.
func (c *Channel) FetchPositions(ctx context.Context, account string) ([]*Position, error) {
	posReqID := router.NewCorrelationID()
	r := c.engine.Router()
	key := router.Key{MsgType: constants.MsgTypePositionReport, CorrelationID: posReqID}
	pending := r.Register(key, c.engine.RequestTimeout())

	msg := builder.BuildRequestForPositions(posReqID, account, c.engine.Endpoint(), c.engine.Clock().Now())
	if err := c.engine.Send(msg); err != nil {
		r.Cancel(key)
		return nil, err
	}

	select {
	case res := <-pending.Done():
		if res.Err != nil {
			return nil, res.Err
		}
	case <-ctx.Done():
		r.Cancel(key)
		return nil, ctraderfix.New(ctraderfix.Timeout, "fetch_positions cancelled")
	}
	return c.store.GetAllPositions(), nil
}

// FetchAllOrderStatus requests the current status of every working order.
// Unlike the other request operations, a mass status request's
// ExecutionReports echo each order's own ClOrdID rather than the
// OrderStatusReqID, so there is no single terminal response to correlate
// against; instead this collects whatever the store accumulates during
// one request_timeout_ms window before returning.
func (c *Channel) FetchAllOrderStatus(ctx context.Context) ([]*Order, error) {
	reqID := router.NewCorrelationID()

	msg := builder.BuildOrderStatusRequest(reqID, "", "", "", c.engine.Endpoint(), c.engine.Clock().Now())
	if err := c.engine.Send(msg); err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.engine.RequestTimeout())
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return c.store.GetAllOrders(), nil
}

// NewMarketOrder submits a market order and returns the tracked order as
// updated by its terminal execution report.
func (c *Channel) NewMarketOrder(ctx context.Context, symbol, side, qty string) (*Order, error) {
	return c.newOrder(ctx, builder.NewOrderParams{
		Symbol:   symbol,
		Side:     side,
		OrdType:  constants.OrdTypeMarket,
		OrderQty: qty,
	})
}

// NewLimitOrder submits a limit order and returns the tracked order as
// updated by its terminal execution report.
func (c *Channel) NewLimitOrder(ctx context.Context, symbol, side, qty, price string) (*Order, error) {
	return c.newOrder(ctx, builder.NewOrderParams{
		Symbol:   symbol,
		Side:     side,
		OrdType:  constants.OrdTypeLimit,
		OrderQty: qty,
		Price:    price,
	})
}

// NewStopOrder submits a stop order and returns the tracked order as
// updated by its terminal execution report.
func (c *Channel) NewStopOrder(ctx context.Context, symbol, side, qty, stopPrice string) (*Order, error) {
	return c.newOrder(ctx, builder.NewOrderParams{
		Symbol:   symbol,
		Side:     side,
		OrdType:  constants.OrdTypeStop,
		OrderQty: qty,
		StopPx:   stopPrice,
	})
}

func (c *Channel) newOrder(ctx context.Context, params builder.NewOrderParams) (*Order, error) {
	params.ClOrdID = router.NewCorrelationID()
	params.TimeInForce = constants.TimeInForceGTC

	r := c.engine.Router()
	key := router.Key{MsgType: constants.MsgTypeExecutionReport, CorrelationID: params.ClOrdID}
	pending := r.Register(key, c.engine.RequestTimeout())

	msg := builder.BuildNewOrderSingle(params, c.engine.Endpoint(), c.engine.Clock().Now())
	if err := c.engine.Send(msg); err != nil {
		r.Cancel(key)
		return nil, err
	}

	return c.awaitOrder(ctx, pending, key, r)
}

// CancelOrder requests cancellation of a working order.
func (c *Channel) CancelOrder(ctx context.Context, origClOrdID, symbol, side string) (*Order, error) {
	clOrdID := router.NewCorrelationID()
	r := c.engine.Router()
	key := router.Key{MsgType: constants.MsgTypeExecutionReport, CorrelationID: clOrdID}
	pending := r.Register(key, c.engine.RequestTimeout())

	msg := builder.BuildOrderCancelRequest(builder.CancelOrderParams{
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
		Symbol:      symbol,
		Side:        side,
	}, c.engine.Endpoint(), c.engine.Clock().Now())
	if err := c.engine.Send(msg); err != nil {
		r.Cancel(key)
		return nil, err
	}

	return c.awaitOrder(ctx, pending, key, r)
}

// ReplaceOrder amends a working order's quantity and/or price.
func (c *Channel) ReplaceOrder(ctx context.Context, origClOrdID, symbol, side, newQty, newPrice string) (*Order, error) {
	clOrdID := router.NewCorrelationID()
	r := c.engine.Router()
	key := router.Key{MsgType: constants.MsgTypeExecutionReport, CorrelationID: clOrdID}
	pending := r.Register(key, c.engine.RequestTimeout())

	ordType := constants.OrdTypeMarket
	if newPrice != "" {
		ordType = constants.OrdTypeLimit
	}

	msg := builder.BuildOrderCancelReplaceRequest(builder.ReplaceOrderParams{
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
		Symbol:      symbol,
		Side:        side,
		OrdType:     ordType,
		OrderQty:    newQty,
		Price:       newPrice,
	}, c.engine.Endpoint(), c.engine.Clock().Now())
	if err := c.engine.Send(msg); err != nil {
		r.Cancel(key)
		return nil, err
	}

	return c.awaitOrder(ctx, pending, key, r)
}

// AdjustPositionSize issues a market order on the appropriate side to move
// the named symbol's position from its current net size to the target size
// named by delta (positive for a net long target, negative for net short).
// The side and order quantity are derived from the gap between the
// currently tracked position and delta, the same way ClosePosition derives
// them from the currently tracked position alone.
func (c *Channel) AdjustPositionSize(ctx context.Context, symbol string, delta string) (*Order, error) {
	target, err := decimal.NewFromString(delta)
	if err != nil {
		return nil, ctraderfix.New(ctraderfix.RequestRejected, "invalid delta: "+delta)
	}

	side, qty, ok := adjustmentOrder(c.currentNetSize(symbol), target)
	if !ok {
		return nil, nil
	}
	return c.NewMarketOrder(ctx, symbol, side, qty.String())
}

// currentNetSize returns a symbol's net position size (long minus short) as
// currently tracked, or zero if no position has been reported yet.
func (c *Channel) currentNetSize(symbol string) decimal.Decimal {
	pos := c.store.GetPosition(symbol)
	if pos == nil {
		return decimal.Zero
	}
	longQty, _ := decimal.NewFromString(pos.LongQty)
	shortQty, _ := decimal.NewFromString(pos.ShortQty)
	return longQty.Sub(shortQty)
}

// adjustmentOrder computes the side and quantity of the market order needed
// to move current to target. ok is false when current already equals
// target, meaning no order should be sent.
func adjustmentOrder(current, target decimal.Decimal) (side string, qty decimal.Decimal, ok bool) {
	gap := target.Sub(current)
	if gap.IsZero() {
		return "", decimal.Zero, false
	}
	if gap.IsNegative() {
		return constants.SideSell, gap.Neg(), true
	}
	return constants.SideBuy, gap, true
}

// ClosePosition issues an opposite-side market order for the full open
// quantity of a symbol's position.
func (c *Channel) ClosePosition(ctx context.Context, symbol string) (*Order, error) {
	pos := c.store.GetPosition(symbol)
	if pos == nil {
		return nil, ctraderfix.New(ctraderfix.NoSuchSubscription, "no tracked position for "+symbol)
	}

	side := constants.SideSell
	qty := pos.LongQty
	if qty == "" || qty == "0" {
		side = constants.SideBuy
		qty = pos.ShortQty
	}
	return c.NewMarketOrder(ctx, symbol, side, qty)
}

func (c *Channel) awaitOrder(ctx context.Context, pending *router.Pending, key router.Key, r *router.Router) (*Order, error) {
	select {
	case res := <-pending.Done():
		if res.Err != nil {
			return nil, res.Err
		}
		report := res.Payload.(message.ExecutionReport)
		return c.store.UpdateFromExecutionReport(report), nil
	case <-ctx.Done():
		r.Cancel(key)
		return nil, ctraderfix.New(ctraderfix.Timeout, "order request cancelled")
	}
}

// dispatch implements the inbound routing algorithm for trade application
// messages: complete a matching pending if the response is terminal, tap
// the handler unconditionally for executions (per the design note on
// unsolicited fills), and route rejects/positions/security lists.
func (c *Channel) dispatch(msgType string, msg *quickfix.Message) {
	switch msgType {
	case constants.MsgTypeExecutionReport:
		c.handleExecutionReport(msg)
	case constants.MsgTypeOrderCancelReject:
		c.handleCancelReject(msg)
	case constants.MsgTypeSecurityListResponse:
		c.handleSecurityListResponse(msg)
	case constants.MsgTypePositionReport:
		c.handlePositionReport(msg)
	case constants.MsgTypeBusinessReject:
		c.handleBusinessReject(msg)
	}
}

func isTerminalExecType(execType string) bool {
	switch execType {
	case constants.ExecTypeNew, constants.ExecTypeCanceled, constants.ExecTypeRejected, constants.ExecTypeReplaced:
		return true
	default:
		return false
	}
}

func (c *Channel) handleExecutionReport(msg *quickfix.Message) {
	report, err := message.ParseExecutionReport(msg)
	if err != nil {
		return
	}

	c.store.UpdateFromExecutionReport(report)

	r := c.engine.Router()
	if isTerminalExecType(report.ExecType) {
		key := router.Key{MsgType: constants.MsgTypeExecutionReport, CorrelationID: report.ClOrdID}
		if report.OrdStatus == constants.OrdStatusRejected {
			r.Fail(key, ctraderfix.New(ctraderfix.RequestRejected, report.OrdRejReason))
		} else {
			r.Complete(key, report)
		}
	}

	r.RunTaps(constants.MsgTypeExecutionReport, report.ClOrdID, report)

	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler != nil {
		handler.OnExecution(report)
	}
}

func (c *Channel) handleCancelReject(msg *quickfix.Message) {
	rej, err := message.ParseOrderCancelReject(msg)
	if err != nil {
		return
	}

	c.engine.Router().Fail(
		router.Key{MsgType: constants.MsgTypeExecutionReport, CorrelationID: rej.ClOrdID},
		ctraderfix.New(ctraderfix.RequestRejected, rej.CxlRejReason),
	)

	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler != nil {
		handler.OnCancelReject(rej)
	}
}

func (c *Channel) handleSecurityListResponse(msg *quickfix.Message) {
	resp, err := message.ParseSecurityListResponse(msg)
	if err != nil {
		return
	}
	c.engine.Router().Complete(
		router.Key{MsgType: constants.MsgTypeSecurityListResponse, CorrelationID: resp.SecurityReqID},
		resp,
	)
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

func (c *Channel) handlePositionReport(msg *quickfix.Message) {
	report, err := message.ParsePositionReport(msg)
	if err != nil {
		return
	}
	c.store.UpdatePosition(report.Entry)
	c.engine.Router().Complete(
		router.Key{MsgType: constants.MsgTypePositionReport, CorrelationID: report.PosReqID},
		report,
	)
}
