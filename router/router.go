// Package router implements the request/response correlation and
// subscription dispatch layer described by the session engine: it turns a
// stream of unsolicited inbound FIX messages into completable calls and
// routed subscription events.
//
// Grounded on the teacher's OrderStore/TradeStore pattern (one mutex
// guarding a couple of maps, exposed through narrow accessor methods)
// generalized to hold both single-shot pending completions and
// long-lived subscription handlers.
package router

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gurre/ctrader-fix/ctraderfix"
)

// NewCorrelationID mints a fresh correlation identifier: a UUIDv4 rendered
// as a compact hex string, per the component design's convention for
// MDReqID/ClOrdID/SecurityReqID/OrderStatusReqID/PosReqID values.
func NewCorrelationID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Key identifies a pending completion by the response MsgType it waits for
// and the correlation id carried on that response (MDReqID, ClOrdID, etc).
// Correlation is never by MsgSeqNum.
type Key struct {
	MsgType       string
	CorrelationID string
}

// SubscriptionKey identifies a long-lived handler registration.
type SubscriptionKey struct {
	SymbolID string
	Kind     string // "spot" or "depth"
}

// Handler receives every application message routed to an active
// subscription.
type Handler func(msgType string, correlationID string, payload any)

// Pending is a single outstanding request awaiting a terminal response.
type Pending struct {
	key     Key
	done    chan Result
	timer   *time.Timer
	once    sync.Once
}

// Result is delivered on a Pending's completion channel exactly once.
type Result struct {
	Payload any
	Err     error
}

// Done returns the channel that receives the single terminal Result.
func (p *Pending) Done() <-chan Result { return p.done }

// Router holds pending completions and subscription handlers behind one
// mutex, released only for map operations, never across I/O — per the
// concurrency model's "never block the reader task" rule.
type Router struct {
	mu          sync.Mutex
	pending     map[Key]*Pending
	subscribers map[SubscriptionKey]Handler
	taps        map[string][]Handler
}

// New returns an empty Router.
func New() *Router {
	return &Router{
		pending:     make(map[Key]*Pending),
		subscribers: make(map[SubscriptionKey]Handler),
		taps:        make(map[string][]Handler),
	}
}

// Tap registers handler to run for every inbound message of msgType,
// whether or not it also matches a pending completion or subscription.
// Per the design note on unsolicited ExecutionReports: fills and state
// changes arrive without a caller waiting, and must always reach the
// trade handler to avoid deadlocks.
func (r *Router) Tap(msgType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taps[msgType] = append(r.taps[msgType], handler)
}

// RunTaps invokes every handler registered for msgType via Tap.
func (r *Router) RunTaps(msgType, correlationID string, payload any) {
	r.mu.Lock()
	handlers := append([]Handler(nil), r.taps[msgType]...)
	r.mu.Unlock()

	for _, h := range handlers {
		h(msgType, correlationID, payload)
	}
}

// Register creates a Pending for key with the given timeout and returns it.
// If timeout elapses before Complete or Fail is called, the Pending is
// failed with ctraderfix.ErrTimeout and removed automatically.
func (r *Router) Register(key Key, timeout time.Duration) *Pending {
	p := &Pending{
		key:  key,
		done: make(chan Result, 1),
	}

	r.mu.Lock()
	r.pending[key] = p
	r.mu.Unlock()

	p.timer = time.AfterFunc(timeout, func() {
		r.Fail(key, ctraderfix.New(ctraderfix.Timeout, "no response within request_timeout_ms"))
	})

	return p
}

// Complete delivers payload to the Pending registered under key, if any,
// and removes it. Returns false if no such pending exists (e.g. it already
// timed out or was cancelled).
func (r *Router) Complete(key Key, payload any) bool {
	p := r.remove(key)
	if p == nil {
		return false
	}
	p.once.Do(func() {
		p.timer.Stop()
		p.done <- Result{Payload: payload}
	})
	return true
}

// Fail delivers err to the Pending registered under key, if any, and
// removes it. Returns false if no such pending exists.
func (r *Router) Fail(key Key, err error) bool {
	p := r.remove(key)
	if p == nil {
		return false
	}
	p.once.Do(func() {
		p.timer.Stop()
		p.done <- Result{Err: err}
	})
	return true
}

// FailByCorrelationID fails whichever pending carries correlationID,
// regardless of which MsgType it was registered under, and removes it.
// BusinessMessageReject only echoes the original request's correlation id,
// not the response MsgType that request would have produced, so it cannot
// be matched with a single Key the way handleReject/handleCancelReject
// match MarketDataRequestReject/OrderCancelReject. Returns false if no
// pending carries correlationID.
func (r *Router) FailByCorrelationID(correlationID string, err error) bool {
	r.mu.Lock()
	var key Key
	var p *Pending
	for k, candidate := range r.pending {
		if k.CorrelationID == correlationID {
			key, p = k, candidate
			break
		}
	}
	if p != nil {
		delete(r.pending, key)
	}
	r.mu.Unlock()

	if p == nil {
		return false
	}
	p.once.Do(func() {
		p.timer.Stop()
		p.done <- Result{Err: err}
	})
	return true
}

// Cancel atomically removes a Pending without delivering a Result, per the
// cooperative-cancellation requirement: a dropped awaitable must leave no
// entry in the pending map.
func (r *Router) Cancel(key Key) {
	p := r.remove(key)
	if p != nil {
		p.timer.Stop()
	}
}

func (r *Router) remove(key Key) *Pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[key]
	if !ok {
		return nil
	}
	delete(r.pending, key)
	return p
}

// HasPending reports whether key is still outstanding; used by the
// accept-check race for subscriptions (first snapshot vs reject).
func (r *Router) HasPending(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[key]
	return ok
}

// Subscribe registers handler for key, replacing any existing registration.
func (r *Router) Subscribe(key SubscriptionKey, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[key] = handler
}

// Unsubscribe removes the handler registered for key.
func (r *Router) Unsubscribe(key SubscriptionKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, key)
}

// Subscriber returns the handler registered for key, if any.
func (r *Router) Subscriber(key SubscriptionKey) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.subscribers[key]
	return h, ok
}

// DrainAll fails every outstanding pending with err and clears all
// subscriptions, per the session-loss failure semantics: callers must
// resubscribe after a fresh logon.
func (r *Router) DrainAll(err error) {
	r.mu.Lock()
	pending := r.pending
	r.pending = make(map[Key]*Pending)
	r.subscribers = make(map[SubscriptionKey]Handler)
	r.mu.Unlock()

	for _, p := range pending {
		p.once.Do(func() {
			p.timer.Stop()
			p.done <- Result{Err: err}
		})
	}
}
