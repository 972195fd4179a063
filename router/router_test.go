package router

import (
	"errors"
	"testing"
	"time"

	"github.com/gurre/ctrader-fix/ctraderfix"
)

// TestRouter_CompletePending verifies that a Register followed by Complete
// delivers the payload on the Pending's Done channel and removes the entry.
func TestRouter_CompletePending(t *testing.T) {
	r := New()
	key := Key{MsgType: "W", CorrelationID: "R1"}

	p := r.Register(key, time.Second)
	if !r.Complete(key, "snapshot") {
		t.Fatal("expected Complete to find the pending entry")
	}

	res := <-p.Done()
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Payload != "snapshot" {
		t.Errorf("expected payload snapshot, got %v", res.Payload)
	}
	if r.HasPending(key) {
		t.Error("expected pending entry to be removed after Complete")
	}
}

// TestRouter_FailPending verifies that Fail delivers an error and removes
// the pending entry, per the business-reject failure semantics.
func TestRouter_FailPending(t *testing.T) {
	r := New()
	key := Key{MsgType: "D", CorrelationID: "clord-1"}

	p := r.Register(key, time.Second)
	wantErr := ctraderfix.New(ctraderfix.RequestRejected, "4")
	r.Fail(key, wantErr)

	res := <-p.Done()
	if !errors.Is(res.Err, ctraderfix.ErrRequestRejected) {
		t.Errorf("expected RequestRejected, got %v", res.Err)
	}
}

// TestRouter_Timeout verifies that a pending with no Complete/Fail call
// self-fails with Timeout once its deadline elapses, and removes itself
// from the pending map.
func TestRouter_Timeout(t *testing.T) {
	r := New()
	key := Key{MsgType: "y", CorrelationID: "secreq-1"}

	p := r.Register(key, 10*time.Millisecond)

	select {
	case res := <-p.Done():
		if !errors.Is(res.Err, ctraderfix.ErrTimeout) {
			t.Errorf("expected Timeout, got %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("pending never timed out")
	}

	if r.HasPending(key) {
		t.Error("expected timed-out pending to be removed from the map")
	}
}

// TestRouter_Cancel verifies that cancelling a pending leaves no entry in
// the map and never delivers a Result, matching the cooperative
// cancellation requirement for dropped awaitables.
func TestRouter_Cancel(t *testing.T) {
	r := New()
	key := Key{MsgType: "H", CorrelationID: "statusreq-1"}

	r.Register(key, time.Second)
	r.Cancel(key)

	if r.HasPending(key) {
		t.Error("expected cancelled pending to be removed")
	}
	// A late Complete on a cancelled key must be a no-op, not a panic.
	if r.Complete(key, "late") {
		t.Error("expected Complete on a cancelled key to report no match")
	}
}

// TestRouter_CompleteUnknownKey verifies Complete/Fail report false for a
// key with no registered pending (e.g. a late response after timeout).
func TestRouter_CompleteUnknownKey(t *testing.T) {
	r := New()
	key := Key{MsgType: "y", CorrelationID: "unknown"}

	if r.Complete(key, "payload") {
		t.Error("expected Complete to report no match for unknown key")
	}
	if r.Fail(key, ctraderfix.ErrTimeout) {
		t.Error("expected Fail to report no match for unknown key")
	}
}

// TestRouter_SubscribeDispatchUnsubscribe verifies the subscriber
// registration lifecycle: dispatch finds the handler while subscribed, and
// Unsubscribe removes it.
func TestRouter_SubscribeDispatchUnsubscribe(t *testing.T) {
	r := New()
	key := SubscriptionKey{SymbolID: "1", Kind: "spot"}

	var got string
	r.Subscribe(key, func(msgType, correlationID string, payload any) {
		got = payload.(string)
	})

	h, ok := r.Subscriber(key)
	if !ok {
		t.Fatal("expected subscriber to be registered")
	}
	h("W", "R1", "tick")
	if got != "tick" {
		t.Errorf("expected handler to receive tick, got %q", got)
	}

	r.Unsubscribe(key)
	if _, ok := r.Subscriber(key); ok {
		t.Error("expected subscriber to be removed after Unsubscribe")
	}
}

// TestRouter_Tap verifies that a tap fires regardless of whether a pending
// or subscriber also exists, matching the unsolicited-ExecutionReport
// design note.
func TestRouter_Tap(t *testing.T) {
	r := New()

	var calls int
	r.Tap("8", func(msgType, correlationID string, payload any) {
		calls++
	})
	r.Tap("8", func(msgType, correlationID string, payload any) {
		calls++
	})

	r.RunTaps("8", "order-1", "fill")
	if calls != 2 {
		t.Errorf("expected both taps to fire, got %d calls", calls)
	}
}

// TestRouter_FailByCorrelationID verifies a pending can be failed by its
// correlation id alone, without knowing the MsgType it was registered
// under, per the BusinessMessageReject routing rule.
func TestRouter_FailByCorrelationID(t *testing.T) {
	r := New()
	key := Key{MsgType: "x", CorrelationID: "req-1"}

	p := r.Register(key, time.Second)
	if !r.FailByCorrelationID("req-1", ctraderfix.New(ctraderfix.RequestRejected, "unknown security")) {
		t.Fatal("expected FailByCorrelationID to find the pending entry")
	}

	res := <-p.Done()
	if !errors.Is(res.Err, ctraderfix.ErrRequestRejected) {
		t.Errorf("expected RequestRejected, got %v", res.Err)
	}
	if r.HasPending(key) {
		t.Error("expected pending entry to be removed after FailByCorrelationID")
	}
}

// TestRouter_FailByCorrelationID_NoMatch verifies a correlation id with no
// outstanding pending is a harmless no-op reporting false.
func TestRouter_FailByCorrelationID_NoMatch(t *testing.T) {
	r := New()
	if r.FailByCorrelationID("nonexistent", ctraderfix.ErrRequestRejected) {
		t.Error("expected FailByCorrelationID to report false for an unknown correlation id")
	}
}

// TestRouter_DrainAll verifies that session loss fails every outstanding
// pending with the given error and clears all subscriptions.
func TestRouter_DrainAll(t *testing.T) {
	r := New()
	key1 := Key{MsgType: "W", CorrelationID: "R1"}
	key2 := Key{MsgType: "D", CorrelationID: "clord-1"}
	subKey := SubscriptionKey{SymbolID: "1", Kind: "spot"}

	p1 := r.Register(key1, time.Second)
	p2 := r.Register(key2, time.Second)
	r.Subscribe(subKey, func(string, string, any) {})

	r.DrainAll(ctraderfix.ErrDisconnected)

	for _, p := range []*Pending{p1, p2} {
		res := <-p.Done()
		if !errors.Is(res.Err, ctraderfix.ErrDisconnected) {
			t.Errorf("expected Disconnected, got %v", res.Err)
		}
	}
	if _, ok := r.Subscriber(subKey); ok {
		t.Error("expected subscriptions to be cleared on DrainAll")
	}
}
