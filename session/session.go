// Package session implements the FIX session engine: it wraps a
// quickfix.Initiator, which owns the wire codec and the transport-facing
// half of the state machine (socket I/O, sequence bookkeeping,
// heartbeat/test-request timing, logon/logout handshake), and layers on
// top of it everything quickfixgo does not know about cTrader: the
// message dictionary, dispatch to the channel facade's AppHandler, draining
// the router on logout, and the State snapshot
// callers can observe.
//
// Grounded on the teacher's fixclient/fixapp.go, which drives the same
// quickfix.Application callbacks for a different wire profile.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gurre/ctrader-fix/builder"
	"github.com/gurre/ctrader-fix/clock"
	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/ctraderfix"
	"github.com/gurre/ctrader-fix/message"
	"github.com/gurre/ctrader-fix/router"

	"github.com/quickfixgo/quickfix"
)

// State mirrors the session state machine of the component design: every
// channel starts Disconnected and only ever observes these four values.
type State int

const (
	Disconnected State = iota
	Connecting
	LoggedOn
	LoggingOut
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case LoggedOn:
		return "LoggedOn"
	case LoggingOut:
		return "LoggingOut"
	default:
		return "Unknown"
	}
}

// Config carries everything a single FIX session (Market or Trade) needs
// to connect and logon, per the Configuration record of the external
// interfaces section.
type Config struct {
	Host              string
	Port              int
	SenderCompID      string
	SenderSubID       string // constants.SenderSubIDQuote or SenderSubIDTrade
	Username          string
	Password          string
	HeartBtIntSeconds int
	UseTLS            bool
	RequestTimeout    time.Duration
}

// TargetCompID is fixed to cServer for every cTrader FIX session.
func (c Config) TargetCompID() string { return constants.TargetCompIDServer }

// Endpoint returns the builder.Endpoint identity fields derived from cfg,
// for use by channel facades constructing outbound messages.
func (c Config) Endpoint() builder.Endpoint {
	return builder.Endpoint{
		SenderCompID: c.SenderCompID,
		TargetCompID: c.TargetCompID(),
		SenderSubID:  c.SenderSubID,
	}
}

// Engine owns one quickfix.Initiator and implements quickfix.Application,
// forwarding every inbound application message to the installed
// AppHandler. A channel
// facade (market.Channel, trade.Channel) owns exactly one Engine.
type Engine struct {
	cfg    Config
	clock  clock.Clock
	router *router.Router

	initiator *quickfix.Initiator

	mu         sync.Mutex
	state      State
	sessionID  quickfix.SessionID
	logonDone  chan error
	logoutDone chan struct{}
	appHandler AppHandler
}

// New constructs an Engine bound to settings built from cfg. storeFactory
// and logFactory follow quickfixgo convention; pass
// quickfix.NewMemoryStoreFactory() and quickfix.NewScreenLogFactory(...)
// (or file-backed equivalents) for a running process.
func New(cfg Config, clk clock.Clock, r *router.Router, storeFactory quickfix.MessageStoreFactory, logFactory quickfix.LogFactory) (*Engine, error) {
	e := &Engine{
		cfg:   cfg,
		clock: clk,
		router: r,
		state: Disconnected,
	}

	settings, err := buildSettings(cfg)
	if err != nil {
		return nil, err
	}

	initiator, err := quickfix.NewInitiator(e, storeFactory, settings, logFactory)
	if err != nil {
		return nil, ctraderfix.New(ctraderfix.Transport, err.Error())
	}
	e.initiator = initiator

	return e, nil
}

func buildSettings(cfg Config) (*quickfix.Settings, error) {
	settings := quickfix.NewSettings()

	global := settings.GlobalSettings()
	global.Set("ConnectionType", "initiator")
	global.Set("ReconnectInterval", "5")
	global.Set("FileStorePath", "")
	global.Set("StartTime", "00:00:00")
	global.Set("EndTime", "00:00:00")

	sessionSettings := quickfix.NewSessionSettings()
	sessionSettings.Set("BeginString", constants.FixBeginString)
	sessionSettings.Set("SenderCompID", cfg.SenderCompID)
	sessionSettings.Set("SenderSubID", cfg.SenderSubID)
	sessionSettings.Set("TargetCompID", cfg.TargetCompID())
	sessionSettings.Set("SocketConnectHost", cfg.Host)
	sessionSettings.Set("SocketConnectPort", fmt.Sprintf("%d", cfg.Port))
	sessionSettings.Set("HeartBtInt", fmt.Sprintf("%d", cfg.HeartBtIntSeconds))
	sessionSettings.Set("ResetOnLogon", "Y")
	if cfg.UseTLS {
		sessionSettings.Set("SocketUseSSL", "Y")
	}

	if err := settings.AddSession(sessionSettings); err != nil {
		return nil, ctraderfix.New(ctraderfix.Transport, err.Error())
	}

	return settings, nil
}

// Connect starts the underlying initiator and blocks until logon completes
// or ctx is done, returning the result from the server's Logon/Logout.
func (e *Engine) Connect(ctx context.Context) error {
	e.mu.Lock()
	e.state = Connecting
	e.logonDone = make(chan error, 1)
	e.mu.Unlock()

	if err := e.initiator.Start(); err != nil {
		return ctraderfix.New(ctraderfix.Transport, err.Error())
	}

	select {
	case err := <-e.logonDone:
		return err
	case <-ctx.Done():
		return ctraderfix.New(ctraderfix.Timeout, "logon did not complete before context deadline")
	}
}

// Logout requests an orderly logout and blocks until the server
// acknowledges it or ctx is done.
func (e *Engine) Logout(ctx context.Context) error {
	e.mu.Lock()
	if e.state != LoggedOn {
		e.mu.Unlock()
		return nil
	}
	e.state = LoggingOut
	e.logoutDone = make(chan struct{}, 1)
	sessionID := e.sessionID
	e.mu.Unlock()

	logoutMsg := builder.BuildLogout(e.cfg.Endpoint(), e.clock.Now())
	if err := quickfix.SendToTarget(logoutMsg, sessionID); err != nil {
		// best-effort: fall through to Stop regardless
		log.Printf("session: logout send failed: %v", err)
	}

	select {
	case <-e.logoutDone:
	case <-ctx.Done():
	}

	e.initiator.Stop()
	return nil
}

// Stop tears down the initiator unconditionally, used on fatal transport
// errors.
func (e *Engine) Stop() {
	e.initiator.Stop()
}

// State returns the engine's current session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SessionID returns the quickfix session identity assigned OnCreate.
func (e *Engine) SessionID() quickfix.SessionID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// Send assigns sequencing and timestamps to msg via quickfixgo's own
// session bookkeeping and writes it to the wire. The caller is expected to
// have already registered any pending completion with the router before
// calling Send, since a response can race the call.
func (e *Engine) Send(msg *quickfix.Message) error {
	sid := e.SessionID()
	if err := quickfix.SendToTarget(msg, sid); err != nil {
		return ctraderfix.New(ctraderfix.Transport, err.Error())
	}
	return nil
}

// RequestTimeout returns the configured per-request deadline.
func (e *Engine) RequestTimeout() time.Duration {
	return e.cfg.RequestTimeout
}

// Router exposes the engine's router so channel facades can register
// pending completions and subscriptions.
func (e *Engine) Router() *router.Router { return e.router }

// Endpoint returns the builder.Endpoint identity fields for this engine's
// configured session, for use by channel facades constructing outbound
// messages.
func (e *Engine) Endpoint() builder.Endpoint { return e.cfg.Endpoint() }

// Clock exposes the engine's injected clock for timestamp construction in
// outbound builders.
func (e *Engine) Clock() clock.Clock { return e.clock }

// --- quickfix.Application ---

func (e *Engine) OnCreate(sessionID quickfix.SessionID) {
	e.mu.Lock()
	e.sessionID = sessionID
	e.mu.Unlock()
}

func (e *Engine) OnLogon(sessionID quickfix.SessionID) {
	e.mu.Lock()
	e.sessionID = sessionID
	e.state = LoggedOn
	done := e.logonDone
	e.mu.Unlock()

	log.Printf("session: logon complete %s", sessionID)
	if done != nil {
		select {
		case done <- nil:
		default:
		}
	}
}

func (e *Engine) OnLogout(sessionID quickfix.SessionID) {
	e.mu.Lock()
	wasConnecting := e.state == Connecting
	e.state = Disconnected
	logonDone := e.logonDone
	logoutDone := e.logoutDone
	e.mu.Unlock()

	log.Printf("session: logout %s", sessionID)

	if wasConnecting && logonDone != nil {
		select {
		case logonDone <- ctraderfix.New(ctraderfix.LogonRejected, "logout received before logon completed"):
		default:
		}
	}
	if logoutDone != nil {
		select {
		case logoutDone <- struct{}{}:
		default:
		}
	}

	e.router.DrainAll(ctraderfix.ErrDisconnected)
	e.router.RunTaps("disconnected", "", "session logged out")
}

func (e *Engine) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {
	msgType, _ := msg.Header.GetString(constants.TagMsgType)
	if msgType != constants.MsgTypeLogon {
		return
	}
	setLogonFields(&msg.Body, e.cfg)
}

func (e *Engine) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	msgType, _ := msg.Header.GetString(constants.TagMsgType)
	switch msgType {
	case constants.MsgTypeReject:
		if rej, err := message.ParseSessionReject(msg); err == nil {
			log.Printf("session: reject refSeqNum=%s reason=%s text=%s", rej.RefSeqNum, rej.SessionRejectReason, rej.Text)
		}
	}
	return nil
}

func (e *Engine) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	return nil
}

// AppHandler receives every application-level message FromApp sees. The
// session engine itself does not know about MDReqID/ClOrdID correlation
// semantics — that belongs to the channel facade that registered the
// handler, per the component design's split between 4.C (session) and
// 4.D/4.E (routing, channel facades).
type AppHandler func(msgType string, msg *quickfix.Message)

// SetAppHandler installs the callback FromApp forwards every application
// message to. A channel facade calls this once, during construction.
func (e *Engine) SetAppHandler(h AppHandler) {
	e.mu.Lock()
	e.appHandler = h
	e.mu.Unlock()
}

// FromApp is the entry point for every application-level FIX message; it
// forwards to the registered AppHandler, which performs the three-step
// inbound routing algorithm of the component design.
func (e *Engine) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	msgType, err := msg.Header.GetString(constants.TagMsgType)
	if err != nil {
		return nil
	}

	e.mu.Lock()
	h := e.appHandler
	e.mu.Unlock()

	if h == nil {
		log.Printf("session: received application message type %s with no handler installed", msgType)
		return nil
	}
	h(msgType, msg)
	return nil
}

func setLogonFields(body *quickfix.Body, cfg Config) {
	body.SetField(constants.TagEncryptMethod, quickfix.FIXString(constants.EncryptMethodNone))
	body.SetField(constants.TagHeartBtInt, quickfix.FIXString(fmt.Sprintf("%d", cfg.HeartBtIntSeconds)))
	body.SetField(constants.TagResetSeqNumFlag, quickfix.FIXString(constants.ResetSeqNumFlagYes))
	body.SetField(constants.TagUsername, quickfix.FIXString(cfg.Username))
	body.SetField(constants.TagPassword, quickfix.FIXString(cfg.Password))
}
