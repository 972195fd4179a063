// Package builder constructs outbound cTrader FIX 4.4 messages field-by-field
// in the tag order the profile expects (35, 49, 56, 57, 50, 34, 52, then
// message-specific tags).
package builder

import (
	"strconv"
	"time"

	"github.com/gurre/ctrader-fix/constants"

	"github.com/quickfixgo/quickfix"
)

// FieldSetter abstracts setting fields on a FIX header or body.
type FieldSetter interface {
	SetField(tag quickfix.Tag, field quickfix.FieldValueWriter) *quickfix.FieldMap
}

func setString(fs FieldSetter, tag quickfix.Tag, value string) {
	fs.SetField(tag, quickfix.FIXString(value))
}

func setStringIfNotEmpty(fs FieldSetter, tag quickfix.Tag, value string) {
	if value != "" {
		fs.SetField(tag, quickfix.FIXString(value))
	}
}

// Endpoint carries the session identity fields every outbound message
// needs in its header: SenderCompID/TargetCompID plus the SenderSubID that
// distinguishes the Market (QUOTE) and Trade (TRADE) channels.
type Endpoint struct {
	SenderCompID string
	TargetCompID string
	SenderSubID  string
}

// buildHeader sets the header fields common to every outgoing message.
func buildHeader(header *quickfix.Header, msgType string, ep Endpoint, now time.Time) {
	setString(header, constants.TagMsgType, msgType)
	setString(header, constants.TagSenderCompId, ep.SenderCompID)
	setString(header, constants.TagTargetCompId, ep.TargetCompID)
	setStringIfNotEmpty(header, constants.TagSenderSubID, ep.SenderSubID)
	setString(header, constants.TagSendingTime, now.UTC().Format(constants.FixTimeFormat))
}

func newMessage(msgType string, ep Endpoint, now time.Time) *quickfix.Message {
	m := quickfix.NewMessage()
	buildHeader(&m.Header, msgType, ep, now)
	return m
}

// --- Logon (A) ---

// BuildLogon populates the body of a Logon message. cTrader always expects
// ResetSeqNumFlag=Y, EncryptMethod=0, the negotiated HeartBtInt, and
// Username/Password credentials.
func BuildLogon(body *quickfix.Body, heartBtIntSeconds int, username, password string) {
	setString(body, constants.TagEncryptMethod, constants.EncryptMethodNone)
	setString(body, constants.TagHeartBtInt, strconv.Itoa(heartBtIntSeconds))
	setString(body, constants.TagResetSeqNumFlag, constants.ResetSeqNumFlagYes)
	setString(body, constants.TagUsername, username)
	setString(body, constants.TagPassword, password)
}

// --- Logout (5) ---

// BuildLogout creates a Logout (5) message.
func BuildLogout(ep Endpoint, now time.Time) *quickfix.Message {
	return newMessage(constants.MsgTypeLogout, ep, now)
}

// --- Market Data Request (V) ---

// MarketDataRequestParams contains the parameters for subscribing,
// unsubscribing, or snapshotting market data for a set of symbols.
type MarketDataRequestParams struct {
	MDReqID                 string
	Symbols                 []string
	SubscriptionRequestType string // 0 snapshot, 1 subscribe, 2 unsubscribe
	MarketDepth             string // "1" spot top-of-book, "0" full depth
	MDUpdateType            string // "0" full refresh, "1" incremental
	MDEntryTypes            []string
}

// BuildMarketDataRequest creates a MarketDataRequest (V) message.
func BuildMarketDataRequest(p MarketDataRequestParams, ep Endpoint, now time.Time) *quickfix.Message {
	m := newMessage(constants.MsgTypeMarketDataRequest, ep, now)

	setString(&m.Body, constants.TagMdReqId, p.MDReqID)
	setString(&m.Body, constants.TagSubscriptionRequestType, p.SubscriptionRequestType)
	setString(&m.Body, constants.TagMarketDepth, p.MarketDepth)
	if p.SubscriptionRequestType != constants.SubscriptionRequestTypeUnsubscribe {
		setStringIfNotEmpty(&m.Body, constants.TagMdUpdateType, p.MDUpdateType)
	}

	entryGroup := quickfix.NewRepeatingGroup(
		constants.TagNoMdEntryTypes,
		quickfix.GroupTemplate{quickfix.GroupElement(constants.TagMdEntryType)},
	)
	for _, et := range p.MDEntryTypes {
		setString(entryGroup.Add(), constants.TagMdEntryType, et)
	}
	m.Body.SetGroup(entryGroup)

	symGroup := quickfix.NewRepeatingGroup(
		constants.TagNoRelatedSym,
		quickfix.GroupTemplate{quickfix.GroupElement(constants.TagSymbol)},
	)
	for _, sym := range p.Symbols {
		setString(symGroup.Add(), constants.TagSymbol, sym)
	}
	m.Body.SetGroup(symGroup)

	return m
}

// --- Security List Request (x) ---

// BuildSecurityListRequest creates a SecurityListRequest (x) requesting the
// full instrument set cTrader makes available to the account.
func BuildSecurityListRequest(securityReqID string, ep Endpoint, now time.Time) *quickfix.Message {
	m := newMessage(constants.MsgTypeSecurityListRequest, ep, now)
	setString(&m.Body, constants.TagSecurityReqID, securityReqID)
	setString(&m.Body, constants.TagSecurityListReqType, constants.SecurityListRequestTypeAllSecurities)
	return m
}

// --- New Order Single (D) ---

// NewOrderParams contains the parameters for a new order.
type NewOrderParams struct {
	ClOrdID     string
	Symbol      string
	Side        string
	OrdType     string
	TimeInForce string
	OrderQty    string
	Price       string // required for OrdTypeLimit
	StopPx      string // required for OrdTypeStop
}

// BuildNewOrderSingle creates a NewOrderSingle (D) message.
func BuildNewOrderSingle(p NewOrderParams, ep Endpoint, now time.Time) *quickfix.Message {
	m := newMessage(constants.MsgTypeNewOrderSingle, ep, now)

	setString(&m.Body, constants.TagClOrdID, p.ClOrdID)
	setString(&m.Body, constants.TagSymbol, p.Symbol)
	setString(&m.Body, constants.TagSide, p.Side)
	setString(&m.Body, constants.TagOrdType, p.OrdType)
	setString(&m.Body, constants.TagTimeInForce, p.TimeInForce)
	setString(&m.Body, constants.TagOrderQty, p.OrderQty)
	setString(&m.Body, constants.TagTransactTime, now.UTC().Format(constants.FixTimeFormat))

	setStringIfNotEmpty(&m.Body, constants.TagPrice, p.Price)
	setStringIfNotEmpty(&m.Body, constants.TagStopPx, p.StopPx)

	return m
}

// --- Order Cancel Request (F) ---

// CancelOrderParams contains the parameters for canceling a working order.
type CancelOrderParams struct {
	ClOrdID     string
	OrigClOrdID string
	Symbol      string
	Side        string
	OrderQty    string
}

// BuildOrderCancelRequest creates an OrderCancelRequest (F) message.
func BuildOrderCancelRequest(p CancelOrderParams, ep Endpoint, now time.Time) *quickfix.Message {
	m := newMessage(constants.MsgTypeOrderCancelRequest, ep, now)

	setString(&m.Body, constants.TagClOrdID, p.ClOrdID)
	setString(&m.Body, constants.TagOrigClOrdID, p.OrigClOrdID)
	setString(&m.Body, constants.TagSymbol, p.Symbol)
	setString(&m.Body, constants.TagSide, p.Side)
	setString(&m.Body, constants.TagTransactTime, now.UTC().Format(constants.FixTimeFormat))
	setStringIfNotEmpty(&m.Body, constants.TagOrderQty, p.OrderQty)

	return m
}

// --- Order Cancel/Replace Request (G) ---

// ReplaceOrderParams contains the parameters for amending a working order.
type ReplaceOrderParams struct {
	ClOrdID     string
	OrigClOrdID string
	Symbol      string
	Side        string
	OrdType     string
	OrderQty    string
	Price       string
}

// BuildOrderCancelReplaceRequest creates an OrderCancelReplaceRequest (G)
// message.
func BuildOrderCancelReplaceRequest(p ReplaceOrderParams, ep Endpoint, now time.Time) *quickfix.Message {
	m := newMessage(constants.MsgTypeOrderCancelReplace, ep, now)

	setString(&m.Body, constants.TagClOrdID, p.ClOrdID)
	setString(&m.Body, constants.TagOrigClOrdID, p.OrigClOrdID)
	setString(&m.Body, constants.TagSymbol, p.Symbol)
	setString(&m.Body, constants.TagSide, p.Side)
	setString(&m.Body, constants.TagOrdType, p.OrdType)
	setString(&m.Body, constants.TagTransactTime, now.UTC().Format(constants.FixTimeFormat))
	setStringIfNotEmpty(&m.Body, constants.TagOrderQty, p.OrderQty)
	setStringIfNotEmpty(&m.Body, constants.TagPrice, p.Price)

	return m
}

// --- Order Status Request (H) ---

// BuildOrderStatusRequest creates an OrderStatusRequest (H) message.
func BuildOrderStatusRequest(orderStatusReqID, clOrdID, symbol, side string, ep Endpoint, now time.Time) *quickfix.Message {
	m := newMessage(constants.MsgTypeOrderStatusRequest, ep, now)

	setString(&m.Body, constants.TagOrderStatusReqID, orderStatusReqID)
	setStringIfNotEmpty(&m.Body, constants.TagClOrdID, clOrdID)
	setStringIfNotEmpty(&m.Body, constants.TagSymbol, symbol)
	setStringIfNotEmpty(&m.Body, constants.TagSide, side)

	return m
}

// --- Request For Positions (AN) ---

// BuildRequestForPositions creates a RequestForPositions (AN) message.
func BuildRequestForPositions(posReqID, account string, ep Endpoint, now time.Time) *quickfix.Message {
	m := newMessage(constants.MsgTypeRequestForPositions, ep, now)

	setString(&m.Body, constants.TagPosReqID, posReqID)
	setStringIfNotEmpty(&m.Body, constants.TagAccount, account)
	setString(&m.Body, constants.TagTransactTime, now.UTC().Format(constants.FixTimeFormat))

	return m
}
