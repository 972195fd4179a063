// Package constants defines the cTrader FIX 4.4 tag and value dictionary
// used across the session, message, market and trade packages.
package constants

import "github.com/quickfixgo/quickfix"

// --- Message Types ---
const (
	// Admin messages
	MsgTypeLogon          = "A"
	MsgTypeLogout         = "5"
	MsgTypeHeartbeat      = "0"
	MsgTypeTestRequest    = "1"
	MsgTypeResendRequest  = "2"
	MsgTypeReject         = "3"
	MsgTypeSequenceReset  = "4"
	MsgTypeBusinessReject = "j"

	// Market data messages
	MsgTypeMarketDataRequest     = "V"
	MsgTypeMarketDataSnapshot    = "W"
	MsgTypeMarketDataIncremental = "X"
	MsgTypeMarketDataReject      = "Y"

	// Security discovery
	MsgTypeSecurityListRequest  = "x"
	MsgTypeSecurityListResponse = "y"

	// Order entry
	MsgTypeNewOrderSingle     = "D"
	MsgTypeOrderCancelRequest = "F"
	MsgTypeOrderCancelReplace = "G"
	MsgTypeOrderStatusRequest = "H"
	MsgTypeExecutionReport    = "8"
	MsgTypeOrderCancelReject  = "9"

	// Position management
	MsgTypeRequestForPositions = "AN"
	MsgTypePositionReport      = "AP"
)

// --- Protocol constants ---
const (
	FixTimeFormat      = "20060102-15:04:05.000"
	FixBeginString     = "FIX.4.4"
	EncryptMethodNone  = "0"
	ResetSeqNumFlagYes = "Y"
	TargetCompIDServer = "cServer"
	SenderSubIDQuote   = "QUOTE"
	SenderSubIDTrade   = "TRADE"
	MsgSeqNumInit      = "1"
)

// --- Subscription request types (tag 263) ---
const (
	SubscriptionRequestTypeSnapshot    = "0"
	SubscriptionRequestTypeSubscribe   = "1"
	SubscriptionRequestTypeUnsubscribe = "2"
)

// --- MD entry types (tag 269) ---
const (
	MdEntryTypeBid   = "0"
	MdEntryTypeOffer = "1"
)

// --- MD update types (tag 265) ---
const (
	MdUpdateTypeFullRefresh = "0"
	MdUpdateTypeIncremental = "1"
)

// --- MD update actions (tag 279, incremental refresh entries) ---
const (
	MdUpdateActionNew    = "0"
	MdUpdateActionChange = "1"
	MdUpdateActionDelete = "2"
)

// --- Order types (tag 40) ---
const (
	OrdTypeMarket = "1"
	OrdTypeLimit  = "2"
	OrdTypeStop   = "3"
)

// --- Side (tag 54) ---
const (
	SideBuy  = "1"
	SideSell = "2"
)

// --- Time in force (tag 59) ---
const (
	TimeInForceGTC = "1"
	TimeInForceIOC = "3"
	TimeInForceFOK = "4"
)

// --- Order status (tag 39) ---
const (
	OrdStatusNew             = "0"
	OrdStatusPartiallyFilled = "1"
	OrdStatusFilled          = "2"
	OrdStatusCanceled        = "4"
	OrdStatusReplaced        = "5"
	OrdStatusPendingCancel   = "6"
	OrdStatusRejected        = "8"
	OrdStatusPendingNew      = "A"
	OrdStatusPendingReplace  = "E"
)

// --- Execution type (tag 150) ---
const (
	ExecTypeNew      = "0"
	ExecTypeCanceled = "4"
	ExecTypeReplaced = "5"
	ExecTypeRejected = "8"
	ExecTypeTrade    = "F"
)

// --- Order reject reason (tag 103) ---
const (
	OrdRejReasonUnknownSymbol  = "1"
	OrdRejReasonExchangeClosed = "2"
	OrdRejReasonExceedsLimit   = "3"
	OrdRejReasonTooLate        = "4"
	OrdRejReasonOther          = "99"
)

// --- Cancel reject response to (tag 434) ---
const (
	CxlRejResponseToCancel  = "1"
	CxlRejResponseToReplace = "2"
)

// --- Session reject reason (tag 373) ---
const (
	SessionRejectReasonInvalidTag         = "0"
	SessionRejectReasonRequiredTagMissing = "1"
	SessionRejectReasonInvalidMsgType     = "11"
)

// --- Business reject reason (tag 380) ---
const (
	BusinessRejectReasonUnknownID          = "1"
	BusinessRejectReasonUnknownSecurity    = "2"
	BusinessRejectReasonUnsupportedMsgType = "3"
)

// --- Market data request reject reason (tag 281) ---
const (
	MdReqRejReasonUnknownSymbol              = "0"
	MdReqRejReasonDuplicateMdReqId           = "1"
	MdReqRejReasonInsufficientBandwidth      = "2"
	MdReqRejReasonInsufficientPermission     = "3"
	MdReqRejReasonInvalidSubscriptionReqType = "4"
	MdReqRejReasonInvalidMarketDepth         = "5"
	MdReqRejReasonUnsupportedMdUpdateType    = "6"
	MdReqRejReasonOther                      = "7"
	MdReqRejReasonUnsupportedMdEntryType     = "8"
)

// --- Security list request type (tag 559) ---
const (
	SecurityListRequestTypeAllSecurities = "0"
)

// --- Standard FIX tags ---
var (
	TagBeginString     = quickfix.Tag(8)
	TagBodyLength      = quickfix.Tag(9)
	TagCheckSum        = quickfix.Tag(10)
	TagAccount         = quickfix.Tag(1)
	TagAvgPx           = quickfix.Tag(6)
	TagClOrdID         = quickfix.Tag(11)
	TagCumQty          = quickfix.Tag(14)
	TagEncryptMethod   = quickfix.Tag(98)
	TagExecID          = quickfix.Tag(17)
	TagExecType        = quickfix.Tag(150)
	TagHeartBtInt      = quickfix.Tag(108)
	TagLastPx          = quickfix.Tag(31)
	TagLastShares      = quickfix.Tag(32)
	TagLeavesQty       = quickfix.Tag(151)
	TagMsgSeqNum       = quickfix.Tag(34)
	TagMsgType         = quickfix.Tag(35)
	TagOrderID         = quickfix.Tag(37)
	TagOrderQty        = quickfix.Tag(38)
	TagOrdRejReason    = quickfix.Tag(103)
	TagOrdStatus       = quickfix.Tag(39)
	TagOrdType         = quickfix.Tag(40)
	TagOrigClOrdID     = quickfix.Tag(41)
	TagPassword        = quickfix.Tag(554)
	TagPrice           = quickfix.Tag(44)
	TagRefSeqNum       = quickfix.Tag(45)
	TagResetSeqNumFlag = quickfix.Tag(141)
	TagSecurityReqID   = quickfix.Tag(320)
	TagSecurityListReqType = quickfix.Tag(559)
	TagSenderCompId    = quickfix.Tag(49)
	TagSenderSubID     = quickfix.Tag(50)
	TagSendingTime     = quickfix.Tag(52)
	TagSide            = quickfix.Tag(54)
	TagStopPx          = quickfix.Tag(99)
	TagSymbol          = quickfix.Tag(55)
	TagTargetCompId    = quickfix.Tag(56)
	TagTargetSubID     = quickfix.Tag(57)
	TagTestReqID       = quickfix.Tag(112)
	TagText            = quickfix.Tag(58)
	TagTimeInForce     = quickfix.Tag(59)
	TagTransactTime    = quickfix.Tag(60)
	TagUsername        = quickfix.Tag(553)

	// Market data tags
	TagMdReqId                 = quickfix.Tag(262)
	TagSubscriptionRequestType = quickfix.Tag(263)
	TagMarketDepth             = quickfix.Tag(264)
	TagMdUpdateType            = quickfix.Tag(265)
	TagNoMdEntryTypes          = quickfix.Tag(267)
	TagNoMdEntries             = quickfix.Tag(268)
	TagMdEntryType             = quickfix.Tag(269)
	TagMdEntryPx               = quickfix.Tag(270)
	TagMdEntrySize             = quickfix.Tag(271)
	TagMdEntryID               = quickfix.Tag(278)
	TagMdUpdateAction          = quickfix.Tag(279)
	TagMdReqRejReason          = quickfix.Tag(281)
	TagNoRelatedSym            = quickfix.Tag(146)

	// Cancel reject tags
	TagCxlRejReason     = quickfix.Tag(102)
	TagCxlRejResponseTo = quickfix.Tag(434)

	// Reject tags
	TagRefTagID             = quickfix.Tag(371)
	TagRefMsgType           = quickfix.Tag(372)
	TagSessionRejectReason  = quickfix.Tag(373)
	TagBusinessRejectRefID  = quickfix.Tag(379)
	TagBusinessRejectReason = quickfix.Tag(380)

	// Position tags
	TagPosReqID      = quickfix.Tag(710)
	TagPosMaintRptID = quickfix.Tag(721)
	TagLongQty       = quickfix.Tag(704)
	TagShortQty      = quickfix.Tag(705)

	// Order status tag
	TagOrderStatusReqID = quickfix.Tag(790)
)
