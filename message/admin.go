package message

import (
	"github.com/gurre/ctrader-fix/constants"

	"github.com/quickfixgo/quickfix"
)

// SessionReject is the parsed body of a session-level Reject (3).
type SessionReject struct {
	RefSeqNum           string
	RefTagID            string
	RefMsgType          string
	SessionRejectReason string
	Text                string
}

// ParseSessionReject reads a Reject (3) message.
func ParseSessionReject(msg *quickfix.Message) (SessionReject, error) {
	var r SessionReject
	refSeqNum, err := msg.Body.GetString(constants.TagRefSeqNum)
	if err != nil {
		return r, err
	}
	r.RefSeqNum = refSeqNum
	r.RefTagID, _ = msg.Body.GetString(constants.TagRefTagID)
	r.RefMsgType, _ = msg.Body.GetString(constants.TagRefMsgType)
	r.SessionRejectReason, _ = msg.Body.GetString(constants.TagSessionRejectReason)
	r.Text, _ = msg.Body.GetString(constants.TagText)
	return r, nil
}

// BusinessReject is the parsed body of a BusinessMessageReject (j).
type BusinessReject struct {
	RefMsgType           string
	BusinessRejectRefID  string
	BusinessRejectReason string
	Text                 string
}

// ParseBusinessReject reads a BusinessMessageReject (j) message.
func ParseBusinessReject(msg *quickfix.Message) (BusinessReject, error) {
	var r BusinessReject
	refMsgType, err := msg.Body.GetString(constants.TagRefMsgType)
	if err != nil {
		return r, err
	}
	r.RefMsgType = refMsgType
	r.BusinessRejectRefID, _ = msg.Body.GetString(constants.TagBusinessRejectRefID)
	r.BusinessRejectReason, _ = msg.Body.GetString(constants.TagBusinessRejectReason)
	r.Text, _ = msg.Body.GetString(constants.TagText)
	return r, nil
}
