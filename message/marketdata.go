package message

import (
	"github.com/gurre/ctrader-fix/constants"

	"github.com/quickfixgo/quickfix"
)

// MDEntry is a single level from a MarketDataSnapshotFullRefresh (W).
type MDEntry struct {
	EntryID string
	Type    string // constants.MdEntryTypeBid / MdEntryTypeOffer
	Price   string
	Size    string
}

// MarketDataSnapshot is the parsed body of a MarketDataSnapshotFullRefresh (W).
type MarketDataSnapshot struct {
	MDReqID string
	Symbol  string
	Entries []MDEntry
}

// ParseMarketDataSnapshot reads a MarketDataSnapshotFullRefresh (W) message.
func ParseMarketDataSnapshot(msg *quickfix.Message) (MarketDataSnapshot, error) {
	var snap MarketDataSnapshot

	mdReqID, err := msg.Body.GetString(constants.TagMdReqId)
	if err != nil {
		return snap, err
	}
	snap.MDReqID = mdReqID
	snap.Symbol, _ = msg.Body.GetString(constants.TagSymbol)

	group := quickfix.NewRepeatingGroup(
		constants.TagNoMdEntries,
		quickfix.GroupTemplate{
			quickfix.GroupElement(constants.TagMdEntryType),
			quickfix.GroupElement(constants.TagMdEntryPx),
			quickfix.GroupElement(constants.TagMdEntrySize),
			quickfix.GroupElement(constants.TagMdEntryID),
		},
	)
	if err := msg.Body.GetGroup(group); err != nil {
		// No entries is valid for an empty book snapshot.
		return snap, nil
	}

	snap.Entries = make([]MDEntry, 0, group.Len())
	for i := 0; i < group.Len(); i++ {
		entry := group.Get(i)
		e := MDEntry{}
		e.Type, _ = entry.GetString(constants.TagMdEntryType)
		e.Price, _ = entry.GetString(constants.TagMdEntryPx)
		e.Size, _ = entry.GetString(constants.TagMdEntrySize)
		e.EntryID, _ = entry.GetString(constants.TagMdEntryID)
		snap.Entries = append(snap.Entries, e)
	}
	return snap, nil
}

// MDIncrementalEntry is a single new/change/delete instruction from a
// MarketDataIncrementalRefresh (X).
type MDIncrementalEntry struct {
	UpdateAction string // constants.MdUpdateAction*
	EntryID      string
	Type         string
	Price        string
	Size         string
	Symbol       string
}

// MarketDataIncremental is the parsed body of a MarketDataIncrementalRefresh (X).
type MarketDataIncremental struct {
	MDReqID string
	Entries []MDIncrementalEntry
}

// ParseMarketDataIncremental reads a MarketDataIncrementalRefresh (X) message.
func ParseMarketDataIncremental(msg *quickfix.Message) (MarketDataIncremental, error) {
	var inc MarketDataIncremental
	inc.MDReqID, _ = msg.Body.GetString(constants.TagMdReqId)

	group := quickfix.NewRepeatingGroup(
		constants.TagNoMdEntries,
		quickfix.GroupTemplate{
			quickfix.GroupElement(constants.TagMdUpdateAction),
			quickfix.GroupElement(constants.TagMdEntryID),
			quickfix.GroupElement(constants.TagMdEntryType),
			quickfix.GroupElement(constants.TagMdEntryPx),
			quickfix.GroupElement(constants.TagMdEntrySize),
			quickfix.GroupElement(constants.TagSymbol),
		},
	)
	if err := msg.Body.GetGroup(group); err != nil {
		return inc, err
	}

	inc.Entries = make([]MDIncrementalEntry, 0, group.Len())
	for i := 0; i < group.Len(); i++ {
		entry := group.Get(i)
		e := MDIncrementalEntry{}
		e.UpdateAction, _ = entry.GetString(constants.TagMdUpdateAction)
		e.EntryID, _ = entry.GetString(constants.TagMdEntryID)
		e.Type, _ = entry.GetString(constants.TagMdEntryType)
		e.Price, _ = entry.GetString(constants.TagMdEntryPx)
		e.Size, _ = entry.GetString(constants.TagMdEntrySize)
		e.Symbol, _ = entry.GetString(constants.TagSymbol)
		inc.Entries = append(inc.Entries, e)
	}
	return inc, nil
}

// MarketDataReject is the parsed body of a MarketDataRequestReject (Y).
type MarketDataReject struct {
	MDReqID      string
	RejectReason string
	Text         string
}

// ParseMarketDataReject reads a MarketDataRequestReject (Y) message.
func ParseMarketDataReject(msg *quickfix.Message) (MarketDataReject, error) {
	var rej MarketDataReject
	mdReqID, err := msg.Body.GetString(constants.TagMdReqId)
	if err != nil {
		return rej, err
	}
	rej.MDReqID = mdReqID
	rej.RejectReason, _ = msg.Body.GetString(constants.TagMdReqRejReason)
	rej.Text, _ = msg.Body.GetString(constants.TagText)
	return rej, nil
}

// SecurityListResponse is the parsed body of a SecurityListResponse (y).
type SecurityListResponse struct {
	SecurityReqID string
	Symbols       []string
}

// ParseSecurityListResponse reads a SecurityListResponse (y) message.
func ParseSecurityListResponse(msg *quickfix.Message) (SecurityListResponse, error) {
	var resp SecurityListResponse
	secReqID, err := msg.Body.GetString(constants.TagSecurityReqID)
	if err != nil {
		return resp, err
	}
	resp.SecurityReqID = secReqID

	group := quickfix.NewRepeatingGroup(
		constants.TagNoRelatedSym,
		quickfix.GroupTemplate{quickfix.GroupElement(constants.TagSymbol)},
	)
	if err := msg.Body.GetGroup(group); err != nil {
		return resp, nil
	}
	resp.Symbols = make([]string, 0, group.Len())
	for i := 0; i < group.Len(); i++ {
		sym, _ := group.Get(i).GetString(constants.TagSymbol)
		resp.Symbols = append(resp.Symbols, sym)
	}
	return resp, nil
}
