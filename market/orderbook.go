// Package market implements the Market channel facade: connect/logon,
// spot and depth subscriptions, cached quotes, and the order book
// maintained from snapshot/incremental refreshes.
//
// Grounded on the teacher's TradeStore (fixclient/tradestore.go) for the
// mutex/map shape, generalized from a flat trade ring buffer to a
// two-sided, price-ordered book.
package market

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/gurre/ctrader-fix/constants"
	"github.com/gurre/ctrader-fix/message"
)

// BookLevel is a single price level in an OrderBook.
type BookLevel struct {
	EntryID string
	Price   decimal.Decimal
	Size    decimal.Decimal
}

// OrderBook holds two ordered sequences of BookLevel per the data model:
// bids descending by price, asks ascending by price. Entry ids are unique
// within a book; mutated only through ApplySnapshot and ApplyIncremental.
type OrderBook struct {
	mu   sync.RWMutex
	bids []BookLevel
	asks []BookLevel
}

// NewOrderBook returns an empty book.
func NewOrderBook() *OrderBook {
	return &OrderBook{}
}

// Bids returns a defensive copy of the bid side, best (highest) first.
func (b *OrderBook) Bids() []BookLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]BookLevel(nil), b.bids...)
}

// Asks returns a defensive copy of the ask side, best (lowest) first.
func (b *OrderBook) Asks() []BookLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]BookLevel(nil), b.asks...)
}

// ApplySnapshot replaces the book contents wholesale, per
// MarketDataSnapshotFullRefresh semantics.
func (b *OrderBook) ApplySnapshot(entries []message.MDEntry) error {
	var bids, asks []BookLevel
	for _, e := range entries {
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			continue
		}
		size, err := decimal.NewFromString(e.Size)
		if err != nil {
			continue
		}
		level := BookLevel{EntryID: e.EntryID, Price: price, Size: size}
		switch e.Type {
		case constants.MdEntryTypeBid:
			bids = append(bids, level)
		case constants.MdEntryTypeOffer:
			asks = append(asks, level)
		}
	}
	sortBids(bids)
	sortAsks(asks)

	b.mu.Lock()
	b.bids = bids
	b.asks = asks
	b.mu.Unlock()
	return nil
}

// ApplyIncremental mutates the book by new/change/delete instructions
// keyed by md_entry_id, preserving the uniqueness and per-side monotonic
// ordering invariant after every mutation.
func (b *OrderBook) ApplyIncremental(entries []message.MDIncrementalEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range entries {
		switch e.UpdateAction {
		case constants.MdUpdateActionDelete:
			b.removeEntry(e.EntryID)
		case constants.MdUpdateActionNew, constants.MdUpdateActionChange:
			price, err := decimal.NewFromString(e.Price)
			if err != nil {
				continue
			}
			size, err := decimal.NewFromString(e.Size)
			if err != nil {
				continue
			}
			b.removeEntry(e.EntryID)
			level := BookLevel{EntryID: e.EntryID, Price: price, Size: size}
			switch e.Type {
			case constants.MdEntryTypeBid:
				b.bids = append(b.bids, level)
				sortBids(b.bids)
			case constants.MdEntryTypeOffer:
				b.asks = append(b.asks, level)
				sortAsks(b.asks)
			}
		}
	}
	return nil
}

// removeEntry deletes an entry id from whichever side it is on. Caller
// must hold b.mu.
func (b *OrderBook) removeEntry(entryID string) {
	b.bids = removeByID(b.bids, entryID)
	b.asks = removeByID(b.asks, entryID)
}

func removeByID(levels []BookLevel, entryID string) []BookLevel {
	for i, l := range levels {
		if l.EntryID == entryID {
			return append(levels[:i], levels[i+1:]...)
		}
	}
	return levels
}

func sortBids(levels []BookLevel) {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price.GreaterThan(levels[j].Price) })
}

func sortAsks(levels []BookLevel) {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price.LessThan(levels[j].Price) })
}

// BestBidAsk returns the top-of-book bid and ask prices. ok is false if
// either side is empty (no snapshot received yet).
func (b *OrderBook) BestBidAsk() (bid, ask decimal.Decimal, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.bids) == 0 || len(b.asks) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	return b.bids[0].Price, b.asks[0].Price, true
}
