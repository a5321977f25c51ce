package domain

import (
	"math"
	"testing"
)

func TestOrderBookSnapshot_Sanitize(t *testing.T) {
	snap := OrderBookSnapshot{
		Bids: []PriceLevel{{100, 5}, {0, 1}, {-3, 2}, {99, -1}, {98, math.Inf(1)}},
		Asks: []PriceLevel{{101, 3}, {math.NaN(), 1}, {math.Inf(1), 1}, {102, math.NaN()}},
	}

	clean := snap.Sanitize()
	if len(clean.Bids) != 1 || clean.Bids[0].Price != 100 {
		t.Errorf("unexpected bids after sanitize: %+v", clean.Bids)
	}
	if len(clean.Asks) != 1 || clean.Asks[0].Price != 101 {
		t.Errorf("unexpected asks after sanitize: %+v", clean.Asks)
	}
	// Source must not be rewritten in place.
	if snap.Bids[1].Price != 0 {
		t.Error("Sanitize mutated the source slice")
	}
}

func TestPriceLevel_ValidRejectsNonFinite(t *testing.T) {
	cases := []PriceLevel{
		{math.NaN(), 1},
		{math.Inf(1), 1},
		{1, math.NaN()},
		{1, math.Inf(1)},
		{1, math.Inf(-1)},
	}
	for _, l := range cases {
		if l.Valid() {
			t.Errorf("%+v should be invalid", l)
		}
	}
	if !(PriceLevel{1, 0}).Valid() {
		t.Error("zero quantity is a valid level")
	}
}

func TestOrderBookSnapshot_Clone(t *testing.T) {
	ts := int64(1704067200000)
	snap := OrderBookSnapshot{Symbol: "BTC_KRW", Bids: []PriceLevel{{100, 5}}, Timestamp: &ts}

	c := snap.Clone()
	c.Bids[0].Quantity = 9
	*c.Timestamp = 0

	if snap.Bids[0].Quantity != 5 || *snap.Timestamp != ts {
		t.Error("Clone shares memory with the original")
	}
	if !(&OrderBookSnapshot{}).IsEmpty() {
		t.Error("zero snapshot should be empty")
	}
}

func TestLadderRowKey(t *testing.T) {
	r := LadderRow{Side: SideAsk, Index: 3}
	if r.Key() != "ask-3" {
		t.Errorf("expected ask-3, got %s", r.Key())
	}
	if MarketSymbol("ETH") != "ETH_KRW" {
		t.Errorf("unexpected market symbol %s", MarketSymbol("ETH"))
	}
}
