package orderbook

import (
	"errors"
	"math"

	"pickcoin_go/internal/domain"
	"pickcoin_go/pkg/quant"
)

// ErrInvalidReferencePrice is returned when the reference price is not a
// positive finite number.
var ErrInvalidReferencePrice = errors.New("reference price must be positive and finite")

// QuantitySource fills levels without a real book match.
type QuantitySource interface {
	Quantity(price float64, isAsk bool, level int) float64
}

// Reconcile builds the fixed-depth ladder around referencePrice.
//
// Asks run from ref+10*tick down to ref+tick, bids from ref down to
// ref-9*tick. Each level takes the quantity of the snapshot entry within
// MatchTolerance(tick) of its price, or a synthetic quantity otherwise.
// A snapshot level backs at most one row; bids clamped to the tick floor
// after the first are synthetic.
func Reconcile(snap domain.OrderBookSnapshot, referencePrice float64, synth QuantitySource) (domain.Ladder, error) {
	if math.IsNaN(referencePrice) || math.IsInf(referencePrice, 0) || referencePrice <= 0 {
		return domain.Ladder{}, ErrInvalidReferencePrice
	}

	tick := quant.TickSize(referencePrice)
	tol := quant.MatchTolerance(tick)
	// ref itself need not sit on a tick boundary; keep a few digits past it.
	decimals := quant.TickDecimals(tick) + 4

	asks := newLevelIndex(snap.Asks)
	bids := newLevelIndex(snap.Bids)
	askUsed := make(map[float64]bool)
	bidUsed := make(map[float64]bool)

	ladder := domain.Ladder{
		ReferencePrice: referencePrice,
		Tick:           tick,
		Asks:           make([]domain.LadderRow, 0, domain.LadderDepth),
		Bids:           make([]domain.LadderRow, 0, domain.LadderDepth),
	}

	for i := domain.LadderDepth; i >= 1; i-- {
		price := roundTo(referencePrice+float64(i)*tick, decimals)
		ladder.Asks = append(ladder.Asks, buildRow(domain.SideAsk, i, price, tol, asks, askUsed, synth))
	}

	for i := 0; i < domain.LadderDepth; i++ {
		price := roundTo(referencePrice-float64(i)*tick, decimals)
		if price <= 0 {
			price = tick
		}
		row := buildRow(domain.SideBid, i, price, tol, bids, bidUsed, synth)
		row.Current = i == 0
		ladder.Bids = append(ladder.Bids, row)
	}

	return ladder, nil
}

func buildRow(side domain.Side, i int, price, tol float64, ix *levelIndex, used map[float64]bool, synth QuantitySource) domain.LadderRow {
	row := domain.LadderRow{Side: side, Index: i, Price: price}

	if l, ok := ix.Nearest(price, tol); ok && !used[l.Price] {
		used[l.Price] = true
		row.DisplayQuantity = l.Quantity
	} else {
		row.DisplayQuantity = synth.Quantity(price, side == domain.SideAsk, i)
		row.Synthetic = true
	}

	row.PriceText = quant.FormatPrice(price)
	row.QuantityText = quant.FormatQuantity(row.DisplayQuantity, price)
	return row
}

// roundTo trims float drift from ref +/- i*tick.
func roundTo(v float64, decimals int32) float64 {
	scale := math.Pow10(int(decimals))
	return math.Round(v*scale) / scale
}
