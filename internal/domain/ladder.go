package domain

import "strconv"

// LadderDepth is the number of rows shown on each side of the ladder.
const LadderDepth = 10

// LadderRow is one rendered price row. Recomputed on every reconciliation.
type LadderRow struct {
	Side             Side    `json:"side"`
	Index            int     `json:"index"`
	Price            float64 `json:"price"`
	DisplayQuantity  float64 `json:"displayQuantity"`  // reconciled target
	AnimatedQuantity float64 `json:"animatedQuantity"` // value currently shown
	PriceText        string  `json:"priceText"`
	QuantityText     string  `json:"quantityText"`
	Synthetic        bool    `json:"synthetic"`
	Current          bool    `json:"current"` // bid row at the reference price
}

// Key identifies the row for animation ("ask-3", "bid-0").
func (r LadderRow) Key() string {
	return RowKey(r.Side, r.Index)
}

// RowKey builds the animation key for a side and level index.
func RowKey(side Side, index int) string {
	return string(side) + "-" + strconv.Itoa(index)
}

// Ladder holds both sides. Asks are ordered highest price first, bids
// highest first, so Asks followed by Bids reads top to bottom.
type Ladder struct {
	ReferencePrice float64     `json:"referencePrice"`
	Tick           float64     `json:"tick"`
	Asks           []LadderRow `json:"asks"`
	Bids           []LadderRow `json:"bids"`
}

// Rows returns asks then bids.
func (l *Ladder) Rows() []LadderRow {
	out := make([]LadderRow, 0, len(l.Asks)+len(l.Bids))
	out = append(out, l.Asks...)
	return append(out, l.Bids...)
}
