package indicator

import "pickcoin_go/internal/domain"

// CrossKind marks a moving-average crossover.
type CrossKind string

const (
	GoldenCross CrossKind = "GOLDEN" // short SMA crosses above long
	DeadCross   CrossKind = "DEAD"   // short SMA crosses below long
)

// CrossSignal is a chart marker at the candle where the cross happened.
type CrossSignal struct {
	Time  int64     `json:"time"`
	Kind  CrossKind `json:"kind"`
	Price float64   `json:"price"`
}

// CrossDetector tracks a short/long SMA pair over a price stream.
// It keeps a ring buffer of the long window and a running sum, so each
// Push is O(short).
type CrossDetector struct {
	shortPeriod int
	longPeriod  int

	prices []float64
	head   int // next write position
	count  int
	sum    float64

	prevShort, prevLong float64
	primed              bool
}

// NewCrossDetector creates a detector. It panics when shortPeriod is not
// below longPeriod or either is non-positive.
func NewCrossDetector(shortPeriod, longPeriod int) *CrossDetector {
	if shortPeriod <= 0 || shortPeriod >= longPeriod {
		panic("CrossDetector: need 0 < shortPeriod < longPeriod")
	}
	return &CrossDetector{
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		prices:      make([]float64, longPeriod),
	}
}

// Push feeds the next close and reports a cross if one happened on it.
func (d *CrossDetector) Push(price float64) (CrossKind, bool) {
	if d.count == d.longPeriod {
		d.sum -= d.prices[d.head] // head holds the oldest value when full
	}
	d.prices[d.head] = price
	d.sum += price
	d.head = (d.head + 1) % d.longPeriod
	if d.count < d.longPeriod {
		d.count++
	}

	if d.count < d.longPeriod {
		return "", false
	}

	long := d.sum / float64(d.longPeriod)
	short := d.shortSMA()

	var (
		kind  CrossKind
		cross bool
	)
	if d.primed {
		switch {
		case d.prevShort <= d.prevLong && short > long:
			kind, cross = GoldenCross, true
		case d.prevShort >= d.prevLong && short < long:
			kind, cross = DeadCross, true
		}
	}

	d.prevShort, d.prevLong, d.primed = short, long, true
	return kind, cross
}

// shortSMA walks backwards from the latest value.
func (d *CrossDetector) shortSMA() float64 {
	sum := 0.0
	idx := d.head
	for i := 0; i < d.shortPeriod; i++ {
		idx--
		if idx < 0 {
			idx = d.longPeriod - 1
		}
		sum += d.prices[idx]
	}
	return sum / float64(d.shortPeriod)
}

// CrossSignals runs a fresh detector over the candle closes.
func CrossSignals(data []domain.Candle, shortPeriod, longPeriod int) []CrossSignal {
	if shortPeriod <= 0 || shortPeriod >= longPeriod {
		return nil
	}

	d := NewCrossDetector(shortPeriod, longPeriod)
	var out []CrossSignal
	for _, c := range data {
		if kind, ok := d.Push(c.Close); ok {
			out = append(out, CrossSignal{Time: c.Time, Kind: kind, Price: c.Close})
		}
	}
	return out
}
