package orderbook

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Rand is the random source behind synthetic quantities.
// *rand.Rand satisfies it; tests inject a seeded one.
type Rand interface {
	Float64() float64
}

// quantityBand is a uniform range and its display precision.
type quantityBand struct {
	min, max float64
	decimals int
}

// bandFor mirrors the formatter's magnitude buckets.
func bandFor(price float64) quantityBand {
	switch {
	case price < 1:
		return quantityBand{100, 1_000, 4}
	case price < 10:
		return quantityBand{50, 500, 3}
	case price < 100:
		return quantityBand{10, 100, 2}
	case price < 1_000:
		return quantityBand{1, 50, 2}
	case price < 10_000:
		return quantityBand{0.1, 20, 3}
	default:
		return quantityBand{0.01, 10, 2}
	}
}

// Synthesizer produces filler quantities for ladder levels that have no
// matching entry in the backend book.
type Synthesizer struct {
	mu  sync.Mutex
	rnd Rand
}

// NewSynthesizer wraps r. A nil r uses a time-seeded source.
func NewSynthesizer(r Rand) *Synthesizer {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rnd: r}
}

// NewSeededSynthesizer returns a deterministic synthesizer.
func NewSeededSynthesizer(seed int64) *Synthesizer {
	return NewSynthesizer(rand.New(rand.NewSource(seed)))
}

// Quantity returns a plausible order size for a level at price.
// isAsk and level are accepted so callers can differentiate sides later;
// the distribution currently depends on price only.
func (s *Synthesizer) Quantity(price float64, isAsk bool, level int) float64 {
	_, _ = isAsk, level

	b := bandFor(price)

	s.mu.Lock()
	u := s.rnd.Float64()
	s.mu.Unlock()

	q := b.min + u*(b.max-b.min)
	scale := math.Pow10(b.decimals)
	q = math.Round(q*scale) / scale
	if q < b.min {
		q = b.min
	}
	if q > b.max {
		q = b.max
	}
	return q
}
