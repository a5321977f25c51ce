package animator

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"pickcoin_go/internal/domain"
)

const (
	// FrameInterval is the sweep period (~60Hz).
	FrameInterval = 16 * time.Millisecond

	// ChangeEpsilon is the smallest target change that triggers a new animation.
	ChangeEpsilon = 0.0001
)

// Duration windows for Sync.
var (
	InitialWindow = [2]time.Duration{3000 * time.Millisecond, 5000 * time.Millisecond}
	UpdateWindow  = [2]time.Duration{2000 * time.Millisecond, 3500 * time.Millisecond}
)

// Clock abstracts time so tests can drive frames.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Rand picks durations inside a window.
type Rand interface {
	Float64() float64
}

// EaseOutCubic maps linear progress p in [0,1] to 1-(1-p)^3.
func EaseOutCubic(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return 1 - math.Pow(1-p, 3)
}

// entry is one key's animation. Entries live in a single map swept per frame.
type entry struct {
	from, to float64
	value    float64
	start    time.Time
	duration time.Duration
	active   bool
}

func (e *entry) step(now time.Time) {
	if !e.active {
		return
	}
	p := float64(now.Sub(e.start)) / float64(e.duration)
	if p >= 1 {
		e.value = e.to
		e.active = false
		return
	}
	e.value = e.from + (e.to-e.from)*EaseOutCubic(p)
}

// Animator interpolates displayed quantities toward their targets.
// A single frame loop drives every key, so cancelling the loop releases
// all pending work at once.
type Animator struct {
	mu      sync.Mutex
	clock   Clock
	rnd     Rand
	entries map[string]*entry
	targets map[string]float64 // last target handed to Sync per key
	closed  bool

	onFrame func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an animator. Nil clock or rnd fall back to wall time and a
// time-seeded source.
func New(clock Clock, rnd Rand) *Animator {
	if clock == nil {
		clock = systemClock{}
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Animator{
		clock:   clock,
		rnd:     rnd,
		entries: make(map[string]*entry),
		targets: make(map[string]float64),
	}
}

// OnFrame registers a callback invoked after each sweep that moved a value.
// Must be set before Run.
func (a *Animator) OnFrame(fn func()) {
	a.onFrame = fn
}

// Animate starts moving key toward target over d. A new key starts from 0,
// an existing key from its displayed value. Any in-flight animation for key
// is replaced.
func (a *Animator) Animate(key string, target float64, d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.animateLocked(key, target, d, a.clock.Now())
}

func (a *Animator) animateLocked(key string, target float64, d time.Duration, now time.Time) {
	if a.closed {
		return
	}

	e, ok := a.entries[key]
	if !ok {
		e = &entry{}
		a.entries[key] = e
	} else {
		// Freeze the current position before retargeting.
		e.step(now)
	}

	e.from = e.value
	e.to = target
	e.start = now
	e.duration = d
	e.active = true

	if d <= 0 {
		e.value = target
		e.active = false
	}
}

// Step advances every active entry to now and returns how many are still moving.
func (a *Animator) Step(now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	active := 0
	for _, e := range a.entries {
		e.step(now)
		if e.active {
			active++
		}
	}
	return active
}

// Value returns the displayed value for key.
func (a *Animator) Value(key string) (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[key]
	if !ok {
		return 0, false
	}
	return e.value, true
}

// Active reports how many keys are mid-animation.
func (a *Animator) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, e := range a.entries {
		if e.active {
			n++
		}
	}
	return n
}

// Sync retargets the animator to a freshly reconciled ladder and writes the
// currently displayed values into each row's AnimatedQuantity.
//
// The first pass after New or Reset animates every row from 0 over
// InitialWindow. Later passes only animate rows whose target moved by more
// than ChangeEpsilon, over UpdateWindow.
func (a *Animator) Sync(ladder *domain.Ladder) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	initial := len(a.targets) == 0

	apply := func(rows []domain.LadderRow) {
		for i := range rows {
			key := rows[i].Key()
			target := rows[i].DisplayQuantity

			prev, seen := a.targets[key]
			switch {
			case initial || !seen:
				a.animateLocked(key, target, a.pick(InitialWindow), now)
				a.targets[key] = target
			case math.Abs(target-prev) > ChangeEpsilon:
				a.animateLocked(key, target, a.pick(UpdateWindow), now)
				a.targets[key] = target
			}

			if e, ok := a.entries[key]; ok {
				e.step(now)
				rows[i].AnimatedQuantity = e.value
			}
		}
	}
	apply(ladder.Asks)
	apply(ladder.Bids)
}

// pick draws a duration uniformly from window. Caller holds mu.
func (a *Animator) pick(window [2]time.Duration) time.Duration {
	span := float64(window[1] - window[0])
	return window[0] + time.Duration(a.rnd.Float64()*span)
}

// Reset drops every entry so the next Sync counts as an initial load.
func (a *Animator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[string]*entry)
	a.targets = make(map[string]float64)
}

// Run drives frames until ctx is cancelled or Close is called.
func (a *Animator) Run(ctx context.Context) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()

		ticker := time.NewTicker(FrameInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				before := a.Active()
				a.Step(a.clock.Now())
				if before > 0 && a.onFrame != nil {
					a.onFrame()
				}
			}
		}
	}()
}

// Close stops the frame loop and releases all entries. Animate and Sync are
// no-ops afterwards.
func (a *Animator) Close() {
	a.mu.Lock()
	a.closed = true
	cancel := a.cancel
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	a.wg.Wait()

	a.mu.Lock()
	a.entries = make(map[string]*entry)
	a.targets = make(map[string]float64)
	a.mu.Unlock()
}
