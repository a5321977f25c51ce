package event

import (
	"sync"

	"pickcoin_go/internal/domain"
)

var tickerPool = sync.Pool{
	New: func() any { return new(TickerEvent) },
}

// AcquireTickerEvent returns a zeroed TickerEvent from the pool.
// The engine releases it once applied.
func AcquireTickerEvent() *TickerEvent {
	return tickerPool.Get().(*TickerEvent)
}

// ReleaseTickerEvent resets ev and returns it to the pool.
func ReleaseTickerEvent(ev *TickerEvent) {
	if ev == nil {
		return
	}
	ev.BaseEvent = BaseEvent{}
	ev.Ticker = domain.TickerUpdate{}
	tickerPool.Put(ev)
}
