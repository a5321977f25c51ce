package engine

import (
	"context"
	"testing"
	"time"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/event"
)

func ticker(symbol string, price float64) *event.TickerEvent {
	ev := event.AcquireTickerEvent()
	ev.Ticker = domain.TickerUpdate{Symbol: symbol, ClosePrice: price}
	return ev
}

func book(symbol string, bid, ask float64) *event.OrderBookEvent {
	return &event.OrderBookEvent{Book: domain.OrderBookSnapshot{
		Symbol: symbol,
		Bids:   []domain.PriceLevel{{Price: bid, Quantity: 1}},
		Asks:   []domain.PriceLevel{{Price: ask, Quantity: 2}},
	}}
}

func TestReduce_TickerDirection(t *testing.T) {
	s := State{}

	steps := []struct {
		price float64
		want  domain.PriceDirection
	}{
		{100, domain.DirectionSame},
		{110, domain.DirectionUp},
		{110, domain.DirectionSame},
		{90, domain.DirectionDown},
	}
	for i, step := range steps {
		var changed bool
		s, changed = Reduce(s, &event.TickerEvent{Ticker: domain.TickerUpdate{Symbol: "BTC_KRW", ClosePrice: step.price}})
		if !changed {
			t.Fatalf("step %d: ticker should change state", i)
		}
		if got := s.Tickers["BTC_KRW"].PriceDirection; got != step.want {
			t.Errorf("step %d: direction = %s; want %s", i, got, step.want)
		}
	}
}

func TestReduce_TickerCopyOnWrite(t *testing.T) {
	s1, _ := Reduce(State{}, &event.TickerEvent{Ticker: domain.TickerUpdate{Symbol: "BTC_KRW", ClosePrice: 1}})
	s2, _ := Reduce(s1, &event.TickerEvent{Ticker: domain.TickerUpdate{Symbol: "ETH_KRW", ClosePrice: 2}})

	if len(s1.Tickers) != 1 {
		t.Errorf("published state mutated: %v", s1.Tickers)
	}
	if len(s2.Tickers) != 2 {
		t.Errorf("expected 2 tickers, got %d", len(s2.Tickers))
	}
}

func TestReduce_OrderBookRequiresSelectedSymbol(t *testing.T) {
	s := State{}

	if _, changed := Reduce(s, book("BTC_KRW", 99, 101)); changed {
		t.Error("book must be ignored while nothing is selected")
	}

	s, _ = Reduce(s, &event.SelectSymbolEvent{Coin: "BTC"})
	if _, changed := Reduce(s, book("ETH_KRW", 1, 2)); changed {
		t.Error("book for another symbol must be ignored")
	}

	s, changed := Reduce(s, book("BTC_KRW", 99, 101))
	if !changed || !s.HasBook {
		t.Fatal("book for the selected symbol must be accepted")
	}
	if s.OrderBook.Asks[0].Price != 101 {
		t.Errorf("unexpected book %+v", s.OrderBook)
	}

	s, _ = Reduce(s, &event.SelectSymbolEvent{Coin: "ETH"})
	if s.HasBook {
		t.Error("switching symbol must drop the previous book")
	}
}

func TestReduce_OrderBookSanitized(t *testing.T) {
	s, _ := Reduce(State{}, &event.SelectSymbolEvent{Coin: "BTC"})
	ev := &event.OrderBookEvent{Book: domain.OrderBookSnapshot{
		Symbol: "BTC_KRW",
		Bids:   []domain.PriceLevel{{Price: -1, Quantity: 1}, {Price: 10, Quantity: 1}},
	}}
	s, _ = Reduce(s, ev)
	if len(s.OrderBook.Bids) != 1 {
		t.Errorf("invalid level should be dropped, got %+v", s.OrderBook.Bids)
	}
	if len(ev.Book.Bids) != 2 {
		t.Error("inbound event must not be mutated")
	}
}

func TestReduce_ConnState(t *testing.T) {
	s := State{Conn: domain.ConnClosed}
	s, changed := Reduce(s, &event.ConnStateEvent{State: domain.ConnOpen})
	if !changed || !s.Connected() {
		t.Fatal("expected connected")
	}
	if _, changed := Reduce(s, &event.ConnStateEvent{State: domain.ConnOpen}); changed {
		t.Error("repeated state should be a no-op")
	}
}

func TestEngine_ApplyAndReads(t *testing.T) {
	var updates []event.Type
	eng := NewEngine(10, func(_ State, typ event.Type) {
		updates = append(updates, typ)
	})

	eng.Apply(&event.SelectSymbolEvent{Coin: "BTC"})
	eng.Apply(ticker("BTC_KRW", 95_000_000))
	eng.Apply(book("ETH_KRW", 1, 2)) // ignored
	eng.Apply(book("BTC_KRW", 94_999_000, 95_001_000))

	if eng.Applied() != 4 {
		t.Errorf("Applied = %d; want 4", eng.Applied())
	}
	if len(updates) != 3 {
		t.Errorf("expected 3 notifications, got %v", updates)
	}
	if eng.Selected() != "BTC" {
		t.Errorf("Selected = %q", eng.Selected())
	}

	tk, ok := eng.Ticker("BTC_KRW")
	if !ok || tk.ClosePrice != 95_000_000 {
		t.Errorf("unexpected ticker %+v", tk)
	}

	snap, ok := eng.OrderBook()
	if !ok {
		t.Fatal("expected a book")
	}
	snap.Asks[0].Price = 0
	again, _ := eng.OrderBook()
	if again.Asks[0].Price != 95_001_000 {
		t.Error("OrderBook must return a copy")
	}

	m := eng.Tickers()
	delete(m, "BTC_KRW")
	if _, ok := eng.Ticker("BTC_KRW"); !ok {
		t.Error("Tickers must return a copy")
	}
}

func TestEngine_TickerSinksSeeDirection(t *testing.T) {
	eng := NewEngine(10, nil)
	var got []domain.TickerUpdate
	eng.AddTickerSink(func(t domain.TickerUpdate) { got = append(got, t) })

	eng.Apply(ticker("BTC_KRW", 100))
	eng.Apply(ticker("BTC_KRW", 101))
	eng.Apply(&event.TickerEvent{}) // no symbol, ignored
	eng.Apply(&event.SelectSymbolEvent{Coin: "BTC"})

	if len(got) != 2 {
		t.Fatalf("expected 2 sunk tickers, got %d", len(got))
	}
	want := []domain.PriceDirection{domain.DirectionSame, domain.DirectionUp}
	for i, tk := range got {
		if tk.Symbol != "BTC_KRW" {
			t.Errorf("ticker %d: symbol = %q", i, tk.Symbol)
		}
		if tk.PriceDirection != want[i] {
			t.Errorf("ticker %d: direction = %q; want %q", i, tk.PriceDirection, want[i])
		}
	}
}

func TestEngine_Run(t *testing.T) {
	updated := make(chan State, 10)
	eng := NewEngine(10, func(s State, _ event.Type) { updated <- s })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	eng.Inbox() <- &event.ConnStateEvent{State: domain.ConnOpen}

	select {
	case s := <-updated:
		if !s.Connected() {
			t.Error("expected connected state")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for state update")
	}

	if !eng.Connected() {
		t.Error("Connected() should be true")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
