package indicator_test

import (
	"testing"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/indicator"
)

func TestCrossDetector(t *testing.T) {
	// Setup: Short=3, Long=5
	d := indicator.NewCrossDetector(3, 5)

	// T1-T5: all 100, no signal while filling or flat.
	for i := 0; i < 5; i++ {
		if kind, ok := d.Push(100); ok {
			t.Errorf("T%d: expected no signal, got %s", i+1, kind)
		}
	}

	// T6: 200 -> Short(3)=133.3 > Long(5)=120 => GOLDEN
	kind, ok := d.Push(200)
	if !ok || kind != indicator.GoldenCross {
		t.Fatalf("T6: expected GOLDEN, got %q (%v)", kind, ok)
	}

	// T7: 50 -> Short=116.7, Long=110, still above.
	if kind, ok := d.Push(50); ok {
		t.Errorf("T7: expected no signal, got %s", kind)
	}

	// T8: 0 -> Short=83.3 < Long=90 => DEAD
	kind, ok = d.Push(0)
	if !ok || kind != indicator.DeadCross {
		t.Fatalf("T8: expected DEAD, got %q (%v)", kind, ok)
	}
}

func TestCrossSignals(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 200, 50, 0}
	candles := make([]domain.Candle, len(closes))
	for i, c := range closes {
		candles[i] = domain.Candle{Time: int64(i * 60), Open: c, High: c, Low: c, Close: c}
	}

	signals := indicator.CrossSignals(candles, 3, 5)
	if len(signals) != 2 {
		t.Fatalf("expected 2 signals, got %+v", signals)
	}
	if signals[0].Kind != indicator.GoldenCross || signals[0].Time != 300 {
		t.Errorf("unexpected first signal %+v", signals[0])
	}
	if signals[1].Kind != indicator.DeadCross || signals[1].Price != 0 {
		t.Errorf("unexpected second signal %+v", signals[1])
	}

	if indicator.CrossSignals(candles, 5, 3) != nil {
		t.Error("invalid periods should yield nil")
	}
}
