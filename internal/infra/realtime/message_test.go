package realtime

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestParseTicker(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		wantErr bool
		price   float64
	}{
		{"flat", `{"type":"ticker","symbol":"BTC_KRW","closePrice":95000000,"chgRate":1.5,"tickType":"24H"}`, false, 95000000},
		{"string numbers", `{"type":"ticker","symbol":"ETH_KRW","closePrice":"4500000.5"}`, false, 4500000.5},
		{"wrapped content", `{"type":"ticker","content":{"symbol":"XRP_KRW","closePrice":812,"tickType":"24H"}}`, false, 812},
		{"other tick type", `{"type":"ticker","symbol":"BTC_KRW","closePrice":1,"tickType":"30M"}`, true, 0},
		{"missing symbol", `{"type":"ticker","closePrice":1}`, true, 0},
		{"non numeric close", `{"type":"ticker","symbol":"BTC_KRW","closePrice":"abc"}`, true, 0},
		{"missing close", `{"type":"ticker","symbol":"BTC_KRW"}`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTicker(gjson.Parse(tt.msg))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v; wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.ClosePrice != tt.price {
				t.Errorf("ClosePrice = %v; want %v", got.ClosePrice, tt.price)
			}
			if !tt.wantErr && got.Timestamp == 0 {
				t.Error("missing timestamp should default to now")
			}
		})
	}
}

func TestParseOrderBook(t *testing.T) {
	msg := `{"type":"orderbook","symbol":"BTC_KRW","timestamp":1700000000000,
		"bids":[{"price":94999000,"quantity":0.5},{"price":"94998000","quantity":"1.25"}],
		"asks":[[95001000,0.3],[95002000],{"price":"x","quantity":1}]}`

	snap, err := parseOrderBook(gjson.Parse(msg))
	if err != nil {
		t.Fatalf("parseOrderBook failed: %v", err)
	}
	if snap.Symbol != "BTC_KRW" {
		t.Errorf("Symbol = %q", snap.Symbol)
	}
	if len(snap.Bids) != 2 || snap.Bids[1].Quantity != 1.25 {
		t.Errorf("unexpected bids %+v", snap.Bids)
	}
	if len(snap.Asks) != 1 || snap.Asks[0].Price != 95001000 {
		t.Errorf("unexpected asks %+v", snap.Asks)
	}
	if snap.Timestamp == nil || *snap.Timestamp != 1700000000000 {
		t.Errorf("unexpected timestamp %v", snap.Timestamp)
	}

	empty, err := parseOrderBook(gjson.Parse(`{"type":"orderbook","symbol":"BTC_KRW"}`))
	if err != nil || !empty.IsEmpty() || empty.Timestamp != nil {
		t.Errorf("expected an empty book, got %+v (%v)", empty, err)
	}
}
