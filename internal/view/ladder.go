package view

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/orderbook"
	"pickcoin_go/pkg/quant"
)

// ANSI Color Codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
	clearScreen = "\033[H\033[2J"
)

const barWidth = 24

// Stat is one labelled indicator reading under the ladder.
type Stat struct {
	Label string
	Value float64
	OK    bool
}

// Frame is everything drawn in one refresh.
type Frame struct {
	Symbol    string
	Ticker    domain.TickerUpdate
	HasTicker bool
	Ladder    domain.Ladder
	HasLadder bool
	Source    orderbook.Kind
	Conn      domain.ConnState
	Stats     []Stat
	Note      string
}

// Renderer draws frames as plain text, optionally with ANSI colors.
type Renderer struct {
	w     io.Writer
	color bool
	clear bool
}

// NewRenderer writes to w. clear redraws from the top-left on each frame.
func NewRenderer(w io.Writer, color, clear bool) *Renderer {
	return &Renderer{w: w, color: color, clear: clear}
}

// Render writes one frame.
func (r *Renderer) Render(f Frame) error {
	bw := bufio.NewWriter(r.w)
	if r.clear {
		bw.WriteString(clearScreen)
	}

	fmt.Fprintf(bw, "%s  [%s | %s]\n", f.Symbol, f.Conn, f.Source)
	if f.HasTicker {
		fmt.Fprintf(bw, "%s  %s%%  %s\n",
			r.paint(directionColor(f.Ticker.PriceDirection), quant.FormatPrice(f.Ticker.ClosePrice)),
			signed(f.Ticker.ChgRate),
			quant.FormatPrice(f.Ticker.ChgAmt))
	} else {
		bw.WriteString("waiting for ticker...\n")
	}
	bw.WriteString(strings.Repeat("-", 48) + "\n")

	if f.HasLadder {
		peak := maxQuantity(f.Ladder)
		for _, row := range f.Ladder.Rows() {
			r.writeRow(bw, row, peak)
		}
	} else {
		bw.WriteString("no order book\n")
	}

	if len(f.Stats) > 0 {
		bw.WriteString(strings.Repeat("-", 48) + "\n")
		for _, s := range f.Stats {
			v := "-"
			if s.OK {
				v = fmt.Sprintf("%.2f", s.Value)
			}
			fmt.Fprintf(bw, "%-10s %s\n", s.Label, v)
		}
	}
	if f.Note != "" {
		fmt.Fprintln(bw, r.paint(colorDim, f.Note))
	}
	return bw.Flush()
}

func (r *Renderer) writeRow(w *bufio.Writer, row domain.LadderRow, peak float64) {
	c := colorBlue
	if row.Side == domain.SideAsk {
		c = colorRed
	}

	qty := quant.FormatQuantity(row.AnimatedQuantity, row.Price)
	bar := ""
	if peak > 0 {
		n := int(row.AnimatedQuantity / peak * barWidth)
		if n > barWidth {
			n = barWidth
		}
		bar = strings.Repeat("#", n)
	}

	marker := "  "
	if row.Current {
		marker = "> "
	}
	line := fmt.Sprintf("%s%14s %14s %-*s", marker, row.PriceText, qty, barWidth, bar)
	if row.Current {
		c = colorYellow
	}
	w.WriteString(r.paint(c, line))
	w.WriteByte('\n')
}

func (r *Renderer) paint(c, s string) string {
	if !r.color || c == "" {
		return s
	}
	return c + s + colorReset
}

func maxQuantity(l domain.Ladder) float64 {
	var peak float64
	for _, row := range l.Rows() {
		if row.AnimatedQuantity > peak {
			peak = row.AnimatedQuantity
		}
	}
	return peak
}

func directionColor(d domain.PriceDirection) string {
	switch d {
	case domain.DirectionUp:
		return colorRed
	case domain.DirectionDown:
		return colorBlue
	default:
		return ""
	}
}

func signed(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
