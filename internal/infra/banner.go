package infra

import (
	"fmt"
	"io"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with mode-specific warnings
func PrintBanner(w io.Writer, cfg *Config) {
	mode := cfg.Trading.Mode

	color := ColorCyan
	modeDesc := "MOCK FILLS (NO ORDERS SENT)"
	if mode == ModeLive {
		color = ColorRed
		modeDesc = "LIVE ORDERS TO BACKEND"
	}

	line := func(format string, args ...any) {
		fmt.Fprintf(w, "%s"+format+"%s\n", append(append([]any{color}, args...), ColorReset)...)
	}

	fmt.Fprintln(w)
	line("###########################################################")
	line("#                                                         #")
	line("#               📈 PickCoin Trading View                  #")
	line("#                                                         #")
	line("#   MODE:    %-36s #", mode)
	line("#   TYPE:    %-36s #", modeDesc)
	line("#   VERSION: %-36s #", cfg.App.Version)
	line("#   MARKET:  %-36s #", cfg.Market.Selected+"_KRW")
	line("#                                                         #")
	if mode == ModeLive {
		fmt.Fprintf(w, "%s#   ⚠️  WARNING: MARKET ORDERS ARE SENT TO THE BACKEND  ⚠️ #%s\n", ColorRed, ColorReset)
	}
	line("###########################################################")
	fmt.Fprintln(w)
}
