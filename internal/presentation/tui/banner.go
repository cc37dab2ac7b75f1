package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the startup banner with the running version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Amber-to-red gradient, the warm glow of a transmitter rack.
	lines := []struct {
		text  string
		color string
	}{
		{"  ___  _ __   ___ _ __   __ _(_)_ __ ", "#fbbf24"},
		{" / _ \\| '_ \\ / _ \\ '_ \\ / _` | | '__|", "#f59e0b"},
		{"| (_) | |_) |  __/ | | | (_| | | |   ", "#f97316"},
		{" \\___/| .__/ \\___|_| |_|\\__,_|_|_|   ", "#ef4444"},
		{"      |_|                            ", "#dc2626"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Printf("  control panel %s\n\n", strings.TrimSpace(version))
}
