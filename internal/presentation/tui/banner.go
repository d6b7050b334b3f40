package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cinegraph banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"   ___ _                                 _    ", "#fbbf24"},
		{"  / __(_)_ _  ___ __ _ _ _ __ _ _ __ | |_  ", "#f59e0b"},
		{" | (__| | ' \\/ -_) _` | '_/ _` | '_ \\| ' \\ ", "#f97316"},
		{"  \\___|_|_||_\\___\\__, |_| \\__,_| .__/|_||_|", "#ef4444"},
		{"                 |___/         |_|          ", "#dc2626"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  blog di cinema · v"+version).Faint())
	fmt.Fprintln(w)
}
