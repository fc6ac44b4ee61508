package cmd

import (
	"os"

	"github.com/muesli/termenv"
)

// out carries the detected color profile for plain (non-TUI) output.
// termenv honors NO_COLOR and TERM=dumb on its own.
var out = termenv.NewOutput(os.Stdout)

func bold(s string) string {
	return out.String(s).Bold().String()
}

func dim(s string) string {
	return out.String(s).Faint().String()
}

func green(s string) string {
	return out.String(s).Foreground(termenv.ANSIGreen).String()
}

func yellow(s string) string {
	return out.String(s).Foreground(termenv.ANSIYellow).String()
}
