// Package logging builds the logr.Logger threaded through every component.
//
// Output goes through log/slog: a text handler when writing to a terminal,
// JSON otherwise. logr verbosity V(n) maps to slog level -n, so --verbose
// (V(1)) and --debug (V(2)) only lower the handler's minimum level.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
)

// Format selects the handler.
type Format string

const (
	// FormatAuto picks text when the writer is a terminal and JSON otherwise.
	FormatAuto Format = ""
	// FormatText writes human-readable key=value lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// Options configures New.
type Options struct {
	Verbose bool
	Debug   bool
	Format  Format
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger writing to opts.Writer.
func New(opts Options) logr.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: Level(opts.Verbose, opts.Debug)}

	var handler slog.Handler
	if resolveFormat(opts.Format, w) == FormatJSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return logr.FromSlogHandler(handler)
}

// Level returns the minimum slog level for the given switches.
func Level(verbose, debug bool) slog.Level {
	switch {
	case debug:
		return slog.Level(-2)
	case verbose:
		return slog.Level(-1)
	default:
		return slog.LevelInfo
	}
}

func resolveFormat(format Format, w io.Writer) Format {
	if format != FormatAuto {
		return format
	}
	if IsTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
