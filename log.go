package tempo

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// NewLogger returns the logger style used by the engine: no timestamps,
// "tempo" prefix, writing to w at the named level ("debug", "info", "warn",
// "error"). An unknown level name falls back to warn.
func NewLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "tempo",
		Level:  parseLevel(level),
	})
}

func parseLevel(level string) log.Level {
	if strings.TrimSpace(level) == "" {
		return log.WarnLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// safeCall runs fn, recovering and logging a panic. what names the callback
// in the log line.
func safeCall(logger *log.Logger, what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("recovered panic", "in", what, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
