package tempo

import (
	"time"

	"github.com/charmbracelet/log"
)

// tickStats holds per-frame metrics. Only collected when Config.Debug is set.
type tickStats struct {
	frame    int
	elapsed  time.Duration
	children int
	lazy     int
}

// debugLog reports frame stats at debug level.
func (e *Engine) debugLog(stats tickStats) {
	if !e.cfg.Debug {
		return
	}
	e.log.Debug("tick",
		"frame", stats.frame,
		"render", stats.elapsed,
		"root children", stats.children,
		"lazy flushed", stats.lazy,
		"time", e.root.tTime)
}

// debugCheckTreeDepth warns if an animation is nested deeper than the
// threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(logger *log.Logger, a Animation) {
	depth := 0
	for p := a.Parent(); p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Warn("timeline nesting exceeds threshold", "id", a.ID(), "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a timeline has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(logger *log.Logger, tl *Timeline) {
	if len(tl.children) > debugMaxChildCount {
		logger.Warn("timeline child count exceeds threshold", "id", tl.id, "children", len(tl.children), "threshold", debugMaxChildCount)
	}
}
