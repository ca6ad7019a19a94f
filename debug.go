package aspen

import (
	"log/slog"
	"time"
)

// FrameStats summarizes one Scene.Update. Observers registered with
// OnFrame receive a copy after every frame.
type FrameStats struct {
	Frame     uint64
	Passes    int
	Events    int
	Handlers  int
	Pending   int
	Restyles  int
	Relayouts int
	Redraws   int
	Entities  int
	Animating bool

	UpdateTime time.Duration
	DrawTime   time.Duration
	Painted    int
}

// debugLog writes per-frame stats at debug level.
func (s *Scene) debugLog(stats FrameStats) {
	if !s.debug {
		return
	}
	logger().Debug("frame",
		"frame", stats.Frame,
		"passes", stats.Passes,
		"events", stats.Events,
		"handlers", stats.Handlers,
		"pending", stats.Pending,
		"entities", stats.Entities,
		"animating", stats.Animating,
		"update", stats.UpdateTime)
}

// globalDebug mirrors the most recently set Scene debug flag so hierarchy
// operations, which have no Scene pointer, can check it cheaply. Only
// valid with a single Scene.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings are logged, the hierarchy is validated after every
// flush, and per-frame stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	if enabled {
		logLevel.Set(slog.LevelDebug)
	} else {
		logLevel.Set(slog.LevelWarn)
	}
}

const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if e sits deeper than debugMaxTreeDepth.
func debugCheckTreeDepth(h *Hierarchy, e Entity) {
	if depth := h.Depth(e); depth > debugMaxTreeDepth {
		logger().Warn("tree depth exceeds threshold",
			"entity", e, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

const debugMaxChildCount = 1000

// debugCheckChildCount warns if parent has more than debugMaxChildCount
// children.
func debugCheckChildCount(h *Hierarchy, parent Entity) {
	if n := h.NumChildren(parent); n > debugMaxChildCount {
		logger().Warn("child count exceeds threshold",
			"entity", parent, "children", n, "threshold", debugMaxChildCount)
	}
}

// debugValidate checks the hierarchy after a flush.
func (s *Scene) debugValidate() {
	if err := s.tree.Validate(); err != nil {
		logger().Error("hierarchy corrupt", "err", err)
	}
}
