package aspen

import "fmt"

// Propagation selects which entities an event visits.
type Propagation uint8

const (
	// Direct delivers to the target only.
	Direct Propagation = iota
	// Up walks the target's ancestors, closest first. The target is skipped.
	Up
	// Down walks the target's ancestors from the root down. The target is
	// skipped.
	Down
	// DownUp runs Down, then Direct, then Up.
	DownUp
	// Fall walks the target's descendants in pre-order. The target is
	// skipped.
	Fall
	// All visits every entity in the tree. The target is ignored.
	All
)

func (p Propagation) String() string {
	switch p {
	case Direct:
		return "direct"
	case Up:
		return "up"
	case Down:
		return "down"
	case DownUp:
		return "down-up"
	case Fall:
		return "fall"
	case All:
		return "all"
	default:
		return fmt.Sprintf("Propagation(%d)", int(p))
	}
}

// Control is a reserved message asking the UI to restyle, relayout or
// redraw. Any number of requests in one flush coalesce into a single
// Direct event to the root.
type Control uint8

const (
	ControlRestyle Control = iota + 1
	ControlRelayout
	ControlRedraw
)

func (c Control) String() string {
	switch c {
	case ControlRestyle:
		return "restyle"
	case ControlRelayout:
		return "relayout"
	case ControlRedraw:
		return "redraw"
	default:
		return fmt.Sprintf("Control(%d)", int(c))
	}
}

// Event is a message routed through the hierarchy.
type Event struct {
	Message     any
	Target      Entity
	Origin      Entity
	Propagation Propagation
	// Unique events replace an equal event that is still queued.
	Unique bool

	consumed bool
}

// NewEvent returns an event for target with the given propagation.
func NewEvent(msg any, target Entity, p Propagation) Event {
	return Event{Message: msg, Target: target, Origin: target, Propagation: p}
}

// Consume stops the event from reaching any further handler.
func (ev *Event) Consume() { ev.consumed = true }

// Consumed reports whether a handler has consumed the event.
func (ev *Event) Consumed() bool { return ev.consumed }

func (ev Event) String() string {
	return fmt.Sprintf("%T %s -> %v", ev.Message, ev.Propagation, ev.Target)
}

// As returns the event's message as a K.
func As[K any](ev *Event) (K, bool) {
	k, ok := ev.Message.(K)
	return k, ok
}

// PointerEvent is the message carried by pointer input events. Positions
// are in scene coordinates; Local is relative to the target's bounds.
type PointerEvent struct {
	Kind      PointerKind
	PointerID int
	X, Y      float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields, set for the drag kinds.
	StartX, StartY float64
	DeltaX, DeltaY float64
}
