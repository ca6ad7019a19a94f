package aspen

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	hit      Entity // entity under the pointer at press time
	hover    Entity // last entity the pointer was over (for enter/leave)
	dragging bool
	button   MouseButton // button captured at press time
}

// CapturePointer routes all events for pointerID to e until released.
func (s *Scene) CapturePointer(pointerID int, e Entity) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = e
	}
}

// ReleasePointer stops routing events for pointerID to a captured entity.
func (s *Scene) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = Null
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// Hovered returns the entity under pointerID, or Null.
func (s *Scene) Hovered(pointerID int) Entity {
	if pointerID < 0 || pointerID >= maxPointers {
		return Null
	}
	return s.pointers[pointerID].hover
}

// releasePointers forgets e in every pointer slot without firing events.
func (s *Scene) releasePointers(e Entity) {
	for i := range s.pointers {
		ps := &s.pointers[i]
		if ps.hover == e {
			ps.hover = Null
		}
		if ps.hit == e {
			ps.hit = Null
			ps.dragging = false
		}
		if s.captured[i] == e {
			s.captured[i] = Null
		}
	}
}

// --- Hit testing ---

// HitTest returns the topmost entity whose bounds contain (x, y). Later
// entities in pre-order paint on top, so the last match wins. Entities
// without bounds are not hit-testable.
func (s *Scene) HitTest(x, y float64) Entity {
	hit := Null
	for e := range s.tree.Walk() {
		if r, ok := s.bounds[e]; ok && r.Contains(x, y) {
			hit = e
		}
	}
	return hit
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Scene.Update. Injected input takes priority
// over devices; devices are only read while the scene runs under Run.
func (s *Scene) processInput() {
	if s.processInjectedInput() {
		return
	}
	if !s.liveInput {
		return
	}
	mods := readModifiers()
	s.processMousePointer(mods)
	s.processTouchPointers(mods)
}

// processMousePointer handles mouse input (pointer 0).
func (s *Scene) processMousePointer(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case right:
			button = MouseButtonRight
		default:
			button = MouseButtonMiddle
		}
	}
	s.processPointer(0, float64(mx), float64(my), pressed, button, mods)
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Scene) processTouchPointers(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft, mods)
	}

	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.processPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft, mods)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9). Returns -1 if
// every slot is taken.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer and
// queues the resulting PointerEvents.
func (s *Scene) processPointer(pointerID int, x, y float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &s.pointers[pointerID]

	target := s.captured[pointerID]
	if target.IsNull() {
		target = s.HitTest(x, y)
	}

	if target != ps.hover {
		if !ps.hover.IsNull() {
			s.firePointer(PointerLeave, ps.hover, pointerID, x, y, button, mods, nil)
		}
		if !target.IsNull() {
			s.firePointer(PointerEnter, target, pointerID, x, y, button, mods, nil)
		}
		ps.hover = target
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.hit = target
		ps.dragging = false
		s.firePointer(PointerDown, target, pointerID, x, y, ps.button, mods, nil)

	case !pressed && ps.down:
		if ps.dragging {
			s.firePointer(PointerDragEnd, ps.hit, pointerID, x, y, ps.button, mods,
				&dragDelta{ps.startX, ps.startY, x - ps.lastX, y - ps.lastY})
		} else if !ps.hit.IsNull() && ps.hit == target {
			s.firePointer(PointerClick, target, pointerID, x, y, ps.button, mods, nil)
		}
		s.firePointer(PointerUp, target, pointerID, x, y, ps.button, mods, nil)

		s.captured[pointerID] = Null
		ps.down = false
		ps.hit = Null
		ps.dragging = false
		ps.lastX, ps.lastY = x, y

	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			if !ps.dragging {
				dx := x - ps.startX
				dy := y - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
					ps.dragging = true
					s.firePointer(PointerDragStart, ps.hit, pointerID, x, y, ps.button, mods,
						&dragDelta{ps.startX, ps.startY, dx, dy})
				}
			}
			if ps.dragging {
				s.firePointer(PointerDrag, ps.hit, pointerID, x, y, ps.button, mods,
					&dragDelta{ps.startX, ps.startY, x - ps.lastX, y - ps.lastY})
			}
		}
		ps.lastX, ps.lastY = x, y

	default:
		if x != ps.lastX || y != ps.lastY {
			s.firePointer(PointerMove, target, pointerID, x, y, button, mods, nil)
			ps.lastX, ps.lastY = x, y
		}
	}
}

type dragDelta struct {
	startX, startY float64
	dx, dy         float64
}

// firePointer queues a PointerEvent. Enter and leave go Direct to the
// entity; every other kind runs DownUp so ancestors can intercept it. A
// Null target still reaches global listeners.
func (s *Scene) firePointer(kind PointerKind, target Entity, pointerID int, x, y float64,
	button MouseButton, mods KeyModifiers, drag *dragDelta) {
	msg := PointerEvent{
		Kind:      kind,
		PointerID: pointerID,
		X:         x,
		Y:         y,
		Button:    button,
		Modifiers: mods,
	}
	if r, ok := s.bounds[target]; ok {
		msg.LocalX = x - r.X
		msg.LocalY = y - r.Y
	}
	if drag != nil {
		msg.StartX, msg.StartY = drag.startX, drag.startY
		msg.DeltaX, msg.DeltaY = drag.dx, drag.dy
	}
	prop := DownUp
	if kind == PointerEnter || kind == PointerLeave {
		prop = Direct
	}
	s.Emit(Event{Message: msg, Target: target, Origin: target, Propagation: prop})
}
