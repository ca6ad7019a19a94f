package aspen

import "testing"

func TestInjectClick(t *testing.T) {
	s, _, b := pointerScene(t)

	var clicked bool
	s.On(b, func(_ *Context, ev *Event) {
		if pe, ok := As[PointerEvent](ev); ok && pe.Kind == PointerClick {
			clicked = true
		}
	})

	s.InjectClick(15, 15)
	if len(s.injectQueue) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(s.injectQueue))
	}

	// Frame 1: press
	s.Update()
	if len(s.injectQueue) != 1 {
		t.Fatalf("expected 1 remaining event after frame 1, got %d", len(s.injectQueue))
	}
	if clicked {
		t.Error("click should not fire on press frame")
	}

	// Frame 2: release, click fires
	s.Update()
	if len(s.injectQueue) != 0 {
		t.Fatalf("expected 0 remaining events after frame 2, got %d", len(s.injectQueue))
	}
	if !clicked {
		t.Error("click should fire on release frame")
	}
}

func TestInjectDrag(t *testing.T) {
	s, a, _ := pointerScene(t)

	var events []PointerKind
	s.On(a, func(_ *Context, ev *Event) {
		pe, ok := As[PointerEvent](ev)
		if !ok || ev.Target != a {
			return
		}
		switch pe.Kind {
		case PointerDragStart, PointerDrag, PointerDragEnd:
			events = append(events, pe.Kind)
		}
	})

	// Drag from (50,50) to (90,90) over 5 frames:
	// frame 0: press at (50,50)
	// frames 1-3: moves at 60, 70, 80
	// frame 4: release at (90,90)
	s.InjectDrag(50, 50, 90, 90, 5)
	if len(s.injectQueue) != 5 {
		t.Fatalf("expected 5 queued events, got %d", len(s.injectQueue))
	}
	for range 5 {
		s.Update()
	}

	if len(events) < 3 {
		t.Fatalf("expected at least 3 events, got %v", events)
	}
	if events[0] != PointerDragStart {
		t.Errorf("first event should be drag-start, got %s", events[0])
	}
	if events[len(events)-1] != PointerDragEnd {
		t.Errorf("last event should be drag-end, got %s", events[len(events)-1])
	}
}

func TestInjectDrag_MinFrames(t *testing.T) {
	s := NewScene()
	s.InjectDrag(0, 0, 100, 100, 1) // clamps to 2
	if len(s.injectQueue) != 2 {
		t.Fatalf("expected 2 queued events (clamped), got %d", len(s.injectQueue))
	}
}

func TestInjectQueueOrder(t *testing.T) {
	s := NewScene()

	s.InjectPress(10, 20)
	s.InjectMove(30, 40)
	s.InjectHover(35, 45)
	s.InjectRelease(50, 60)

	if len(s.injectQueue) != 4 {
		t.Fatalf("expected 4 events, got %d", len(s.injectQueue))
	}
	if !s.injectQueue[0].pressed || s.injectQueue[0].x != 10 {
		t.Error("first event should be press at (10,20)")
	}
	if !s.injectQueue[1].pressed || s.injectQueue[1].x != 30 {
		t.Error("second event should be move at (30,40)")
	}
	if s.injectQueue[2].pressed || s.injectQueue[2].y != 45 {
		t.Error("third event should be hover at (35,45)")
	}
	if s.injectQueue[3].pressed || s.injectQueue[3].x != 50 {
		t.Error("fourth event should be release at (50,60)")
	}
}

func TestProcessInjectedInput(t *testing.T) {
	s, _, b := pointerScene(t)

	s.InjectPress(15, 15)
	if !s.processInjectedInput() {
		t.Error("expected processInjectedInput to consume an event")
	}
	if len(s.injectQueue) != 0 {
		t.Errorf("queue should be empty, got %d", len(s.injectQueue))
	}
	// Enter and down are queued until the next flush.
	if got := s.Pending(); got != 2 {
		t.Errorf("expected 2 pending events, got %d", got)
	}
	if !s.pointers[0].down || s.pointers[0].hit != b {
		t.Error("pointer 0 should be down on b")
	}
}

func TestProcessInjectedInput_EmptyQueue(t *testing.T) {
	s := NewScene()
	if s.processInjectedInput() {
		t.Error("should not consume when queue is empty")
	}
}
