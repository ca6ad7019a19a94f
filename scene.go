package aspen

import (
	"slices"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityStore is the interface for optional ECS integration. When set on
// a Scene, every routed event is forwarded to it before handlers run.
type EntityStore interface {
	EmitEvent(ev Event)
}

// Painter draws a single entity. Scene.Draw calls it for every entity in
// pre-order, so later entities paint over earlier ones.
type Painter interface {
	Paint(screen *ebiten.Image, s *Scene, e Entity)
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(screen *ebiten.Image, s *Scene, e Entity)

func (f PainterFunc) Paint(screen *ebiten.Image, s *Scene, e Entity) { f(screen, s, e) }

// Scene is the top-level object that owns the entity registry, the
// hierarchy, event dispatch, the style stores and input state.
type Scene struct {
	registry *EntityRegistry
	tree     *Hierarchy
	root     Entity
	store    EntityStore
	debug    bool
	style    *Style
	painter  Painter

	animatables []Animatable
	bounds      map[Entity]Rect

	// Dispatch
	queue           []Event
	spare           []Event
	handlers        map[Entity][]callback
	listeners       []callback
	nextCallbackID  uint32
	snapshot        *Hierarchy
	snapshotVersion uint64
	pathBuf         []Entity
	flags           controlFlags
	maxPasses       int

	// Input
	liveInput    bool
	captured     [maxPointers]Entity
	pointers     [maxPointers]pointerState
	dragDeadZone float64
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	injectQueue  []syntheticPointerEvent
	testRunner   *TestRunner

	screenshotQueue []string
	screenshotDir   string

	postMu sync.Mutex
	posted []func()

	// Frame
	frame          uint64
	stats          FrameStats
	needsRedraw    bool
	frameObservers []func(FrameStats)
}

// NewScene creates a scene with a root entity and the built-in style
// stores registered for ticking.
func NewScene() *Scene {
	s := &Scene{
		registry:      NewEntityRegistry(),
		tree:          NewHierarchy(),
		style:         NewStyle(),
		bounds:        make(map[Entity]Rect),
		handlers:      make(map[Entity][]callback),
		maxPasses:     DefaultMaxPasses,
		dragDeadZone:  defaultDragDeadZone,
		screenshotDir: defaultScreenshotDir,
		needsRedraw:   true,
	}
	s.root = s.registry.Create()
	_ = s.tree.Add(s.root, Null)
	for _, a := range s.style.stores() {
		s.Register(a)
	}
	return s
}

// Root returns the scene's root entity.
func (s *Scene) Root() Entity {
	return s.root
}

// Tree returns the scene's hierarchy. Mutate it through the Scene so that
// destroyed entities are cleaned up everywhere.
func (s *Scene) Tree() *Hierarchy {
	return s.tree
}

// Style returns the built-in property stores.
func (s *Scene) Style() *Style {
	return s.style
}

// Alive reports whether e is a live entity of this scene.
func (s *Scene) Alive(e Entity) bool {
	return s.registry.Alive(e)
}

// CreateEntity creates an entity as the last child of parent. A Null
// parent means the root. It returns Null if parent is not in the scene or
// the entity space is exhausted.
func (s *Scene) CreateEntity(parent Entity) Entity {
	if parent.IsNull() {
		parent = s.root
	}
	if !s.tree.Contains(parent) {
		logger().Debug("create entity under missing parent", "parent", parent)
		return Null
	}
	e := s.registry.Create()
	if e.IsNull() {
		return Null
	}
	if err := s.tree.Add(e, parent); err != nil {
		logger().Error("add entity", "err", err)
		s.registry.Destroy(e)
		return Null
	}
	if s.debug {
		debugCheckChildCount(s.tree, parent)
	}
	return e
}

// Reparent moves e and its subtree under parent. A Null parent means the
// root.
func (s *Scene) Reparent(e, parent Entity) error {
	if parent.IsNull() {
		parent = s.root
	}
	return s.tree.SetParent(e, parent)
}

// Destroy removes e and its subtree from the scene. Handles to the removed
// entities become stale. The root cannot be destroyed.
func (s *Scene) Destroy(e Entity) bool {
	if e == s.root || !s.registry.Alive(e) {
		return false
	}
	removed := s.tree.Remove(e)
	if removed == nil {
		removed = []Entity{e}
	}
	for _, r := range removed {
		for _, a := range s.animatables {
			a.Forget(r)
		}
		delete(s.handlers, r)
		delete(s.bounds, r)
		s.releasePointers(r)
		s.registry.Destroy(r)
	}
	s.listeners = slices.DeleteFunc(s.listeners, func(c callback) bool {
		return !s.registry.Alive(c.entity)
	})
	return true
}

// SetBounds records e's layout rectangle in scene coordinates. Bounds are
// used for hit testing and painting.
func (s *Scene) SetBounds(e Entity, r Rect) {
	if !s.registry.Alive(e) {
		return
	}
	s.bounds[e] = r
}

// Bounds returns e's layout rectangle.
func (s *Scene) Bounds(e Entity) (Rect, bool) {
	r, ok := s.bounds[e]
	return r, ok
}

// SetPainter sets the painter used by Draw.
func (s *Scene) SetPainter(p Painter) {
	s.painter = p
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetMaxPasses sets how many dispatch passes one Flush may run. Values
// below 1 restore the default.
func (s *Scene) SetMaxPasses(n int) {
	if n < 1 {
		n = DefaultMaxPasses
	}
	s.maxPasses = n
}

// OnFrame registers fn to receive stats after every Update.
func (s *Scene) OnFrame(fn func(FrameStats)) {
	s.frameObservers = append(s.frameObservers, fn)
}

// Frame returns the number of completed updates.
func (s *Scene) Frame() uint64 {
	return s.frame
}

// NeedsRedraw reports whether a redraw was requested since the last Draw.
func (s *Scene) NeedsRedraw() bool {
	return s.needsRedraw
}

// Update runs one frame: scripted input, pointer input, event dispatch and
// the animation tick.
func (s *Scene) Update() {
	start := time.Now()
	s.stats = FrameStats{Frame: s.frame, DrawTime: s.stats.DrawTime, Painted: s.stats.Painted}

	s.runPosted()
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()
	s.Flush()
	s.Tick(Now())
	if s.debug {
		s.debugValidate()
	}

	s.stats.Pending = len(s.queue)
	s.stats.Entities = s.tree.Len()
	s.stats.Animating = s.HasAnimations()
	s.stats.UpdateTime = time.Since(start)
	s.debugLog(s.stats)
	for _, fn := range s.frameObservers {
		fn(s.stats)
	}
	s.frame++
}

// Draw paints every entity in pre-order, then captures any queued
// screenshots.
func (s *Scene) Draw(screen *ebiten.Image) {
	s.needsRedraw = false
	if s.painter != nil {
		start := time.Now()
		n := 0
		for e := range s.tree.Walk() {
			s.painter.Paint(screen, s, e)
			n++
		}
		s.stats.Painted = n
		s.stats.DrawTime = time.Since(start)
	}
	if screen != nil {
		s.flushScreenshots(screen)
	}
}

// Post schedules fn to run at the start of the next Update. It is the
// only Scene method safe to call from other goroutines.
func (s *Scene) Post(fn func()) {
	s.postMu.Lock()
	s.posted = append(s.posted, fn)
	s.postMu.Unlock()
}

func (s *Scene) runPosted() {
	s.postMu.Lock()
	fns := s.posted
	s.posted = nil
	s.postMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// onControl records a coalesced control dispatch.
func (s *Scene) onControl(c Control) {
	switch c {
	case ControlRestyle:
		s.stats.Restyles++
	case ControlRelayout:
		s.stats.Relayouts++
	case ControlRedraw:
		s.stats.Redraws++
		s.needsRedraw = true
	}
}
