package aspen

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScene(t *testing.T) {
	s := NewScene()
	require.False(t, s.Root().IsNull())
	assert.True(t, s.Alive(s.Root()))
	assert.Equal(t, 1, s.Tree().Len())
	assert.NotNil(t, s.Style())
	assert.Len(t, s.animatables, 10)
}

func TestSceneCreateEntity(t *testing.T) {
	s := NewScene()
	a := s.CreateEntity(Null)
	b := s.CreateEntity(a)

	p, ok := s.Tree().Parent(a)
	require.True(t, ok)
	assert.Equal(t, s.Root(), p)
	p, _ = s.Tree().Parent(b)
	assert.Equal(t, a, p)

	assert.Equal(t, Null, s.CreateEntity(Entity{Index: 99, Generation: 3}))
}

func TestSceneDestroyCascades(t *testing.T) {
	useManualClock(t)
	s := NewScene()
	a := s.CreateEntity(Null)
	b := s.CreateEntity(a)
	s.SetBounds(b, Rect{0, 0, 10, 10})
	s.Style().Opacity.Insert(b, 0.5)
	s.On(b, func(*Context, *Event) {})
	s.Listen(b, func(*Context, *Event) {})

	require.True(t, s.Destroy(a))
	assert.False(t, s.Alive(a))
	assert.False(t, s.Alive(b))
	assert.False(t, s.Tree().Contains(b))
	_, ok := s.Bounds(b)
	assert.False(t, ok)
	_, ok = s.Style().Opacity.Get(b)
	assert.False(t, ok)
	assert.Empty(t, s.handlers)
	assert.Empty(t, s.listeners)

	assert.False(t, s.Destroy(a), "already destroyed")
	assert.False(t, s.Destroy(s.Root()))

	// The recycled slot must not inherit b's state.
	c := s.CreateEntity(Null)
	d := s.CreateEntity(Null)
	for _, e := range []Entity{c, d} {
		_, ok := s.Style().Opacity.Get(e)
		assert.False(t, ok)
	}
}

func TestSceneReparent(t *testing.T) {
	s := NewScene()
	a := s.CreateEntity(Null)
	b := s.CreateEntity(Null)
	require.NoError(t, s.Reparent(b, a))
	require.NoError(t, s.Reparent(b, Null))
	p, _ := s.Tree().Parent(b)
	assert.Equal(t, s.Root(), p)
	assert.ErrorIs(t, s.Reparent(a, a), ErrSelfLink)
}

func TestSceneSetEntityStore(t *testing.T) {
	s := NewScene()
	store := &captureStore{}
	s.SetEntityStore(store)
	assert.Equal(t, store, s.store)
}

func TestSceneSetDebugMode(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	assert.True(t, s.debug)
	assert.True(t, globalDebug)
	s.SetDebugMode(false)
	assert.False(t, globalDebug)
}

// --- Frame loop ---

func TestSceneTickAnimatesAndRequestsRedraw(t *testing.T) {
	clk := useManualClock(t)
	s := NewScene()
	e := s.CreateEntity(Null)
	op := s.Style().Opacity
	op.InsertAnimation("fade", fadeIn(false))
	op.PlayAnimation(e, "fade")
	var redraws []Control
	s.On(s.Root(), func(_ *Context, ev *Event) {
		if c, ok := As[Control](ev); ok {
			redraws = append(redraws, c)
		}
	})

	s.Draw(nil)
	require.False(t, s.NeedsRedraw())

	clk.Advance(500 * time.Millisecond)
	s.Update()
	v, _ := op.Get(e)
	assert.Equal(t, float32(50), v)
	assert.True(t, s.HasAnimations())
	assert.True(t, s.NeedsRedraw(), "redraw requested in the frame that animated")
	assert.Zero(t, s.Pending())
	assert.Equal(t, []Control{ControlRedraw}, redraws)

	s.Draw(nil)

	clk.Advance(time.Second)
	s.Update()
	assert.True(t, s.NeedsRedraw())
	assert.False(t, s.HasAnimations())
	assert.Zero(t, op.ActiveAnimations(), "finished animations are compacted")
}

type customStore struct {
	ticks, compacts int
	forgotten       []Entity
}

func (c *customStore) Tick(time.Time) bool       { c.ticks++; return false }
func (c *customStore) RemoveInactiveAnimations() { c.compacts++ }
func (c *customStore) HasAnimations() bool       { return false }
func (c *customStore) Forget(e Entity)           { c.forgotten = append(c.forgotten, e) }

func TestSceneRegisterCustomStore(t *testing.T) {
	useManualClock(t)
	s := NewScene()
	cs := &customStore{}
	s.Register(cs)
	e := s.CreateEntity(Null)

	assert.False(t, s.Tick(Now()))
	assert.Equal(t, 1, cs.ticks)
	assert.Equal(t, 1, cs.compacts)

	s.Destroy(e)
	assert.Equal(t, []Entity{e}, cs.forgotten)
}

func TestSceneOnFrame(t *testing.T) {
	useManualClock(t)
	s, a, _, _ := chain(t)
	s.On(a, func(*Context, *Event) {})
	var stats []FrameStats
	s.OnFrame(func(st FrameStats) { stats = append(stats, st) })

	s.Emit(NewEvent(ping{}, a, DownUp))
	s.Update()
	s.Update()

	require.Len(t, stats, 2)
	assert.Equal(t, uint64(0), stats[0].Frame)
	assert.Equal(t, 1, stats[0].Events)
	assert.Equal(t, 1, stats[0].Handlers)
	assert.Equal(t, 4, stats[0].Entities)
	assert.Equal(t, uint64(1), stats[1].Frame)
	assert.Zero(t, stats[1].Events)
	assert.Equal(t, uint64(2), s.Frame())
}

func TestScenePost(t *testing.T) {
	useManualClock(t)
	s := NewScene()
	done := make(chan struct{})
	ran := false
	go func() {
		s.Post(func() { ran = true })
		close(done)
	}()
	<-done
	s.Update()
	assert.True(t, ran)
}

func TestSceneDrawPreOrder(t *testing.T) {
	s, a, b, c := chain(t)
	var painted []Entity
	s.SetPainter(PainterFunc(func(_ *ebiten.Image, _ *Scene, e Entity) {
		painted = append(painted, e)
	}))
	s.Draw(nil)
	assert.Equal(t, []Entity{s.Root(), a, b, c}, painted)
	assert.Equal(t, 4, s.stats.Painted)
}
