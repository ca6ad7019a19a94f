package aspen

import (
	"slices"
	"time"

	"github.com/tanema/gween/ease"
)

// AnimationID names an animation template registered on a PropertyStore.
type AnimationID string

// Keyframe is a value pinned to a phase in [0, 1].
type Keyframe[T any] struct {
	Time  float32 `yaml:"t"`
	Value T       `yaml:"value"`
}

// AnimationDescription is a reusable animation template. Keyframes are
// sorted by time when the template is inserted.
type AnimationDescription[T any] struct {
	Keyframes []Keyframe[T]
	Duration  time.Duration
	Delay     time.Duration
	// Persistent animations keep their final value after finishing.
	Persistent bool
	// Ease maps linear progress to eased progress. Nil means linear.
	Ease ease.TweenFunc
}

// Transition describes the animation played when an entity becomes linked
// to a rule whose value differs from the entity's current value.
type Transition struct {
	Duration time.Duration
	Delay    time.Duration
	Ease     ease.TweenFunc
}

// AnimationState is one animation in a store's active pool.
type AnimationState[T comparable] struct {
	ID        AnimationID
	Keyframes []Keyframe[T]
	Duration  time.Duration
	// Delay is a phase offset subtracted from the elapsed fraction. A
	// negative delay starts the animation partway through.
	Delay      float32
	Start      time.Time
	Persistent bool
	Ease       ease.TweenFunc
	// FromRule and ToRule are set for rule transitions.
	FromRule RuleID
	ToRule   RuleID

	t          float32
	t0         float32
	active     bool
	transition bool
	entities   []Entity
	output     T
}

func newAnimationState[T comparable](id AnimationID, desc AnimationDescription[T], now time.Time) AnimationState[T] {
	a := AnimationState[T]{
		ID:         id,
		Keyframes:  slices.Clone(desc.Keyframes),
		Duration:   desc.Duration,
		Delay:      delayPhase(desc.Delay, desc.Duration),
		Start:      now,
		Persistent: desc.Persistent,
		Ease:       desc.Ease,
		active:     true,
	}
	if len(a.Keyframes) > 0 {
		a.output = a.Keyframes[0].Value
	}
	return a
}

func delayPhase(delay, duration time.Duration) float32 {
	if duration <= 0 {
		return 0
	}
	return float32(delay.Seconds() / duration.Seconds())
}

// Phase returns the unclamped phase computed by the last tick.
func (a *AnimationState[T]) Phase() float32 { return a.t }

// PrevPhase returns the phase snapshot used for edge detection. It is 1
// once the animation has reached its end.
func (a *AnimationState[T]) PrevPhase() float32 { return a.t0 }

// Active reports whether the animation is still in the pool's live set.
func (a *AnimationState[T]) Active() bool { return a.active }

// Output returns the last computed value.
func (a *AnimationState[T]) Output() T { return a.output }

// Entities returns the entities linked to the animation.
func (a *AnimationState[T]) Entities() []Entity { return a.entities }

// IsTransition reports whether the animation was created by a rule link.
func (a *AnimationState[T]) IsTransition() bool { return a.transition }

// advance recomputes the phase and output for now. Returns true if the
// output changed.
func (a *AnimationState[T]) advance(now time.Time, lerp Lerp[T]) bool {
	if !a.active || len(a.Keyframes) == 0 {
		return false
	}
	prev := a.output
	first := a.Keyframes[0].Value
	last := a.Keyframes[len(a.Keyframes)-1].Value

	t := float32(1)
	if a.Duration > 0 {
		t = float32(now.Sub(a.Start).Seconds()/a.Duration.Seconds()) - a.Delay
	}
	a.t = t

	switch {
	case a.flat():
		a.output = last
		a.finish()
	case t >= 1:
		a.output = last
		a.finish()
	case t <= 0:
		a.output = first
		a.t0 = t
	default:
		a.output = a.sample(t, lerp)
		a.t0 = t
	}
	return a.output != prev
}

func (a *AnimationState[T]) finish() {
	a.t0 = 1
	if !a.Persistent {
		a.active = false
	}
}

// flat reports whether every keyframe holds the same value.
func (a *AnimationState[T]) flat() bool {
	v := a.Keyframes[0].Value
	for _, kf := range a.Keyframes[1:] {
		if kf.Value != v {
			return false
		}
	}
	return true
}

// sample returns the interpolated value at phase t in (0, 1).
func (a *AnimationState[T]) sample(t float32, lerp Lerp[T]) T {
	p := t
	if a.Ease != nil {
		p = a.Ease(t, 0, 1, 1)
	}
	kfs := a.Keyframes
	if p <= kfs[0].Time {
		return kfs[0].Value
	}
	for i := 1; i < len(kfs); i++ {
		if p > kfs[i].Time {
			continue
		}
		from, to := kfs[i-1], kfs[i]
		span := to.Time - from.Time
		if span <= 0 || lerp == nil {
			return to.Value
		}
		return lerp(from.Value, to.Value, clampPhase((p-from.Time)/span))
	}
	return kfs[len(kfs)-1].Value
}

// restart rewinds the animation to phase 0.
func (a *AnimationState[T]) restart(now time.Time, delay float32) {
	a.Start = now
	a.Delay = delay
	a.t = 0
	a.t0 = 0
	a.active = true
	if len(a.Keyframes) > 0 {
		a.output = a.Keyframes[0].Value
	}
}

// reverse flips the animation in place so it plays back toward its start
// value from where it currently is.
func (a *AnimationState[T]) reverse(now time.Time) {
	t := clampPhase(a.t)
	slices.Reverse(a.Keyframes)
	for i := range a.Keyframes {
		a.Keyframes[i].Time = 1 - a.Keyframes[i].Time
	}
	if a.Ease != nil {
		a.Ease = mirrorEase(a.Ease)
	}
	a.FromRule, a.ToRule = a.ToRule, a.FromRule
	a.Start = now
	a.Delay = -(1 - t)
	a.t = 1 - t
	a.t0 = a.t
	a.active = true
}

// mirrorEase returns the curve that retraces fn backwards, so a reversed
// animation passes through the same values it came from.
func mirrorEase(fn ease.TweenFunc) ease.TweenFunc {
	return func(t, b, c, d float32) float32 {
		return 2*b + c - fn(d-t, b, c, d)
	}
}

func (a *AnimationState[T]) unlinkEntity(e Entity) {
	a.entities = slices.DeleteFunc(a.entities, func(x Entity) bool { return x == e })
	if len(a.entities) == 0 {
		a.active = false
	}
}

// EaseByName maps a name such as "linear" or "out-cubic" to a gween easing
// function. Unknown names return nil and false.
func EaseByName(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"in-expo":      ease.InExpo,
	"out-expo":     ease.OutExpo,
	"in-back":      ease.InBack,
	"out-back":     ease.OutBack,
	"out-bounce":   ease.OutBounce,
	"out-elastic":  ease.OutElastic,
}
