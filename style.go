package aspen

import "time"

// Animatable is a property store the scene ticks every frame.
type Animatable interface {
	Tick(now time.Time) bool
	RemoveInactiveAnimations()
	HasAnimations() bool
	Forget(e Entity)
}

var (
	_ Animatable = (*PropertyStore[float32])(nil)
	_ Animatable = (*PropertyStore[Color])(nil)
)

// Style holds the built-in visual property stores.
type Style struct {
	BackgroundColor *PropertyStore[Color]
	BorderColor     *PropertyStore[Color]
	Opacity         *PropertyStore[float32]
	BorderWidth     *PropertyStore[float32]
	CornerRadius    *PropertyStore[float32]

	Width  *PropertyStore[Length]
	Height *PropertyStore[Length]
	Left   *PropertyStore[Length]
	Top    *PropertyStore[Length]

	Translate *PropertyStore[Vec2]
}

// NewStyle creates empty stores for every built-in property.
func NewStyle() *Style {
	return &Style{
		BackgroundColor: NewPropertyStore(LerpColor),
		BorderColor:     NewPropertyStore(LerpColor),
		Opacity:         NewPropertyStore(LerpFloat32),
		BorderWidth:     NewPropertyStore(LerpFloat32),
		CornerRadius:    NewPropertyStore(LerpFloat32),
		Width:           NewPropertyStore(LerpLength),
		Height:          NewPropertyStore(LerpLength),
		Left:            NewPropertyStore(LerpLength),
		Top:             NewPropertyStore(LerpLength),
		Translate:       NewPropertyStore(LerpVec2),
	}
}

// stores lists the built-in stores in a fixed order.
func (st *Style) stores() []Animatable {
	return []Animatable{
		st.BackgroundColor,
		st.BorderColor,
		st.Opacity,
		st.BorderWidth,
		st.CornerRadius,
		st.Width,
		st.Height,
		st.Left,
		st.Top,
		st.Translate,
	}
}

// LinkAll links e to rules in every built-in store and reports whether any
// link changed.
func (st *Style) LinkAll(e Entity, rules []RuleID) bool {
	changed := st.BackgroundColor.Link(e, rules)
	changed = st.BorderColor.Link(e, rules) || changed
	changed = st.Opacity.Link(e, rules) || changed
	changed = st.BorderWidth.Link(e, rules) || changed
	changed = st.CornerRadius.Link(e, rules) || changed
	changed = st.Width.Link(e, rules) || changed
	changed = st.Height.Link(e, rules) || changed
	changed = st.Left.Link(e, rules) || changed
	changed = st.Top.Link(e, rules) || changed
	changed = st.Translate.Link(e, rules) || changed
	return changed
}

// Register adds a custom store to the per-frame tick.
func (s *Scene) Register(a Animatable) {
	s.animatables = append(s.animatables, a)
}

// Tick advances every store to now, compacts finished animations and
// sends a redraw to the root right away if any value changed. It returns whether anything
// changed.
func (s *Scene) Tick(now time.Time) bool {
	changed := false
	for _, a := range s.animatables {
		if a.Tick(now) {
			changed = true
		}
		a.RemoveInactiveAnimations()
	}
	if changed {
		s.sendControl(ControlRedraw)
	}
	return changed
}

// HasAnimations reports whether any registered store is still animating.
func (s *Scene) HasAnimations() bool {
	for _, a := range s.animatables {
		if a.HasAnimations() {
			return true
		}
	}
	return false
}
