package aspen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadRunConfig reads a RunConfig from a .yaml, .yml or .toml file. Unset
// fields take their defaults.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("load run config: %w", err)
	}
	var cfg RunConfig
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return RunConfig{}, fmt.Errorf("load run config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return RunConfig{}, fmt.Errorf("load run config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

// AnimationSet is a group of animation templates and rule transitions for
// one property, usually loaded from a file.
type AnimationSet[T comparable] struct {
	Animations  map[AnimationID]AnimationDescription[T]
	Transitions map[RuleID]Transition
}

// Apply inserts every template and transition into s.
func (set AnimationSet[T]) Apply(s *PropertyStore[T]) {
	for id, desc := range set.Animations {
		s.InsertAnimation(id, desc)
	}
	for rule, tr := range set.Transitions {
		s.InsertTransition(rule, tr)
	}
}

type animationFile[T any] struct {
	Animations  map[string]animationSpec[T] `yaml:"animations"`
	Transitions map[RuleID]transitionSpec   `yaml:"transitions"`
}

type animationSpec[T any] struct {
	Duration   time.Duration `yaml:"duration"`
	Delay      time.Duration `yaml:"delay"`
	Persistent bool          `yaml:"persistent"`
	Ease       string        `yaml:"ease"`
	Keyframes  []Keyframe[T] `yaml:"keyframes"`
}

type transitionSpec struct {
	Duration time.Duration `yaml:"duration"`
	Delay    time.Duration `yaml:"delay"`
	Ease     string        `yaml:"ease"`
}

// ErrUnknownEase is returned when an animation file names an easing that
// EaseByName does not know.
var ErrUnknownEase = errors.New("unknown easing")

// ParseAnimations decodes an AnimationSet from YAML:
//
//	animations:
//	  pulse:
//	    duration: 300ms
//	    ease: out-cubic
//	    keyframes:
//	      - {t: 0, value: "#336699"}
//	      - {t: 1, value: tomato}
//	transitions:
//	  2: {duration: 150ms, ease: linear}
func ParseAnimations[T comparable](data []byte) (AnimationSet[T], error) {
	var file animationFile[T]
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return AnimationSet[T]{}, fmt.Errorf("parse animations: %w", err)
	}
	set := AnimationSet[T]{
		Animations:  make(map[AnimationID]AnimationDescription[T], len(file.Animations)),
		Transitions: make(map[RuleID]Transition, len(file.Transitions)),
	}
	for name, spec := range file.Animations {
		if len(spec.Keyframes) == 0 {
			return AnimationSet[T]{}, fmt.Errorf("parse animations: %s: no keyframes", name)
		}
		fn, err := easeOrNil(spec.Ease)
		if err != nil {
			return AnimationSet[T]{}, fmt.Errorf("parse animations: %s: %w", name, err)
		}
		set.Animations[AnimationID(name)] = AnimationDescription[T]{
			Keyframes:  spec.Keyframes,
			Duration:   spec.Duration,
			Delay:      spec.Delay,
			Persistent: spec.Persistent,
			Ease:       fn,
		}
	}
	for rule, spec := range file.Transitions {
		fn, err := easeOrNil(spec.Ease)
		if err != nil {
			return AnimationSet[T]{}, fmt.Errorf("parse animations: transition %d: %w", rule, err)
		}
		set.Transitions[rule] = Transition{Duration: spec.Duration, Delay: spec.Delay, Ease: fn}
	}
	return set, nil
}

// LoadAnimations reads and parses an animation file.
func LoadAnimations[T comparable](path string) (AnimationSet[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnimationSet[T]{}, fmt.Errorf("load animations: %w", err)
	}
	set, err := ParseAnimations[T](data)
	if err != nil {
		return AnimationSet[T]{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func easeOrNil(name string) (func(t, b, c, d float32) float32, error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := EaseByName(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEase, name)
	}
	return fn, nil
}

// WatchFile calls fn each time path is written or recreated, until ctx is
// done. The parent directory is watched so editors that replace files on
// save are handled. fn runs on the watcher goroutine; use Scene.Post to
// touch scene state from it.
func WatchFile(ctx context.Context, path string, fn func(path string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fn(path)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger().Warn("file watcher error", "path", path, "err", err)
		}
	}
}
