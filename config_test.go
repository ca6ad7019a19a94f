package aspen

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- RunConfig ---

func TestLoadRunConfigYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
title: demo
width: 800
show_fps: true
max_passes: 4
inspector: localhost:6060
clear_color: "#112233"
`)
	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Title)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, defaultHeight, cfg.Height)
	assert.True(t, cfg.ShowFPS)
	assert.Equal(t, 4, cfg.MaxPasses)
	assert.Equal(t, "localhost:6060", cfg.Inspector)
	assert.InDelta(t, 0x11/255.0, cfg.ClearColor.R, 1e-9)
	assert.Equal(t, 1.0, cfg.ClearColor.A)
}

func TestLoadRunConfigTOML(t *testing.T) {
	path := writeFile(t, "run.toml", `
title = "demo"
height = 300
debug = true
clear_color = "navy"
`)
	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Title)
	assert.Equal(t, defaultWidth, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultMaxPasses, cfg.MaxPasses)
	assert.Greater(t, cfg.ClearColor.B, 0.0)
}

func TestLoadRunConfigErrors(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadRunConfig(writeFile(t, "run.json", `{}`))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = LoadRunConfig(writeFile(t, "run.yaml", "width: [1, 2]"))
	assert.Error(t, err)
}

// --- Animation files ---

const colorAnimations = `
animations:
  pulse:
    duration: 300ms
    delay: 100ms
    ease: out-cubic
    persistent: true
    keyframes:
      - {t: 0, value: "#000000"}
      - {t: 1, value: white}
transitions:
  2: {duration: 150ms, ease: linear}
`

func TestParseAnimationsColor(t *testing.T) {
	set, err := ParseAnimations[Color]([]byte(colorAnimations))
	require.NoError(t, err)

	pulse, ok := set.Animations["pulse"]
	require.True(t, ok)
	assert.Equal(t, 300*time.Millisecond, pulse.Duration)
	assert.Equal(t, 100*time.Millisecond, pulse.Delay)
	assert.True(t, pulse.Persistent)
	assert.NotNil(t, pulse.Ease)
	require.Len(t, pulse.Keyframes, 2)
	assert.Equal(t, ColorWhite, pulse.Keyframes[1].Value)

	tr, ok := set.Transitions[2]
	require.True(t, ok)
	assert.Equal(t, 150*time.Millisecond, tr.Duration)
}

func TestParseAnimationsFloat(t *testing.T) {
	set, err := ParseAnimations[float32]([]byte(`
animations:
  grow:
    duration: 1s
    keyframes:
      - {t: 0, value: 0}
      - {t: 0.5, value: 80}
      - {t: 1, value: 100}
`))
	require.NoError(t, err)
	grow := set.Animations["grow"]
	assert.Nil(t, grow.Ease, "no ease means linear")
	assert.Equal(t, float32(80), grow.Keyframes[1].Value)
}

func TestParseAnimationsLength(t *testing.T) {
	set, err := ParseAnimations[Length]([]byte(`
animations:
  open:
    duration: 200ms
    keyframes:
      - {t: 0, value: 0px}
      - {t: 1, value: 50%}
`))
	require.NoError(t, err)
	assert.Equal(t, Percent(50), set.Animations["open"].Keyframes[1].Value)
}

func TestParseAnimationsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown ease", "animations:\n  a:\n    ease: wobble\n    keyframes: [{t: 0, value: 1}]\n"},
		{"no keyframes", "animations:\n  a:\n    duration: 1s\n"},
		{"unknown field", "animations:\n  a:\n    length: 1s\n"},
		{"bad transition ease", "transitions:\n  1: {ease: nope}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnimations[float32]([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	_, err := ParseAnimations[float32]([]byte("animations:\n  a:\n    ease: wobble\n    keyframes: [{t: 0, value: 1}]\n"))
	assert.ErrorIs(t, err, ErrUnknownEase)
}

func TestAnimationSetApply(t *testing.T) {
	clk := useManualClock(t)
	path := writeFile(t, "colors.yaml", colorAnimations)
	set, err := LoadAnimations[Color](path)
	require.NoError(t, err)

	store := NewPropertyStore(LerpColor)
	set.Apply(store)
	e := Entity{Index: 1, Generation: 1}
	require.True(t, store.PlayAnimation(e, "pulse"))

	clk.Advance(time.Second)
	store.Tick(Now())
	v, ok := store.Get(e)
	require.True(t, ok)
	assert.Equal(t, ColorWhite, v)

	_, err = LoadAnimations[Color](filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// --- Watching ---

func TestWatchFile(t *testing.T) {
	path := writeFile(t, "anim.yaml", "animations: {}\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- WatchFile(ctx, path, func(p string) {
			select {
			case changed <- p:
			default:
			}
		})
	}()

	// The watcher starts asynchronously; keep writing until it notices.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	other := filepath.Join(filepath.Dir(path), "other.yaml")
wait:
	for {
		select {
		case p := <-changed:
			assert.Equal(t, path, p)
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
			require.NoError(t, os.WriteFile(path, []byte("animations: {}\n"), 0o644))
		case <-deadline:
			t.Fatal("no change notification")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
