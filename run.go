package aspen

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window and frame loop created by Run. It can
// be loaded from YAML or TOML with LoadRunConfig.
type RunConfig struct {
	Title   string `yaml:"title" toml:"title"`
	Width   int    `yaml:"width" toml:"width"`
	Height  int    `yaml:"height" toml:"height"`
	TPS     int    `yaml:"tps" toml:"tps"`
	ShowFPS bool   `yaml:"show_fps" toml:"show_fps"`
	Debug   bool   `yaml:"debug" toml:"debug"`
	// MaxPasses bounds dispatch passes per frame. Zero means the default.
	MaxPasses int `yaml:"max_passes" toml:"max_passes"`
	// Inspector is the listen address for the inspect package, e.g.
	// "localhost:6060". Run does not read it; programs that attach an
	// inspector use it as their address.
	Inspector  string `yaml:"inspector" toml:"inspector"`
	ClearColor Color  `yaml:"clear_color" toml:"clear_color"`
}

const (
	defaultWidth  = 640
	defaultHeight = 480
)

func (c RunConfig) withDefaults() RunConfig {
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.MaxPasses <= 0 {
		c.MaxPasses = DefaultMaxPasses
	}
	return c
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
	cfg   RunConfig
	fps   *FPSOverlay
}

func (g *game) Update() error {
	g.scene.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor.A > 0 {
		screen.Fill(g.cfg.ClearColor.RGBA())
	}
	g.scene.Draw(screen)
	if g.fps != nil {
		g.fps.Draw(screen)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives scene until the window is closed. Device
// input is only read by scenes started through Run.
func Run(scene *Scene, cfg RunConfig) error {
	cfg = cfg.withDefaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	scene.liveInput = true
	scene.SetMaxPasses(cfg.MaxPasses)
	if cfg.Debug {
		scene.SetDebugMode(true)
	}
	g := &game{scene: scene, cfg: cfg}
	if cfg.ShowFPS {
		g.fps = NewFPSOverlay(scene)
	}
	return ebiten.RunGame(g)
}
