package aspen

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPSOverlay draws FPS, TPS and the last frame's dispatch stats in the top
// left corner. The text is refreshed about twice a second.
type FPSOverlay struct {
	img        *ebiten.Image
	lastUpdate time.Time
	stats      FrameStats
}

// NewFPSOverlay creates an overlay and subscribes it to s's frame stats.
func NewFPSOverlay(s *Scene) *FPSOverlay {
	o := &FPSOverlay{img: ebiten.NewImage(160, 64)}
	s.OnFrame(func(st FrameStats) { o.stats = st })
	return o
}

// Draw paints the overlay onto screen.
func (o *FPSOverlay) Draw(screen *ebiten.Image) {
	if now := time.Now(); now.Sub(o.lastUpdate) >= 500*time.Millisecond {
		o.lastUpdate = now
		o.img.Clear()
		o.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nevents: %d\nentities: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), o.stats.Events, o.stats.Entities))
	}
	screen.DrawImage(o.img, nil)
}
