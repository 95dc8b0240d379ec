// Package screen runs the race game in an ebiten window.
package screen

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/race"
)

// Screen layout in pixels.
const (
	ScreenWidth  = 480
	ScreenHeight = 640
	pxPerUnit    = 120
	carScreenY   = ScreenHeight - 120
)

var (
	grassColor = color.RGBA{R: 34, G: 110, B: 44, A: 255}
	roadColor  = color.RGBA{R: 60, G: 60, B: 64, A: 255}
	laneColor  = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// PairSource returns the most recent gestures seen by the camera.
type PairSource func() action.Pair

// Game adapts a Session to ebiten's update/draw loop.
type Game struct {
	ctx      context.Context
	session  *race.Session
	source   PairSource
	car      *ebiten.Image
	obstacle *ebiten.Image
}

// NewGame creates the ebiten game. The game ends when ctx is cancelled.
func NewGame(ctx context.Context, session *race.Session, source PairSource, images *race.Images) *Game {
	return &Game{
		ctx:      ctx,
		session:  session,
		source:   source,
		car:      ebiten.NewImageFromImage(images.Car),
		obstacle: ebiten.NewImageFromImage(images.Obstacle),
	}
}

// Run opens the game window and blocks until it closes. It must be called
// from the main goroutine. A run still in progress when the window closes is
// booked before Run returns.
func Run(g *Game) error {
	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("gesturedrive race")
	ebiten.SetTPS(race.TickRate)
	err := ebiten.RunGame(g)
	g.session.End()
	return err
}

// Update advances the session by one tick.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if g.session.Result() != nil && inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.session.Restart()
	}

	g.session.Tick(g.source())
	return nil
}

// Draw renders road, obstacles, car and HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	w := g.session.World()
	screen.Fill(grassColor)

	roadLeft := float32(ScreenWidth)/2 - float32(w.Lanes)*pxPerUnit/2
	vector.DrawFilledRect(screen, roadLeft, 0, float32(w.Lanes)*pxPerUnit, ScreenHeight, roadColor, false)

	// Lane dashes scroll with the distance travelled.
	const dash, gap = 40, 40
	offset := float32(int(w.Distance*pxPerUnit) % (dash + gap))
	for lane := 1; lane < w.Lanes; lane++ {
		x := roadLeft + float32(lane)*pxPerUnit
		for y := offset - dash - gap; y < ScreenHeight; y += dash + gap {
			vector.StrokeLine(screen, x, y, x, y+dash, 4, laneColor, false)
		}
	}

	for _, o := range w.Obstacles {
		drawSprite(screen, g.obstacle, o.X, o.Y, w.ObstacleWidth, w.ObstacleLen)
	}
	drawSprite(screen, g.car, w.X, 0, w.CarWidth, w.CarLength)

	for i, line := range race.HUDLines(g.session) {
		ebitenutil.DebugPrintAt(screen, line, 8, 8+16*i)
	}
}

// Layout fixes the logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// drawSprite scales img to a width×length road-unit box centred on (x, y),
// where y is the distance ahead of the car.
func drawSprite(screen, img *ebiten.Image, x, y, width, length float64) {
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(width*pxPerUnit/float64(b.Dx()), length*pxPerUnit/float64(b.Dy()))
	op.GeoM.Translate(
		ScreenWidth/2+(x-width/2)*pxPerUnit,
		carScreenY-(y+length/2)*pxPerUnit,
	)
	screen.DrawImage(img, op)
}
