// Package frontend runs the installation in an Ebitengine window. It owns
// everything pixel-shaped: pointer plumbing into the engine, projecting the
// 3D snapshot onto the screen, and the overlay chrome. All interaction
// semantics stay in the engine; this package only translates.
package frontend

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/arbor"
)

const maxPointers = 10

// Options configures the window.
type Options struct {
	Title  string
	Width  int
	Height int
}

// Game drives one arbor.Engine from Ebitengine's update/draw loop and draws
// the frame snapshots the engine publishes.
type Game struct {
	engine *arbor.Engine
	width  int
	height int

	frame *arbor.FrameSnapshot

	prevTouchIDs []ebiten.TouchID
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	touchX       [maxPointers]float64
	touchY       [maxPointers]float64

	pixel *ebiten.Image
}

// New wires a game around engine. The engine's render sink and viewport are
// taken over; don't share the engine with another front end.
func New(engine *arbor.Engine, opts Options) *Game {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	g := &Game{
		engine: engine,
		width:  opts.Width,
		height: opts.Height,
		pixel:  ebiten.NewImage(1, 1),
	}
	g.pixel.Fill(color.White)
	engine.SetViewport(float64(opts.Width), float64(opts.Height))
	engine.SetRenderSink(g)
	return g
}

// Frame implements arbor.RenderSink. The snapshot's slices are only valid
// until the next Tick; Update and Draw run back to back on one goroutine, so
// holding the pointer across the pair is safe.
func (g *Game) Frame(f *arbor.FrameSnapshot) {
	g.frame = f
}

// Update feeds this frame's pointers to the engine and ticks it once.
func (g *Game) Update() error {
	g.processMousePointer()
	g.processTouchPointers()
	g.engine.Tick(1.0 / float64(ebiten.TPS()))
	return nil
}

// processMousePointer handles mouse input (pointer 0).
func (g *Game) processMousePointer() {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	g.engine.Pointer(0, float64(mx), float64(my), pressed)
}

// processTouchPointers handles touch input (pointers 1-9).
func (g *Game) processTouchPointers() {
	touchIDs := ebiten.AppendTouchIDs(g.prevTouchIDs[:0])
	g.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := g.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		g.touchX[slot], g.touchY[slot] = float64(tx), float64(ty)
		g.engine.Pointer(slot, float64(tx), float64(ty), true)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if g.touchUsed[i] && !activeSlots[i] {
			g.engine.Pointer(i, g.touchX[i], g.touchY[i], false)
			g.touchUsed[i] = false
			g.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9). Returns the
// existing slot or allocates a new one. Returns -1 if full.
func (g *Game) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if g.touchUsed[i] && g.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !g.touchUsed[i] {
			g.touchUsed[i] = true
			g.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// Draw renders the latest snapshot.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 6, G: 10, B: 20, A: 255})
	f := g.frame
	if f == nil {
		return
	}

	w, h := float64(g.width), float64(g.height)
	cam := g.engine.Camera()

	// Shake offsets the whole scene; deterministic jitter from the yaw so a
	// paused frame doesn't vibrate.
	shakeX := math.Sin(cam.Yaw*97+f.Shake*31) * f.Shake * 6
	shakeY := math.Cos(cam.Yaw*89+f.Shake*47) * f.Shake * 6

	camPos := f.CameraPosition
	for gi := range f.Groups {
		gs := &f.Groups[gi]
		for i := range gs.Transforms {
			t := &gs.Transforms[i]
			x, y, ok := cam.Project(t.Position, w, h)
			if !ok {
				continue
			}

			// Perspective size falloff.
			depth := t.Position.Dist(camPos)
			if depth < 1 {
				depth = 1
			}
			size := t.Scale * 260 / depth
			if size < 1 {
				size = 1
			}

			c := gs.Color
			if f.Rainbow {
				c = rainbowColor(float64(gi)*0.7 + float64(i)*0.013 + cam.Yaw)
			} else if f.GoldFlash || f.GoldMode {
				c = arbor.Color{R: 1.0, G: 0.85, B: 0.3, A: c.A}
			}

			var op ebiten.DrawImageOptions
			op.GeoM.Scale(size, size)
			op.GeoM.Translate(x-size/2+shakeX, y-size/2+shakeY)
			op.ColorScale.Scale(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
			screen.DrawImage(g.pixel, &op)
		}
	}

	g.drawPhotos(screen, f, w, h, shakeX, shakeY)
	g.drawChrome(screen, f, w, h)
}

// drawPhotos renders the photo cards as framed quads; the focused card gets
// a bright border.
func (g *Game) drawPhotos(screen *ebiten.Image, f *arbor.FrameSnapshot, w, h, shakeX, shakeY float64) {
	cam := g.engine.Camera()
	for i := range f.Photos {
		x, y, ok := cam.Project(f.Photos[i].Position, w, h)
		if !ok {
			continue
		}
		depth := f.Photos[i].Position.Dist(f.CameraPosition)
		if depth < 1 {
			depth = 1
		}
		size := 900 / depth
		if size < 4 {
			size = 4
		}

		border := color.RGBA{R: 120, G: 130, B: 150, A: 255}
		if i == f.FocusIndex {
			border = color.RGBA{R: 255, G: 240, B: 160, A: 255}
			size *= 1.4
		}
		fx := float32(x - size/2 + shakeX)
		fy := float32(y - size/2 + shakeY)
		fs := float32(size)
		vector.DrawFilledRect(screen, fx, fy, fs, fs, color.RGBA{R: 30, G: 34, B: 48, A: 255}, false)
		vector.StrokeRect(screen, fx, fy, fs, fs, 2, border, false)
	}
}

// drawChrome renders the hotspot, hold progress, and status text.
func (g *Game) drawChrome(screen *ebiten.Image, f *arbor.FrameSnapshot, w, h float64) {
	// Hold-to-confirm progress bar under the status line.
	if f.HoldProgress > 0 {
		barW := float32(f.HoldProgress * 200)
		vector.DrawFilledRect(screen, 12, float32(h)-36, 200, 8, color.RGBA{R: 40, G: 44, B: 60, A: 255}, false)
		vector.DrawFilledRect(screen, 12, float32(h)-36, barW, 8, color.RGBA{R: 255, G: 220, B: 120, A: 255}, false)
	}

	ebitenutil.DebugPrintAt(screen, f.Status, 12, int(h)-24)
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("blessings %d | %s | %s", f.Blessings, f.Mode, f.Gesture), 12, 8)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// rainbowColor cycles the hue wheel; t is in radians-ish units, one full
// cycle per 2π.
func rainbowColor(t float64) arbor.Color {
	return arbor.Color{
		R: 0.5 + 0.5*math.Sin(t),
		G: 0.5 + 0.5*math.Sin(t+2*math.Pi/3),
		B: 0.5 + 0.5*math.Sin(t+4*math.Pi/3),
		A: 1,
	}
}

// Run opens the window and blocks until it closes. The engine is closed on
// the way out so the vision session and audio device are released.
func Run(engine *arbor.Engine, opts Options) error {
	g := New(engine, opts)
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(opts.Title)
	defer engine.Close()
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("arbor: run window: %w", err)
	}
	return nil
}
