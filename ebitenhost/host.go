// Package ebitenhost drives a tempo engine from an Ebitengine game loop.
//
// The engine is ticked once per Ebitengine update with a fixed step of
// 1/TPS seconds, so animations advance in lockstep with game logic.
package ebitenhost

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/tempo"
)

const (
	defaultWidth  = 640
	defaultHeight = 480
	fpsRefresh    = 0.5
)

// RunConfig configures the window and the per-frame hooks.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// TPS overrides Ebitengine's ticks per second when > 0.
	TPS int
	// ClearColor fills the screen before Draw when set.
	ClearColor color.Color
	// Update runs after the engine has been ticked.
	Update func() error
	Draw   func(screen *ebiten.Image)
}

// Game implements ebiten.Game around an engine.
type Game struct {
	engine *tempo.Engine
	cfg    RunConfig

	sinceFPS float64
	fpsText  string
}

// NewGame returns a Game that ticks e. Zero sizes default to 640x480.
func NewGame(e *tempo.Engine, cfg RunConfig) *Game {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	return &Game{engine: e, cfg: cfg}
}

// Engine returns the engine driven by the game.
func (g *Game) Engine() *tempo.Engine { return g.engine }

func (g *Game) step() float64 {
	tps := g.cfg.TPS
	if tps <= 0 {
		tps = ebiten.TPS()
	}
	return 1 / float64(tps)
}

// Update ticks the engine, then calls the configured update hook.
func (g *Game) Update() error {
	dt := g.step()
	g.engine.Tick(dt)

	if g.cfg.ShowFPS {
		g.sinceFPS += dt
		if g.fpsText == "" || g.sinceFPS >= fpsRefresh {
			g.sinceFPS = 0
			g.fpsText = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
		}
	}

	if g.cfg.Update != nil {
		return g.cfg.Update()
	}
	return nil
}

// Draw clears the screen, calls the draw hook and prints the FPS overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor != nil {
		screen.Fill(g.cfg.ClearColor)
	}
	if g.cfg.Draw != nil {
		g.cfg.Draw(screen)
	}
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, g.fpsText)
	}
}

// Layout returns the configured logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and runs e until the window is closed or a hook returns
// an error.
func Run(e *tempo.Engine, cfg RunConfig) error {
	g := NewGame(e, cfg)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	return ebiten.RunGame(g)
}
