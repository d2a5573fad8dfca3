package main

import (
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/arcadecar/config"
	"github.com/milk9111/arcadecar/ecs/render"
	"github.com/milk9111/arcadecar/sim"
)

type Game struct {
	cfg     config.Settings
	sim     *sim.Sim
	keys    *keyLookup
	pauseUI *ebitenui.UI

	debug  bool
	paused bool
	quit   bool
}

func NewGame(cfg config.Settings, script string) (*Game, error) {
	keys := newKeyLookup()
	s, err := sim.New(sim.Options{Settings: cfg, KeyState: keys.isDown, Script: script})
	if err != nil {
		return nil, err
	}
	g := &Game{cfg: cfg, sim: s, keys: keys, debug: cfg.Debug}
	g.pauseUI = NewPauseUI(g)
	return g, nil
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused {
		if g.pauseUI != nil {
			g.pauseUI.Update()
		}
		return nil
	}
	g.sim.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	view := render.ViewFor(g.sim.World, g.cfg.Scale, float64(b.Dx()), float64(b.Dy()))
	render.DrawDebug(g.sim.World, screen, view, g.debug)
	if g.paused && g.pauseUI != nil {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.WindowWidth, g.cfg.WindowHeight
}

func (g *Game) resume() {
	g.paused = false
}

// requestQuit ends the run loop on the next Update.
func (g *Game) requestQuit() {
	g.quit = true
}

func (g *Game) Close() {
	if err := g.sim.Close(); err != nil {
		g.sim.Log().Warn().Err(err).Msg("close sim")
	}
}
