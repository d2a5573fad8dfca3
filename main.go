package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/arcadecar/config"
	"github.com/milk9111/arcadecar/logging"
)

func main() {
	configPath := flag.String("config", "", "config file (default ./arcadecar.yaml if present)")
	script := flag.String("script", "", "drive with a script from prefabs/scripts instead of the keyboard")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := logging.Logger()
		log.Fatal().Err(err).Msg("load config")
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log := logging.Setup(cfg.LogLevel, os.Stderr, cfg.LogJSON)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle(cfg.WindowTitle)
	ebiten.SetTPS(cfg.TickRate)

	game, err := NewGame(cfg, *script)
	if err != nil {
		log.Fatal().Err(err).Msg("start sandbox")
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Error().Err(err).Msg("run sandbox")
	}
}
