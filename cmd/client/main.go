package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/cbodonnell/skirmish/client/audio"
	"github.com/cbodonnell/skirmish/client/combat"
	"github.com/cbodonnell/skirmish/client/game"
	"github.com/cbodonnell/skirmish/client/movement"
	"github.com/cbodonnell/skirmish/client/network"
	"github.com/cbodonnell/skirmish/client/sprites"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	serverURL := flag.String("server-url", network.DefaultServerURL, "Simulation server URL")
	assets := flag.String("assets", "", "Sprite asset directory (placeholders when empty)")
	pollInterval := flag.Duration("poll-interval", network.DefaultPollInterval, "Entity snapshot poll interval")
	moveSpeed := flag.Float64("move-speed", movement.DefaultSpeed, "Movement speed in cells per second")
	observer := flag.String("observer", "", "Entity to observe on start")
	logLevel := flag.String("log-level", "info", "Log level")
	debug := flag.Bool("debug", false, "Show the debug overlay")
	debugEvents := flag.Bool("debug-events", false, "Log every animation event")
	width := flag.Int("width", game.DefaultScreenWidth, "Window width")
	height := flag.Int("height", game.DefaultScreenHeight, "Window height")
	sidePanel := flag.Float64("side-panel", constants.SidePanelWidth, "Side panel width")
	mute := flag.Bool("mute", false, "Disable combat sounds")
	chainTimeout := flag.Duration("attack-chain-timeout", combat.DefaultChainTimeout, "How long a move-then-attack may wait for the move")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	var source sprites.AssetSource = sprites.PlaceholderSource{}
	if *assets != "" {
		source = sprites.NewFSSource(os.DirFS(*assets))
		log.Info("Loading sprites from %s", *assets)
	}

	sim := network.NewHTTPSimulation(network.NewHTTPSimulationOptions{
		BaseURL: *serverURL,
		Client:  &http.Client{Timeout: network.DefaultRequestTimeout},
	})

	var sound audio.Output
	if !*mute {
		out, err := audio.OpenSpeaker()
		if err != nil {
			log.Warn("Playing without sound: %v", err)
		} else {
			sound = out
		}
	}

	g, err := game.NewGame(game.NewGameOptions{
		Debug:          *debug,
		DebugEvents:    *debugEvents,
		Simulation:     sim,
		Assets:         source,
		PollInterval:   *pollInterval,
		MoveSpeed:      *moveSpeed,
		ChainTimeout:   *chainTimeout,
		Observer:       *observer,
		Width:          *width,
		Height:         *height,
		SidePanelWidth: *sidePanel,
		Sound:          sound,
		Logger:         logger,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create game: %v", err))
	}
	if err := g.Start(); err != nil {
		panic(fmt.Sprintf("Failed to start game: %v", err))
	}
	log.Info("Polling simulation at %s", *serverURL)

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Skirmish")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	runErr := ebiten.RunGame(g)
	if err := g.Close(); err != nil {
		log.Error("Failed to close game: %v", err)
	}
	if runErr != nil {
		panic(fmt.Sprintf("Failed to run game: %v", runErr))
	}
}
