// Package game wires the battle map client together and drives it from
// ebiten's game loop.
package game

import (
	"fmt"
	"image"
	"time"

	"github.com/cbodonnell/skirmish/client/audio"
	"github.com/cbodonnell/skirmish/client/combat"
	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/input"
	"github.com/cbodonnell/skirmish/client/iso"
	"github.com/cbodonnell/skirmish/client/movement"
	"github.com/cbodonnell/skirmish/client/network"
	"github.com/cbodonnell/skirmish/client/picking"
	"github.com/cbodonnell/skirmish/client/render"
	"github.com/cbodonnell/skirmish/client/scene"
	"github.com/cbodonnell/skirmish/client/sprites"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/client/visibility"
	"github.com/cbodonnell/skirmish/client/zorder"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/queue"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	DefaultScreenWidth  = 1280
	DefaultScreenHeight = 720
)

type GameMode int

const (
	// GameModeLoading waits for the first world snapshot.
	GameModeLoading GameMode = iota
	GameModePlay
	GameModeNetworkError
)

func (m GameMode) String() string {
	switch m {
	case GameModeLoading:
		return "Loading"
	case GameModePlay:
		return "Play"
	case GameModeNetworkError:
		return "Network Error"
	}
	return "Unknown"
}

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	// debug is a boolean value indicating whether debug mode is enabled.
	debug  bool
	mode   GameMode
	logger *log.Logger

	store     *store.Store
	bus       *events.Bus
	transform *iso.Transform
	scene     *scene.Scene
	runner    *network.QueueRunner
	poller    *network.Manager

	sprites    *sprites.Manager
	movement   *movement.Controller
	combat     *combat.Controller
	effects    *combat.EffectsHandler
	visibility *visibility.Calculator
	zorder     *zorder.Manager
	input      *input.Handler
	sound      audio.Output

	// observer is the entity to observe once it first appears.
	observer  string
	lastError error
	lastPoll  time.Time

	width          int
	height         int
	sidePanelWidth float64
	panel          *sidePanel
	detached       bool
}

type NewGameOptions struct {
	Debug bool
	// DebugEvents logs every event bus dispatch.
	DebugEvents bool
	Simulation  network.Simulation
	// Assets provides sprite frames. Defaults to generated placeholders.
	Assets         sprites.AssetSource
	PollInterval   time.Duration
	RequestTimeout time.Duration
	MoveSpeed      float64
	ChainTimeout   time.Duration
	// Observer is the entity whose senses gate rendering from the start.
	Observer       string
	Width          int
	Height         int
	SidePanelWidth float64
	// Sound receives combat sounds. Nil mutes the game.
	Sound audio.Output
	// NewTexture overrides texture upload of loaded frames.
	NewTexture func(img image.Image) *ebiten.Image
	Logger     *log.Logger
}

func NewGame(opts NewGameOptions) (*Game, error) {
	if opts.Simulation == nil {
		return nil, fmt.Errorf("simulation is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultScreenWidth
	}
	if height <= 0 {
		height = DefaultScreenHeight
	}
	sidePanel := opts.SidePanelWidth
	if sidePanel < 0 {
		sidePanel = 0
	}
	assets := opts.Assets
	if assets == nil {
		assets = sprites.PlaceholderSource{}
	}

	g := &Game{
		debug:          opts.Debug,
		mode:           GameModeLoading,
		logger:         logger.With("component", "game"),
		observer:       opts.Observer,
		width:          width,
		height:         height,
		sidePanelWidth: sidePanel,
		sound:          opts.Sound,
	}

	g.store = store.New()
	g.bus = events.NewBus(events.NewBusOptions{Debug: opts.DebugEvents, Logger: logger})
	g.transform = iso.NewTransform(iso.NewTransformOptions{
		TileWidth:      constants.TileWidth,
		TileHeight:     constants.TileHeight,
		ViewportWidth:  float64(width),
		ViewportHeight: float64(height),
		SidePanelWidth: sidePanel,
	})

	g.runner = network.NewQueueRunner(network.NewQueueRunnerOptions{
		Queue:   queue.NewInMemoryQueue(network.DefaultCompletionQueueSize),
		Timeout: opts.RequestTimeout,
		Logger:  logger,
	})
	poller, err := network.NewManager(network.NewManagerOptions{
		Simulation:   opts.Simulation,
		Queue:        queue.NewInMemoryQueue(network.DefaultSnapshotQueueSize),
		PollInterval: opts.PollInterval,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create network manager: %v", err)
	}
	g.poller = poller

	container := zorder.NewSortedContainer()
	g.zorder = zorder.NewManager(zorder.NewManagerOptions{Container: container, Bus: g.bus})

	loader := sprites.NewLoader(sprites.NewLoaderOptions{
		Source:     assets,
		Runner:     g.runner,
		NewTexture: opts.NewTexture,
		Logger:     logger,
	})
	g.sprites = sprites.NewManager(sprites.NewManagerOptions{
		Store:  g.store,
		Loader: loader,
		Bus:    g.bus,
		Logger: logger,
	})
	g.movement = movement.NewController(movement.NewControllerOptions{
		Store:  g.store,
		Bus:    g.bus,
		Mover:  opts.Simulation,
		Runner: g.runner,
		Speed:  opts.MoveSpeed,
		Logger: logger,
	})
	g.combat = combat.NewController(combat.NewControllerOptions{
		Store:        g.store,
		Bus:          g.bus,
		Attacker:     opts.Simulation,
		Runner:       g.runner,
		Mover:        g.movement,
		ZOrder:       g.zorder,
		Refresher:    g.poller,
		ChainTimeout: opts.ChainTimeout,
		Logger:       logger,
	})
	g.effects = combat.NewEffectsHandler(g.store, g.bus)
	g.visibility = visibility.NewCalculator(visibility.NewCalculatorOptions{
		Store:  g.store,
		Motion: g.movement,
		Bus:    g.bus,
	})

	picker := picking.NewPicker(width, height)
	g.input = input.NewHandler(input.NewHandlerOptions{
		Store:     g.store,
		Transform: g.transform,
		Picker:    picker,
		Mover:     g.movement,
		Attacker:  g.combat,
		Covered:   g.covered,
		Fog:       g.fog,
		Logger:    logger,
	})

	if err := g.loadScene(container, picker); err != nil {
		return nil, fmt.Errorf("failed to load scene: %v", err)
	}
	return g, nil
}

// cancelFunc adapts a close method to scene.Canceller.
type cancelFunc func()

func (f cancelFunc) Cancel() {
	f()
}

func (g *Game) fog() *visibility.Result {
	return g.visibility.Last()
}

func (g *Game) loadScene(container *zorder.SortedContainer, picker *picking.Picker) error {
	g.scene = scene.New(scene.NewSceneOptions{
		Surface: g,
		Width:   g.width,
		Height:  g.height,
		Logger:  g.logger,
	})
	g.scene.Track(cancelFunc(g.combat.Close))
	g.scene.Track(cancelFunc(g.effects.Close))
	g.scene.Track(cancelFunc(g.visibility.Close))
	g.scene.Track(cancelFunc(g.zorder.Close))
	g.scene.OnUpdate(g.step)

	components := []scene.Component{
		render.NewTerrain(render.NewTerrainOptions{Store: g.store, Transform: g.transform, Fog: g.fog}),
		render.NewGridLines(g.store, g.transform, g.fog),
		render.NewEntities(render.NewEntitiesOptions{
			Store:     g.store,
			Transform: g.transform,
			Sprites:   g.sprites,
			Container: container,
			Picker:    picker,
			Fog:       g.fog,
			Logger:    g.logger,
		}),
		render.NewEffects(render.NewEffectsOptions{Bus: g.bus, Transform: g.transform}),
		render.NewInteraction(g.store, g.transform),
		audio.NewPlayer(audio.NewPlayerOptions{Bus: g.bus, Output: g.sound, Logger: g.logger}),
	}
	for _, c := range components {
		if err := g.scene.AddComponent(c); err != nil {
			return err
		}
	}
	return nil
}

// step advances controllers and visuals by dt seconds.
func (g *Game) step(dt float64) {
	g.movement.Update(dt)
	g.combat.Update()
	g.sprites.Sync()
	g.sprites.Update(dt)
	if _, changed := g.visibility.Recompute(); changed {
		g.scene.Invalidate()
	}
}

// Start begins polling the simulation.
func (g *Game) Start() error {
	if err := g.poller.Start(); err != nil {
		return fmt.Errorf("failed to start network manager: %v", err)
	}
	return nil
}

// Close tears down the scene and stops background work.
func (g *Game) Close() error {
	g.scene.Teardown()
	if err := g.poller.Stop(); err != nil {
		return fmt.Errorf("failed to stop network manager: %v", err)
	}
	if err := g.runner.Stop(); err != nil {
		return fmt.Errorf("failed to stop request runner: %v", err)
	}
	return nil
}

// Detach is called by the scene once it has been torn down.
func (g *Game) Detach() {
	g.detached = true
	g.logger.Debug("Scene detached")
}

func (g *Game) Update() error {
	g.updateSidePanel()
	g.Tick(1.0/float64(ebiten.TPS()), input.Poll())
	return nil
}

// Tick runs one frame of game logic: async completions, snapshots, input
// and then the scene clock.
func (g *Game) Tick(dt float64, in input.State) {
	g.runner.Drain()
	g.poller.Drain(g.applySnapshot)
	g.input.Handle(in)
	g.scene.Update(dt)
}

func (g *Game) applySnapshot(snap network.Snapshot) {
	if snap.Err != nil {
		if g.lastError == nil {
			g.logger.Error("Failed to poll simulation: %v", snap.Err)
		}
		g.lastError = snap.Err
		g.mode = GameModeNetworkError
		return
	}
	if g.lastError != nil {
		g.logger.Info("Simulation reachable again")
	}
	g.lastError = nil
	g.lastPoll = snap.FetchedAt
	g.mode = GameModePlay

	if snap.Grid != nil {
		gw, gh := g.transform.GridSize()
		if gw != snap.Grid.Width || gh != snap.Grid.Height {
			g.transform.SetGridSize(snap.Grid.Width, snap.Grid.Height)
		}
		g.store.SetGrid(snap.Grid)
	}
	g.store.ApplySnapshot(snap.Entities, snap.FetchedAt)

	if g.observer != "" {
		if _, ok := g.store.Entity(g.observer); ok {
			g.store.SetObserver(g.observer)
			g.observer = ""
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(render.ColorBackground)
	g.scene.Draw(screen)
	g.drawSidePanel(screen)
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.Resize(outsideWidth, outsideHeight)
	}
	return g.width, g.height
}

// Resize updates the viewport and re-renders the scene.
func (g *Game) Resize(width, height int) {
	g.width, g.height = width, height
	g.transform.SetViewport(float64(width), float64(height), g.sidePanelWidth)
	g.scene.Resize(width, height)
}

func (g *Game) Mode() GameMode {
	return g.mode
}

func (g *Game) Store() *store.Store {
	return g.store
}

func (g *Game) Bus() *events.Bus {
	return g.bus
}

func (g *Game) Transform() *iso.Transform {
	return g.transform
}

func (g *Game) Scene() *scene.Scene {
	return g.scene
}

// Wait blocks until every in-flight request has finished.
func (g *Game) Wait() {
	g.runner.Wait()
}
