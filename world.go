package veldt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/veldt-engine/veldt/component"
	"github.com/veldt-engine/veldt/events"
	"github.com/veldt-engine/veldt/gamestate"
	ecslog "github.com/veldt-engine/veldt/log"
	"github.com/veldt-engine/veldt/search"
	"github.com/veldt-engine/veldt/search/filter"
	"github.com/veldt-engine/veldt/server"
	"github.com/veldt-engine/veldt/storage/redis"
	"github.com/veldt-engine/veldt/types"
	"github.com/veldt-engine/veldt/worldstage"
)

const (
	RedisDialTimeOut = 15
)

var _ server.Provider = &World{}
var _ ecslog.Loggable = &World{}

type World struct {
	namespace string

	// Storage
	redisStorage *redis.Storage
	entityStore  gamestate.Manager

	// Networking
	server        *server.Server
	serverOptions []server.Option

	// Events
	eventHub *events.EventHub

	// Core modules
	worldStage       *worldstage.Manager
	systemManager    *SystemManager
	componentManager *component.Manager
	hookManager      *hookManager

	// Deferred commands queued by hooks
	commands           *Commands
	isFlushingCommands bool

	// Singleton resources shared by systems and hooks
	resources *resourceStore

	// Tick
	tick            *atomic.Uint64
	timestamp       *atomic.Uint64
	tickChannel     <-chan time.Time
	tickDoneChannel chan<- uint64
	// addChannelWaitingForNextTick accepts a channel which will be closed after a tick has been completed.
	addChannelWaitingForNextTick chan chan struct{}
}

// NewWorld creates a new World object using Redis as the storage layer.
func NewWorld(opts ...WorldOption) (*World, error) {
	serverOptions, worldOptions := separateOptions(opts)

	// Load config. Fallback value is used if it's not set.
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config to start world")
	}

	log.Info().Msgf("Creating a new world in namespace %q", cfg.Namespace)

	redisMetaStore := redis.NewRedisStorage(redis.Options{
		Addr:        cfg.RedisAddress,
		Password:    cfg.RedisPassword,
		DB:          0,                              // use default DB
		DialTimeout: RedisDialTimeOut * time.Second, // Increase startup dial timeout
	}, cfg.Namespace)

	redisStore := gamestate.NewRedisPrimitiveStorage(redisMetaStore.Client)
	entityCommandBuffer, err := gamestate.NewEntityCommandBuffer(redisStore)
	if err != nil {
		return nil, err
	}

	world := &World{
		namespace: cfg.Namespace,

		// Storage
		redisStorage: &redisMetaStore,
		entityStore:  entityCommandBuffer,

		// Networking
		server:        nil, // Will be initialized in StartGame
		serverOptions: append([]server.Option{server.WithPort(cfg.Port)}, serverOptions...),

		// Events
		eventHub: events.NewEventHub(),

		// Core modules
		worldStage:       worldstage.NewManager(),
		systemManager:    NewSystemManager(),
		componentManager: component.NewManager(redisMetaStore.SchemaStorage),
		hookManager:      newHookManager(),

		commands:  newCommands(),
		resources: newResourceStore(),

		// Tick
		tick:                         new(atomic.Uint64),
		timestamp:                    new(atomic.Uint64),
		tickChannel:                  time.Tick(cfg.TickInterval()), //nolint:staticcheck // its ok.
		tickDoneChannel:              nil,                           // Will be injected via options
		addChannelWaitingForNextTick: make(chan chan struct{}),
	}

	// Apply options
	for _, opt := range worldOptions {
		opt(world)
	}

	return world, nil
}

func (w *World) CurrentTick() uint64 {
	return w.tick.Load()
}

// doTick performs one game tick: it runs every registered system in order, flushes any
// commands still queued by hooks, and commits the resulting state changes atomically.
func (w *World) doTick(ctx context.Context, timestamp uint64) error {
	// The world can only perform a tick if:
	// - The world is currently running
	// - The world is shutting down (this will be the last or penultimate tick)
	if w.worldStage.Current() != worldstage.Running &&
		w.worldStage.Current() != worldstage.ShuttingDown {
		return eris.Errorf("invalid world state to tick: %s", w.worldStage.Current())
	}

	// This defer is here to catch any panics that occur during the tick. It will log the current tick and the
	// current system that is running.
	defer w.handleTickPanic()

	ctx, span := otel.Tracer("world").Start(ctx, "world.span.tick")
	defer span.End()

	log.Info().Int("tick", int(w.CurrentTick())).Msg("Tick started")

	// Store the timestamp for this tick
	w.timestamp.Store(timestamp)

	// Hook bookkeeping from the previous tick is no longer relevant
	w.commands.reset()

	// Create the world context to inject into systems
	wCtx := newWorldContextForTick(w, ctx)

	// Run the init system on the first tick of a new game
	if w.CurrentTick() == 0 {
		if err := w.systemManager.RunInitSystem(wCtx); err != nil {
			return err
		}
	}

	// Run all registered systems.
	if err := w.systemManager.RunSystems(wCtx); err != nil {
		return err
	}

	// Hooks may have queued commands that no entity operation flushed yet
	if err := w.flushCommands(wCtx); err != nil {
		return err
	}

	if err := w.entityStore.FinalizeTick(ctx); err != nil {
		return err
	}

	// Increment the tick
	w.tick.Add(1)

	// Broadcast all events that were queued during this tick
	w.eventHub.FlushEvents()

	return nil
}

// StartGame starts running the world game loop. Each time a message arrives on the tickChannel, a world tick is
// attempted. In addition, an HTTP server (listening on the configured port) is created so that the world's state
// can be inspected. After StartGame is called, RegisterComponent, RegisterSystems, and RegisterComponentHooks may
// not be called. If StartGame doesn't encounter any errors, it will block forever, running the server and ticking
// the game in the background.
func (w *World) StartGame() error {
	// Game stage: Init -> Starting
	ok := w.worldStage.CompareAndSwap(worldstage.Init, worldstage.Starting)
	if !ok {
		return errors.New("game has already been started")
	}

	if err := w.entityStore.RegisterComponents(w.componentManager.GetComponents()); err != nil {
		closeErr := w.entityStore.Close()
		if closeErr != nil {
			return eris.Wrap(err, closeErr.Error())
		}
		return err
	}

	// Load the current tick from storage so the world picks up where it left off
	currTick, err := w.entityStore.GetTickNumber(context.Background())
	if err != nil {
		return err
	}
	w.tick.Store(currTick)

	w.worldStage.Store(worldstage.Ready)

	// Create the server. We can't do this in NewWorld() because the server needs to know about
	// the registered components first.
	w.server, err = server.New(w, w.eventHub, w.serverOptions...)
	if err != nil {
		return err
	}

	// Warn when no components or systems are registered
	if len(w.componentManager.GetComponents()) == 0 {
		log.Warn().Msg("No components registered")
	}
	if len(w.systemManager.GetSystemNames()) == 0 {
		log.Warn().Msg("No systems registered")
	}

	// Log world info
	ecslog.World(&log.Logger, w, zerolog.InfoLevel)

	// Game stage: Ready -> Running
	w.worldStage.Store(worldstage.Running)

	// Start the game loop
	w.startGameLoop(context.Background(), w.tickChannel, w.tickDoneChannel)

	// Start the server
	w.startServer()

	// handle shutdown via a signal
	w.handleShutdown()
	<-w.worldStage.NotifyOnStage(worldstage.ShutDown)
	return nil
}

func (w *World) startServer() {
	go func() {
		if err := w.server.Serve(); errors.Is(err, http.ErrServerClosed) {
			log.Info().Err(err).Msgf("the server has been closed: %s", eris.ToString(err, true))
		} else if err != nil {
			log.Fatal().Err(err).Msgf("the server has failed: %s", eris.ToString(err, true))
		}
	}()
}

func (w *World) startGameLoop(ctx context.Context, tickStart <-chan time.Time, tickDone chan<- uint64) {
	log.Info().Msg("Game loop started")
	go func() {
		var waitingChs []chan struct{}
	loop:
		for {
			select {
			case _, ok := <-tickStart:
				if !ok {
					panic("tickStart channel has been closed; tick rate is now unbounded.")
				}
				w.tickTheWorld(ctx, tickDone)
				closeAllChannels(waitingChs)
				waitingChs = waitingChs[:0]
			case <-w.worldStage.NotifyOnStage(worldstage.ShuttingDown):
				w.drainChannelsWaitingForNextTick()
				closeAllChannels(waitingChs)
				if tickDone != nil {
					close(tickDone)
				}
				break loop
			case ch := <-w.addChannelWaitingForNextTick:
				waitingChs = append(waitingChs, ch)
			}
		}
		w.worldStage.Store(worldstage.ShutDown)
	}()
}

func (w *World) tickTheWorld(ctx context.Context, tickDone chan<- uint64) {
	currTick := w.CurrentTick()
	// this is the final point where errors bubble up and hit a panic. There are other places where this occurs
	// but this is the highest terminal point.
	// the panic may point you to here, (or the tick function) but the real stack trace is in the error message.
	err := w.doTick(ctx, uint64(time.Now().Unix()))
	if err != nil {
		bytes, errMarshal := json.Marshal(eris.ToJSON(err, true))
		if errMarshal != nil {
			panic(errMarshal)
		}
		panic(string(bytes))
	}
	if tickDone != nil {
		tickDone <- currTick
	}
}

func (w *World) IsGameRunning() bool {
	return w.worldStage.Current() == worldstage.Running
}

// IsGameLoopRunning reports whether the game loop is processing ticks.
func (w *World) IsGameLoopRunning() bool {
	return w.IsGameRunning()
}

func (w *World) Shutdown() error {
	log.Info().Msg("Shutting down game loop.")
	ok := w.worldStage.CompareAndSwap(worldstage.Running, worldstage.ShuttingDown)
	if !ok {
		select {
		case <-w.worldStage.NotifyOnStage(worldstage.ShuttingDown):
			// Some other goroutine has already started the shutdown process. Wait until the world is
			// actually shut down.
			<-w.worldStage.NotifyOnStage(worldstage.ShutDown)
			return nil
		default:
		}
		return errors.New("shutdown attempted before the world was started")
	}

	// Block until the world has stopped ticking
	<-w.worldStage.NotifyOnStage(worldstage.ShutDown)

	if w.server != nil {
		if err := w.server.Shutdown(); err != nil {
			return err
		}
	}

	w.eventHub.Shutdown()

	log.Info().Msg("Successfully shut down game loop.")
	if err := w.redisStorage.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close storage connection.")
		return err
	}

	return nil
}

func (w *World) handleShutdown() {
	signalChannel := make(chan os.Signal, 1)
	go func() {
		signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
		for sig := range signalChannel {
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				err := w.Shutdown()
				if err != nil {
					log.Err(err).Msgf("There was an error during shutdown.")
				}
				return
			}
		}
	}()
}

func (w *World) handleTickPanic() {
	if r := recover(); r != nil {
		log.Error().Msgf(
			"Tick: %d, Current running system: %s",
			w.CurrentTick(),
			w.systemManager.GetCurrentSystem(),
		)
		panic(r)
	}
}

func (w *World) Namespace() string {
	return w.namespace
}

func (w *World) GameStateManager() gamestate.Manager {
	return w.entityStore
}

// WaitForNextTick blocks until at least one game tick has completed. It returns true if it successfully waited for a
// tick. False may be returned if the world was shut down while waiting for the next tick to complete.
func (w *World) WaitForNextTick() (success bool) {
	startTick := w.CurrentTick()
	ch := make(chan struct{})
	w.addChannelWaitingForNextTick <- ch
	<-ch
	return w.CurrentTick() > startTick
}

// drainChannelsWaitingForNextTick continually closes any channels that are added to the
// addChannelWaitingForNextTick channel. This is used when the world is shut down; it ensures
// any calls to WaitForNextTick that happen after a shutdown will not block.
func (w *World) drainChannelsWaitingForNextTick() {
	go func() {
		for ch := range w.addChannelWaitingForNextTick {
			close(ch)
		}
	}()
}

func (w *World) Search(filter filter.ComponentFilter) *search.Search {
	return search.New(w.entityStore, filter)
}

func (w *World) StoreReader() gamestate.Reader {
	return w.entityStore
}

func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.componentManager.GetComponents()
}

func (w *World) GetRegisteredSystems() []string {
	return w.systemManager.GetSystemNames()
}

func (w *World) GetComponentByName(name string) (types.ComponentMetadata, error) {
	return w.componentManager.GetComponentByName(name)
}

func (w *World) GetComponentInfo() []types.ComponentInfo {
	return w.componentManager.GetComponentInfo()
}

func closeAllChannels(chs []chan struct{}) {
	for _, ch := range chs {
		close(ch)
	}
}
