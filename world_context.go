package veldt

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veldt-engine/veldt/gamestate"
)

// WorldContext is the gateway through which systems and hooks interact with the world.
type WorldContext interface {
	// CurrentTick returns the current tick.
	CurrentTick() uint64
	// Timestamp returns the UNIX timestamp of the tick.
	Timestamp() uint64
	// Logger returns the logger that can be used to log messages from within systems or hooks.
	Logger() *zerolog.Logger
	// EmitEvent queues an event that will be broadcast to all websocket subscribers when the
	// tick is complete.
	EmitEvent(kind string, payload any) error
	// Namespace returns the namespace of the world.
	Namespace() string
	// Commands returns the deferred command queue. Hooks use it to despawn entities.
	Commands() *Commands

	// For internal use.

	context() context.Context
	setLogger(logger zerolog.Logger)
	storeReader() gamestate.Reader
	storeManager() (gamestate.Manager, error)
	getWorld() *World
	isReadOnly() bool
}

var ErrReadOnlyWorldContext = eris.New("read-only world context cannot modify state")

var _ WorldContext = &worldContext{}

type worldContext struct {
	world    *World
	logger   *zerolog.Logger
	ctx      context.Context
	readOnly bool
}

// newWorldContextForTick creates the context that is injected into systems during a tick.
func newWorldContextForTick(world *World, ctx context.Context) WorldContext {
	return &worldContext{
		world:    world,
		logger:   &log.Logger,
		ctx:      ctx,
		readOnly: false,
	}
}

// NewReadOnlyWorldContext creates a context that can only inspect state. It is used by the
// HTTP server and by anything else that runs outside the tick loop.
func NewReadOnlyWorldContext(world *World) WorldContext {
	return &worldContext{
		world:    world,
		logger:   &log.Logger,
		ctx:      context.Background(),
		readOnly: true,
	}
}

func (wCtx *worldContext) CurrentTick() uint64 {
	return wCtx.world.CurrentTick()
}

func (wCtx *worldContext) Timestamp() uint64 {
	return wCtx.world.timestamp.Load()
}

func (wCtx *worldContext) Logger() *zerolog.Logger {
	return wCtx.logger
}

func (wCtx *worldContext) EmitEvent(kind string, payload any) error {
	return wCtx.world.eventHub.EmitEvent(kind, wCtx.CurrentTick(), payload)
}

func (wCtx *worldContext) Namespace() string {
	return wCtx.world.Namespace()
}

func (wCtx *worldContext) Commands() *Commands {
	return wCtx.world.commands
}

func (wCtx *worldContext) context() context.Context {
	return wCtx.ctx
}

func (wCtx *worldContext) setLogger(logger zerolog.Logger) {
	wCtx.logger = &logger
}

func (wCtx *worldContext) storeReader() gamestate.Reader {
	return wCtx.world.entityStore
}

func (wCtx *worldContext) storeManager() (gamestate.Manager, error) {
	if wCtx.readOnly {
		return nil, eris.Wrap(ErrReadOnlyWorldContext, "")
	}
	return wCtx.world.entityStore, nil
}

func (wCtx *worldContext) getWorld() *World {
	return wCtx.world
}

func (wCtx *worldContext) isReadOnly() bool {
	return wCtx.readOnly
}
