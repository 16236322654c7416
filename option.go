package veldt

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veldt-engine/veldt/server"
)

// WorldOption represents an option that can be used to augment how the World will be run.
type WorldOption struct {
	serverOption server.Option
	worldOption  func(*World)
}

// WithPort specifies the port for the World's HTTP server. If omitted, the environment
// variable VELDT_PORT will be used, and if that is unset, port 4040 will be used.
func WithPort(port string) WorldOption {
	return WorldOption{
		serverOption: server.WithPort(port),
	}
}

// WithCORS enables cross-origin resource sharing on the World's HTTP server.
func WithCORS() WorldOption {
	return WorldOption{
		serverOption: server.WithCORS(),
	}
}

// WithTickChannel sets the channel that will be used to decide when world.Tick is executed. If unset, a loop interval
// of 1 second will be set. To set some other time, use: WithTickChannel(time.Tick(<some-duration>)). Tests can pass
// in a channel controlled by the test for fine-grained control over when ticks are executed.
func WithTickChannel(ch <-chan time.Time) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.tickChannel = ch
		},
	}
}

// WithTickDoneChannel sets a channel that will be notified each time a tick completes. The completed tick will be
// pushed to the channel. This option is useful in tests when assertions need to be performed at the end of a tick.
func WithTickDoneChannel(ch chan<- uint64) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.tickDoneChannel = ch
		},
	}
}

// WithPrettyLog enables human-readable console logging instead of the default JSON output.
func WithPrettyLog() WorldOption {
	return WorldOption{
		worldOption: func(_ *World) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}
}

// separateOptions splits WorldOptions into server options and world options.
func separateOptions(opts []WorldOption) ([]server.Option, []func(*World)) {
	serverOptions := make([]server.Option, 0)
	worldOptions := make([]func(*World), 0)
	for _, opt := range opts {
		if opt.serverOption != nil {
			serverOptions = append(serverOptions, opt.serverOption)
		}
		if opt.worldOption != nil {
			worldOptions = append(worldOptions, opt.worldOption)
		}
	}
	return serverOptions, worldOptions
}
