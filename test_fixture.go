package veldt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rotisserie/eris"
	"gotest.tools/v3/assert"
)

// TestFixture is a helper struct that manages a World instance. It will automatically clean up
// its resources at the end of the test.
type TestFixture struct {
	testing.TB
	*World

	// BaseURL is something like "localhost:5050". You must attach http:// or ws:// as well as a resource path.
	BaseURL string
	Redis   *miniredis.Miniredis

	TickTrigger      chan time.Time
	TickSubscription <-chan uint64

	doCleanup func()
	startOnce *sync.Once
}

// NewTestFixture creates a test fixture with a freshly started world. Pass a nil miniredis to
// have the fixture start one on its own.
func NewTestFixture(t testing.TB, redis *miniredis.Miniredis, opts ...WorldOption) *TestFixture {
	if redis == nil {
		redis = miniredis.RunT(t)
	}

	port, err := findOpenPort()
	assert.NilError(t, err)

	t.Setenv("VELDT_PORT", port)
	t.Setenv("REDIS_ADDRESS", redis.Addr())

	tickTrigger, doneTickCh := make(chan time.Time), make(chan uint64)

	defaultOpts := []WorldOption{
		WithTickChannel(tickTrigger),
		WithTickDoneChannel(doneTickCh),
	}

	// Default options go first so that any user supplied options overwrite the defaults.
	world, err := NewWorld(append(defaultOpts, opts...)...)
	assert.NilError(t, err)

	return &TestFixture{
		TB:    t,
		World: world,

		BaseURL: "localhost:" + port,
		Redis:   redis,

		TickTrigger:      tickTrigger,
		TickSubscription: doneTickCh,

		startOnce: &sync.Once{},
		// Only register this method with t.Cleanup if the game server is actually started
		doCleanup: func() {
			// First, make sure completed ticks will never be blocked
			go func() {
				for range doneTickCh { //nolint:revive // This pattern drains the channel until closed
				}
			}()

			// Next, shut down the world
			assert.NilError(t, world.Shutdown())

			// The world is shut down; No more ticks will be started
			close(tickTrigger)
		},
	}
}

// StartWorld starts the game world and registers a cleanup function that will shut down the
// world at the end of the test. Components, systems, and hooks should be registered before
// calling this function.
func (t *TestFixture) StartWorld() {
	t.startOnce.Do(func() {
		startupError := make(chan error)
		go func() {
			// StartGame is meant to block forever, so any return value will be non-nil and cause for concern.
			// Also, calling t.Fatal from a non-main thread only reports a failure once the test on the main thread
			// has completed. By sending this error out on a channel we can fail the test right away (assuming
			// DoTick has been called from the main thread).
			startupError <- t.World.StartGame()
		}()

		// Wait until the world has reached the running stage and the server is accepting requests
		for !t.World.IsGameRunning() || !t.serverIsUp() {
			select {
			case err := <-startupError:
				t.Fatalf("startup error: %v", err)
			case <-time.After(10 * time.Millisecond): //nolint:gomnd // its for testing.
			}
		}

		t.Cleanup(t.doCleanup)
	})
}

// DoTick executes one game tick and blocks until the tick is complete. StartWorld is
// automatically called if it was not called before the first tick.
func (t *TestFixture) DoTick() {
	t.StartWorld()
	t.TickTrigger <- time.Now()
	<-t.TickSubscription
}

// WorldContext returns a writable WorldContext for manipulating entities directly in tests,
// outside of a system. Changes made through it are committed on the next tick.
func (t *TestFixture) WorldContext() WorldContext {
	return newWorldContextForTick(t.World, context.Background())
}

func (t *TestFixture) serverIsUp() bool {
	conn, err := net.DialTimeout("tcp", t.BaseURL, 100*time.Millisecond) //nolint:gomnd // its for testing.
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (t *TestFixture) httpURL(path string) string {
	return fmt.Sprintf("http://%s/%s", t.BaseURL, path)
}

// Post executes a http POST request to this TestFixture's server.
func (t *TestFixture) Post(path string, payload any) *http.Response {
	bz, err := json.Marshal(payload)
	assert.NilError(t, err)
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodPost,
		t.httpURL(strings.Trim(path, "/")),
		bytes.NewReader(bz),
	)
	assert.NilError(t, err)
	req.Header.Add("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	assert.NilError(t, err)
	return resp
}

// Get executes a http GET request to this TestFixture's server.
func (t *TestFixture) Get(path string) *http.Response {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, t.httpURL(strings.Trim(path, "/")),
		nil)
	assert.NilError(t, err)
	resp, err := http.DefaultClient.Do(req)
	assert.NilError(t, err)
	return resp
}

// findOpenPort finds an open port and returns it as a string.
func findOpenPort() (string, error) {
	findFn := func() (string, error) {
		// Try to get a random port using the wildcard 0 port
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return "", eris.Wrap(err, "failed to initialize listener")
		}

		// Get the automatically assigned port number from the listener
		tcpAddr, err := net.ResolveTCPAddr(l.Addr().Network(), l.Addr().String())
		if err != nil {
			return "", eris.Wrap(err, "failed to resolve address")
		}

		// Close the listener when the function returns
		err = l.Close()
		if err != nil {
			return "", eris.Wrap(err, "failed to close listener")
		}
		return strconv.Itoa(tcpAddr.Port), nil
	}

	for retries := 10; retries > 0; retries-- {
		port, err := findFn()
		if err == nil {
			return port, nil
		}
		time.Sleep(10 * time.Millisecond) //nolint:gomnd // it's fine.
	}

	return "", eris.New("failed to find an open port")
}
