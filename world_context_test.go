package veldt_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt"
)

func TestWorldContextLoggerWritesToTheGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	originalLogger := zlog.Logger
	zlog.Logger = zerolog.New(&buf)
	defer func() { zlog.Logger = originalLogger }()

	fixture := veldt.NewTestFixture(t, nil)
	wCtx := fixture.WorldContext()
	wCtx.Logger().Info().Msg("tick context says hello")

	assert.Check(t, strings.Contains(buf.String(), "tick context says hello"))
}
