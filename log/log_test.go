package log_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/veldt-engine/veldt/component"
	"github.com/veldt-engine/veldt/log"
	"github.com/veldt-engine/veldt/types"
)

type EnergyComp struct {
	Value int
}

func (EnergyComp) Name() string { return "EnergyComp" }

type PositionComp struct {
	X, Y int
}

func (PositionComp) Name() string { return "PositionComp" }

// fakeLoggable stands in for a world when only the log output is under test.
type fakeLoggable struct {
	components []types.ComponentMetadata
	systems    []string
}

func (f *fakeLoggable) GetRegisteredComponents() []types.ComponentMetadata { return f.components }
func (f *fakeLoggable) GetRegisteredSystems() []string                     { return f.systems }

func newLoggableForTest(t *testing.T) *fakeLoggable {
	energy, err := component.New[EnergyComp]()
	require.NoError(t, err)
	require.NoError(t, energy.SetID(1))

	position, err := component.New[PositionComp]()
	require.NoError(t, err)
	require.NoError(t, position.SetID(2))

	return &fakeLoggable{
		components: []types.ComponentMetadata{position, energy},
		systems:    []string{"veldt.MoveSystem", "veldt.DecaySystem"},
	}
}

func TestWorldLogsComponentsAndSystems(t *testing.T) {
	var buf bytes.Buffer
	bufLogger := zerolog.New(&buf)

	log.World(&bufLogger, newLoggableForTest(t), zerolog.InfoLevel)

	require.JSONEq(t, `
		{
			"level":"info",
			"total_components":2,
			"components":
				[
					{
						"component_id":1,
						"component_name":"EnergyComp"
					},
					{
						"component_id":2,
						"component_name":"PositionComp"
					}
				],
			"total_systems":2,
			"systems":
				[
					"veldt.MoveSystem",
					"veldt.DecaySystem"
				]
		}`, buf.String())
}

func TestEntityLogsComponentSet(t *testing.T) {
	var buf bytes.Buffer
	bufLogger := zerolog.New(&buf)

	loggable := newLoggableForTest(t)
	log.Entity(&bufLogger, zerolog.DebugLevel, 0, 0, loggable.components[:1])

	require.JSONEq(t, `
		{
			"level":"debug",
			"components":[{
				"component_id":2,
				"component_name":"PositionComp"
			}],
			"entity_id":0,
			"archetype_id":0
		}`, buf.String())
}

func TestCreateSystemLoggerAddsTheSystemField(t *testing.T) {
	var buf bytes.Buffer
	bufLogger := zerolog.New(&buf)

	log.CreateSystemLogger(&bufLogger, "veldt.MoveSystem").Info().Msg("system ran")
	require.JSONEq(t, `{"level":"info","system":"veldt.MoveSystem","message":"system ran"}`, buf.String())
}

func TestCreateTraceLoggerAddsTheTraceField(t *testing.T) {
	var buf bytes.Buffer
	bufLogger := zerolog.New(&buf)

	log.CreateTraceLogger(&bufLogger, "trace-1").Info().Msg("traced")
	require.JSONEq(t, `{"level":"info","trace_id":"trace-1","message":"traced"}`, buf.String())
}
