package veldt_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt"
)

var systemRunOrder []string

func RecordAlphaSystem(veldt.WorldContext) error {
	systemRunOrder = append(systemRunOrder, "alpha")
	return nil
}

func RecordBetaSystem(veldt.WorldContext) error {
	systemRunOrder = append(systemRunOrder, "beta")
	return nil
}

func TestSystemsRunInRegistrationOrder(t *testing.T) {
	systemRunOrder = nil
	fixture := veldt.NewTestFixture(t, nil)
	assert.NilError(t, veldt.RegisterSystems(fixture.World, RecordBetaSystem, RecordAlphaSystem))

	fixture.DoTick()
	assert.DeepEqual(t, systemRunOrder, []string{"beta", "alpha"})
	fixture.DoTick()
	assert.DeepEqual(t, systemRunOrder, []string{"beta", "alpha", "beta", "alpha"})
}

func TestSystemNamesAreDerivedFromFunctionNames(t *testing.T) {
	fixture := veldt.NewTestFixture(t, nil)
	assert.NilError(t, veldt.RegisterSystems(fixture.World, RecordAlphaSystem))

	names := fixture.World.GetRegisteredSystems()
	assert.Equal(t, 1, len(names))
	assert.Equal(t, "veldt_test.RecordAlphaSystem", names[0])
}

func TestDuplicateSystemRegistrationFails(t *testing.T) {
	fixture := veldt.NewTestFixture(t, nil)
	err := veldt.RegisterSystems(fixture.World, RecordAlphaSystem, RecordAlphaSystem)
	assert.Check(t, err != nil)

	// The failed registration must not leave any of the systems behind
	assert.Equal(t, 0, len(fixture.World.GetRegisteredSystems()))
}

func TestInitSystemRunsExactlyOnceBeforeTheFirstTick(t *testing.T) {
	fixture := veldt.NewTestFixture(t, nil)

	initRuns := 0
	ticksSeenByInit := uint64(99)
	assert.NilError(t, veldt.RegisterInitSystem(fixture.World, func(wCtx veldt.WorldContext) error {
		initRuns++
		ticksSeenByInit = wCtx.CurrentTick()
		return nil
	}))

	fixture.DoTick()
	fixture.DoTick()
	assert.Equal(t, 1, initRuns)
	assert.Equal(t, uint64(0), ticksSeenByInit)
}

func TestInitSystemDoesNotRunOnRestartedWorld(t *testing.T) {
	fixture := veldt.NewTestFixture(t, nil)
	fixture.DoTick()
	assert.NilError(t, fixture.World.Shutdown())

	initRuns := 0
	restarted := veldt.NewTestFixture(t, fixture.Redis)
	assert.NilError(t, veldt.RegisterInitSystem(restarted.World, func(veldt.WorldContext) error {
		initRuns++
		return nil
	}))

	restarted.DoTick()
	assert.Equal(t, 0, initRuns)
}
