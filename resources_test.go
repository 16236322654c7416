package veldt_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt"
)

type Scoreboard struct {
	Points map[string]int
}

func TestResourcesAreSharedSingletons(t *testing.T) {
	fixture := veldt.NewTestFixture(t, nil)
	assert.NilError(t, veldt.RegisterResource(fixture.World, &Scoreboard{Points: map[string]int{}}))

	board, err := veldt.GetResource[Scoreboard](fixture.WorldContext())
	assert.NilError(t, err)
	board.Points["alice"] = 3

	// A later lookup sees the mutation
	again, err := veldt.GetResource[Scoreboard](fixture.WorldContext())
	assert.NilError(t, err)
	assert.Equal(t, 3, again.Points["alice"])
}

func TestResourceRegistrationRules(t *testing.T) {
	fixture := veldt.NewTestFixture(t, nil)

	assert.Check(t, veldt.RegisterResource(fixture.World, nil) != nil)
	assert.Check(t, veldt.RegisterResource(fixture.World, Scoreboard{}) != nil)

	assert.NilError(t, veldt.RegisterResource(fixture.World, &Scoreboard{}))
	assert.Check(t, veldt.RegisterResource(fixture.World, &Scoreboard{}) != nil)
}

func TestUnregisteredResourceLookupFails(t *testing.T) {
	fixture := veldt.NewTestFixture(t, nil)
	_, err := veldt.GetResource[Scoreboard](fixture.WorldContext())
	assert.Check(t, err != nil)
}

func TestResourceRegistrationFailsAfterWorldIsStarted(t *testing.T) {
	fixture := veldt.NewTestFixture(t, nil)
	fixture.StartWorld()
	assert.Check(t, veldt.RegisterResource(fixture.World, &Scoreboard{}) != nil)
}
