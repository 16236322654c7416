package gamestate_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt/component"
	"github.com/veldt-engine/veldt/gamestate"
	"github.com/veldt-engine/veldt/search/filter"
	"github.com/veldt-engine/veldt/types"
)

func newCmdBufferForTest(t *testing.T) *gamestate.EntityCommandBuffer {
	manager, _ := newCmdBufferAndRedisClientForTest(t, nil)
	return manager
}

// newCmdBufferAndRedisClientForTest creates a gamestate.EntityCommandBuffer using the given
// redis client. If the passed in client is nil, a miniredis-backed client is created.
func newCmdBufferAndRedisClientForTest(
	t *testing.T,
	client *redis.Client,
) (*gamestate.EntityCommandBuffer, *redis.Client) {
	if client == nil {
		s := miniredis.RunT(t)
		options := redis.Options{
			Addr:     s.Addr(),
			Password: "", // no password set
			DB:       0,  // use default DB
		}

		client = redis.NewClient(&options)
	}
	storage := gamestate.NewRedisPrimitiveStorage(client)
	manager, err := gamestate.NewEntityCommandBuffer(storage)
	assert.NilError(t, err)
	assert.NilError(t, manager.RegisterComponents(allComponents))
	return manager, client
}

type Foo struct {
	Value int
}

func (Foo) Name() string {
	return "foo"
}

type Bar struct {
	Value int
}

func (Bar) Name() string {
	return "bar"
}

var (
	fooComp, errForFooCompGlobal = component.New[Foo]()
	barComp, errForBarCompGlobal = component.New[Bar]()
	allComponents                = []types.ComponentMetadata{fooComp, barComp}
)

func TestGlobals(t *testing.T) {
	assert.NilError(t, errForFooCompGlobal)
	assert.NilError(t, errForBarCompGlobal)
}

//nolint:gochecknoinits // its for testing.
func init() {
	_ = fooComp.SetID(1) //nolint:errcheck
	_ = barComp.SetID(2) //nolint:errcheck
}

func TestCanCreateEntityAndSetComponent(t *testing.T) {
	manager := newCmdBufferForTest(t)
	ctx := context.Background()
	wantValue := Foo{99}

	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	_, err = manager.GetComponentForEntity(fooComp, id)
	assert.NilError(t, err)
	assert.NilError(t, manager.SetComponentForEntity(fooComp, id, wantValue))
	gotValue, err := manager.GetComponentForEntity(fooComp, id)
	assert.NilError(t, err)
	assert.Equal(t, wantValue, gotValue)

	// Commit the pending changes
	assert.NilError(t, manager.FinalizeTick(ctx))

	// Data should not change after a successful commit
	gotValue, err = manager.GetComponentForEntity(fooComp, id)
	assert.NilError(t, err)
	assert.Equal(t, wantValue, gotValue)
}

func TestDiscardedComponentChangeRevertsToOriginalValue(t *testing.T) {
	manager := newCmdBufferForTest(t)
	ctx := context.Background()
	wantValue := Foo{99}

	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	assert.NilError(t, manager.SetComponentForEntity(fooComp, id, wantValue))
	assert.NilError(t, manager.FinalizeTick(ctx))

	// Verify the component is what we expect
	gotValue, err := manager.GetComponentForEntity(fooComp, id)
	assert.NilError(t, err)
	assert.Equal(t, wantValue, gotValue)

	badValue := Foo{666}
	assert.NilError(t, manager.SetComponentForEntity(fooComp, id, badValue))
	// The (pending) value should be in the 'bad' state
	gotValue, err = manager.GetComponentForEntity(fooComp, id)
	assert.NilError(t, err)
	assert.Equal(t, badValue, gotValue)

	// DiscardPending drops all changes since the last FinalizeTick
	err = manager.DiscardPending()
	assert.NilError(t, err)
	// The value should be back to the original 'wantValue'
	gotValue, err = manager.GetComponentForEntity(fooComp, id)
	assert.NilError(t, err)
	assert.Equal(t, wantValue, gotValue)
}

func TestCanGetComponentTypesForEntity(t *testing.T) {
	manager := newCmdBufferForTest(t)
	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)

	comps, err := manager.GetComponentTypesForEntity(id)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(comps))
	assert.Equal(t, comps[0].ID(), fooComp.ID())
}

func TestGettingInvalidEntityResultsInAnError(t *testing.T) {
	manager := newCmdBufferForTest(t)
	_, err := manager.GetComponentTypesForEntity(types.EntityID(1034134))
	assert.Check(t, err != nil)
}

func TestComponentSetsCanBeDiscarded(t *testing.T) {
	manager := newCmdBufferForTest(t)

	firstID, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	comps, err := manager.GetComponentTypesForEntity(firstID)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(comps))
	assert.Equal(t, comps[0].ID(), fooComp.ID())
	firstArchID, err := manager.GetArchIDForComponents(comps)
	assert.NilError(t, err)

	// Discard the above changes
	err = manager.DiscardPending()
	assert.NilError(t, err)

	// Repeat the above operation. We should end up with the same entity ID, and it should
	// end up containing a different set of components
	gotID, err := manager.CreateEntity(fooComp, barComp)
	assert.NilError(t, err)

	comps, err = manager.GetComponentTypesForEntity(gotID)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(comps))
	assert.Equal(t, comps[0].ID(), fooComp.ID())

	gotArchID, err := manager.GetArchIDForComponents(comps)
	assert.NilError(t, err)
	// The archetype ID should be reused
	assert.Equal(t, firstArchID, gotArchID)
}

func TestCannotGetComponentOnEntityThatIsMissingTheComponent(t *testing.T) {
	manager := newCmdBufferForTest(t)
	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	// barComp has not been assigned to this entity
	_, err = manager.GetComponentForEntity(barComp, id)
	assert.ErrorIs(t, err, gamestate.ErrComponentNotOnEntity)
}

func TestCannotSetComponentOnEntityThatIsMissingTheComponent(t *testing.T) {
	manager := newCmdBufferForTest(t)
	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	err = manager.SetComponentForEntity(barComp, id, Bar{100})
	assert.ErrorIs(t, err, gamestate.ErrComponentNotOnEntity)
}

func TestCanAddAComponentToAnEntity(t *testing.T) {
	manager := newCmdBufferForTest(t)
	ctx := context.Background()

	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	assert.NilError(t, manager.AddComponentToEntity(barComp, id))

	comps, err := manager.GetComponentTypesForEntity(id)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(comps))

	assert.NilError(t, manager.FinalizeTick(ctx))

	comps, err = manager.GetComponentTypesForEntity(id)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(comps))
}

func TestCannotAddDuplicateComponent(t *testing.T) {
	manager := newCmdBufferForTest(t)
	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	err = manager.AddComponentToEntity(fooComp, id)
	assert.ErrorIs(t, err, gamestate.ErrComponentAlreadyOnEntity)
}

func TestCanRemoveAComponentFromAnEntity(t *testing.T) {
	manager := newCmdBufferForTest(t)

	id, err := manager.CreateEntity(fooComp, barComp)
	assert.NilError(t, err)
	assert.NilError(t, manager.RemoveComponentFromEntity(barComp, id))

	comps, err := manager.GetComponentTypesForEntity(id)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(comps))
	assert.Equal(t, comps[0].ID(), fooComp.ID())
}

func TestCannotRemoveFinalComponent(t *testing.T) {
	manager := newCmdBufferForTest(t)
	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	err = manager.RemoveComponentFromEntity(fooComp, id)
	assert.ErrorIs(t, err, gamestate.ErrEntityMustHaveAtLeastOneComponent)
}

func TestCannotRemoveComponentNotOnEntity(t *testing.T) {
	manager := newCmdBufferForTest(t)
	id, err := manager.CreateEntity(fooComp, barComp)
	assert.NilError(t, err)
	assert.NilError(t, manager.RemoveComponentFromEntity(barComp, id))
	err = manager.RemoveComponentFromEntity(barComp, id)
	assert.ErrorIs(t, err, gamestate.ErrComponentNotOnEntity)
}

func TestCanRemoveEntity(t *testing.T) {
	manager := newCmdBufferForTest(t)
	ctx := context.Background()

	id, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	assert.NilError(t, manager.RemoveEntity(id))

	_, err = manager.GetComponentTypesForEntity(id)
	assert.Check(t, err != nil)

	assert.NilError(t, manager.FinalizeTick(ctx))

	_, err = manager.GetComponentTypesForEntity(id)
	assert.ErrorIs(t, err, gamestate.ErrEntityDoesNotExist)
}

func TestStateIsPersistedAcrossManagers(t *testing.T) {
	firstManager, client := newCmdBufferAndRedisClientForTest(t, nil)
	ctx := context.Background()
	wantValue := Foo{1234}

	id, err := firstManager.CreateEntity(fooComp)
	assert.NilError(t, err)
	assert.NilError(t, firstManager.SetComponentForEntity(fooComp, id, wantValue))
	assert.NilError(t, firstManager.FinalizeTick(ctx))

	// A fresh manager pointed at the same redis instance must see the same state.
	secondManager, _ := newCmdBufferAndRedisClientForTest(t, client)
	gotValue, err := secondManager.GetComponentForEntity(fooComp, id)
	assert.NilError(t, err)
	assert.Equal(t, wantValue, gotValue)

	comps, err := secondManager.GetComponentTypesForEntity(id)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(comps))
	assert.Equal(t, comps[0].ID(), fooComp.ID())
}

func TestTickNumbersAreTracked(t *testing.T) {
	manager := newCmdBufferForTest(t)
	ctx := context.Background()

	tick, err := manager.GetTickNumber(ctx)
	assert.NilError(t, err)
	assert.Equal(t, uint64(0), tick)

	_, err = manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	assert.NilError(t, manager.FinalizeTick(ctx))

	tick, err = manager.GetTickNumber(ctx)
	assert.NilError(t, err)
	assert.Equal(t, uint64(1), tick)
}

func TestEntityIDsAreNotReusedAfterFinalize(t *testing.T) {
	manager := newCmdBufferForTest(t)
	ctx := context.Background()

	firstID, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	assert.NilError(t, manager.FinalizeTick(ctx))

	secondID, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	assert.Check(t, firstID != secondID)
}

func TestSearchFromMatchesArchetypes(t *testing.T) {
	manager := newCmdBufferForTest(t)

	_, err := manager.CreateEntity(fooComp)
	assert.NilError(t, err)
	_, err = manager.CreateEntity(fooComp, barComp)
	assert.NilError(t, err)

	itr := manager.SearchFrom(filter.Contains(Foo{}), 0)
	count := 0
	for itr.HasNext() {
		itr.Next()
		count++
	}
	assert.Equal(t, 2, count)
}
