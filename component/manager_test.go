package component_test

import (
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt/component"
	"github.com/veldt-engine/veldt/storage/redis"
	"github.com/veldt-engine/veldt/types"
)

func newManagerForTest(t *testing.T) (*component.Manager, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return component.NewManager(redis.NewSchemaStorage(client)), s
}

func mustMetadata[T types.Component](t *testing.T, opts ...component.Option[T]) types.ComponentMetadata {
	metadata, err := component.New[T](opts...)
	assert.NilError(t, err)
	return metadata
}

func TestRegisterAssignsSequentialComponentIDs(t *testing.T) {
	manager, _ := newManagerForTest(t)

	energy := mustMetadata[Energy](t)
	mana := mustMetadata[Mana](t)
	assert.NilError(t, manager.Register(energy))
	assert.NilError(t, manager.Register(mana))

	assert.Equal(t, types.ComponentID(1), energy.ID())
	assert.Equal(t, types.ComponentID(2), mana.ID())
}

func TestRegisterRejectsDuplicateComponentNames(t *testing.T) {
	manager, _ := newManagerForTest(t)

	assert.NilError(t, manager.Register(mustMetadata[Energy](t)))
	assert.Check(t, manager.Register(mustMetadata[Energy](t)) != nil)
}

func TestRegisterStoresTheComponentSchema(t *testing.T) {
	manager, s := newManagerForTest(t)
	assert.NilError(t, manager.Register(mustMetadata[Energy](t)))

	schema := s.HGet("COMPONENT-SCHEMAS", "Energy")
	assert.Check(t, schema != "")
}

func TestRegisterValidatesAgainstTheStoredSchema(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})

	firstManager := component.NewManager(redis.NewSchemaStorage(client))
	assert.NilError(t, firstManager.Register(mustMetadata[Energy](t)))

	// A second manager on the same storage accepts the same component shape
	secondManager := component.NewManager(redis.NewSchemaStorage(client))
	assert.NilError(t, secondManager.Register(mustMetadata[Energy](t)))

	// A component whose stored schema belongs to a different shape is rejected
	mana := mustMetadata[Mana](t)
	s.HSet("COMPONENT-SCHEMAS", "Mana", string(mustMetadata[Energy](t).GetSchema()))
	thirdManager := component.NewManager(redis.NewSchemaStorage(client))
	assert.Check(t, thirdManager.Register(mana) != nil)
}

func TestGetComponentByNameAndByType(t *testing.T) {
	manager, _ := newManagerForTest(t)
	assert.NilError(t, manager.Register(mustMetadata[Energy](t)))

	byName, err := manager.GetComponentByName("Energy")
	assert.NilError(t, err)
	assert.Equal(t, "Energy", byName.Name())

	byType, err := manager.GetComponentByType(reflect.TypeOf(Energy{}))
	assert.NilError(t, err)
	assert.Equal(t, byName, byType)

	_, err = manager.GetComponentByName("Nonexistent")
	assert.Check(t, err != nil)
}

func TestGetComponentInfoDescribesFields(t *testing.T) {
	manager, _ := newManagerForTest(t)
	assert.NilError(t, manager.Register(mustMetadata[Energy](t)))

	infos := manager.GetComponentInfo()
	assert.Equal(t, 1, len(infos))
	assert.Equal(t, "Energy", infos[0].Name)
	assert.Equal(t, "int", infos[0].Fields["Amount"])
}
