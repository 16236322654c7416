package registry_test

import (
	"reflect"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt/registry"
)

func TestRegistryLookupByNameAndType(t *testing.T) {
	r := registry.New()

	reg, err := registry.Of[Health]()
	assert.NilError(t, err)
	assert.NilError(t, r.Add(reg))

	byName, err := r.Get("Health")
	assert.NilError(t, err)
	assert.Equal(t, reg, byName)

	byType, err := r.GetByType(reflect.TypeOf(Health{}))
	assert.NilError(t, err)
	assert.Equal(t, reg, byType)

	_, err = r.Get("Unknown")
	assert.Check(t, err != nil)
	_, err = r.GetByType(reflect.TypeOf(unnamed{}))
	assert.Check(t, err != nil)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	r := registry.New()

	first, err := registry.Of[Health]()
	assert.NilError(t, err)
	second, err := registry.Of[Health]()
	assert.NilError(t, err)

	assert.NilError(t, r.Add(first))
	assert.Check(t, r.Add(second) != nil)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryListIsOrderedByName(t *testing.T) {
	r := registry.New()

	health, err := registry.Of[Health]()
	assert.NilError(t, err)
	anon, err := registry.Of[unnamed]()
	assert.NilError(t, err)

	assert.NilError(t, r.Add(anon))
	assert.NilError(t, r.Add(health))

	list := r.List()
	assert.Equal(t, 2, len(list))
	assert.Equal(t, "Health", list[0].Name())
	assert.Equal(t, "registry_test.unnamed", list[1].Name())
}
