package registry_test

import (
	"reflect"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt/registry"
)

type Health struct {
	Current int `json:"current"`
	Max     int `json:"max"`
	// Regen is runtime-only state that should not survive a save/load cycle.
	Regen int `json:"regen"`
}

func (Health) Name() string { return "Health" }

type unnamed struct {
	Value int
}

func TestOfUsesTheTypeProvidedName(t *testing.T) {
	reg, err := registry.Of[Health]()
	assert.NilError(t, err)
	assert.Equal(t, "Health", reg.Name())
	assert.Equal(t, reflect.TypeOf(Health{}), reg.Type())
}

func TestOfFallsBackToTheReflectTypeName(t *testing.T) {
	reg, err := registry.Of[unnamed]()
	assert.NilError(t, err)
	assert.Equal(t, "registry_test.unnamed", reg.Name())
}

func TestOfRejectsNonStructTypes(t *testing.T) {
	_, err := registry.Of[int]()
	assert.Check(t, err != nil)
}

func TestEveryRegistrationCarriesACodec(t *testing.T) {
	reg, err := registry.Of[Health]()
	assert.NilError(t, err)

	cdc, ok := registry.Trait[registry.Codec](reg)
	assert.Check(t, ok)

	bz, err := cdc.Marshal(Health{Current: 10, Max: 20})
	assert.NilError(t, err)
	value, err := cdc.Unmarshal(bz)
	assert.NilError(t, err)
	assert.Equal(t, Health{Current: 10, Max: 20}, value)
}

func TestConstructorTraitProducesTheZeroValueByDefault(t *testing.T) {
	reg, err := registry.Of[Health]()
	assert.NilError(t, err)

	ctor, ok := registry.Trait[registry.Constructor](reg)
	assert.Check(t, ok)
	assert.Equal(t, Health{}, ctor.New())
}

func TestWithDefaultOverridesTheConstructedValue(t *testing.T) {
	reg, err := registry.Of[Health](registry.WithDefault(Health{Current: 100, Max: 100}))
	assert.NilError(t, err)

	ctor, ok := registry.Trait[registry.Constructor](reg)
	assert.Check(t, ok)
	assert.Equal(t, Health{Current: 100, Max: 100}, ctor.New())
}

func TestWithoutConstructorRemovesTheConstructorTrait(t *testing.T) {
	reg, err := registry.Of[Health](registry.WithoutConstructor[Health]())
	assert.NilError(t, err)
	assert.Check(t, !registry.HasTrait[registry.Constructor](reg))
}

func TestDefaultAndWithoutConstructorConflict(t *testing.T) {
	_, err := registry.Of[Health](
		registry.WithDefault(Health{Current: 1}),
		registry.WithoutConstructor[Health](),
	)
	assert.Check(t, err != nil)

	_, err = registry.Of[Health](
		registry.WithoutConstructor[Health](),
		registry.WithDefault(Health{Current: 1}),
	)
	assert.Check(t, err != nil)
}

func TestWithSkippedFieldsInstallsSerializationData(t *testing.T) {
	reg, err := registry.Of[Health](registry.WithSkippedFields[Health]("Regen"))
	assert.NilError(t, err)

	data, ok := registry.Trait[registry.SerializationData](reg)
	assert.Check(t, ok)
	assert.Check(t, data.IsSkipped("Regen"))
	assert.Check(t, !data.IsSkipped("Current"))
	assert.DeepEqual(t, data.SkippedKeys(), []string{"regen"})
}

func TestWithSkippedFieldsRejectsUnknownFields(t *testing.T) {
	_, err := registry.Of[Health](registry.WithSkippedFields[Health]("NoSuchField"))
	assert.Check(t, err != nil)
}

func TestSerializationDataStripRemovesSkippedKeys(t *testing.T) {
	data, err := registry.NewSerializationData(reflect.TypeOf(Health{}), []string{"Regen"})
	assert.NilError(t, err)

	stripped, err := data.Strip([]byte(`{"current":5,"max":10,"regen":3}`))
	assert.NilError(t, err)
	assert.Check(t, !strings.Contains(string(stripped), "regen"))
	assert.Check(t, strings.Contains(string(stripped), "current"))
}

func TestSerializationDataApplyDefaults(t *testing.T) {
	data, err := registry.NewSerializationData(reflect.TypeOf(Health{}), []string{"Regen"})
	assert.NilError(t, err)

	health := Health{Current: 5, Max: 10, Regen: 99}
	assert.NilError(t, data.ApplyDefaults(&health))
	assert.Equal(t, 0, health.Regen)
	assert.Equal(t, 5, health.Current)

	// A non-pointer value cannot be backfilled
	assert.Check(t, data.ApplyDefaults(health) != nil)
}

type marker struct{ tag string }

func TestWithTraitAttachesArbitraryValues(t *testing.T) {
	reg, err := registry.Of[Health](registry.WithTrait[Health](marker{tag: "spawnable"}))
	assert.NilError(t, err)

	m, ok := registry.Trait[marker](reg)
	assert.Check(t, ok)
	assert.Equal(t, "spawnable", m.tag)
}

func TestInsertReplacesTraitOfSameType(t *testing.T) {
	reg, err := registry.Of[Health]()
	assert.NilError(t, err)

	reg.Insert(marker{tag: "first"})
	reg.Insert(marker{tag: "second"})

	m, ok := registry.Trait[marker](reg)
	assert.Check(t, ok)
	assert.Equal(t, "second", m.tag)
}
