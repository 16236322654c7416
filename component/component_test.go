package component_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt/component"
	"github.com/veldt-engine/veldt/types"
)

type Energy struct {
	Amount int `json:"amount"`
	Cap    int `json:"cap"`
	// Dirty is recomputed every tick and is not worth persisting.
	Dirty bool `json:"dirty"`
}

func (Energy) Name() string { return "Energy" }

type Mana struct {
	Blue int `json:"blue"`
}

func (Mana) Name() string { return "Mana" }

func TestComponentMetadataCarriesTheComponentName(t *testing.T) {
	metadata, err := component.New[Energy]()
	assert.NilError(t, err)
	assert.Equal(t, "Energy", metadata.Name())
}

func TestComponentIDCanOnlyBeSetOnce(t *testing.T) {
	metadata, err := component.New[Energy]()
	assert.NilError(t, err)

	assert.NilError(t, metadata.SetID(5))
	assert.Equal(t, types.ComponentID(5), metadata.ID())

	// Re-setting to the same ID is allowed, any other ID is not
	assert.NilError(t, metadata.SetID(5))
	assert.Check(t, metadata.SetID(6) != nil)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	metadata, err := component.New[Energy]()
	assert.NilError(t, err)

	bz, err := metadata.Encode(Energy{Amount: 3, Cap: 10})
	assert.NilError(t, err)

	value, err := metadata.Decode(bz)
	assert.NilError(t, err)
	assert.Equal(t, Energy{Amount: 3, Cap: 10}, value)
}

func TestSkippedFieldsAreStrippedOnEncodeAndBackfilledOnDecode(t *testing.T) {
	metadata, err := component.New[Energy](component.WithSkippedFields[Energy]("Dirty"))
	assert.NilError(t, err)

	bz, err := metadata.Encode(Energy{Amount: 3, Cap: 10, Dirty: true})
	assert.NilError(t, err)
	assert.Check(t, !strings.Contains(string(bz), "dirty"))

	value, err := metadata.Decode(bz)
	assert.NilError(t, err)
	assert.Equal(t, Energy{Amount: 3, Cap: 10, Dirty: false}, value)
}

func TestNewProducesTheDefaultValue(t *testing.T) {
	metadata, err := component.New[Energy](component.WithDefault(Energy{Amount: 1, Cap: 100}))
	assert.NilError(t, err)

	bz, err := metadata.New()
	assert.NilError(t, err)

	value, err := metadata.Decode(bz)
	assert.NilError(t, err)
	assert.Equal(t, Energy{Amount: 1, Cap: 100}, value)
}

func TestValidateAgainstSchemaDetectsDrift(t *testing.T) {
	metadata, err := component.New[Energy]()
	assert.NilError(t, err)

	// The component's own schema always validates
	assert.NilError(t, metadata.ValidateAgainstSchema(metadata.GetSchema()))

	otherMetadata, err := component.New[Mana]()
	assert.NilError(t, err)

	err = metadata.ValidateAgainstSchema(otherMetadata.GetSchema())
	assert.Check(t, err != nil)
}
