package types

import (
	"github.com/rotisserie/eris"

	"github.com/veldt-engine/veldt/registry"
)

// ComponentID is the engine-assigned identifier for a registered component type.
type ComponentID int

var ErrComponentSchemaMismatch = eris.New("component schema does not match stored schema")

// Component is the interface that the user needs to implement to create a new component type.
type Component interface {
	// Name returns the name of the component.
	Name() string
}

// ComponentMetadata wraps the user-defined Component struct and provides the
// functionality the engine needs to store, serialize, and introspect it.
type ComponentMetadata interface { //revive:disable-line:exported
	// SetID sets the ComponentID of this component. It must only be set once.
	SetID(ComponentID) error
	// ID returns the ComponentID of the component.
	ID() ComponentID
	// New returns the marshaled bytes of the default value for the component struct.
	New() ([]byte, error)
	Encode(any) ([]byte, error)
	Decode([]byte) (any, error)
	GetSchema() []byte
	// ValidateAgainstSchema returns an error if the given schema is incompatible
	// with this component's schema.
	ValidateAgainstSchema(targetSchema []byte) error
	// Registration returns the underlying type registration record for this
	// component, which carries the component's capability traits.
	Registration() *registry.TypeRegistration

	Component
}

// ComponentInfo is a human-readable description of a registered component, used by
// the HTTP surface and the structured logs.
type ComponentInfo struct {
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields"`
}

// ConvertComponentMetadatasToComponents casts a slice of ComponentMetadata into a slice of Component.
func ConvertComponentMetadatasToComponents(comps []ComponentMetadata) []Component {
	ret := make([]Component, len(comps))
	for i, comp := range comps {
		ret[i] = comp
	}
	return ret
}
