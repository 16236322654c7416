package component

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"github.com/veldt-engine/veldt/registry"
	"github.com/veldt-engine/veldt/types"
)

// Interface guard
var _ types.ComponentMetadata = (*componentMetadata[types.Component])(nil)

// Option is a type that can be passed to New to augment the creation of the
// component type.
type Option[T types.Component] func(c *settings[T])

type settings[T types.Component] struct {
	registrationOpts []registry.Option[T]
}

// componentMetadata represents a type of component. It wraps the component's
// type registration and carries the engine-assigned component ID.
type componentMetadata[T types.Component] struct {
	registration *registry.TypeRegistration
	isIDSet      bool
	id           types.ComponentID
}

// New creates the metadata for a new component type. The component's traits
// (codec, constructor, serialization data) are resolved through its type
// registration.
func New[T types.Component](opts ...Option[T]) (types.ComponentMetadata, error) {
	s := &settings[T]{}
	for _, opt := range opts {
		opt(s)
	}

	reg, err := registry.Of[T](s.registrationOpts...)
	if err != nil {
		return nil, err
	}

	return &componentMetadata[T]{
		registration: reg,
	}, nil
}

// SetID sets this component's ID. It must be unique across the world object.
func (c *componentMetadata[T]) SetID(id types.ComponentID) error {
	if c.isIDSet {
		// Components are only initialized once per world. In tests it's often useful
		// to reuse the same component in multiple worlds, so re-initialization is
		// allowed as long as the ID doesn't change.
		if id == c.id {
			return nil
		}
		return eris.Errorf("id for component %v is already set to %v, cannot change to %v", c, c.id, id)
	}
	c.id = id
	c.isIDSet = true
	return nil
}

// String returns the component type name.
func (c *componentMetadata[T]) String() string {
	return c.registration.Name()
}

// Name returns the component type name.
func (c *componentMetadata[T]) Name() string {
	return c.registration.Name()
}

// ID returns the component type id.
func (c *componentMetadata[T]) ID() types.ComponentID {
	return c.id
}

// GetSchema returns the JSON schema derived from the component type.
func (c *componentMetadata[T]) GetSchema() []byte {
	return c.registration.Schema()
}

// Registration returns the component's underlying type registration.
func (c *componentMetadata[T]) Registration() *registry.TypeRegistration {
	return c.registration
}

// New returns the marshaled bytes of the default value for the component. An
// error is returned if the component was registered without a constructor.
func (c *componentMetadata[T]) New() ([]byte, error) {
	ctor, ok := registry.Trait[registry.Constructor](c.registration)
	if !ok {
		return nil, eris.Errorf("component %q has no constructor and cannot be instantiated", c.Name())
	}
	return c.Encode(ctor.New())
}

// Encode marshals a component value. Fields excluded from serialization are
// stripped from the output.
func (c *componentMetadata[T]) Encode(v any) ([]byte, error) {
	cdc, ok := registry.Trait[registry.Codec](c.registration)
	if !ok {
		return nil, eris.Errorf("component %q has no codec", c.Name())
	}
	bz, err := cdc.Marshal(v)
	if err != nil {
		return nil, err
	}
	if data, ok := registry.Trait[registry.SerializationData](c.registration); ok {
		return data.Strip(bz)
	}
	return bz, nil
}

// Decode unmarshals a component value. Fields excluded from serialization are
// backfilled with their registered defaults.
func (c *componentMetadata[T]) Decode(bz []byte) (any, error) {
	cdc, ok := registry.Trait[registry.Codec](c.registration)
	if !ok {
		return nil, eris.Errorf("component %q has no codec", c.Name())
	}
	value, err := cdc.Unmarshal(bz)
	if err != nil {
		return nil, err
	}
	if data, ok := registry.Trait[registry.SerializationData](c.registration); ok {
		typed, castOK := value.(T)
		if !castOK {
			return nil, eris.Errorf("decoded value is not a %q component", c.Name())
		}
		if err := data.ApplyDefaults(&typed); err != nil {
			return nil, err
		}
		return typed, nil
	}
	return value, nil
}

// ValidateAgainstSchema returns an error if the target schema differs from this
// component's schema.
func (c *componentMetadata[T]) ValidateAgainstSchema(targetSchema []byte) error {
	diff, err := jsondiff.CompareJSON(c.GetSchema(), targetSchema)
	if err != nil {
		return eris.Wrap(err, "failed to compare component schema")
	}

	if diff.String() != "" {
		return eris.Wrap(types.ErrComponentSchemaMismatch, diff.String())
	}

	return nil
}

// WithDefault sets the value the component's constructor produces instead of
// the type's zero value.
func WithDefault[T types.Component](defaultVal T) Option[T] {
	return func(s *settings[T]) {
		s.registrationOpts = append(s.registrationOpts, registry.WithDefault[T](defaultVal))
	}
}

// WithSkippedFields excludes the named struct fields from serialization. The
// fields keep their in-memory values during a tick but are not persisted; on
// load they are backfilled with default values.
func WithSkippedFields[T types.Component](fields ...string) Option[T] {
	return func(s *settings[T]) {
		s.registrationOpts = append(s.registrationOpts, registry.WithSkippedFields[T](fields...))
	}
}

// WithTrait attaches an arbitrary trait value to the component's type
// registration, discoverable through Registration().
func WithTrait[T types.Component](trait any) Option[T] {
	return func(s *settings[T]) {
		s.registrationOpts = append(s.registrationOpts, registry.WithTrait[T](trait))
	}
}

// MustNew is like New but panics on error. Intended for tests and examples
// where component construction cannot reasonably fail.
func MustNew[T types.Component](opts ...Option[T]) types.ComponentMetadata {
	metadata, err := New[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create component metadata: %v", err))
	}
	return metadata
}
