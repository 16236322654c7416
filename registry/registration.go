// Package registry implements runtime type registration. A TypeRegistration is
// a record that associates a Go type with the capability traits the engine can
// discover for it at runtime: how to encode and decode it, how to construct a
// default value of it, and which of its fields are excluded from serialization.
// Registrations are produced by the Of factory and collected in a Registry.
package registry

import (
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
)

// Named is implemented by types that provide their own registration name.
// Types that do not implement Named are registered under their reflect.Type
// string.
type Named interface {
	Name() string
}

// TypeRegistration associates a single Go type with its capability traits.
// Traits are arbitrary values keyed by their own type; a second Insert of the
// same trait type replaces the first.
type TypeRegistration struct {
	name   string
	typ    reflect.Type
	schema []byte
	traits map[reflect.Type]any
}

// Of builds the type registration for T. A Codec trait is always installed.
// A Constructor trait is installed unless WithoutConstructor is given. A
// SerializationData trait is installed only when WithSkippedFields is given.
// Additional trait values can be attached with WithTrait.
func Of[T any](opts ...Option[T]) (*TypeRegistration, error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil {
		return nil, eris.New("cannot build a type registration for an interface type")
	}
	if typ.Kind() != reflect.Struct {
		return nil, eris.Errorf("cannot build a type registration for %s: not a struct", typ.String())
	}

	schema, err := jsonschema.ReflectFromType(typ).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "type must be json serializable")
	}

	cfg := newConfig[T]()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	reg := &TypeRegistration{
		name:   nameOf(zero, typ),
		typ:    typ,
		schema: schema,
		traits: make(map[reflect.Type]any),
	}

	// Every registration can round-trip its type through raw bytes.
	reg.Insert(NewCodec[T]())

	if cfg.withConstructor {
		ctor := NewConstructor[T]()
		if cfg.hasDefault {
			defaultVal := cfg.defaultVal
			ctor = Constructor{New: func() any { return defaultVal }}
		}
		reg.Insert(ctor)
	}

	if len(cfg.skippedFields) > 0 {
		data, err := NewSerializationData(typ, cfg.skippedFields)
		if err != nil {
			return nil, err
		}
		reg.Insert(data)
	}

	for _, trait := range cfg.extraTraits {
		reg.Insert(trait)
	}

	return reg, nil
}

// Name returns the registration name for the type.
func (r *TypeRegistration) Name() string {
	return r.name
}

// Type returns the registered reflect.Type.
func (r *TypeRegistration) Type() reflect.Type {
	return r.typ
}

// Schema returns the JSON schema derived from the type at registration time.
func (r *TypeRegistration) Schema() []byte {
	return r.schema
}

// Insert attaches a trait value to the registration. The value is keyed by its
// own type, so inserting a second value of the same trait type replaces the
// previous one.
func (r *TypeRegistration) Insert(trait any) {
	r.traits[reflect.TypeOf(trait)] = trait
}

// TraitTypes returns the names of all trait types attached to this registration.
func (r *TypeRegistration) TraitTypes() []string {
	names := make([]string, 0, len(r.traits))
	for t := range r.traits {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}

// Trait returns the trait value of type T attached to the given registration.
func Trait[T any](r *TypeRegistration) (T, bool) {
	var zero T
	v, ok := r.traits[reflect.TypeOf(zero)]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// HasTrait reports whether a trait value of type T is attached to the given
// registration.
func HasTrait[T any](r *TypeRegistration) bool {
	var zero T
	_, ok := r.traits[reflect.TypeOf(zero)]
	return ok
}

func nameOf(zero any, typ reflect.Type) string {
	if named, ok := zero.(Named); ok {
		return named.Name()
	}
	return typ.String()
}
