package registry

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"
)

var ErrTypeNotRegistered = eris.New("type not registered")

// Registry is a collection of type registrations, indexed by name and by
// reflect.Type. It is populated during world startup and must not be mutated
// once the world is running.
type Registry struct {
	byName map[string]*TypeRegistration
	byType map[reflect.Type]*TypeRegistration
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*TypeRegistration),
		byType: make(map[reflect.Type]*TypeRegistration),
	}
}

// Add stores a registration in the registry. There can only be one registration
// per name and per type; duplicates are an error.
func (r *Registry) Add(reg *TypeRegistration) error {
	if _, ok := r.byName[reg.Name()]; ok {
		return eris.Errorf("type %q is already registered", reg.Name())
	}
	if _, ok := r.byType[reg.Type()]; ok {
		return eris.Errorf("type %s is already registered under a different name", reg.Type().String())
	}
	r.byName[reg.Name()] = reg
	r.byType[reg.Type()] = reg
	return nil
}

// Get returns the registration stored under the given name.
func (r *Registry) Get(name string) (*TypeRegistration, error) {
	reg, ok := r.byName[name]
	if !ok {
		return nil, eris.Wrapf(ErrTypeNotRegistered, "no registration for %q", name)
	}
	return reg, nil
}

// GetByType returns the registration for the given reflect.Type.
func (r *Registry) GetByType(typ reflect.Type) (*TypeRegistration, error) {
	reg, ok := r.byType[typ]
	if !ok {
		return nil, eris.Wrapf(ErrTypeNotRegistered, "no registration for type %s", typ.String())
	}
	return reg, nil
}

// Len returns the number of registrations in the registry.
func (r *Registry) Len() int {
	return len(r.byName)
}

// List returns all registrations sorted by name.
func (r *Registry) List() []*TypeRegistration {
	regs := make([]*TypeRegistration, 0, len(r.byName))
	for _, reg := range r.byName {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].Name() < regs[j].Name()
	})
	return regs
}
