package component

import (
	"fmt"
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/veldt-engine/veldt/registry"
	"github.com/veldt-engine/veldt/storage/redis"
	"github.com/veldt-engine/veldt/types"
)

var ErrComponentNotRegistered = eris.New("component not registered")

// Manager tracks all registered component types for a world. It assigns
// component IDs, persists component schemas, and maintains the world's type
// registry.
type Manager struct {
	registeredComponents map[string]types.ComponentMetadata
	registry             *registry.Registry
	nextComponentID      types.ComponentID
	schemaStorage        redis.SchemaStorage
}

// NewManager creates a new component manager.
func NewManager(schemaStorage redis.SchemaStorage) *Manager {
	return &Manager{
		registeredComponents: make(map[string]types.ComponentMetadata),
		registry:             registry.New(),
		nextComponentID:      1,
		schemaStorage:        schemaStorage,
	}
}

// Register registers a component with the component manager.
// There can only be one component with a given name, which is declared by the user by implementing the Name() method.
// If there is a duplicate component name, an error will be returned and the component will not be registered.
func (m *Manager) Register(compMetadata types.ComponentMetadata) error {
	// Check that the component is not already registered
	if _, ok := m.registeredComponents[compMetadata.Name()]; ok {
		return eris.Errorf("component %q is already registered", compMetadata.Name())
	}

	// Try getting the schema from storage.
	// If the error is simply the schema not existing yet in storage, we can safely proceed.
	// However, if it is a different error, we need to terminate and return the error.
	storedSchema, err := m.schemaStorage.GetSchema(compMetadata.Name())
	if err != nil && !eris.Is(err, redis.ErrNoSchemaFound) {
		return err
	}

	if storedSchema != nil {
		// A schema is already stored for this component name. It must match the
		// current schema of the component or the stored state is unusable.
		if err := compMetadata.ValidateAgainstSchema(storedSchema); err != nil {
			if eris.Is(err, types.ErrComponentSchemaMismatch) {
				return eris.Wrap(err,
					fmt.Sprintf("component %q does not match the schema stored in storage", compMetadata.Name()),
				)
			}
			return eris.Wrap(err, "error when validating component schema against stored schema in storage")
		}
	} else {
		if err := m.schemaStorage.SetSchema(compMetadata.Name(), compMetadata.GetSchema()); err != nil {
			return err
		}
	}

	// Set the component ID and register the component.
	// This happens after the schema validation and storage operations so the component is only registered
	// if those succeeded.
	if err := compMetadata.SetID(m.nextComponentID); err != nil {
		return err
	}
	if err := m.registry.Add(compMetadata.Registration()); err != nil {
		return err
	}
	m.registeredComponents[compMetadata.Name()] = compMetadata
	m.nextComponentID++

	return nil
}

// GetComponents returns a list of all registered components.
// Note: The order of the components in the list is not deterministic.
func (m *Manager) GetComponents() []types.ComponentMetadata {
	registeredComponents := make([]types.ComponentMetadata, 0, len(m.registeredComponents))
	for _, comp := range m.registeredComponents {
		registeredComponents = append(registeredComponents, comp)
	}
	return registeredComponents
}

// GetComponentInfo returns a human-readable description of every registered
// component, ordered by registration name.
func (m *Manager) GetComponentInfo() []types.ComponentInfo {
	infos := make([]types.ComponentInfo, 0, m.registry.Len())
	for _, reg := range m.registry.List() {
		infos = append(infos, types.ComponentInfo{
			Name:   reg.Name(),
			Fields: types.GetFieldInformation(reg.Type()),
		})
	}
	return infos
}

// GetComponentByName returns the component metadata for the given component name.
func (m *Manager) GetComponentByName(name string) (types.ComponentMetadata, error) {
	c, ok := m.registeredComponents[name]
	if !ok {
		return nil, eris.Wrap(ErrComponentNotRegistered, fmt.Sprintf("component %q is not registered", name))
	}
	return c, nil
}

// GetComponentByType returns the component metadata registered for the given
// Go type.
func (m *Manager) GetComponentByType(typ reflect.Type) (types.ComponentMetadata, error) {
	reg, err := m.registry.GetByType(typ)
	if err != nil {
		return nil, eris.Wrap(ErrComponentNotRegistered, err.Error())
	}
	return m.GetComponentByName(reg.Name())
}

// Registry returns the world's type registry.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}
