package veldt

import (
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/veldt-engine/veldt/gamestate"
	"github.com/veldt-engine/veldt/search/filter"
	"github.com/veldt-engine/veldt/types"
)

// Create creates a single entity in the world, and returns the id of the newly created entity.
// At least 1 component must be provided.
func Create(wCtx WorldContext, components ...types.Component) (types.EntityID, error) {
	entityIDs, err := CreateMany(wCtx, 1, components...)
	if err != nil {
		return 0, err
	}
	return entityIDs[0], nil
}

// CreateMany creates multiple entities in the world, and returns the slice of ids for the newly
// created entities. At least 1 component must be provided. OnAdd and OnInsert hooks fire for
// every component of every new entity.
func CreateMany(wCtx WorldContext, num int, components ...types.Component) ([]types.EntityID, error) {
	w := wCtx.getWorld()
	sm, err := wCtx.storeManager()
	if err != nil {
		return nil, err
	}

	metadatas := make([]types.ComponentMetadata, 0, len(components))
	for _, comp := range components {
		metadata, err := w.GetComponentByName(comp.Name())
		if err != nil {
			return nil, err
		}
		metadatas = append(metadatas, metadata)
	}

	entityIDs, err := sm.CreateManyEntities(num, metadatas...)
	if err != nil {
		return nil, err
	}

	// Store the components for the entities
	for _, id := range entityIDs {
		for i, comp := range components {
			if err := sm.SetComponentForEntity(metadatas[i], id, comp); err != nil {
				return nil, err
			}
		}
	}

	// The component values are all in place, so the add hooks can run
	for _, id := range entityIDs {
		for _, metadata := range metadatas {
			if err := w.dispatchOnAdd(wCtx, id, metadata.ID()); err != nil {
				return nil, err
			}
		}
	}

	if err := w.flushCommands(wCtx); err != nil {
		return nil, err
	}

	return entityIDs, nil
}

// SetComponent sets component data on the entity. The OnInsert hook fires after the write.
func SetComponent[T types.Component](wCtx WorldContext, id types.EntityID, component *T) error {
	w := wCtx.getWorld()
	sm, err := wCtx.storeManager()
	if err != nil {
		return err
	}

	metadata, err := w.GetComponentByName((*component).Name())
	if err != nil {
		return err
	}

	err = sm.SetComponentForEntity(metadata, id, *component)
	if err != nil {
		return err
	}

	wCtx.Logger().Debug().
		Str("entity_id", strconv.FormatUint(uint64(id), 10)).
		Str("component_name", (*component).Name()).
		Msg("entity updated")

	if err := w.dispatchOnInsert(wCtx, id, metadata.ID()); err != nil {
		return err
	}
	return w.flushCommands(wCtx)
}

// GetComponent returns component data from the entity.
func GetComponent[T types.Component](wCtx WorldContext, id types.EntityID) (*T, error) {
	var t T
	metadata, err := wCtx.getWorld().GetComponentByName(t.Name())
	if err != nil {
		return nil, err
	}

	// Get current component value
	compValue, err := wCtx.storeReader().GetComponentForEntity(metadata, id)
	if err != nil {
		return nil, err
	}

	// Type assert the component value to the component type
	var comp *T
	t, ok := compValue.(T)
	if !ok {
		comp, ok = compValue.(*T)
		if !ok {
			return nil, eris.Errorf("component %q is not of the expected type", metadata.Name())
		}
	} else {
		comp = &t
	}

	return comp, nil
}

// UpdateComponent reads the current component value, applies fn, and writes the result back.
func UpdateComponent[T types.Component](wCtx WorldContext, id types.EntityID, fn func(*T) *T) error {
	// Get current component value
	val, err := GetComponent[T](wCtx, id)
	if err != nil {
		return err
	}

	// Get the new component value
	updatedVal := fn(val)

	// Store the new component value
	return SetComponent[T](wCtx, id, updatedVal)
}

// AddComponentTo adds the component T, initialized with its default value, to the entity.
// The OnAdd hook (followed by OnInsert) fires after the component is in place.
func AddComponentTo[T types.Component](wCtx WorldContext, id types.EntityID) error {
	w := wCtx.getWorld()
	sm, err := wCtx.storeManager()
	if err != nil {
		return err
	}

	var t T
	metadata, err := w.GetComponentByName(t.Name())
	if err != nil {
		return err
	}

	if err := sm.AddComponentToEntity(metadata, id); err != nil {
		return err
	}

	if err := w.dispatchOnAdd(wCtx, id, metadata.ID()); err != nil {
		return err
	}
	return w.flushCommands(wCtx)
}

// RemoveComponentFrom removes a component from an entity. The OnRemove hook fires before the
// component is detached, while its value is still readable.
func RemoveComponentFrom[T types.Component](wCtx WorldContext, id types.EntityID) error {
	w := wCtx.getWorld()
	sm, err := wCtx.storeManager()
	if err != nil {
		return err
	}

	var t T
	metadata, err := w.GetComponentByName(t.Name())
	if err != nil {
		return err
	}

	// Validate the removal before firing hooks, so OnRemove never observes a detach that is
	// going to fail.
	comps, err := sm.GetComponentTypesForEntity(id)
	if err != nil {
		return err
	}
	if !filter.MatchComponentMetadata(comps, metadata) {
		return eris.Wrap(gamestate.ErrComponentNotOnEntity, "")
	}
	if len(comps) == 1 {
		return eris.Wrap(gamestate.ErrEntityMustHaveAtLeastOneComponent, "")
	}

	queued := w.commands.pendingLen()
	if err := w.dispatchOnRemove(wCtx, id, metadata.ID()); err != nil {
		w.commands.rollback(queued)
		return err
	}

	if err := sm.RemoveComponentFromEntity(metadata, id); err != nil {
		w.commands.rollback(queued)
		return err
	}
	return w.flushCommands(wCtx)
}

// Remove removes the given entity from the world. OnRemove hooks fire for every component of
// the entity before it is destroyed.
func Remove(wCtx WorldContext, id types.EntityID) error {
	w := wCtx.getWorld()
	sm, err := wCtx.storeManager()
	if err != nil {
		return err
	}

	comps, err := sm.GetComponentTypesForEntity(id)
	if err != nil {
		return err
	}

	// A despawn queued for this entity from one of its own OnRemove hooks must be a no-op.
	w.commands.markDespawned(id)

	queued := w.commands.pendingLen()
	for _, comp := range comps {
		if err := w.dispatchOnRemove(wCtx, id, comp.ID()); err != nil {
			w.commands.rollback(queued)
			return err
		}
	}

	if err := sm.RemoveEntity(id); err != nil {
		w.commands.rollback(queued)
		return err
	}
	return w.flushCommands(wCtx)
}
