package veldt

import (
	"github.com/rotisserie/eris"

	"github.com/veldt-engine/veldt/search/filter"
	"github.com/veldt-engine/veldt/types"
)

// Hook is a lifecycle callback attached to a component type. It runs synchronously as part
// of the entity operation that triggered it, before control returns to the calling system.
type Hook func(wCtx WorldContext, id types.EntityID, compID types.ComponentID) error

// componentHooks holds the lifecycle callbacks for a single component type. Each slot can be
// set at most once.
type componentHooks struct {
	onAdd    Hook
	onInsert Hook
	onRemove Hook
}

type hookManager struct {
	hooks map[types.ComponentID]*componentHooks
}

func newHookManager() *hookManager {
	return &hookManager{
		hooks: map[types.ComponentID]*componentHooks{},
	}
}

func (m *hookManager) get(compID types.ComponentID) *componentHooks {
	h, ok := m.hooks[compID]
	if !ok {
		h = &componentHooks{}
		m.hooks[compID] = h
	}
	return h
}

// ComponentHooks is a builder for attaching lifecycle hooks to a registered component type.
// Calls can be chained; the first error sticks and is reported by Err.
type ComponentHooks struct {
	world *World
	comp  types.ComponentMetadata
	err   error
}

// RegisterComponentHooks returns a hook builder for the component type T. The component must
// already be registered with the world, the world must not have been started, and no entity
// may currently have the component.
func RegisterComponentHooks[T types.Component](w *World) *ComponentHooks {
	var t T
	comp, err := w.GetComponentByName(t.Name())
	if err != nil {
		return &ComponentHooks{world: w, err: eris.Wrapf(err, "component %q must be registered before hooks", t.Name())}
	}
	if err := w.checkHookRegistrationAllowed(comp); err != nil {
		return &ComponentHooks{world: w, err: err}
	}
	return &ComponentHooks{world: w, comp: comp}
}

// OnAdd sets the hook that runs when the component lands on an entity that does not already
// have it. It always runs before the OnInsert hook for the same write.
func (c *ComponentHooks) OnAdd(hook Hook) *ComponentHooks {
	return c.set("OnAdd", hook, func(h *componentHooks) bool {
		if h.onAdd != nil {
			return false
		}
		h.onAdd = hook
		return true
	})
}

// OnInsert sets the hook that runs on every write of the component, including the write that
// first adds it.
func (c *ComponentHooks) OnInsert(hook Hook) *ComponentHooks {
	return c.set("OnInsert", hook, func(h *componentHooks) bool {
		if h.onInsert != nil {
			return false
		}
		h.onInsert = hook
		return true
	})
}

// OnRemove sets the hook that runs just before the component is detached from an entity. The
// component value is still readable from inside the hook.
func (c *ComponentHooks) OnRemove(hook Hook) *ComponentHooks {
	return c.set("OnRemove", hook, func(h *componentHooks) bool {
		if h.onRemove != nil {
			return false
		}
		h.onRemove = hook
		return true
	})
}

// Err returns the first error encountered while building the hook set.
func (c *ComponentHooks) Err() error {
	return c.err
}

func (c *ComponentHooks) set(kind string, hook Hook, assign func(*componentHooks) bool) *ComponentHooks {
	if c.err != nil {
		return c
	}
	if hook == nil {
		c.err = eris.Errorf("%s hook for component %q must not be nil", kind, c.comp.Name())
		return c
	}
	if !assign(c.world.hookManager.get(c.comp.ID())) {
		c.err = eris.Errorf("%s hook for component %q is already set", kind, c.comp.Name())
	}
	return c
}

// checkHookRegistrationAllowed enforces the registration constraints: the world must still be
// in its setup stage and no live archetype may contain the component.
func (w *World) checkHookRegistrationAllowed(comp types.ComponentMetadata) error {
	if err := w.checkWorldNotStarted("RegisterComponentHooks"); err != nil {
		return err
	}
	itr := w.entityStore.SearchFrom(filter.Contains(comp), 0)
	if itr.HasNext() {
		return eris.Errorf("cannot register hooks for component %q: entities already contain it", comp.Name())
	}
	return nil
}

// dispatchOnAdd runs the OnAdd hook (if any) followed by the OnInsert hook (if any).
func (w *World) dispatchOnAdd(wCtx WorldContext, id types.EntityID, compID types.ComponentID) error {
	h, ok := w.hookManager.hooks[compID]
	if !ok {
		return nil
	}
	if h.onAdd != nil {
		if err := h.onAdd(wCtx, id, compID); err != nil {
			return eris.Wrap(err, "OnAdd hook failed")
		}
	}
	if h.onInsert != nil {
		if err := h.onInsert(wCtx, id, compID); err != nil {
			return eris.Wrap(err, "OnInsert hook failed")
		}
	}
	return nil
}

// dispatchOnInsert runs the OnInsert hook for a write to a component already on the entity.
func (w *World) dispatchOnInsert(wCtx WorldContext, id types.EntityID, compID types.ComponentID) error {
	h, ok := w.hookManager.hooks[compID]
	if !ok || h.onInsert == nil {
		return nil
	}
	if err := h.onInsert(wCtx, id, compID); err != nil {
		return eris.Wrap(err, "OnInsert hook failed")
	}
	return nil
}

// dispatchOnRemove runs the OnRemove hook while the component value is still readable.
func (w *World) dispatchOnRemove(wCtx WorldContext, id types.EntityID, compID types.ComponentID) error {
	h, ok := w.hookManager.hooks[compID]
	if !ok || h.onRemove == nil {
		return nil
	}
	if err := h.onRemove(wCtx, id, compID); err != nil {
		return eris.Wrap(err, "OnRemove hook failed")
	}
	return nil
}
