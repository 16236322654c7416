package veldt

import (
	"github.com/rotisserie/eris"

	"github.com/veldt-engine/veldt/component"
	"github.com/veldt-engine/veldt/types"
	"github.com/veldt-engine/veldt/worldstage"
)

// RegisterComponent registers the component type T with the world. Components must be
// registered before the world is started.
func RegisterComponent[T types.Component](w *World, opts ...component.Option[T]) error {
	if err := w.checkWorldNotStarted("RegisterComponent"); err != nil {
		return err
	}
	metadata, err := component.New[T](opts...)
	if err != nil {
		return err
	}
	return w.componentManager.Register(metadata)
}

// RegisterSystems registers the given systems with the world. The systems will be run on every
// tick in the order that they were registered. Systems must be registered before the world is
// started.
func RegisterSystems(w *World, systems ...System) error {
	if err := w.checkWorldNotStarted("RegisterSystems"); err != nil {
		return err
	}
	return w.systemManager.RegisterSystems(systems...)
}

// RegisterInitSystem registers a system that runs exactly once, before the first tick.
func RegisterInitSystem(w *World, system System) error {
	if err := w.checkWorldNotStarted("RegisterInitSystem"); err != nil {
		return err
	}
	w.systemManager.RegisterInitSystem(system)
	return nil
}

// checkWorldNotStarted returns an error if the registration window has closed.
func (w *World) checkWorldNotStarted(operation string) error {
	if w.worldStage.Current() != worldstage.Init {
		return eris.Errorf("%s must be called before StartGame", operation)
	}
	return nil
}
