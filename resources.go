package veldt

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// resourceStore holds the world's singleton resources, keyed by their pointer type. At most
// one resource of a given type can be registered.
type resourceStore struct {
	resources map[reflect.Type]any
}

func newResourceStore() *resourceStore {
	return &resourceStore{
		resources: map[reflect.Type]any{},
	}
}

func (s *resourceStore) add(res any) error {
	if res == nil {
		return eris.New("cannot register a nil resource")
	}
	typ := reflect.TypeOf(res)
	if typ.Kind() != reflect.Pointer {
		return eris.Errorf("resources must be registered as pointers, got %s", typ.String())
	}
	if _, ok := s.resources[typ]; ok {
		return eris.Errorf("a resource of type %s is already registered", typ.String())
	}
	s.resources[typ] = res
	return nil
}

// RegisterResource registers a singleton resource with the world. Resources are registered as
// pointers so systems and hooks can mutate them in place. Resources must be registered before
// the world is started.
func RegisterResource(w *World, res any) error {
	if err := w.checkWorldNotStarted("RegisterResource"); err != nil {
		return err
	}
	return w.resources.add(res)
}

// GetResource returns the world's resource of type T.
func GetResource[T any](wCtx WorldContext) (*T, error) {
	typ := reflect.TypeOf((*T)(nil))
	res, ok := wCtx.getWorld().resources.resources[typ]
	if !ok {
		return nil, eris.Errorf("no resource of type %s is registered", typ.Elem().String())
	}
	return res.(*T), nil
}
