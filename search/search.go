package search

import (
	"github.com/rotisserie/eris"

	"github.com/veldt-engine/veldt/gamestate"
	"github.com/veldt-engine/veldt/search/filter"
	"github.com/veldt-engine/veldt/types"
)

// BadID is returned from search operations that cannot produce a valid entity ID.
const BadID = types.EntityID(0)

var ErrNoMatchingEntity = eris.New("no entity matches the search")

type CallbackFn func(types.EntityID) bool

type cache struct {
	archetypes []types.ArchetypeID
	seen       int
}

// Search represents a search for entities.
// It is used to filter entities based on their components.
// It contains a cache that is used to avoid re-evaluating the search,
// so it is not recommended to create a new search every time you want
// to filter entities with the same filter.
type Search struct {
	archMatches *cache
	filter      filter.ComponentFilter
	reader      gamestate.Reader
}

// New creates a new search over the given state reader.
func New(reader gamestate.Reader, filter filter.ComponentFilter) *Search {
	return &Search{
		archMatches: &cache{},
		filter:      filter,
		reader:      reader,
	}
}

// Each iterates over all entities that match the search.
// If you would like to stop the iteration, return false from the callback. To continue iterating, return true.
func (s *Search) Each(callback CallbackFn) error {
	result := s.evaluateSearch()
	iter := NewEntityIterator(0, s.reader, result)
	for iter.HasNext() {
		entities, err := iter.Next()
		if err != nil {
			return err
		}
		for _, id := range entities {
			cont := callback(id)
			if !cont {
				return nil
			}
		}
	}
	return nil
}

// Count returns the number of entities that match the search.
func (s *Search) Count() (int, error) {
	count := 0
	result := s.evaluateSearch()
	iter := NewEntityIterator(0, s.reader, result)
	for iter.HasNext() {
		entities, err := iter.Next()
		if err != nil {
			return 0, err
		}
		count += len(entities)
	}
	return count, nil
}

// First returns the first entity that matches the search.
func (s *Search) First() (types.EntityID, error) {
	result := s.evaluateSearch()
	iter := NewEntityIterator(0, s.reader, result)
	for iter.HasNext() {
		entities, err := iter.Next()
		if err != nil {
			return BadID, err
		}
		if len(entities) > 0 {
			return entities[0], nil
		}
	}
	return BadID, eris.Wrap(ErrNoMatchingEntity, "")
}

// MustFirst is like First but panics when no entity matches the search.
func (s *Search) MustFirst() types.EntityID {
	id, err := s.First()
	if err != nil {
		panic("no entity matches the search")
	}
	return id
}

func (s *Search) evaluateSearch() []types.ArchetypeID {
	cache := s.archMatches
	for it := s.reader.SearchFrom(s.filter, cache.seen); it.HasNext(); {
		cache.archetypes = append(cache.archetypes, it.Next())
	}
	cache.seen = s.reader.ArchetypeCount()
	return cache.archetypes
}
