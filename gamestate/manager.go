package gamestate

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/veldt-engine/veldt/search/filter"
	"github.com/veldt-engine/veldt/types"
)

type Reader interface {
	// One Component One Entity
	GetComponentForEntity(cType types.ComponentMetadata, id types.EntityID) (any, error)
	GetComponentForEntityInRawJSON(cType types.ComponentMetadata, id types.EntityID) (json.RawMessage, error)

	// Many Components One Entity
	GetComponentTypesForEntity(id types.EntityID) ([]types.ComponentMetadata, error)
	GetAllComponentsForEntityInRawJSON(id types.EntityID) (map[string]json.RawMessage, error)

	// One Archetype Many Components
	GetComponentTypesForArchID(archID types.ArchetypeID) ([]types.ComponentMetadata, error)
	GetArchIDForComponents(components []types.ComponentMetadata) (types.ArchetypeID, error)

	// One Archetype Many Entities
	GetEntitiesForArchID(archID types.ArchetypeID) ([]types.EntityID, error)

	// Misc
	SearchFrom(filter filter.ComponentFilter, start int) *ArchetypeIterator
	ArchetypeCount() int
}

type Writer interface {
	// One Entity
	RemoveEntity(id types.EntityID) error

	// Many Components
	CreateEntity(comps ...types.ComponentMetadata) (types.EntityID, error)
	CreateManyEntities(num int, comps ...types.ComponentMetadata) ([]types.EntityID, error)

	// One Component One Entity
	SetComponentForEntity(cType types.ComponentMetadata, id types.EntityID, value any) error
	AddComponentToEntity(cType types.ComponentMetadata, id types.EntityID) error
	RemoveComponentFromEntity(cType types.ComponentMetadata, id types.EntityID) error

	// Misc
	InjectLogger(logger *zerolog.Logger)
	Close() error
	RegisterComponents([]types.ComponentMetadata) error
}

type TickStorage interface {
	GetTickNumber(ctx context.Context) (uint64, error)
	FinalizeTick(ctx context.Context) error
	DiscardPending() error
}

// Manager represents all the methods required to track Component, Entity, and Archetype information
// which powers the ECS storage layer.
type Manager interface {
	TickStorage
	Reader
	Writer
}
