package gamestate

import (
	"fmt"

	"github.com/veldt-engine/veldt/types"
)

// storageComponentKey is the key that maps an entity ID and a component type ID to the value of
// that component.
func storageComponentKey(typeID types.ComponentID, id types.EntityID) string {
	return fmt.Sprintf("STATE:COMPONENT-VALUE:TYPE-%d:ENTITY-%d", typeID, id)
}

// storageNextEntityIDKey is the key that stores the next available entity ID that can be assigned
// to a newly created entity.
func storageNextEntityIDKey() string {
	return "STATE:NEXT-ENTITY-ID"
}

// storageArchetypeIDForEntityID is the key that maps a specific entity ID to its archetype ID.
// Note, this key and storageActiveEntityIDKey represent the same information.
func storageArchetypeIDForEntityID(id types.EntityID) string {
	return fmt.Sprintf("STATE:ARCHETYPE-ID:ENTITY-%d", id)
}

// storageActiveEntityIDKey is the key that maps an archetype ID to all the entities that currently
// belong to it. Note, this key and storageArchetypeIDForEntityID represent the same information.
func storageActiveEntityIDKey(archID types.ArchetypeID) string {
	return fmt.Sprintf("STATE:ACTIVE-ENTITY-IDS:ARCHETYPE-%d", archID)
}

// storageArchIDsToCompTypesKey is the key that stores the map of archetype IDs to their component
// type IDs. To recover the actual ComponentMetadata information, the slice of registered
// ComponentMetadata must be used.
func storageArchIDsToCompTypesKey() string {
	return "STATE:ARCHETYPE-COMPONENT-TYPES"
}

// storageCurrentTickKey is the key that stores the number of the last finalized tick.
func storageCurrentTickKey() string {
	return "STATE:CURRENT-TICK"
}
