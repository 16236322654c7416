package types

// EntityID is a unique identifier for an entity within a world.
type EntityID uint64

// ArchetypeID identifies a unique set of component types. Every entity belongs to
// exactly one archetype at any point in time.
type ArchetypeID int
