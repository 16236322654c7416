package gamestate

import (
	"github.com/veldt-engine/veldt/types"
)

// ArchetypeIterator iterates over a pre-computed list of archetype IDs.
type ArchetypeIterator struct {
	Current int
	Values  []types.ArchetypeID
}

func (it *ArchetypeIterator) HasNext() bool {
	return it.Current < len(it.Values)
}

func (it *ArchetypeIterator) Next() types.ArchetypeID {
	val := it.Values[it.Current]
	it.Current++
	return val
}
