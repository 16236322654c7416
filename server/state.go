package server

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/veldt-engine/veldt/search/filter"
	"github.com/veldt-engine/veldt/types"
)

type debugStateElement struct {
	ID         types.EntityID             `json:"id"`
	Components map[string]json.RawMessage `json:"components"`
}

type DebugStateResponse []*debugStateElement

// GetDebugState dumps the entire game state: every entity along with the JSON encoding of
// each of its components.
func GetDebugState(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		result := make(DebugStateResponse, 0)
		s := provider.Search(filter.All())
		var eachClosureErr error
		searchEachErr := s.Each(
			func(id types.EntityID) bool {
				var components []types.ComponentMetadata
				components, eachClosureErr = provider.StoreReader().GetComponentTypesForEntity(id)
				if eachClosureErr != nil {
					return false
				}
				resultElement := debugStateElement{
					ID:         id,
					Components: make(map[string]json.RawMessage),
				}
				for _, c := range components {
					var data json.RawMessage
					data, eachClosureErr = provider.StoreReader().GetComponentForEntityInRawJSON(c, id)
					if eachClosureErr != nil {
						return false
					}
					resultElement.Components[c.Name()] = data
				}
				result = append(result, &resultElement)
				return true
			},
		)
		if eachClosureErr != nil {
			return eachClosureErr
		}
		if searchEachErr != nil {
			return searchEachErr
		}

		return ctx.JSON(&result)
	}
}
