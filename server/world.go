package server

import (
	"reflect"

	"github.com/gofiber/fiber/v2"

	"github.com/veldt-engine/veldt/types"
)

type GetWorldResponse struct {
	Namespace  string        `json:"namespace"`
	Components []FieldDetail `json:"components"`
}

type FieldDetail struct {
	Name   string         `json:"name"`   // name of the component
	Fields map[string]any `json:"fields"` // variable name and type
}

// GetWorld returns field information for all registered components.
func GetWorld(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		components := provider.GetRegisteredComponents()
		comps := make([]FieldDetail, 0, len(components))
		for _, component := range components {
			bz, err := component.New()
			if err != nil {
				// components registered without a constructor are skipped
				continue
			}
			c, err := component.Decode(bz)
			if err != nil {
				continue
			}
			comps = append(comps, FieldDetail{
				Name:   component.Name(),
				Fields: types.GetFieldInformation(reflect.TypeOf(c)),
			})
		}
		return ctx.JSON(GetWorldResponse{
			Namespace:  provider.Namespace(),
			Components: comps,
		})
	}
}
