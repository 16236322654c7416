package server

import (
	"github.com/gofiber/fiber/v2"
)

type GetHealthResponse struct {
	IsServerRunning   bool `json:"isServerRunning"`
	IsGameLoopRunning bool `json:"isGameLoopRunning"`
}

// GetHealth reports whether the server and the game loop are running.
func GetHealth(provider Provider) func(c *fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(GetHealthResponse{
			IsServerRunning:   true,
			IsGameLoopRunning: provider.IsGameLoopRunning(),
		})
	}
}
