package routes

import (
	"github.com/edubank/academy/handlers"
	"github.com/edubank/academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func AccountRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	accounts := api.Group("/accounts", middleware.Protected())
	accounts.Post("", handlers.OpenAccount)
	accounts.Get("/me/balance", handlers.GetMyBalance)
}
