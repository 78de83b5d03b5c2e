package routes

import (
	"github.com/edubank/academy/handlers"
	"github.com/edubank/academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", middleware.Protected(), middleware.InstructorRequired())
	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
