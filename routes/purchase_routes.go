package routes

import (
	"github.com/edubank/academy/handlers"
	"github.com/edubank/academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func PurchaseRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	purchases := api.Group("/purchases", middleware.Protected())
	purchases.Post("", handlers.InitiatePurchase)
	purchases.Get("/me", handlers.GetMyPurchases)
	purchases.Post("/archive", handlers.ArchivePurchaseHistory)
	purchases.Post("/:transactionId/refund", handlers.RequestRefund)

	instructorTx := api.Group("/instructor/transactions", middleware.Protected(), middleware.InstructorRequired())
	instructorTx.Get("", handlers.GetMyTransactions)
	instructorTx.Post("/:transactionId/resolve", handlers.ResolveTransaction)
}
