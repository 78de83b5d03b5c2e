package routes

import (
	"github.com/edubank/academy/handlers"
	"github.com/edubank/academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/courses/pending", handlers.ListPendingCourses)
	admin.Post("/courses/:courseId/approve", handlers.ApproveCourse)
	admin.Post("/courses/:courseId/reject", handlers.RejectCourse)

	admin.Get("/transactions", handlers.AdminGetTransactions)
	admin.Post("/transactions/:transactionId/resolve", handlers.AdminResolveTransaction)

	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)
}
