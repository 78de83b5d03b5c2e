package routes

import (
	"github.com/edubank/academy/handlers"
	"github.com/edubank/academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func CourseRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/courses", handlers.ListApprovedCourses)
	api.Get("/courses/:courseId", handlers.GetCourse)

	instructor := api.Group("/instructor/courses", middleware.Protected(), middleware.InstructorRequired())
	instructor.Get("/me", handlers.GetMyCourses)
	instructor.Post("", handlers.CreateCourse)
	instructor.Put("/:courseId", handlers.UpdateCourse)
	instructor.Delete("/:courseId", handlers.DeleteCourse)
}
