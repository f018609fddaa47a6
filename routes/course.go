package routes

import (
	"github.com/gofiber/fiber/v2"

	"course_gen_backend/handlers"
)

func RegisterCourseRoutes(app *fiber.App, handler *handlers.CourseHandler) {
	app.Post("/generate-course", handler.GenerateCourse)
	app.Post("/regenerate-lesson", handler.RegenerateLesson)
}

// RegisterRunRoutes is only called when run persistence is configured.
func RegisterRunRoutes(app *fiber.App, handler *handlers.RunHandler) {
	app.Get("/generation-runs/:requestId", handler.GetRun)
}
