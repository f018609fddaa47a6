package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"course_gen_backend/config"
	"course_gen_backend/pkg/logging"
)

func CORS(cfg *config.Config) fiber.Handler {
	logging.Logger.Info("CORS configured", "allowOrigins", cfg.AllowOrigins)
	return cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
	})
}
