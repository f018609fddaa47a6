package bootstrap

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	json "github.com/goccy/go-json"

	"course_gen_backend/config"
	"course_gen_backend/middleware"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/routes"
)

type App struct {
	Cfg            *config.Config
	Infrastructure *Infrastructure
	Repositories   *Repositories
	Services       *Services
	Handlers       *Handlers
	Fiber          *fiber.App
}

func NewApp(cfg *config.Config) (*App, error) {
	infra, err := NewInfrastructure(cfg)
	if err != nil {
		logging.Logger.Error("fail NewInfrastructure", "error", err)
		return nil, err
	}
	return newApp(cfg, infra), nil
}

func newApp(cfg *config.Config, infra *Infrastructure) *App {
	app := &App{Cfg: cfg, Infrastructure: infra}
	app.Repositories = NewRepositories(infra.DB)
	app.Services = NewServices(cfg, app.Repositories, infra)
	app.Handlers = NewHandlers(cfg, app.Services, infra)
	app.Fiber = app.newFiber()
	return app
}

func (a *App) newFiber() *fiber.App {
	f := fiber.New(fiber.Config{
		AppName:               "course-gen-backend",
		BodyLimit:             a.Cfg.BodyLimit(),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: a.Cfg.IsProd(),
	})
	f.Use(recover.New())
	f.Use(middleware.Logger(a.Cfg))
	f.Use(middleware.CORS(a.Cfg))

	routes.RegisterOpsRoutes(f, a.Handlers.HealthHandler)
	routes.SetupWebSocketRoutes(f, a.Handlers.WSHandler)
	routes.RegisterCourseRoutes(f, a.Handlers.CourseHandler)
	if a.Handlers.RunHandler != nil {
		routes.RegisterRunRoutes(f, a.Handlers.RunHandler)
	}
	return f
}

// ForwardProgress relays pub/sub progress to the local hub until ctx ends.
// It returns immediately when redis is not configured.
func (a *App) ForwardProgress(ctx context.Context) error {
	if a.Infrastructure.Publisher == nil {
		return nil
	}
	return a.Infrastructure.Publisher.Forward(ctx, a.Infrastructure.Hub)
}

// Shutdown stops the HTTP server, waits for pending archive uploads and
// closes the infrastructure.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if a.Fiber != nil {
		if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
			logging.Logger.Error("fail shutting down http server", "error", err)
		}
	}
	if a.Services != nil && a.Services.Archive != nil {
		a.Services.Archive.Wait()
	}
	if a.Infrastructure != nil {
		return a.Infrastructure.Shutdown()
	}
	return nil
}
