package bootstrap

import (
	"course_gen_backend/config"
	"course_gen_backend/handlers"
)

type Handlers struct {
	CourseHandler *handlers.CourseHandler
	WSHandler     *handlers.WSHandler
	RunHandler    *handlers.RunHandler
	HealthHandler *handlers.HealthHandler
}

func NewHandlers(cfg *config.Config, services *Services, infra *Infrastructure) *Handlers {
	res := &Handlers{
		CourseHandler: handlers.NewCourseHandler(services.Orchestrator, services.CourseService, cfg),
		WSHandler:     handlers.NewWSHandler(infra.Hub, infra.Cancels),
		HealthHandler: handlers.NewHealthHandler(),
	}
	if services.RunTracker != nil {
		var links handlers.CourseLinker
		if infra.Storage != nil {
			links = infra.Storage
		}
		res.RunHandler = handlers.NewRunHandler(services.RunTracker, links, cfg.CourseURLExpiry)
	}
	if infra.DB != nil {
		res.HealthHandler.AddCheck("postgres", infra.DB.Ping)
	}
	if infra.Redis != nil {
		res.HealthHandler.AddCheck("redis", infra.Redis.Ping)
	}
	return res
}
