package bootstrap

import (
	"course_gen_backend/config"
	"course_gen_backend/platform/retry"
	"course_gen_backend/services"
)

type Services struct {
	CourseService *services.CourseService
	Orchestrator  *services.Orchestrator
	RunTracker    *services.RunTracker
	Archive       *services.ArchiveService
}

func NewServices(cfg *config.Config, repos *Repositories, infra *Infrastructure) *Services {
	res := &Services{}
	res.CourseService = services.NewCourseService(infra.Generator)

	// with redis, events go through pub/sub and reach the hub via the forwarder
	var sinks services.MultiSink
	if infra.Publisher != nil {
		sinks = append(sinks, infra.Publisher)
	} else {
		sinks = append(sinks, infra.Hub)
	}

	var observers []services.JobObserver
	if repos.RunRepository != nil {
		res.RunTracker = services.NewRunTracker(repos.RunRepository)
		sinks = append(sinks, res.RunTracker)
		observers = append(observers, res.RunTracker)
	}
	if infra.Storage != nil {
		var keys services.CourseKeyRecorder
		if res.RunTracker != nil {
			keys = res.RunTracker
		}
		res.Archive = services.NewArchiveService(infra.Storage, keys)
		observers = append(observers, res.Archive)
	}

	retryOpts := retry.DefaultOptions()
	retryOpts.MaxAttempts = cfg.RetryMaxAttempts
	retryOpts.InitialDelay = cfg.RetryInitialDelay

	res.Orchestrator = services.NewOrchestrator(res.CourseService, infra.Cancels, sinks, retryOpts, observers...)
	return res
}
