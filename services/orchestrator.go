package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/platform/cancel"
	"course_gen_backend/platform/metrics"
	"course_gen_backend/platform/retry"
)

const (
	MissingParamsMessage = "Missing required course generation parameters: topic, level, time, language, or requestId."
	CanceledMessage      = "Canceled by user"

	summarizingMessage = "Summarizing provided files..."
	planningMessage    = "Generating Course Plan"
)

var (
	ErrInvalidRequest = errors.New("invalid course request")
	ErrJobCanceled    = errors.New("job canceled by user")
)

// ProgressSink receives the status events of a job. Delivery is best effort.
type ProgressSink interface {
	Send(ctx context.Context, requestID string, event models.ProgressEvent)
}

// MultiSink forwards each event to every sink in order.
type MultiSink []ProgressSink

func (m MultiSink) Send(ctx context.Context, requestID string, event models.ProgressEvent) {
	for _, s := range m {
		s.Send(ctx, requestID, event)
	}
}

// JobObserver is told when an accepted job starts and when it terminates.
// err is nil on success, ErrJobCanceled or the failure otherwise.
type JobObserver interface {
	JobStarted(ctx context.Context, req models.CourseRequest)
	JobFinished(ctx context.Context, req models.CourseRequest, course *models.Course, err error)
}

type Orchestrator struct {
	courses   *CourseService
	cancels   cancel.Registry
	progress  ProgressSink
	retry     retry.Options
	observers []JobObserver
}

func NewOrchestrator(courses *CourseService, cancels cancel.Registry, progress ProgressSink, retryOpts retry.Options, observers ...JobObserver) *Orchestrator {
	return &Orchestrator{
		courses:   courses,
		cancels:   cancels,
		progress:  progress,
		retry:     retryOpts,
		observers: observers,
	}
}

// Generate runs one course job to a terminal state. The returned error is
// ErrInvalidRequest, ErrJobCanceled or the failure that stopped the job.
func (o *Orchestrator) Generate(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	if missing := req.Missing(); len(missing) > 0 {
		logging.Logger.Warn("rejecting course request", "requestId", req.RequestID, "missing", missing)
		o.emit(ctx, req.RequestID, models.ProgressEvent{Type: models.EventError, SectionTitle: MissingParamsMessage, Error: true})
		metrics.Jobs.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}

	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	// registry lookups and cleanup must outlive a canceled request context
	bg := context.WithoutCancel(ctx)
	defer func() {
		if err := o.cancels.Clear(bg, req.RequestID); err != nil {
			logging.Logger.Error("fail clear cancel flag", "requestId", req.RequestID, "error", err)
		}
	}()

	for _, obs := range o.observers {
		obs.JobStarted(bg, req)
	}

	logging.Logger.Info("course generation started",
		"requestId", req.RequestID,
		"jobId", req.JobID,
		"topic", req.Topic,
		"level", req.Level,
		"time", req.Time,
		"files", len(req.Files),
	)
	course, err := o.run(ctx, req)

	switch {
	case err == nil:
		metrics.Jobs.WithLabelValues("done").Inc()
		logging.Logger.Info("course generation done", "requestId", req.RequestID, "sections", len(course.Sections))
	case errors.Is(err, retry.ErrCanceled) || o.cancels.IsCanceled(bg, req.RequestID):
		logging.Logger.Info("course generation canceled", "requestId", req.RequestID)
		o.emit(bg, req.RequestID, models.ProgressEvent{Type: models.EventCanceled, SectionTitle: CanceledMessage, Error: true})
		metrics.Jobs.WithLabelValues("canceled").Inc()
		course, err = nil, ErrJobCanceled
	default:
		logging.Logger.Error("course generation failed", "requestId", req.RequestID, "error", err)
		o.emit(bg, req.RequestID, models.ProgressEvent{Type: models.EventError, SectionTitle: err.Error(), Error: true})
		metrics.Jobs.WithLabelValues("failed").Inc()
		course = nil
	}

	for _, obs := range o.observers {
		obs.JobFinished(bg, req, course, err)
	}
	return course, err
}

func (o *Orchestrator) run(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	bg := context.WithoutCancel(ctx)
	canceled := func() bool { return o.cancels.IsCanceled(bg, req.RequestID) }

	var sources string
	if len(req.Files) > 0 {
		o.emit(ctx, req.RequestID, models.ProgressEvent{Type: models.EventProcessing, SectionTitle: summarizingMessage})
		summary, err := retry.Do(ctx, o.opts("summarize"),
			counted("summarize", func(ctx context.Context) (string, error) {
				return o.courses.Summarize(ctx, req.Files, req.Language)
			}),
			checked("summarize", func(s string) bool { return s != "" }),
			canceled,
		)
		if err != nil {
			return nil, err
		}
		sources = summary
	}

	if canceled() {
		return nil, retry.ErrCanceled
	}
	o.emit(ctx, req.RequestID, models.ProgressEvent{Type: models.EventPlanning, SectionTitle: planningMessage})
	minSections := MinSections(req.Time)
	plan, err := retry.Do(ctx, o.opts("plan"),
		counted("plan", func(ctx context.Context) (*models.CoursePlan, error) {
			return o.courses.Plan(ctx, req, sources)
		}),
		checked("plan", func(p *models.CoursePlan) bool { return p != nil && len(p.Sections) >= minSections }),
		canceled,
	)
	if err != nil {
		return nil, err
	}

	total := len(plan.Sections)
	sections := make([]models.SectionResult, 0, total)
	for i, spec := range plan.Sections {
		if canceled() {
			return nil, retry.ErrCanceled
		}
		logging.Logger.Info("generating section", "requestId", req.RequestID, "current", i+1, "total", total, "title", spec.Title)
		o.emit(ctx, req.RequestID, models.ProgressEvent{Type: models.EventProgress, Current: i + 1, Total: total, SectionTitle: spec.Title})

		section, err := retry.Do(ctx, o.opts("section"),
			counted("section", func(ctx context.Context) (*models.SectionResult, error) {
				return o.courses.GenerateSection(ctx, spec, req, plan.Title, sources)
			}),
			checked("section", func(r *models.SectionResult) bool { return r != nil && len(r.Content) > 0 }),
			canceled,
		)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *section)
	}

	if canceled() {
		return nil, retry.ErrCanceled
	}
	o.emit(ctx, req.RequestID, models.ProgressEvent{Type: models.EventDone, Current: total, Total: total, SectionTitle: plan.Title, Done: true})

	return &models.Course{
		Topic:    plan.Title,
		Level:    req.Level,
		Language: req.Language,
		Sections: sections,
	}, nil
}

func (o *Orchestrator) emit(ctx context.Context, requestID string, event models.ProgressEvent) {
	if o.progress == nil || requestID == "" {
		return
	}
	o.progress.Send(ctx, requestID, event)
}

func (o *Orchestrator) opts(step string) retry.Options {
	opts := o.retry
	opts.Name = step
	return opts
}

func counted[T any](step string, op func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		v, err := op(ctx)
		if err != nil {
			metrics.ModelAttempts.WithLabelValues(step, "error").Inc()
		}
		return v, err
	}
}

func checked[T any](step string, valid func(T) bool) func(T) bool {
	return func(v T) bool {
		ok := valid(v)
		if ok {
			metrics.ModelAttempts.WithLabelValues(step, "valid").Inc()
		} else {
			metrics.ModelAttempts.WithLabelValues(step, "invalid").Inc()
		}
		return ok
	}
}
