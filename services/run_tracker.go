package services

import (
	"context"
	"errors"
	"sync"

	json "github.com/goccy/go-json"

	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/repository"
)

// RunTracker mirrors job progress into generation_runs rows, one row per job.
// Storage errors are logged and never reach the job.
type RunTracker struct {
	repo repository.RunRepository
	mu   sync.Mutex
	// progress events carry only the request id; they go to the newest job
	// started for it
	active map[string]string // requestID -> run id
}

func NewRunTracker(repo repository.RunRepository) *RunTracker {
	return &RunTracker{repo: repo, active: make(map[string]string)}
}

func (t *RunTracker) JobStarted(ctx context.Context, req models.CourseRequest) {
	run := &models.GenerationRun{
		ID:         req.JobID,
		RequestID:  req.RequestID,
		Topic:      req.Topic,
		Level:      req.Level,
		Language:   req.Language,
		TimeBudget: req.Time,
		FileCount:  len(req.Files),
	}
	if err := t.repo.Create(ctx, run); err != nil {
		logging.Logger.Error("fail create generation run", "requestId", req.RequestID, "error", err)
		return
	}
	t.mu.Lock()
	t.active[req.RequestID] = run.ID
	t.mu.Unlock()
}

// Send records section progress; other events are summarized by JobFinished.
func (t *RunTracker) Send(ctx context.Context, requestID string, event models.ProgressEvent) {
	if event.Type != models.EventProgress {
		return
	}
	t.mu.Lock()
	id, ok := t.active[requestID]
	t.mu.Unlock()
	if !ok {
		return
	}
	if err := t.repo.UpdateProgress(ctx, id, event.Current-1, event.Total); err != nil {
		logging.Logger.Error("fail update generation run", "requestId", requestID, "error", err)
	}
}

func (t *RunTracker) JobFinished(ctx context.Context, req models.CourseRequest, course *models.Course, jobErr error) {
	t.mu.Lock()
	id := req.JobID
	if id == "" {
		id = t.active[req.RequestID]
	}
	if t.active[req.RequestID] == id {
		delete(t.active, req.RequestID)
	}
	t.mu.Unlock()
	if id == "" {
		return
	}

	status, errMsg := models.RunStatusCompleted, ""
	var body []byte
	switch {
	case jobErr == nil:
		n := len(course.Sections)
		if err := t.repo.UpdateProgress(ctx, id, n, n); err != nil {
			logging.Logger.Error("fail update generation run", "requestId", req.RequestID, "error", err)
		}
		var err error
		if body, err = json.Marshal(course); err != nil {
			logging.Logger.Error("fail marshal course", "requestId", req.RequestID, "error", err)
		}
	case errors.Is(jobErr, ErrJobCanceled):
		status, errMsg = models.RunStatusCanceled, CanceledMessage
	default:
		status, errMsg = models.RunStatusFailed, jobErr.Error()
	}
	if err := t.repo.Finish(ctx, id, status, errMsg, body); err != nil {
		logging.Logger.Error("fail finish generation run", "requestId", req.RequestID, "error", err)
	}
}

// SetCourseKey records where the archived course of a run lives.
func (t *RunTracker) SetCourseKey(ctx context.Context, runID, key string) error {
	return t.repo.SetCourseKey(ctx, runID, key)
}

// Latest returns the most recent run for a request id.
func (t *RunTracker) Latest(ctx context.Context, requestID string) (*models.GenerationRun, error) {
	return t.repo.GetLatestByRequestID(ctx, requestID)
}
