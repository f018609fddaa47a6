package services

import (
	"context"
	"sync"

	json "github.com/goccy/go-json"

	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
)

// ObjectStore is the part of platform/storage the archive needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	SourceKey(filename, requestID string) string
	CourseKey(requestID string) string
}

// CourseKeyRecorder remembers the archive key of a finished run.
type CourseKeyRecorder interface {
	SetCourseKey(ctx context.Context, runID, key string) error
}

// ArchiveService copies uploaded sources and finished courses to object
// storage in the background. keys may be nil.
type ArchiveService struct {
	store ObjectStore
	keys  CourseKeyRecorder
	wg    sync.WaitGroup
}

func NewArchiveService(store ObjectStore, keys CourseKeyRecorder) *ArchiveService {
	return &ArchiveService{store: store, keys: keys}
}

func (a *ArchiveService) JobStarted(ctx context.Context, req models.CourseRequest) {
	for _, f := range req.Files {
		key := a.store.SourceKey(f.Name, req.RequestID)
		a.put(ctx, req.RequestID, key, f.Data, f.MimeType, nil)
	}
}

func (a *ArchiveService) JobFinished(ctx context.Context, req models.CourseRequest, course *models.Course, err error) {
	if err != nil || course == nil {
		return
	}
	body, mErr := json.Marshal(course)
	if mErr != nil {
		logging.Logger.Error("fail marshal course", "requestId", req.RequestID, "error", mErr)
		return
	}
	a.put(ctx, req.RequestID, a.store.CourseKey(req.RequestID), body, "application/json", func(key string) {
		if a.keys == nil || req.JobID == "" {
			return
		}
		if err := a.keys.SetCourseKey(ctx, req.JobID, key); err != nil {
			logging.Logger.Error("fail record course key", "requestId", req.RequestID, "key", key, "error", err)
		}
	})
}

func (a *ArchiveService) put(ctx context.Context, requestID, key string, data []byte, contentType string, stored func(key string)) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.store.PutObject(ctx, key, data, contentType); err != nil {
			logging.Logger.Error("fail archive object", "requestId", requestID, "key", key, "error", err)
			return
		}
		logging.Logger.Debug("archived object", "requestId", requestID, "key", key)
		if stored != nil {
			stored(key)
		}
	}()
}

// Wait blocks until pending uploads finish.
func (a *ArchiveService) Wait() {
	a.wg.Wait()
}
