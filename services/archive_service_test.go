package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course_gen_backend/models"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string]string
	fail    bool
}

func (m *memoryStore) PutObject(_ context.Context, key string, data []byte, contentType string) error {
	if m.fail {
		return errors.New("bucket unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[key] = contentType + "|" + string(data)
	return nil
}

func (m *memoryStore) SourceKey(filename, requestID string) string {
	return "sources/" + requestID + "/" + filename
}

func (m *memoryStore) CourseKey(requestID string) string {
	return "courses/" + requestID + "/course.json"
}

type keyRecorder struct {
	mu   sync.Mutex
	keys map[string]string
}

func (k *keyRecorder) SetCourseKey(_ context.Context, runID, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.keys == nil {
		k.keys = map[string]string{}
	}
	k.keys[runID] = key
	return nil
}

func TestArchiveService_RecordsCourseKeyForJob(t *testing.T) {
	store, keys := &memoryStore{}, &keyRecorder{}
	archive := NewArchiveService(store, keys)

	req := validRequest(20)
	req.JobID = "job-1"
	archive.JobFinished(context.Background(), req, &models.Course{Topic: "Golang"}, nil)
	archive.Wait()

	assert.Equal(t, map[string]string{"job-1": "courses/r1/course.json"}, keys.keys)
}

func TestArchiveService_StoresSourcesAndCourse(t *testing.T) {
	store := &memoryStore{}
	archive := NewArchiveService(store, nil)
	ctx := context.Background()

	req := validRequest(20)
	req.Files = []models.Attachment{{Name: "a.pdf", MimeType: "application/pdf", Data: []byte("pdf")}}
	archive.JobStarted(ctx, req)
	archive.JobFinished(ctx, req, &models.Course{Topic: "Golang"}, nil)
	archive.Wait()

	require.Len(t, store.objects, 2)
	assert.Equal(t, "application/pdf|pdf", store.objects["sources/r1/a.pdf"])
	assert.Contains(t, store.objects["courses/r1/course.json"], `"topic":"Golang"`)
}

func TestArchiveService_SkipsFailedJobsAndSwallowsErrors(t *testing.T) {
	keys := &keyRecorder{}
	store := &memoryStore{}
	archive := NewArchiveService(store, nil)
	archive.JobFinished(context.Background(), validRequest(20), nil, ErrJobCanceled)
	archive.Wait()
	assert.Empty(t, store.objects)

	broken := NewArchiveService(&memoryStore{fail: true}, keys)
	assert.NotPanics(t, func() {
		broken.JobFinished(context.Background(), validRequest(20), &models.Course{}, nil)
		broken.Wait()
	})
	assert.Empty(t, keys.keys, "failed uploads are not recorded")
}
