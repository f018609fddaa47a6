package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"course_gen_backend/models"
	"course_gen_backend/platform/retry"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string, files []models.Attachment) (string, error)
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, files []models.Attachment) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.respond(prompt, files)
}

func (f *fakeGenerator) count(marker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

const (
	summaryMarker = "file summarizer"
	planMarker    = "Course Structure Designer"
	sectionMarker = "Mobile Course Content Generator"
)

func sectionMarkerFor(title string) string {
	return fmt.Sprintf("**Title:** %q", title)
}

func planJSON(n int) string {
	var secs []string
	for i := 1; i <= n; i++ {
		secs = append(secs, fmt.Sprintf(`{"title":"S%d","complexity":%d,"availableTime":10,"bulletCount":2,"bulletTitles":["a","b"]}`, i, i%5+1))
	}
	return "```json\n{\"title\":\"Golang\",\"sections\":[" + strings.Join(secs, ",") + "]}\n```"
}

func sectionJSON(title string) string {
	return fmt.Sprintf("```json\n{\"title\":%q,\"content\":[{\"title\":\"a\",\"bulletpoints\":[\"p1\",\"p2\"]},{\"title\":\"b\",\"bulletpoints\":[\"p3\"]}],"+
		"\"test\":[{\"question\":\"q1\",\"answer\":\"x\",\"options\":[\"x\",\"y\",\"z\",\"w\"]}]}\n```", title)
}

// scripted answers every step successfully with plans of planSections.
func scripted(planSections int) *fakeGenerator {
	return &fakeGenerator{respond: func(prompt string, _ []models.Attachment) (string, error) {
		switch {
		case strings.Contains(prompt, summaryMarker):
			return "a long summary", nil
		case strings.Contains(prompt, planMarker):
			return planJSON(planSections), nil
		case strings.Contains(prompt, sectionMarker):
			for i := 1; i <= planSections; i++ {
				if strings.Contains(prompt, sectionMarkerFor(fmt.Sprintf("S%d", i))) {
					return sectionJSON(fmt.Sprintf("S%d", i)), nil
				}
			}
		}
		return "", fmt.Errorf("unexpected prompt")
	}}
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.ProgressEvent
}

func (r *recordingSink) Send(_ context.Context, _ string, event models.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) all() []models.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ProgressEvent(nil), r.events...)
}

func (r *recordingSink) types() []models.ProgressEventType {
	var out []models.ProgressEventType
	for _, e := range r.all() {
		out = append(out, e.Type)
	}
	return out
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func testRetryOptions(s *recordingSleeper) retry.Options {
	return retry.Options{MaxAttempts: 4, InitialDelay: time.Second, Sleep: s.Sleep}
}

// spyRegistry wraps a registry and counts calls.
type spyRegistry struct {
	mu    sync.Mutex
	calls int
	flags map[string]bool
}

func newSpyRegistry() *spyRegistry {
	return &spyRegistry{flags: map[string]bool{}}
}

func (s *spyRegistry) MarkCanceled(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.flags[id] = true
	return nil
}

func (s *spyRegistry) IsCanceled(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.flags[id]
}

func (s *spyRegistry) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	delete(s.flags, id)
	return nil
}

func (s *spyRegistry) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []error
}

func (r *recordingObserver) JobStarted(_ context.Context, req models.CourseRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, req.RequestID)
}

func (r *recordingObserver) JobFinished(_ context.Context, _ models.CourseRequest, _ *models.Course, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, err)
}
