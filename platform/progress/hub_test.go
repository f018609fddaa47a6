package progress

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course_gen_backend/models"
)

type fakeConn struct {
	mu      sync.Mutex
	written []interface{}
	err     error
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeConn) events() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interface{}(nil), f.written...)
}

func progressEvent(current int) models.ProgressEvent {
	return models.ProgressEvent{Type: models.EventProgress, Current: current, Total: 5}
}

func TestHub_SendWithoutRegistrationIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Send(context.Background(), "missing", progressEvent(1))
	})
}

func TestHub_LastRegistrationWins(t *testing.T) {
	hub := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register("r1", NewClient(a))
	hub.Register("r1", NewClient(b))

	hub.Send(context.Background(), "r1", progressEvent(1))

	assert.Empty(t, a.events())
	require.Len(t, b.events(), 1)
	assert.Equal(t, progressEvent(1), b.events()[0])
}

func TestHub_UnregisterRemovesOnlyThatClient(t *testing.T) {
	hub := NewHub()
	a, b := NewClient(&fakeConn{}), NewClient(&fakeConn{})
	hub.Register("r1", a)
	hub.Register("r2", a)
	hub.Register("r3", b)

	hub.Unregister(a)

	_, ok := hub.Lookup("r1")
	assert.False(t, ok)
	_, ok = hub.Lookup("r2")
	assert.False(t, ok)
	got, ok := hub.Lookup("r3")
	assert.True(t, ok)
	assert.Same(t, b, got)
}

func TestHub_UnregisterStaleClientKeepsReplacement(t *testing.T) {
	hub := NewHub()
	old, replacement := NewClient(&fakeConn{}), NewClient(&fakeConn{})
	hub.Register("r1", old)
	hub.Register("r1", replacement)

	hub.Unregister(old)

	got, ok := hub.Lookup("r1")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestHub_ClosedClientDropsEvents(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	client := NewClient(conn)
	hub.Register("r1", client)
	client.Close()

	hub.Send(context.Background(), "r1", progressEvent(1))

	assert.Empty(t, conn.events())
	assert.ErrorIs(t, client.Send("x"), ErrClientClosed)
}

func TestHub_WriteFailureIsSwallowed(t *testing.T) {
	hub := NewHub()
	hub.Register("r1", NewClient(&fakeConn{err: errors.New("broken pipe")}))

	assert.NotPanics(t, func() {
		hub.Send(context.Background(), "r1", progressEvent(1))
	})
}

func TestHub_ConcurrentSendersSerialize(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register("r1", NewClient(conn))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.Send(context.Background(), "r1", progressEvent(i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, conn.events(), 50)
}
