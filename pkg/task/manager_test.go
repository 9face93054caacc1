package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTask struct {
	name    string
	mu      *sync.Mutex
	events  *[]string
	started context.Context
}

func (t *recordingTask) Name() string { return t.name }

func (t *recordingTask) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = ctx
	*t.events = append(*t.events, "start:"+t.name)
	return nil
}

func (t *recordingTask) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	*t.events = append(*t.events, "stop:"+t.name)
	return nil
}

func TestManagerStartsInOrderAndStopsInReverse(t *testing.T) {
	var mu sync.Mutex
	var events []string
	m := NewManager()
	a := &recordingTask{name: "a", mu: &mu, events: &events}
	b := &recordingTask{name: "b", mu: &mu, events: &events}
	m.Register(a)
	m.Register(nil)
	m.Register(b)

	require.NoError(t, m.StartAll(context.Background()))
	require.NoError(t, m.StartAll(context.Background()))
	m.StopAll()
	m.StopAll()

	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, events)
	assert.Error(t, a.started.Err())
}

func TestRunEveryRunsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	done := make(chan struct{})
	go func() {
		RunEvery(ctx, 5*time.Millisecond, func(context.Context) {
			atomic.AddInt32(&calls, 1)
		})
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunEvery did not return after cancel")
	}
}
