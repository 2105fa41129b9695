package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingRunner struct {
	mu      sync.Mutex
	runs    []int64
	err     error
	panics  bool
	started chan struct{}
}

func (r *recordingRunner) Run(ctx context.Context, lessonID int64, videoPath string) error {
	r.mu.Lock()
	r.runs = append(r.runs, lessonID)
	r.mu.Unlock()
	if r.started != nil {
		close(r.started)
	}
	if r.panics {
		panic("pipeline exploded")
	}
	return r.err
}

func (r *recordingRunner) seen() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.runs...)
}

func TestDispatcher_RunsEnqueuedPipelines(t *testing.T) {
	runner := &recordingRunner{}
	d := NewDispatcher(runner)

	d.Enqueue(1, "/media/a.mp4")
	d.Enqueue(2, "/media/b.mp4")
	d.Stop()

	assert.ElementsMatch(t, []int64{1, 2}, runner.seen())
}

func TestDispatcher_PipelineErrorDoesNotPropagate(t *testing.T) {
	runner := &recordingRunner{err: errors.New("boom")}
	d := NewDispatcher(runner)

	d.Enqueue(1, "/media/a.mp4")
	d.Stop()

	assert.Equal(t, []int64{1}, runner.seen())
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	runner := &recordingRunner{panics: true}
	d := NewDispatcher(runner)

	d.Enqueue(1, "/media/a.mp4")
	// Stop must return even though the run panicked.
	d.Stop()

	assert.Equal(t, []int64{1}, runner.seen())
}

func TestDispatcher_RejectsAfterStop(t *testing.T) {
	runner := &recordingRunner{}
	d := NewDispatcher(runner)
	d.Stop()

	d.Enqueue(1, "/media/a.mp4")
	d.Shutdown()

	assert.Empty(t, runner.seen())
}
