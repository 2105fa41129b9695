package jobs

import (
	"context"
	"log"
	"sync"

	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// PipelineRunner executes one ingestion pipeline run for a lesson.
type PipelineRunner interface {
	Run(ctx context.Context, lessonID int64, videoPath string) error
}

// Dispatcher runs ingestion pipelines in the background, one goroutine per
// lesson. Runs are independent: a failing or panicking run is logged and
// never affects other runs or the request that enqueued it.
type Dispatcher struct {
	runner  PipelineRunner
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a new Dispatcher instance
func NewDispatcher(runner PipelineRunner) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		runner:  runner,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Enqueue starts a pipeline run for the lesson and returns immediately.
// The run uses the dispatcher's own context, not the caller's: the HTTP
// request that triggered ingestion completes long before the run does.
func (d *Dispatcher) Enqueue(lessonID int64, videoPath string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Printf("dispatcher: rejecting lesson %d: shutting down", lessonID)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("dispatcher: lesson %d: pipeline panicked: %v", lessonID, r)
			}
		}()

		log.Printf("dispatcher: lesson %d: pipeline started", lessonID)
		if err := d.runner.Run(d.baseCtx, lessonID, videoPath); err != nil {
			telemetry.CaptureError(d.baseCtx, err)
			log.Printf("dispatcher: lesson %d: pipeline failed: %v", lessonID, err)
			return
		}
		log.Printf("dispatcher: lesson %d: pipeline finished", lessonID)
	}()
}

// Stop waits for in-flight runs to finish and rejects new ones. Cancel the
// runs themselves by calling Shutdown instead.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	log.Println("dispatcher: drained")
}

// Shutdown cancels in-flight runs and waits for them to exit.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	log.Println("dispatcher: shutdown complete")
}
