package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor is one unit of recurring work a Worker drives.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker invokes its processor on a fixed cadence until Stop is called or
// the context ends. A failed run is logged and the loop keeps ticking.
type Worker struct {
	processor JobProcessor
	interval  time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
}

func NewWorker(processor JobProcessor, interval time.Duration) *Worker {
	return &Worker{
		processor: processor,
		interval:  interval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start blocks in the polling loop; run it in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("worker: polling every %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("worker: context cancelled, exiting")
			return
		case <-w.stopChan:
			log.Println("worker: stop requested, exiting")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Printf("worker: run failed: %v", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for any in-flight run to finish.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
