package workers

import "context"

// Workers aggregates background workers so callers can manage them as one.
type Workers struct {
	workers []Worker
}

// New groups the given workers. Order matters: Start runs in order, Stop in
// reverse, so producers can be stopped before the consumers they feed.
func New(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Start launches every worker with ctx.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops all workers in reverse order, blocking until each has exited.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}
