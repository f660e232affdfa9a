// Package workers provides abstractions for managing background workers in
// the sync engine. It defines the Worker interface and a Workers aggregate
// that starts and stops multiple workers in a unified way.
package workers

import "context"

// Worker is implemented by any component with a background goroutine
// lifecycle. Start must be non-blocking and idempotent with respect to a
// prior Stop; Stop must block until the worker's goroutines have exited and
// must be safe to call when the worker is not running.
//
// The sync coordinator and the network monitor are the engine's two workers.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
