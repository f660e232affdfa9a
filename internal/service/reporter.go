package service

import (
	"sync"

	"github.com/lv-asc/vangarments-app-sub017/models"
)

// StateFunc receives sync state snapshots.
type StateFunc func(models.SyncState)

// Reporter is the publish/subscribe channel between the sync coordinator and
// interested observers. Each subscriber gets its own delivery goroutine and
// queue, so a slow subscriber never delays the coordinator or the other
// subscribers. Delivery is at-least-once and in order per subscriber.
type Reporter struct {
	mu     sync.Mutex
	state  models.SyncState
	subs   map[int]*subscriber
	nextID int
	closed bool
}

type subscriber struct {
	fn     StateFunc
	mu     sync.Mutex
	queue  []models.SyncState
	notify chan struct{}
	done   chan struct{}
}

// NewReporter constructs a Reporter whose initial state is idle.
func NewReporter() *Reporter {
	return &Reporter{
		state: models.SyncState{Phase: models.PhaseIdle},
		subs:  make(map[int]*subscriber),
	}
}

// Subscribe registers fn and immediately queues the current state for it.
// The returned function cancels the subscription and stops its delivery
// goroutine; calling it more than once is a no-op.
func (r *Reporter) Subscribe(fn StateFunc) func() {
	sub := &subscriber{
		fn:     fn,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return func() {}
	}
	id := r.nextID
	r.nextID++
	r.subs[id] = sub
	sub.push(r.state)
	r.mu.Unlock()

	go sub.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
			close(sub.done)
		})
	}
}

// Publish records the new state and queues it for every active subscriber.
func (r *Reporter) Publish(state models.SyncState) {
	r.mu.Lock()
	r.state = state
	for _, sub := range r.subs {
		sub.push(state)
	}
	r.mu.Unlock()
}

// State returns the last published snapshot.
func (r *Reporter) State() models.SyncState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close cancels all subscriptions.
func (r *Reporter) Close() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[int]*subscriber)
	r.closed = true
	r.mu.Unlock()

	for _, sub := range subs {
		close(sub.done)
	}
}

func (s *subscriber) push(state models.SyncState) {
	s.mu.Lock()
	s.queue = append(s.queue, state)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
			for {
				s.mu.Lock()
				if len(s.queue) == 0 {
					s.mu.Unlock()
					break
				}
				state := s.queue[0]
				s.queue = s.queue[1:]
				s.mu.Unlock()

				s.fn(state)
			}
		}
	}
}
