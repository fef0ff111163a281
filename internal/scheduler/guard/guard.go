package guard

import (
	"errors"
	"sync"
)

var ErrAlreadyRunning = errors.New("task_already_running")

// Running tracks which tasks are executing in this process.
type Running struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewRunning() *Running {
	return &Running{active: make(map[string]struct{})}
}

// Acquire marks name as running. The returned release must be called once the
// task finishes. It fails with ErrAlreadyRunning while another run holds name.
func (r *Running) Acquire(name string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[name]; ok {
		return nil, ErrAlreadyRunning
	}
	r.active[name] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.active, name)
			r.mu.Unlock()
		})
	}, nil
}

func (r *Running) IsRunning(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[name]
	return ok
}
