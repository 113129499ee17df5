// internal/supervisor/supervisor.go
package supervisor

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Status is the externally observable state of a supervised worker.
type Status int

const (
	Running Status = iota
	FinishedOK
	FinishedWithError
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case FinishedOK:
		return "finished_ok"
	case FinishedWithError:
		return "finished_with_error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PanicError wraps a value recovered from a worker panic.
type PanicError struct {
	Worker string
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker %s panicked: %v", e.Worker, e.Value)
}

// Handle observes one worker. Status is written once, at completion.
type Handle struct {
	name string

	mu     sync.Mutex
	status Status
	err    error

	done chan struct{}
}

// Go starts fn on its own goroutine and returns a handle to observe it.
// A panic inside fn is recovered and reported as FinishedWithError.
func Go(name string, fn func() error) *Handle {
	h := &Handle{
		name:   name,
		status: Running,
		done:   make(chan struct{}),
	}

	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Worker: name, Value: r, Stack: debug.Stack()}
			}
			h.finish(err)
		}()
		err = fn()
	}()

	return h
}

func (h *Handle) finish(err error) {
	h.mu.Lock()
	if err != nil {
		h.status = FinishedWithError
		h.err = err
	} else {
		h.status = FinishedOK
	}
	h.mu.Unlock()
	close(h.done)
}

func (h *Handle) Name() string { return h.name }

func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Running reports whether the worker has not yet finished.
func (h *Handle) Running() bool {
	return h.Status() == Running
}

// Err returns the worker's terminal error, nil while running or on success.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Done is closed once the worker has finished, however it finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the worker finishes and returns its terminal error.
func (h *Handle) Wait() error {
	<-h.done
	return h.Err()
}
