// internal/supervisor/supervisor_test.go
package supervisor

import (
	"errors"
	"testing"
	"time"
)

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("worker %s did not finish", h.Name())
	}
}

func TestGo_RunningUntilReturn(t *testing.T) {
	release := make(chan struct{})
	h := Go("blocked", func() error {
		<-release
		return nil
	})

	if h.Status() != Running {
		t.Fatalf("status: got=%s want=%s", h.Status(), Running)
	}
	if !h.Running() {
		t.Fatalf("Running() should be true")
	}

	close(release)
	waitDone(t, h)

	if h.Status() != FinishedOK {
		t.Fatalf("status: got=%s want=%s", h.Status(), FinishedOK)
	}
	if h.Err() != nil {
		t.Fatalf("unexpected err: %v", h.Err())
	}
}

func TestGo_ErrorReturn(t *testing.T) {
	boom := errors.New("boom")
	h := Go("failing", func() error { return boom })

	if err := h.Wait(); !errors.Is(err, boom) {
		t.Fatalf("Wait: got=%v want=%v", err, boom)
	}
	if h.Status() != FinishedWithError {
		t.Fatalf("status: got=%s want=%s", h.Status(), FinishedWithError)
	}
}

func TestGo_PanicIsRecovered(t *testing.T) {
	h := Go("panicky", func() error {
		panic("kaboom")
	})

	err := h.Wait()
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PanicError, got %T (%v)", err, err)
	}
	if pe.Value != "kaboom" || pe.Worker != "panicky" {
		t.Fatalf("panic error: %+v", pe)
	}
	if h.Status() != FinishedWithError {
		t.Fatalf("status: got=%s want=%s", h.Status(), FinishedWithError)
	}
	if h.Running() {
		t.Fatalf("Running() should be false after panic")
	}
}

func TestWait_IsRepeatable(t *testing.T) {
	h := Go("quick", func() error { return nil })
	if err := h.Wait(); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if err := h.Wait(); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
}
