// internal/irq/controller_test.go
package irq

import (
	"sync"
	"testing"
	"time"
)

func TestRaise_OnlyWhenAttachedAndEnabled(t *testing.T) {
	c := New()
	runs := 0

	if c.Raise(40) {
		t.Fatalf("raise on unattached line ran a handler")
	}

	if err := c.Attach(40, func() { runs++ }); err != nil {
		t.Fatalf("Attach() err=%v", err)
	}
	if c.Raise(40) {
		t.Fatalf("raise on masked line ran a handler")
	}

	c.Enable(40)
	if !c.Raise(40) || runs != 1 {
		t.Fatalf("expected handler to run once, runs=%d", runs)
	}

	c.Disable(40)
	if c.Raise(40) || runs != 1 {
		t.Fatalf("raise after disable ran handler, runs=%d", runs)
	}

	if got := c.Count(40); got != 1 {
		t.Fatalf("count=%d want 1", got)
	}
}

func TestAttach_Rejects(t *testing.T) {
	c := New()

	if err := c.Attach(-1, func() {}); err == nil {
		t.Fatalf("expected error for negative line")
	}
	if err := c.Attach(1, nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
	if err := c.Attach(1, func() {}); err != nil {
		t.Fatalf("Attach() err=%v", err)
	}
	if err := c.Attach(1, func() {}); err == nil {
		t.Fatalf("expected error for double attach")
	}

	c.Detach(1)
	if c.Enabled(1) {
		t.Fatalf("detached line reports enabled")
	}
	if err := c.Attach(1, func() {}); err != nil {
		t.Fatalf("re-attach after detach err=%v", err)
	}
}

func TestCriticalSection_ExcludesHandlers(t *testing.T) {
	c := New()

	var mu sync.Mutex
	ran := false
	if err := c.Attach(7, func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Attach() err=%v", err)
	}
	c.Enable(7)

	leave := c.EnterCritical()

	done := make(chan struct{})
	go func() {
		c.Raise(7)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	early := ran
	mu.Unlock()
	if early {
		t.Fatalf("handler ran inside critical section")
	}

	leave()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("handler did not run after leaving critical section")
	}
	if !ran {
		t.Fatalf("handler never ran")
	}
}
