package signal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vango-go/sync-ssr/pkg/ready"
)

func TestNewRequiresCoordinator(t *testing.T) {
	_, err := New(nil, "")
	if err == nil {
		t.Fatal("expected an error for a nil coordinator")
	}
	if !errors.Is(err, ErrMissingCoordinator) {
		t.Errorf("expected ErrMissingCoordinator, got %v", err)
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustNew should panic without a coordinator")
		}
	}()
	MustNew(nil, "")
}

func TestReadResolvesInitialValueOnNotify(t *testing.T) {
	// No writer is ever acquired: the reader resolves to the initial
	// value once the coordinator notifies, never hanging.
	co := ready.NewCoordinator()
	sr := MustNew(co, "initial")

	result := make(chan string, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		v, err := sr.ReadOnly().Await(ctx)
		if err != nil {
			t.Errorf("reader should resolve after notify, got %v", err)
		}
		result <- v
	}()

	co.Notify()

	select {
	case v := <-result:
		if v != "initial" {
			t.Errorf("expected initial value, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("reader never resolved")
	}
}

func TestWriteReleasesWaitWithValue(t *testing.T) {
	// The writer acquires the write signal before any suspension, so
	// even though the value only lands 100ms after the coordinator
	// notified, the reader waits for it and observes it.
	co := ready.NewCoordinator()
	sr := MustNew(co, "")

	result := make(chan string, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		v, err := sr.ReadOnly().Await(ctx)
		if err != nil {
			t.Errorf("reader should resolve after write, got %v", err)
		}
		result <- v
	}()

	ws := sr.WriteOnly()
	go func() {
		defer ws.Release()
		time.Sleep(100 * time.Millisecond)
		ws.Set("Hello world!")
	}()

	co.Notify()

	select {
	case v := <-result:
		if v != "Hello world!" {
			t.Errorf("expected %q, got %q", "Hello world!", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader never resolved")
	}
}

func TestLateAcquiredWriterObservesStaleRead(t *testing.T) {
	// Documented ordering hazard: acquiring the write signal after an
	// internal delay means the notify has already released the wait,
	// and the reader observes the initial value even though the
	// writer eventually sets the intended one.
	co := ready.NewCoordinator()
	sr := MustNew(co, "")

	result := make(chan string, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		v, _ := sr.ReadOnly().Await(ctx)
		result <- v
	}()

	go func() {
		// Misuse: suspend first, acquire after.
		time.Sleep(100 * time.Millisecond)
		ws := sr.WriteOnly()
		defer ws.Release()
		ws.Set("Hello world!")
	}()

	co.Notify()

	select {
	case v := <-result:
		if v != "" {
			t.Errorf("expected the stale initial value, got %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader never resolved")
	}
}

func TestKeptAliveWriterBlocksReader(t *testing.T) {
	// A write signal stored away and neither mutated nor released
	// suspends the reader indefinitely. Accepted deadlock.
	co := ready.NewCoordinator()
	sr := MustNew(co, "")

	ws := sr.WriteOnly()
	co.Notify()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := sr.ReadOnly().Await(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("expected the reader to hang, got %v", err)
	}
	_ = ws
}

func TestReleaseWithoutWriteResolvesToCurrent(t *testing.T) {
	// Compute, decide not to write, release: the reader resolves to
	// whatever the cell holds.
	co := ready.NewCoordinator()
	sr := MustNew(co, "current")

	ws := sr.WriteOnly()
	co.Notify()
	ws.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	v, err := sr.ReadOnly().Await(ctx)
	if err != nil {
		t.Fatalf("reader should resolve after release, got %v", err)
	}
	if v != "current" {
		t.Errorf("expected %q, got %q", "current", v)
	}
}

func TestReaderObservesLatestValueNotSnapshot(t *testing.T) {
	// The reader re-reads the cell after its wait resolves; a second
	// write racing the release is still observed.
	co := ready.NewCoordinator()
	sr := MustNew(co, "")

	ws := sr.WriteOnly()
	ws.Set("first")
	ws.Set("second")
	ws.Release()
	co.Notify()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	v, err := sr.ReadOnly().Await(ctx)
	if err != nil {
		t.Fatalf("reader should resolve, got %v", err)
	}
	if v != "second" {
		t.Errorf("expected latest value %q, got %q", "second", v)
	}
}

func TestUpdateCompletesSlot(t *testing.T) {
	co := ready.NewCoordinator()
	sr := MustNew(co, 1)

	ws := sr.WriteOnly()
	ws.Update(func(n int) int { return n + 41 })

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	v, err := sr.ReadOnly().Await(ctx)
	if err != nil {
		t.Fatalf("reader should resolve after update, got %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
}

func TestSetUntrackedDoesNotRelease(t *testing.T) {
	co := ready.NewCoordinator()
	sr := MustNew(co, "")

	ws := sr.WriteOnly()
	sr.SetUntracked("silent")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := sr.ReadOnly().Await(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("untracked write must not release the reader, got %v", err)
	}
	if got := sr.GetUntracked(); got != "silent" {
		t.Errorf("expected untracked value to land, got %q", got)
	}
	ws.Release()
}

func TestWithWriterReleasesOnPanic(t *testing.T) {
	co := ready.NewCoordinator()
	sr := MustNew(co, "")

	func() {
		defer func() { _ = recover() }()
		sr.WithWriter(func(*WriteSignal[string]) {
			panic("producer failed")
		})
	}()

	co.Notify()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := sr.ReadOnly().Await(ctx); err != nil {
		t.Fatalf("reader should resolve after panicking writer released, got %v", err)
	}
}

func TestCancelledAwaitReturnsCurrentValue(t *testing.T) {
	co := ready.NewCoordinator()
	sr := MustNew(co, "fallback")
	ws := sr.WriteOnly()
	defer ws.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	v, err := sr.ReadOnly().Await(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if v != "fallback" {
		t.Errorf("cancelled await should return the current value, got %q", v)
	}
}
