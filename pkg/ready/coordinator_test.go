package ready

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNotifyReleasesSlotWithoutSender(t *testing.T) {
	co := NewCoordinator()
	slot := co.Slot()
	sub := slot.Subscribe()

	resolved := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := sub.Wait(ctx); err != nil {
			t.Errorf("wait should resolve after notify, got %v", err)
		}
		close(resolved)
	}()

	co.Notify()

	select {
	case <-resolved:
	case <-time.After(time.Second):
		t.Fatal("priming did not release the slot")
	}
	if got := slot.Phase(); got != Primed {
		t.Errorf("expected phase primed, got %v", got)
	}
}

func TestNotifyWithLiveSenderKeepsWaiting(t *testing.T) {
	co := NewCoordinator()
	slot := co.Slot()
	s := slot.Sender()

	co.Notify()

	// The waiter checks the live sender count in its own predicate,
	// so priming alone must not release it.
	sub := slot.Subscribe()
	if waitOrTimeout(t, sub, 100*time.Millisecond) {
		t.Fatal("wait resolved while a sender was outstanding")
	}

	s.Release()
	sub = slot.Subscribe()
	if !waitOrTimeout(t, sub, 100*time.Millisecond) {
		t.Fatal("wait should resolve after the sender released")
	}
}

func TestSenderAcquiredBeforeNotifyThenCompleted(t *testing.T) {
	co := NewCoordinator()
	slot := co.Slot()
	sub := slot.Subscribe()

	s := slot.Sender()
	co.Notify()

	resolved := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := sub.Wait(ctx); err != nil {
			t.Errorf("wait should resolve after complete, got %v", err)
		}
		close(resolved)
	}()

	time.Sleep(20 * time.Millisecond)
	s.Complete()

	select {
	case <-resolved:
	case <-time.After(time.Second):
		t.Fatal("completion did not release the slot")
	}
	if got := slot.Phase(); got != Completed {
		t.Errorf("expected phase completed, got %v", got)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	co := NewCoordinator()
	slotA := co.Slot()
	slotB := co.Slot()

	sA := slotA.Sender()
	sB := slotB.Sender()
	co.Notify()

	sA.Complete()

	subA := slotA.Subscribe()
	if !waitOrTimeout(t, subA, 100*time.Millisecond) {
		t.Fatal("slot A should be completed")
	}

	// Completing A's sender must not affect B's wait state.
	subB := slotB.Subscribe()
	if waitOrTimeout(t, subB, 100*time.Millisecond) {
		t.Fatal("slot B resolved without its own completion")
	}

	sB.Release()
	subB = slotB.Subscribe()
	if !waitOrTimeout(t, subB, 100*time.Millisecond) {
		t.Fatal("slot B should resolve after its sender released")
	}
}

func TestNotifyIdempotent(t *testing.T) {
	co := NewCoordinator()
	slot := co.Slot()

	co.Notify()
	co.Notify()
	co.Notify()

	if got := slot.Phase(); got != Primed {
		t.Errorf("expected primed after repeated notifies, got %v", got)
	}

	// A completed slot is not regressed by a later notify.
	slot.Complete()
	co.Notify()
	if got := slot.Phase(); got != Completed {
		t.Errorf("notify regressed a completed slot to %v", got)
	}
}

func TestSlotRegisteredAfterNotify(t *testing.T) {
	co := NewCoordinator()
	co.Notify()

	// Registration after notify is an accepted ordering contract:
	// the slot is never primed and resolves only via completion.
	late := co.Slot()
	sub := late.Subscribe()
	if waitOrTimeout(t, sub, 100*time.Millisecond) {
		t.Fatal("late slot should not have been primed")
	}

	late.Complete()
	sub = late.Subscribe()
	if !waitOrTimeout(t, sub, 100*time.Millisecond) {
		t.Fatal("late slot should resolve via explicit completion")
	}
}

func TestManualSenderReleaseKeepsWaiting(t *testing.T) {
	co := NewCoordinator()
	slot := co.Slot()

	s := slot.SenderManual()
	co.Notify()
	s.Release()

	sub := slot.Subscribe()
	if waitOrTimeout(t, sub, 100*time.Millisecond) {
		t.Fatal("manual sender release must not resolve the wait")
	}

	s.Complete()
	sub = slot.Subscribe()
	if !waitOrTimeout(t, sub, 100*time.Millisecond) {
		t.Fatal("explicit complete should resolve the wait")
	}
}

func TestConcurrentSendersSingleSlot(t *testing.T) {
	co := NewCoordinator()
	slot := co.Slot()

	const producers = 8
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := slot.Sender()
			time.Sleep(5 * time.Millisecond)
			s.Release()
		}()
	}

	co.Notify()
	sub := slot.Subscribe()
	resolved := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := sub.Wait(ctx); err != nil {
			t.Errorf("wait should resolve, got %v", err)
		}
		close(resolved)
	}()

	wg.Wait()
	select {
	case <-resolved:
	case <-time.After(time.Second):
		t.Fatal("slot never resolved with concurrent senders")
	}

	if got := slot.Senders(); got != 0 {
		t.Errorf("expected zero live senders, got %d", got)
	}
}

func TestCoordinatorLen(t *testing.T) {
	co := NewCoordinator()
	if got := co.Len(); got != 0 {
		t.Errorf("expected empty coordinator, got %d slots", got)
	}
	co.Slot()
	co.Slot()
	if got := co.Len(); got != 2 {
		t.Errorf("expected 2 slots, got %d", got)
	}
}
