package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerManager_Fires(t *testing.T) {
	m := NewTimerManager(5 * time.Millisecond)
	defer m.Stop()

	fired := make(chan struct{}, 1)
	m.AddTimer(10*time.Millisecond, 0, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	if m.Len() != 0 {
		t.Errorf("One-shot timer should leave the queue, %d pending", m.Len())
	}
}

func TestTimerManager_RemoveBeforeFire(t *testing.T) {
	m := NewTimerManager(5 * time.Millisecond)
	defer m.Stop()

	var calls int32
	id := m.AddTimer(30*time.Millisecond, 0, func() { atomic.AddInt32(&calls, 1) })
	m.RemoveTimer(id)
	m.RemoveTimer(id)

	time.Sleep(80 * time.Millisecond)
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("Removed timer should never fire")
	}
}

func TestTimerManager_Interval(t *testing.T) {
	m := NewTimerManager(2 * time.Millisecond)
	defer m.Stop()

	var calls int32
	id := m.AddTimer(0, 5*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&calls) < 3 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	m.RemoveTimer(id)

	if atomic.LoadInt32(&calls) < 3 {
		t.Errorf("Interval timer should repeat, fired %d times", atomic.LoadInt32(&calls))
	}
}

func TestManual_AdvanceOrder(t *testing.T) {
	m := NewManual()
	var order []int

	m.AddTimer(30*time.Millisecond, 0, func() { order = append(order, 3) })
	m.AddTimer(10*time.Millisecond, 0, func() { order = append(order, 1) })
	m.AddTimer(20*time.Millisecond, 0, func() { order = append(order, 2) })

	m.Advance(15 * time.Millisecond)
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("Expected only the first timer to fire, got %v", order)
	}

	m.Advance(time.Second)
	if len(order) != 3 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("Expected deadline order, got %v", order)
	}
}

func TestManual_CallbackRearms(t *testing.T) {
	m := NewManual()
	count := 0

	var arm func()
	arm = func() {
		m.AddTimer(10*time.Millisecond, 0, func() {
			count++
			arm()
		})
	}
	arm()

	m.Advance(35 * time.Millisecond)
	if count != 3 {
		t.Errorf("Expected 3 cascaded fires within 35ms, got %d", count)
	}
	if m.Len() != 1 {
		t.Errorf("Expected the re-armed timer to be pending, got %d", m.Len())
	}
}

func TestManual_Remove(t *testing.T) {
	m := NewManual()
	fired := false
	id := m.AddTimer(time.Millisecond, 0, func() { fired = true })
	m.RemoveTimer(id)
	m.Advance(time.Second)
	if fired {
		t.Error("Removed timer should not fire")
	}
}
