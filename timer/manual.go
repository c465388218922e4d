package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a Scheduler whose clock only moves when Advance is called.
// Callbacks run synchronously on the caller of Advance, in deadline order.
type Manual struct {
	mutex  sync.Mutex
	now    time.Time
	queue  TimerQueue
	nextId int64
}

func NewManual() *Manual {
	return &Manual{
		now:    time.Unix(0, 0),
		queue:  make(TimerQueue, 0),
		nextId: 1,
	}
}

func (m *Manual) AddTimer(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &TimerTask{
		Id:       m.nextId,
		Execute:  m.now.Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextId++
	heap.Push(&m.queue, task)
	return task.Id
}

func (m *Manual) RemoveTimer(timerId int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.queue.remove(timerId)
}

func (m *Manual) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers added by callbacks along the way.
func (m *Manual) Advance(d time.Duration) {
	m.mutex.Lock()
	target := m.now.Add(d)
	m.mutex.Unlock()

	for {
		m.mutex.Lock()
		if m.queue.Len() == 0 || m.queue[0].Execute.After(target) {
			m.now = target
			m.mutex.Unlock()
			return
		}
		task := heap.Pop(&m.queue).(*TimerTask)
		m.now = task.Execute
		if task.Interval > 0 {
			task.Execute = m.now.Add(task.Interval)
			heap.Push(&m.queue, task)
		}
		m.mutex.Unlock()

		task.Callback()
	}
}
