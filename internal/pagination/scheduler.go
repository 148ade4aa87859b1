package pagination

import (
	"sort"
	"time"
)

// Scheduler defers work until after the render surface has laid out the
// latest mutation
type Scheduler interface {
	AfterLayout(delay time.Duration, fn func())
}

type task struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// Queue is a single-threaded cooperative Scheduler running on a virtual
// clock. Each Step performs one layout pass and then runs the tasks due at the
// earliest pending time, in the order they were scheduled.
type Queue struct {
	now      time.Duration
	seq      uint64
	tasks    []task
	onLayout func()
}

// NewQueue creates an empty queue at virtual time zero
func NewQueue() *Queue {
	return &Queue{}
}

// OnLayout sets the layout pass run before every step
func (q *Queue) OnLayout(fn func()) {
	q.onLayout = fn
}

// AfterLayout schedules fn to run delay after the current virtual time,
// following a layout pass
func (q *Queue) AfterLayout(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	q.seq++
	q.tasks = append(q.tasks, task{at: q.now + delay, seq: q.seq, fn: fn})
}

// Pending returns the number of scheduled tasks
func (q *Queue) Pending() int {
	return len(q.tasks)
}

// Now returns the virtual time
func (q *Queue) Now() time.Duration {
	return q.now
}

// Step advances the clock to the earliest pending task, runs the layout pass
// and then every task due at that time. Tasks scheduled while stepping run in a
// later step. It returns false when nothing was pending.
func (q *Queue) Step() bool {
	if len(q.tasks) == 0 {
		return false
	}

	sort.SliceStable(q.tasks, func(i, j int) bool {
		if q.tasks[i].at != q.tasks[j].at {
			return q.tasks[i].at < q.tasks[j].at
		}
		return q.tasks[i].seq < q.tasks[j].seq
	})
	at := q.tasks[0].at
	n := 0
	for n < len(q.tasks) && q.tasks[n].at == at {
		n++
	}
	due := make([]task, n)
	copy(due, q.tasks[:n])
	q.tasks = append(q.tasks[:0], q.tasks[n:]...)

	if at > q.now {
		q.now = at
	}
	if q.onLayout != nil {
		q.onLayout()
	}
	for _, t := range due {
		t.fn()
	}
	return true
}

// Drain steps until the queue is empty or limit steps have run. A limit of
// zero or less means no limit. It returns the number of steps taken.
func (q *Queue) Drain(limit int) int {
	steps := 0
	for limit <= 0 || steps < limit {
		if !q.Step() {
			break
		}
		steps++
	}
	return steps
}
