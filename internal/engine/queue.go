package engine

import "fmt"

// Schedule selects the order in which free proposers propose.
// All schedules yield the same matching; only the trace differs.
type Schedule string

const (
	// ScheduleQueue serves free proposers first-in first-out, starting in
	// declaration order. A rejected or displaced proposer goes to the back.
	ScheduleQueue Schedule = "queue"

	// ScheduleStack serves the most recently freed proposer first.
	ScheduleStack Schedule = "stack"

	// ScheduleRounds lets every free proposer propose once per round, in
	// declaration order; proposers freed during a round wait for the next.
	ScheduleRounds Schedule = "rounds"
)

// ValidSchedules lists the accepted schedule names.
var ValidSchedules = []Schedule{ScheduleQueue, ScheduleStack, ScheduleRounds}

// ParseSchedule converts a name to a Schedule. The empty string selects
// ScheduleQueue.
func ParseSchedule(name string) (Schedule, error) {
	if name == "" {
		return ScheduleQueue, nil
	}
	for _, s := range ValidSchedules {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown schedule %q: must be one of %v", name, ValidSchedules)
}

// freeList holds the proposers that are currently unengaged.
type freeList interface {
	push(p string)
	pop() (string, bool)
	len() int
}

func newFreeList(s Schedule, initial []string) freeList {
	if s == ScheduleStack {
		st := &proposerStack{items: make([]string, 0, len(initial))}
		// Reverse so the first declared proposer is served first.
		for i := len(initial) - 1; i >= 0; i-- {
			st.push(initial[i])
		}
		return st
	}
	q := &proposerQueue{items: make([]string, 0, len(initial))}
	for _, p := range initial {
		q.push(p)
	}
	return q
}

// proposerQueue is a FIFO of free proposers.
type proposerQueue struct {
	items []string
}

func (q *proposerQueue) push(p string) {
	q.items = append(q.items, p)
}

func (q *proposerQueue) pop() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	p := q.items[0]
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return p, true
}

func (q *proposerQueue) len() int {
	return len(q.items)
}

// proposerStack is a LIFO of free proposers.
type proposerStack struct {
	items []string
}

func (s *proposerStack) push(p string) {
	s.items = append(s.items, p)
}

func (s *proposerStack) pop() (string, bool) {
	if len(s.items) == 0 {
		return "", false
	}
	last := len(s.items) - 1
	p := s.items[last]
	s.items = s.items[:last]
	return p, true
}

func (s *proposerStack) len() int {
	return len(s.items)
}
