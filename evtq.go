package infodiff

// evtq.go holds the event list that drives a diffusion trial.  Events
// carry information across one connection; the queue hands them back
// in time order and keeps the simulation clock

import (
	"container/heap"
)

// Event is the arrival of information at node To, sent by node From, at simulation Time
type Event struct {
	From int
	To   int
	Time float64
}

// before orders events by time.  Equal times are ordered by source then
// target id so that a trial's event order does not depend on insertion order
func (evt Event) before(other Event) bool {
	if evt.Time != other.Time {
		return evt.Time < other.Time
	}
	if evt.From != other.From {
		return evt.From < other.From
	}
	return evt.To < other.To
}

// evtHeap and its methods implement a min-priority heap on event time
type evtHeap []Event

func (h evtHeap) Len() int           { return len(h) }
func (h evtHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h evtHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *evtHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *evtHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// EventQueue holds pending events and the simulation clock, which is the
// time of the event most recently removed
type EventQueue struct {
	clock   float64
	pending evtHeap
}

// CreateEventQueue is a constructor, setting the clock to now
func CreateEventQueue(now float64) *EventQueue {
	eq := new(EventQueue)
	eq.clock = now
	eq.pending = make(evtHeap, 0)
	heap.Init(&eq.pending)
	return eq
}

// Update adds a batch of events, in any order
func (eq *EventQueue) Update(events []Event) {
	for _, evt := range events {
		heap.Push(&eq.pending, evt)
	}
}

// Next removes and returns the earliest event, advancing the clock to its time.
// Calling Next on an empty queue is a programming error
func (eq *EventQueue) Next() Event {
	if len(eq.pending) == 0 {
		panic("Next called on empty event queue")
	}
	evt := heap.Pop(&eq.pending).(Event)
	eq.clock = evt.Time
	return evt
}

// IsEmpty is true when no events are pending
func (eq *EventQueue) IsEmpty() bool {
	return len(eq.pending) == 0
}

// CurrentTime returns the simulation clock
func (eq *EventQueue) CurrentTime() float64 {
	return eq.clock
}

// Len returns the number of pending events
func (eq *EventQueue) Len() int {
	return len(eq.pending)
}

// ResetClock puts the clock back to zero without touching pending events
func (eq *EventQueue) ResetClock() {
	eq.clock = 0.0
}
