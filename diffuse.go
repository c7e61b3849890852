package infodiff

// diffuse.go runs the diffusion of one trial over a built network: seeding,
// then draining the event list until no information is in flight.  An event
// reaching an informed node is dropped, so each node sends at most once and
// the number of events is bounded by the number of connection ends

// informFunc is told of every inform transition; from is -1 for a seed
type informFunc func(from, to int, now float64)

func noInform(from, to int, now float64) {}

// Diffuse seeds numSeeds random nodes and drains the resulting events through
// an EventQueue.  The seeds are informed one after the other at the queue's
// current time; the clock reached when the last is informed is returned as
// the time of initialization, from which Result measures informed times
func Diffuse(nw *Network, numSeeds int) float64 {
	return diffuseWithQueue(nw, numSeeds, noInform)
}

func diffuseWithQueue(nw *Network, numSeeds int, onInform informFunc) float64 {
	eq := CreateEventQueue(0.0)

	for k := 0; k < numSeeds; k++ {
		now := eq.CurrentTime()
		id, events := nw.seedRandomNode(now)
		onInform(-1, id, now)
		eq.Update(events)
	}
	timeOfInitialization := eq.CurrentTime()

	for !eq.IsEmpty() {
		evt := eq.Next()
		if nw.IsInformed(evt.To) {
			continue
		}
		now := eq.CurrentTime()
		eq.Update(nw.InformNode(evt.To, now))
		onInform(evt.From, evt.To, now)
	}
	return timeOfInitialization
}
