package infodiff

// evtm-drive.go drains a trial's propagation events through the evt event
// manager instead of an EventQueue.  Each event becomes a scheduled call of
// arriveInfo; the manager's clock plays the part of the queue's clock.
// Virtual times are held in ticks, so informed times are rounded to the
// vrtime resolution

import (
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"math"
)

// evtmHorizon is the latest time, in seconds, that the event manager's
// tick counter can represent
var evtmHorizon = float64(math.MaxInt64 / vrtime.TicksPerSecond)

// evtmDiffusion is the context handed to arriveInfo
type evtmDiffusion struct {
	nw       *Network
	onInform informFunc
}

// DiffuseEvtm is Diffuse, with the events ordered by an evtm.EventManager
func DiffuseEvtm(nw *Network, numSeeds int) float64 {
	return diffuseWithEvtm(nw, numSeeds, noInform)
}

func diffuseWithEvtm(nw *Network, numSeeds int, onInform informFunc) float64 {
	evtMgr := evtm.New()
	ed := &evtmDiffusion{nw: nw, onInform: onInform}

	// no event has run yet, so all seeds are informed at time zero
	now := evtMgr.CurrentSeconds()
	for k := 0; k < numSeeds; k++ {
		id, events := nw.seedRandomNode(now)
		onInform(-1, id, now)
		ed.schedule(evtMgr, events)
	}
	timeOfInitialization := now

	evtMgr.Run(evtmHorizon)
	return timeOfInitialization
}

// schedule hands events to the event manager, as offsets from its current time
func (ed *evtmDiffusion) schedule(evtMgr *evtm.EventManager, events []Event) {
	now := evtMgr.CurrentSeconds()
	for _, evt := range events {
		evtMgr.Schedule(ed, evt, arriveInfo, vrtime.SecondsToTime(math.Max(evt.Time-now, 0.0)))
	}
}

// arriveInfo is the event handler for information arriving at a node
func arriveInfo(evtMgr *evtm.EventManager, context any, data any) any {
	ed := context.(*evtmDiffusion)
	evt := data.(Event)

	// an informed node ignores repeats
	if ed.nw.IsInformed(evt.To) {
		return nil
	}
	now := evtMgr.CurrentSeconds()
	ed.schedule(evtMgr, ed.nw.InformNode(evt.To, now))
	ed.onInform(evt.From, evt.To, now)
	return nil
}
