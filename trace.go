package infodiff

import (
	"encoding/json"
	"github.com/iti/evt/vrtime"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"strconv"
	"sync"
)

// TraceInst is one serialized trace record, stamped with its simulation time
type TraceInst struct {
	TraceTime string `json:"tracetime" yaml:"tracetime"`
	TraceType string `json:"tracetype" yaml:"tracetype"`
	TraceStr  string `json:"tracestr" yaml:"tracestr"`
}

// TraceManager gathers the inform transitions of the trials of an experiment.
// Trials run concurrently, so additions are serialized by a mutex
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// all trace records for this experiment, by trial index
	Traces map[int][]TraceInst `json:"traces" yaml:"traces"`

	mu sync.Mutex
}

// CreateTraceManager is a constructor.  It saves the name of the experiment
// and a flag indicating whether the trace manager is active.  By testing this
// flag we can inhibit the activity of gathering a trace when we don't want it,
// while embedding calls to its methods everywhere we need them when it is
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.Traces = make(map[int][]TraceInst)
	return tm
}

// Active tells the caller whether the Trace Manager is actively being used
func (tm *TraceManager) Active() bool {
	return tm != nil && tm.InUse
}

// AddTrace stores a trace record under the trial it belongs to
func (tm *TraceManager) AddTrace(trial int, trace TraceInst) {
	if !tm.Active() {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.Traces[trial] = append(tm.Traces[trial], trace)
}

// NumTraces returns the number of records held for a trial
func (tm *TraceManager) NumTraces(trial int) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.Traces[trial])
}

// WriteToFile stores the Traces struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
// Nothing is written, and false is returned, when the manager is not in use
func (tm *TraceManager) WriteToFile(filename string) (bool, error) {
	if !tm.Active() {
		return false, nil
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()

	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	snapshot := struct {
		InUse   bool                `json:"inuse" yaml:"inuse"`
		ExpName string              `json:"expname" yaml:"expname"`
		Traces  map[int][]TraceInst `json:"traces" yaml:"traces"`
	}{InUse: tm.InUse, ExpName: tm.ExpName, Traces: tm.Traces}

	if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(snapshot, "", "\t")
	} else {
		bytes, merr = yaml.Marshal(snapshot)
	}
	if merr != nil {
		return false, merr
	}

	if werr := os.WriteFile(filename, bytes, 0644); werr != nil {
		return false, werr
	}
	return true, nil
}

// InformTrace saves the moment a node became informed, and through which connection
type InformTrace struct {
	Time     float64 // time in float64
	Ticks    int64   // ticks variable of time
	Priority int64   // priority field of time-stamp
	Trial    int     // index of the trial
	From     int     // node that sent the information, -1 for a seed
	To       int     // node informed
	Degree   int     // degree of the informed node
}

// Serialize renders the record as yaml
func (itr *InformTrace) Serialize() string {
	bytes, merr := yaml.Marshal(*itr)
	if merr != nil {
		panic(merr)
	}
	return string(bytes[:])
}

// AddInformTrace creates a record of an inform transition and stores it
func AddInformTrace(tm *TraceManager, vrt vrtime.Time, trial int, from, to, degree int) {
	if !tm.Active() {
		return
	}
	itr := new(InformTrace)
	itr.Time = vrt.Seconds()
	itr.Ticks = vrt.Ticks()
	itr.Priority = vrt.Pri()
	itr.Trial = trial
	itr.From = from
	itr.To = to
	itr.Degree = degree

	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)
	tm.AddTrace(trial, TraceInst{TraceTime: traceTime, TraceType: "inform", TraceStr: itr.Serialize()})
}
