package infodiff

// results.go holds the results of the trials of an experiment, the
// tab-separated table the results are reported in, and statistics
// aggregated over all trials

import (
	"bufio"
	"fmt"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
	"io"
	"os"
	"sync"
)

// TrialInfo describes how a trial's network came about
type TrialInfo struct {
	BuildAttempts int          // constructions tried, including the accepted one
	Connectivity  Connectivity // whether stubs were left unmatched
	GiantFraction float64      // share of nodes in the largest component
	NumNodes      int          // size of the network
}

// ResultStore collects the Result of every trial.  Appends from concurrent
// workers are serialized; the order of the results is the order of completion
type ResultStore struct {
	mu      sync.Mutex
	results []Result
	infos   []TrialInfo
}

// CreateResultStore is a constructor
func CreateResultStore() *ResultStore {
	rs := new(ResultStore)
	rs.results = make([]Result, 0)
	rs.infos = make([]TrialInfo, 0)
	return rs
}

// Append adds the result of one trial and returns its index
func (rs *ResultStore) Append(result Result, info TrialInfo) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.results = append(rs.results, result)
	rs.infos = append(rs.infos, info)
	return len(rs.results) - 1
}

// Len returns the number of trials stored
func (rs *ResultStore) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.results)
}

// Results returns the stored results, in append order
func (rs *ResultStore) Results() []Result {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return slices.Clone(rs.results)
}

// Infos returns the stored trial descriptions, in append order
func (rs *ResultStore) Infos() []TrialInfo {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return slices.Clone(rs.infos)
}

// WriteResults writes the results as a tab-separated table with header
// "#SimID Time Degree", one row per record.  SimID is the index of the
// trial in the store and the records keep their order
func WriteResults(w io.Writer, rs *ResultStore) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprint(bw, "#SimID\tTime\tDegree"); err != nil {
		return err
	}
	for simID, result := range rs.Results() {
		for _, rec := range result {
			if _, err := fmt.Fprintf(bw, "\n%d\t%.6f\t%d", simID, rec.Time, rec.Degree); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// SaveResults writes the results table to the named file
func SaveResults(filename string, rs *ResultStore) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if werr := WriteResults(f, rs); werr != nil {
		f.Close()
		return werr
	}
	return f.Close()
}

// DegreeSummary aggregates the informed times of all nodes of one degree, over all trials
type DegreeSummary struct {
	Degree     int     `json:"degree" yaml:"degree"`
	Count      int     `json:"count" yaml:"count"`
	MeanTime   float64 `json:"meantime" yaml:"meantime"`
	StdDevTime float64 `json:"stddevtime" yaml:"stddevtime"`
	MedianTime float64 `json:"mediantime" yaml:"mediantime"`
}

// Summary aggregates an experiment's results
type Summary struct {
	Trials            int             `json:"trials" yaml:"trials"`
	MeanReach         float64         `json:"meanreach" yaml:"meanreach"`
	MeanGiantFraction float64         `json:"meangiantfraction" yaml:"meangiantfraction"`
	MeanBuildAttempts float64         `json:"meanbuildattempts" yaml:"meanbuildattempts"`
	ByDegree          []DegreeSummary `json:"bydegree" yaml:"bydegree"`
}

// Summarize computes the mean share of the numNodes nodes reached per trial,
// the mean giant component share, and informed-time statistics by degree
func Summarize(rs *ResultStore, numNodes int) *Summary {
	results := rs.Results()
	infos := rs.Infos()

	sm := new(Summary)
	sm.Trials = len(results)
	sm.ByDegree = make([]DegreeSummary, 0)
	if sm.Trials == 0 || numNodes < 1 {
		return sm
	}

	reach := make([]float64, len(results))
	giant := make([]float64, len(infos))
	attempts := make([]float64, len(infos))
	timesByDegree := make(map[int][]float64)

	for idx, result := range results {
		reach[idx] = float64(len(result)) / float64(numNodes)
		for _, rec := range result {
			timesByDegree[rec.Degree] = append(timesByDegree[rec.Degree], rec.Time)
		}
	}
	for idx, info := range infos {
		giant[idx] = info.GiantFraction
		attempts[idx] = float64(info.BuildAttempts)
	}
	sm.MeanReach = stat.Mean(reach, nil)
	sm.MeanGiantFraction = stat.Mean(giant, nil)
	sm.MeanBuildAttempts = stat.Mean(attempts, nil)

	for degree, times := range timesByDegree {
		slices.Sort(times)
		ds := DegreeSummary{Degree: degree, Count: len(times)}
		ds.MeanTime = stat.Mean(times, nil)
		if len(times) > 1 {
			ds.StdDevTime = stat.StdDev(times, nil)
		}
		ds.MedianTime = stat.Quantile(0.5, stat.Empirical, times, nil)
		sm.ByDegree = append(sm.ByDegree, ds)
	}
	slices.SortFunc(sm.ByDegree, func(a, b DegreeSummary) int { return a.Degree - b.Degree })
	return sm
}

// WriteToFile stores the Summary to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (sm *Summary) WriteToFile(filename string) error {
	return writeDesc(filename, *sm)
}
