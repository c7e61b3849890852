package infodiff

import (
	"context"
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScheduler(t *testing.T, props *NetworkProperties, cfg *SimulationCfg) *TrialScheduler {
	t.Helper()
	ts, err := CreateTrialScheduler(props, cfg, nil)
	require.NoError(t, err)
	return ts
}

func TestSchedulerRunsAllTrials(t *testing.T) {
	props := CreateNetworkProperties(60, "poisson", 1)
	props.Lambda = 3.0
	props.DanglingOK = true
	cfg := &SimulationCfg{NumTrials: 12, Workers: 3, SeedOffset: 7}

	rs, err := testScheduler(t, props, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, rs.Len())

	for idx, result := range rs.Results() {
		require.NotEmpty(t, result, "trial %d informed nobody", idx)
		assert.LessOrEqual(t, len(result), 60)
		// the seed is informed at the time of initialization
		assert.Equal(t, 0.0, result[0].Time)
		for rdx := 1; rdx < len(result); rdx++ {
			assert.LessOrEqual(t, result[rdx-1].Time, result[rdx].Time)
		}
	}
	for _, info := range rs.Infos() {
		assert.Equal(t, 1, info.BuildAttempts)
		assert.Equal(t, 60, info.NumNodes)
		assert.Greater(t, info.GiantFraction, 0.0)
	}
}

func TestSchedulerSeedsOnly(t *testing.T) {
	props := CreateNetworkProperties(30, "constant", 2)
	props.Transmissibility = 0.0
	props.InitiallyInformed = 3
	props.DanglingOK = true
	cfg := &SimulationCfg{NumTrials: 5, Workers: 2, SeedOffset: 3}

	rs, err := testScheduler(t, props, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, rs.Len())

	// seeds send to all their connections, but nothing goes further
	for _, result := range rs.Results() {
		require.GreaterOrEqual(t, len(result), 3)
		assert.LessOrEqual(t, len(result), 9)
		for _, rec := range result[:3] {
			assert.Equal(t, 0.0, rec.Time)
		}
	}
}

func TestSchedulerEvtmEngine(t *testing.T) {
	props := CreateNetworkProperties(40, "uniform", 3)
	props.KMax = 5
	cfg := &SimulationCfg{NumTrials: 4, Workers: 2, SeedOffset: 11, Engine: "evtm"}

	rs, err := testScheduler(t, props, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, rs.Len())

	// with certain transmission the seed's whole component is informed; the
	// seed has a neighbour, and no component exceeds the giant one
	infos := rs.Infos()
	reached := 0
	for idx, result := range rs.Results() {
		require.GreaterOrEqual(t, len(result), 2)
		assert.Equal(t, 0.0, result[0].Time)
		assert.LessOrEqual(t, len(result), int(math.Round(infos[idx].GiantFraction*40)))
		reached += len(result)
	}
	assert.Greater(t, reached, 2*40)
}

func TestSchedulerCancelledDuringRetries(t *testing.T) {
	// three stubs are never all matched and the attempts are not bounded
	props := CreateNetworkProperties(3, "constant", 1)
	cfg := &SimulationCfg{NumTrials: 2, Workers: 1, SeedOffset: 1}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ts := testScheduler(t, props, cfg)
	done := make(chan error, 1)
	go func() {
		_, err := ts.Run(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after its context was done")
	}
}

func TestSchedulerBuildAttemptsExhausted(t *testing.T) {
	// an odd number of stubs is never matched completely
	props := CreateNetworkProperties(3, "constant", 1)
	cfg := &SimulationCfg{NumTrials: 2, Workers: 1, SeedOffset: 1, MaxBuildAttempts: 5}

	rs, err := testScheduler(t, props, cfg).Run(context.Background())
	assert.ErrorIs(t, err, ErrBuildAttemptsExhausted)
	assert.Equal(t, 0, rs.Len())
}

func TestSchedulerRetriesDangling(t *testing.T) {
	// five nodes of degree four are matched completely only some of the time
	props := CreateNetworkProperties(5, "constant", 4)
	cfg := &SimulationCfg{NumTrials: 6, Workers: 2, SeedOffset: 2}

	rs, err := testScheduler(t, props, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, rs.Len())
	for _, info := range rs.Infos() {
		assert.Equal(t, EverythingOK, info.Connectivity)
		assert.GreaterOrEqual(t, info.BuildAttempts, 1)
	}
}

func TestSchedulerTrace(t *testing.T) {
	props := CreateNetworkProperties(25, "constant", 2)
	props.LoopsOK = true
	cfg := &SimulationCfg{NumTrials: 3, Workers: 3, SeedOffset: 5}

	ts := testScheduler(t, props, cfg)
	tm := CreateTraceManager("trace", true)
	ts.SetTraceManager(tm)

	rs, err := ts.Run(context.Background())
	require.NoError(t, err)

	// every informed node has exactly one inform transition
	total := 0
	for _, result := range rs.Results() {
		total += len(result)
	}
	traced := 0
	for trial := 0; trial < 3; trial++ {
		traced += tm.NumTraces(trial)
	}
	assert.Equal(t, total, traced)
}

func TestSchedulerInvalidConfiguration(t *testing.T) {
	props := CreateNetworkProperties(10, "constant", 2)
	props.Transmissibility = 3.0
	_, err := CreateTrialScheduler(props, &SimulationCfg{NumTrials: 1}, nil)
	assert.Error(t, err)

	props.Transmissibility = 1.0
	_, err = CreateTrialScheduler(props, &SimulationCfg{NumTrials: 1, Engine: "wheel"}, nil)
	assert.Error(t, err)
}

func TestSchedulerCancelled(t *testing.T) {
	props := CreateNetworkProperties(10, "constant", 2)
	props.DanglingOK = true
	cfg := &SimulationCfg{NumTrials: 20, Workers: 2, SeedOffset: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs, err := testScheduler(t, props, cfg).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, rs.Len())
}

func TestSchedulerNumWorkers(t *testing.T) {
	props := CreateNetworkProperties(10, "constant", 2)

	ts := testScheduler(t, props, &SimulationCfg{NumTrials: 2, Workers: 8})
	assert.Equal(t, 2, ts.NumWorkers())

	ts = testScheduler(t, props, &SimulationCfg{NumTrials: 100, Workers: 3})
	assert.Equal(t, 3, ts.NumWorkers())

	ts = testScheduler(t, props, &SimulationCfg{NumTrials: 10000})
	assert.Equal(t, runtime.NumCPU(), ts.NumWorkers())

	ts = testScheduler(t, props, &SimulationCfg{NumTrials: 0})
	assert.Equal(t, 1, ts.NumWorkers())
}

func TestSchedulerNoTrials(t *testing.T) {
	props := CreateNetworkProperties(10, "constant", 2)
	rs, err := testScheduler(t, props, &SimulationCfg{SeedOffset: 1}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
}
