package infodiff

// scheduler.go runs the trials of an experiment on a fixed pool of workers.
// Trial tokens are handed out through a channel and finished trials come back
// through another, where a single collector appends them to the ResultStore.
// Each worker owns its own random stream, its own builder and all of the
// networks it builds, so nothing inside a trial is shared

import (
	"context"
	"errors"
	"fmt"
	"github.com/iti/evt/vrtime"
	"github.com/iti/rngstream"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"runtime"
	"time"
)

// ErrBuildAttemptsExhausted is returned when MaxBuildAttempts constructions
// in a row left dangling connections
var ErrBuildAttemptsExhausted = errors.New("network construction attempts exhausted")

// engineType selects the event list that drains a trial
type engineType int

const (
	queueEngine engineType = iota
	evtmEngine
)

func engineFromStr(name string) (engineType, error) {
	switch name {
	case "", "queue":
		return queueEngine, nil
	case "evtm":
		return evtmEngine, nil
	}
	return queueEngine, fmt.Errorf("unknown engine %q", name)
}

// danglingWarnEvery sets how many rejected constructions in a row pass between warnings
const danglingWarnEvery = 1000

// TrialScheduler holds what all the workers of an experiment share, which is read-only
type TrialScheduler struct {
	props    NetworkProperties
	cfg      SimulationCfg
	engine   engineType
	logger   *slog.Logger
	traceMgr *TraceManager
}

// CreateTrialScheduler is a constructor.  It validates its inputs
func CreateTrialScheduler(props *NetworkProperties, cfg *SimulationCfg, logger *slog.Logger) (*TrialScheduler, error) {
	if err := ReportErrs([]error{props.Validate(), cfg.Validate()}); err != nil {
		return nil, err
	}
	engine, _ := engineFromStr(cfg.Engine)

	ts := new(TrialScheduler)
	ts.props = *props
	ts.cfg = *cfg
	ts.engine = engine
	ts.logger = orDiscard(logger)
	return ts, nil
}

// SetTraceManager directs inform transitions to tm
func (ts *TrialScheduler) SetTraceManager(tm *TraceManager) {
	ts.traceMgr = tm
}

// NumWorkers returns the size of the worker pool; never more workers than trials
func (ts *TrialScheduler) NumWorkers() int {
	workers := ts.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > ts.cfg.NumTrials {
		workers = ts.cfg.NumTrials
	}
	return max(workers, 1)
}

// trialOutcome is what a worker hands back for one trial
type trialOutcome struct {
	trial  int
	result Result
	info   TrialInfo
}

// Run executes all the trials and returns their results.  Once a worker
// fails, or ctx is cancelled, no further trials are started; trials already
// running complete and are kept
func (ts *TrialScheduler) Run(ctx context.Context) (*ResultStore, error) {
	numWorkers := ts.NumWorkers()
	rs := CreateResultStore()

	tokens := make(chan int, ts.cfg.NumTrials)
	for trial := 0; trial < ts.cfg.NumTrials; trial++ {
		tokens <- trial
	}
	close(tokens)

	// rngstream hands out streams from package-level state, so all are created here
	streams := ts.createStreams(numWorkers)

	outcomes := make(chan trialOutcome)
	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < numWorkers; id++ {
		wrk := ts.createWorker(id, streams[id])
		g.Go(func() error {
			return wrk.run(gctx, tokens, outcomes)
		})
	}

	var werr error
	go func() {
		werr = g.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		idx := rs.Append(outcome.result, outcome.info)
		ts.logger.Debug("trial stored", "trial", outcome.trial, "simid", idx,
			"informed", len(outcome.result))
	}
	return rs, werr
}

// createStreams returns one rngstream per worker.  SeedOffset streams are
// skipped first, so different offsets give different runs; without one the
// offset is taken from the clock
func (ts *TrialScheduler) createStreams(numWorkers int) []*rngstream.RngStream {
	offset := ts.cfg.SeedOffset
	if offset == 0 {
		offset = 1 + int(time.Now().UnixNano()%4096)
	}
	for idx := 0; idx < offset; idx++ {
		rngstream.New(fmt.Sprintf("skip-%d", idx))
	}

	streams := make([]*rngstream.RngStream, numWorkers)
	for idx := range streams {
		streams[idx] = rngstream.New(fmt.Sprintf("worker-%d", idx))
	}
	ts.logger.Debug("random streams created", "workers", numWorkers, "offset", offset)
	return streams
}

// worker runs trials one after the other with its own random stream
type worker struct {
	id      int
	ts      *TrialScheduler
	builder *NetworkBuilder
	logger  *slog.Logger
}

func (ts *TrialScheduler) createWorker(id int, rng U01Source) *worker {
	wrk := new(worker)
	wrk.id = id
	wrk.ts = ts
	wrk.logger = ts.logger.With("worker", id)
	wrk.builder = CreateNetworkBuilder(rng, wrk.logger)
	return wrk
}

// run takes trial tokens until there are none left
func (wrk *worker) run(ctx context.Context, tokens <-chan int, outcomes chan<- trialOutcome) error {
	for trial := range tokens {
		if err := ctx.Err(); err != nil {
			return err
		}
		wrk.logger.Debug("trial started", "trial", trial, "remaining", len(tokens))

		outcome, err := wrk.runTrial(ctx, trial)
		if err != nil {
			return fmt.Errorf("trial %d: %w", trial, err)
		}
		outcomes <- outcome
	}
	return nil
}

// runTrial builds a network, diffuses information over it and extracts the result
func (wrk *worker) runTrial(ctx context.Context, trial int) (trialOutcome, error) {
	nw, info, err := wrk.buildNetwork(ctx)
	if err != nil {
		return trialOutcome{}, err
	}

	onInform := noInform
	if wrk.ts.traceMgr.Active() {
		onInform = func(from, to int, now float64) {
			AddInformTrace(wrk.ts.traceMgr, vrtime.SecondsToTime(now), trial, from, to, nw.Node(to).Degree())
		}
	}

	var timeOfInitialization float64
	switch wrk.ts.engine {
	case evtmEngine:
		timeOfInitialization = diffuseWithEvtm(nw, wrk.ts.props.InitiallyInformed, onInform)
	default:
		timeOfInitialization = diffuseWithQueue(nw, wrk.ts.props.InitiallyInformed, onInform)
	}

	result := nw.Result(timeOfInitialization)
	wrk.logger.Debug("trial finished", "trial", trial, "informed", len(result),
		"giant", info.GiantFraction)
	return trialOutcome{trial: trial, result: result, info: info}, nil
}

// buildNetwork constructs networks until one is accepted.  Without a bound on
// the attempts, properties that can never match every stub retry until ctx
// is done; a warning is logged periodically
func (wrk *worker) buildNetwork(ctx context.Context) (*Network, TrialInfo, error) {
	props := &wrk.ts.props
	maxAttempts := wrk.ts.cfg.MaxBuildAttempts

	for attempts := 1; ; attempts++ {
		nw, connectivity, err := wrk.builder.Construct(props)
		if err == nil {
			info := TrialInfo{BuildAttempts: attempts, Connectivity: connectivity,
				GiantFraction: GiantComponentFraction(nw), NumNodes: nw.NumNodes()}
			return nw, info, nil
		}
		if !errors.Is(err, ErrDanglingConnections) {
			return nil, TrialInfo{}, err
		}
		if maxAttempts > 0 && attempts >= maxAttempts {
			return nil, TrialInfo{}, fmt.Errorf("%d attempts: %w", attempts, ErrBuildAttemptsExhausted)
		}
		if cerr := ctx.Err(); cerr != nil {
			return nil, TrialInfo{}, cerr
		}
		if attempts%danglingWarnEvery == 0 {
			wrk.logger.Warn("networks keep being rejected for dangling connections", "attempts", attempts)
		}
	}
}
