// Package infodiff simulates the diffusion of information over random contact
// networks.  Each trial builds a network with the configuration model, seeds
// information at random nodes and lets it spread across connections with a
// fixed transmissibility and exponentially distributed delays.  Many trials
// run concurrently and their per-node informed times are gathered for analysis
package infodiff

// infodiff.go has the entry point that runs an experiment from its
// description, and the construction of the loggers used throughout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// logLevelFromStr maps the syslog-like level names used in experiment
// descriptions onto slog levels
func logLevelFromStr(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "emerg", "alert", "crit":
		return slog.LevelError + 4, nil
	case "err", "error":
		return slog.LevelError, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "notice", "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// CreateLogger returns a text logger writing to w at the named level
func CreateLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := logLevelFromStr(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// orDiscard substitutes a logger that drops everything for a nil one
func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// RunExperiment validates the description, runs all of its trials and returns
// the results.  When the description names a trace file a TraceManager
// gathering every inform transition is returned with them, otherwise nil.
// Writing the output files is left to the caller
func RunExperiment(ctx context.Context, ed *ExperimentDesc, logger *slog.Logger) (*ResultStore, *TraceManager, error) {
	logger = orDiscard(logger)
	if err := ed.Validate(); err != nil {
		return nil, nil, fmt.Errorf("experiment %s: %w", ed.Name, err)
	}

	ts, err := CreateTrialScheduler(&ed.Network, &ed.Simulation, logger)
	if err != nil {
		return nil, nil, err
	}

	var traceMgr *TraceManager
	if len(ed.Simulation.TraceFile) > 0 {
		traceMgr = CreateTraceManager(ed.Name, true)
		ts.SetTraceManager(traceMgr)
	}

	logger.Info("experiment started", "name", ed.Name, "trials", ed.Simulation.NumTrials,
		"workers", ts.NumWorkers())
	rs, err := ts.Run(ctx)
	if err != nil {
		return rs, traceMgr, fmt.Errorf("experiment %s: %w", ed.Name, err)
	}
	logger.Info("experiment finished", "name", ed.Name, "trials", rs.Len())
	return rs, traceMgr, nil
}
