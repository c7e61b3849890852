package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/iti/infodiff"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <experiment-file>",
		Short: "Run the trials of an experiment",
		Long: `Run reads an experiment dictionary (yaml or json, chosen by extension),
selects one experiment by name, runs its trials and writes the result table,
and optionally a trace and a summary.  Flags override the file's settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := loadExperiment(cmd, args[0])
			if err != nil {
				return err
			}

			level := ed.Simulation.LogLevel
			if flagLevel, _ := cmd.Flags().GetString("log-level"); len(flagLevel) > 0 {
				level = flagLevel
			}
			logger, err := infodiff.CreateLogger(cmd.ErrOrStderr(), level)
			if err != nil {
				return err
			}

			outputs := []string{ed.Simulation.ResultsFile, ed.Simulation.TraceFile, ed.Simulation.SummaryFile}
			if _, err := infodiff.CheckOutputFiles(outputs); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			rs, traceMgr, err := infodiff.RunExperiment(ctx, ed, logger)
			if err != nil {
				return err
			}

			if len(ed.Simulation.ResultsFile) > 0 {
				if err := infodiff.SaveResults(ed.Simulation.ResultsFile, rs); err != nil {
					return err
				}
			} else if err := infodiff.WriteResults(cmd.OutOrStdout(), rs); err != nil {
				return err
			} else {
				fmt.Fprintln(cmd.OutOrStdout())
			}

			if traceMgr != nil {
				if _, err := traceMgr.WriteToFile(ed.Simulation.TraceFile); err != nil {
					return err
				}
			}

			if len(ed.Simulation.SummaryFile) > 0 {
				sm := infodiff.Summarize(rs, ed.Network.NumNodes)
				if err := sm.WriteToFile(ed.Simulation.SummaryFile); err != nil {
					return err
				}
			}
			logger.Info("simulator finished")
			return nil
		},
	}

	cmd.Flags().String("name", "", "Experiment to run (may be omitted when the file holds one)")
	cmd.Flags().Int("trials", 0, "Number of trials")
	cmd.Flags().Int("workers", 0, "Number of workers (default one per cpu)")
	cmd.Flags().String("engine", "", "Event list: queue or evtm")
	cmd.Flags().Int("seed-offset", 0, "Random stream offset (default from the clock)")
	cmd.Flags().String("results", "", "Result table file")
	cmd.Flags().String("trace", "", "Trace file (.yaml or .json)")
	cmd.Flags().String("summary", "", "Summary file (.yaml or .json)")
	return cmd
}

// loadExperiment reads the dictionary, picks the experiment and applies flag overrides
func loadExperiment(cmd *cobra.Command, filename string) (*infodiff.ExperimentDesc, error) {
	if _, err := infodiff.CheckReadableFiles([]string{filename}); err != nil {
		return nil, err
	}
	dict, err := infodiff.ReadExperimentDict(filename, infodiff.IsYAMLFile(filename), nil)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	name, _ := cmd.Flags().GetString("name")
	if len(name) == 0 {
		if len(dict.Exprmnts) != 1 {
			return nil, fmt.Errorf("%s holds %d experiments, select one with --name", filename, len(dict.Exprmnts))
		}
		for key := range dict.Exprmnts {
			name = key
		}
	}
	ed, present := dict.RecoverExperiment(name)
	if !present {
		return nil, fmt.Errorf("experiment %s not found in %s", name, filename)
	}

	flags := cmd.Flags()
	if flags.Changed("trials") {
		ed.Simulation.NumTrials, _ = flags.GetInt("trials")
	}
	if flags.Changed("workers") {
		ed.Simulation.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("engine") {
		ed.Simulation.Engine, _ = flags.GetString("engine")
	}
	if flags.Changed("seed-offset") {
		ed.Simulation.SeedOffset, _ = flags.GetInt("seed-offset")
	}
	if flags.Changed("results") {
		ed.Simulation.ResultsFile, _ = flags.GetString("results")
	}
	if flags.Changed("trace") {
		ed.Simulation.TraceFile, _ = flags.GetString("trace")
	}
	if flags.Changed("summary") {
		ed.Simulation.SummaryFile, _ = flags.GetString("summary")
	}
	return ed, nil
}
