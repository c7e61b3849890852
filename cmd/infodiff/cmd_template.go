package main

import (
	"fmt"

	"github.com/iti/infodiff"
	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <file>",
		Short: "Write an example experiment dictionary",
		Long: `Template writes a dictionary with one experiment per degree distribution,
as yaml or json depending on the file extension, to be edited and run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict := templateDict()
			if err := dict.WriteToFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d experiments to %s\n", len(dict.Exprmnts), args[0])
			return nil
		},
	}
}

// templateDict returns example experiments, one per degree distribution
func templateDict() *infodiff.ExperimentDict {
	dict := infodiff.CreateExperimentDict("examples")
	sc := &infodiff.SimulationCfg{NumTrials: 100, LogLevel: "info", ResultsFile: "results.tsv"}

	constant := infodiff.CreateNetworkProperties(1000, "constant", 4)

	uniform := infodiff.CreateNetworkProperties(1000, "uniform", 3)
	uniform.KMax = 8

	powerLaw := infodiff.CreateNetworkProperties(1000, "power_law", 2)
	powerLaw.Power = 2.5
	powerLaw.DanglingOK = true

	poisson := infodiff.CreateNetworkProperties(1000, "poisson", 1)
	poisson.Lambda = 4.0
	poisson.Transmissibility = 0.8
	poisson.DanglingOK = true

	for name, np := range map[string]*infodiff.NetworkProperties{"constant": constant,
		"uniform": uniform, "power_law": powerLaw, "poisson": poisson} {
		if err := dict.AddExperiment(infodiff.CreateExperimentDesc(name, np, sc), false); err != nil {
			panic(err)
		}
	}
	return dict
}
