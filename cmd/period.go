package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ocstats/internal/cli"
	"github.com/theirongolddev/ocstats/internal/model"
	"github.com/theirongolddev/ocstats/internal/pipeline"
)

func init() {
	for _, g := range model.Granularities {
		rootCmd.AddCommand(newPeriodCmd(g))
	}
}

func newPeriodCmd(g model.Granularity) *cobra.Command {
	return &cobra.Command{
		Use:   string(g),
		Short: fmt.Sprintf("Show %s usage stats", g),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPeriod(cmd, g)
		},
	}
}

func runPeriod(cmd *cobra.Command, g model.Granularity) error {
	filters := toFilters()

	result, err := runAccumulator(cmd.Context(), func() (pipeline.Accumulator[model.PeriodResult], error) {
		return pipeline.NewPeriodAccumulator(g, filters)
	})
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), cli.RenderPeriods(result))
	return nil
}
