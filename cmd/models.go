package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ocstats/internal/cli"
	"github.com/theirongolddev/ocstats/internal/model"
	"github.com/theirongolddev/ocstats/internal/pipeline"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show usage breakdown by model",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	filters := toFilters()

	result, err := runAccumulator(cmd.Context(), func() (pipeline.Accumulator[model.ModelResult], error) {
		return pipeline.NewModelAccumulator(filters)
	})
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), cli.RenderModels(result))
	return nil
}
