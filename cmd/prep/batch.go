package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/prepline/prepline/internal/ui"
	"github.com/prepline/prepline/task"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Inspect the day's batches",
}

// batch scales
var batchScalesCmd = &cobra.Command{
	Use:   "scales <batch-id>",
	Short: "List the production scales available for a batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchScales,
}

var batchScalesFile string

// batch cost
var batchCostCmd = &cobra.Command{
	Use:   "cost <batch-id>",
	Short: "Show a batch's cost, using actual labor when a task has finished",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchCost,
}

var batchCostFile string

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchScalesCmd, batchCostCmd)

	batchScalesCmd.Flags().StringVarP(&batchScalesFile, "file", "f", "", "Day file (default from prepline.toml)")
	batchCostCmd.Flags().StringVarP(&batchCostFile, "file", "f", "", "Day file (default from prepline.toml)")
}

func runBatchScales(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	df, err := env.loadDay(batchScalesFile)
	if err != nil {
		return err
	}

	b, ok := df.BatchIndex().Batch(args[0])
	if !ok {
		return fmt.Errorf("batch %q not found in day file", args[0])
	}

	options := b.ScaleOptions()
	builder := ui.NewTableBuilder([]string{"SCALE", "FACTOR", "YIELD"}, len(options))
	for _, option := range options {
		builder.AddRow([]string{
			option.Label,
			fmt.Sprintf("%g", option.Factor),
			b.YieldText(option.Factor),
		})
	}
	fmt.Print(builder.String())
	return nil
}

func runBatchCost(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	df, err := env.loadDay(batchCostFile)
	if err != nil {
		return err
	}

	batches := df.BatchIndex()
	b, ok := batches.Batch(args[0])
	if !ok {
		return fmt.Errorf("batch %q not found in day file", args[0])
	}

	cost, actual, err := task.ActualBatchCost(env.store, batches, b.ID, env.dayRates(df), time.Now())
	if err != nil {
		return err
	}

	basis := "estimated"
	if actual {
		basis = "actual"
	}
	fmt.Printf("%s: $%.2f (%s labor, recipe $%.2f)\n", b.Name, cost, basis, b.RecipeCost)
	return nil
}
