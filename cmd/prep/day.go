package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/prepline/prepline/reconcile"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Manage the day's task list",
}

var dayUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Reconcile the day's tasks against the day file",
	Long: `Reconcile the day's tasks against the day file.

Reads inventory levels and the janitorial schedule from the day file and
creates, refreshes, or removes auto-generated tasks so the list matches.
Tasks that have been started are never touched. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runDayUpdate,
}

var (
	dayUpdateFile  string
	dayUpdateForce bool
	dayUpdateYes   bool
)

func init() {
	rootCmd.AddCommand(dayCmd)
	dayCmd.AddCommand(dayUpdateCmd)

	dayUpdateCmd.Flags().StringVarP(&dayUpdateFile, "file", "f", "", "Day file (default from prepline.toml)")
	dayUpdateCmd.Flags().BoolVar(&dayUpdateForce, "force", false, "Delete and regenerate every unstarted task for the day")
	dayUpdateCmd.Flags().BoolVarP(&dayUpdateYes, "yes", "y", false, "Skip the --force confirmation prompt")
}

func runDayUpdate(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	df, err := env.loadDay(dayUpdateFile)
	if err != nil {
		return err
	}

	if dayUpdateForce && !dayUpdateYes && term.IsTerminal(int(os.Stdin.Fd())) {
		confirmed, err := confirm(fmt.Sprintf("Regenerate all unstarted tasks for %s?", df.Day))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	engine := reconcile.NewEngine(env.store, reconcile.EngineOptions{
		Notifier: env.notifier,
	})
	res, err := engine.Run(df.Inputs(dayUpdateForce))
	if err != nil {
		return err
	}

	fmt.Printf("Day %s: %d created, %d refreshed, %d removed, %d kept\n",
		df.Day, len(res.Created), len(res.Refreshed), len(res.Deleted), len(res.Kept))
	for _, le := range res.LineErrors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", le)
	}
	return nil
}

func confirm(message string) (bool, error) {
	fmt.Printf("%s [y/n]: ", message)
	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}
	return response == "y" || response == "Y" || response == "yes" || response == "Yes", nil
}
