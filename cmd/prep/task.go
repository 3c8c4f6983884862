package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/prepline/prepline/task"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Work with the day's tasks",
}

// task list
var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var (
	taskListDay    string
	taskListStatus string
	taskListJSON   bool
)

// task show
var taskShowCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show detailed information about tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskShow,
}

var taskShowJSON bool

// task start
var taskStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start work on a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskStart,
}

var (
	taskStartWorkers []string
	taskStartScale   string
	taskStartBy      string
)

// task pause
var taskPauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Pause an in-progress task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskPause,
}

// task resume
var taskResumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a paused task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskResume,
}

// task finish
var taskFinishCmd = &cobra.Command{
	Use:     "finish <id>",
	Short:   "Complete a task",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskFinish,
}

var (
	taskFinishMade float64
	taskFinishUnit string
	taskFinishBy   string
)

// task reopen
var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Reopen a completed task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskReopen,
}

// task edit-time
var taskEditTimeCmd = &cobra.Command{
	Use:   "edit-time <id>",
	Short: "Correct the recorded work time on a completed task",
	Long: `Correct the recorded work time on a completed task.

A task worked in a single session takes --finished-at, which moves the
session's end. A task worked across several sessions takes --minutes: the
final session is resized so the total comes out to the given minutes.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskEditTime,
}

var (
	taskEditTimeMinutes    float64
	taskEditTimeFinishedAt string
)

// task assign
var taskAssignCmd = &cobra.Command{
	Use:   "assign <id>",
	Short: "Set the workers assigned to a task",
	Long: `Set the workers assigned to a task.

The first worker listed is the primary assignee. On a completed task this
corrects the labor attribution instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskAssign,
}

var (
	taskAssignWorkers []string
	taskAssignBy      string
)

// task note
var taskNoteCmd = &cobra.Command{
	Use:   "note <id> <text>",
	Short: "Set a task's notes",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskNote,
}

var taskActorBy string

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskShowCmd, taskStartCmd, taskPauseCmd, taskResumeCmd,
		taskFinishCmd, taskReopenCmd, taskEditTimeCmd, taskAssignCmd, taskNoteCmd)

	// task list flags
	taskListCmd.Flags().StringVar(&taskListDay, "day", "", "Day to list (default today)")
	taskListCmd.Flags().StringVar(&taskListStatus, "status", "", "Filter by status (not_started, in_progress, paused, completed)")
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "Output as JSON")

	// task show flags
	taskShowCmd.Flags().BoolVar(&taskShowJSON, "json", false, "Output as JSON")

	// task start flags
	taskStartCmd.Flags().StringArrayVarP(&taskStartWorkers, "worker", "w", nil, "Assign a worker before starting (repeatable; first is primary)")
	taskStartCmd.Flags().StringVar(&taskStartScale, "scale", "", "Production scale (full, half, double, ...)")
	taskStartCmd.Flags().StringVar(&taskStartBy, "by", "", "Worker performing the action")

	// task finish flags
	taskFinishCmd.Flags().Float64Var(&taskFinishMade, "made", 0, "Amount produced")
	taskFinishCmd.Flags().StringVar(&taskFinishUnit, "unit", "", "Unit for the produced amount")
	taskFinishCmd.Flags().StringVar(&taskFinishBy, "by", "", "Worker performing the action")

	// task edit-time flags
	taskEditTimeCmd.Flags().Float64Var(&taskEditTimeMinutes, "minutes", 0, "New total work time in minutes (multi-session tasks)")
	taskEditTimeCmd.Flags().StringVar(&taskEditTimeFinishedAt, "finished-at", "", "New finish time, RFC 3339 (single-session tasks)")

	// task assign flags
	taskAssignCmd.Flags().StringArrayVarP(&taskAssignWorkers, "worker", "w", nil, "Worker to assign (repeatable; first is primary)")
	taskAssignCmd.Flags().StringVar(&taskAssignBy, "by", "", "Worker performing the action")

	for _, cmd := range []*cobra.Command{taskPauseCmd, taskResumeCmd, taskReopenCmd, taskEditTimeCmd} {
		cmd.Flags().StringVar(&taskActorBy, "by", "", "Worker performing the action")
	}
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func runTaskList(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	day := taskListDay
	if day == "" {
		day = today()
	}

	recs, err := env.store.ListByDay(day)
	if err != nil {
		return err
	}

	if taskListStatus != "" {
		status := task.Status(taskListStatus)
		if !status.IsValid() {
			return task.InvalidStatusError(status)
		}
		filtered := recs[:0]
		for _, rec := range recs {
			if rec.Task.Status() == status {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}

	if taskListJSON {
		return printJSON(recs)
	}
	printTaskTable(recs, time.Now())
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	var recs []task.Record
	for _, arg := range args {
		id, err := resolveTaskID(env.store, arg)
		if err != nil {
			return err
		}
		rec, err := env.store.Get(id)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	}

	if taskShowJSON {
		return printJSON(recs)
	}
	for i, rec := range recs {
		if i > 0 {
			fmt.Println()
		}
		printTaskDetail(rec, time.Now())
	}
	return nil
}

func runTaskStart(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	id, err := resolveTaskID(env.store, args[0])
	if err != nil {
		return err
	}

	ctrl := env.controller(env.dayBatches())
	if len(taskStartWorkers) > 0 {
		if _, err := ctrl.Assign(id, taskStartWorkers, taskStartBy); err != nil {
			return err
		}
	}

	var rec task.Record
	if taskStartScale != "" {
		rec, err = ctrl.StartWithScale(id, taskStartScale, taskStartBy)
	} else {
		rec, err = ctrl.Start(id, taskStartBy)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Started %s: %s\n", rec.Task.ID, rec.Task.Description)
	return nil
}

func runTaskPause(cmd *cobra.Command, args []string) error {
	return runTransition(args[0], "Paused", func(ctrl *task.Controller, id string) (task.Record, error) {
		return ctrl.Pause(id, taskActorBy)
	})
}

func runTaskResume(cmd *cobra.Command, args []string) error {
	return runTransition(args[0], "Resumed", func(ctrl *task.Controller, id string) (task.Record, error) {
		return ctrl.Resume(id, taskActorBy)
	})
}

func runTaskReopen(cmd *cobra.Command, args []string) error {
	return runTransition(args[0], "Reopened", func(ctrl *task.Controller, id string) (task.Record, error) {
		return ctrl.Reopen(id, taskActorBy)
	})
}

func runTransition(arg, verb string, op func(*task.Controller, string) (task.Record, error)) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	id, err := resolveTaskID(env.store, arg)
	if err != nil {
		return err
	}

	rec, err := op(env.controller(nil), id)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s: %s\n", verb, rec.Task.ID, rec.Task.Description)
	return nil
}

func runTaskFinish(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	id, err := resolveTaskID(env.store, args[0])
	if err != nil {
		return err
	}

	opts := task.FinishOptions{MadeUnit: taskFinishUnit}
	if cmd.Flags().Changed("made") {
		made := taskFinishMade
		opts.MadeAmount = &made
	}

	rec, err := env.controller(env.dayBatches()).Finish(id, taskFinishBy, opts)
	if err != nil {
		return err
	}

	elapsed := task.ElapsedMinutes(rec, time.Now())
	fmt.Printf("Finished %s: %s (%dm)\n", rec.Task.ID, rec.Task.Description, elapsed)
	return nil
}

func runTaskEditTime(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	id, err := resolveTaskID(env.store, args[0])
	if err != nil {
		return err
	}

	var finishedAt time.Time
	if taskEditTimeFinishedAt != "" {
		finishedAt, err = time.Parse(time.RFC3339, taskEditTimeFinishedAt)
		if err != nil {
			return fmt.Errorf("invalid finish time %q: %w", taskEditTimeFinishedAt, err)
		}
	}

	rec, err := env.controller(nil).EditElapsedTime(id, taskEditTimeMinutes, finishedAt, taskActorBy)
	if err != nil {
		return err
	}

	fmt.Printf("Set %s to %dm\n", rec.Task.ID, task.ElapsedMinutes(rec, time.Now()))
	return nil
}

func runTaskAssign(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	id, err := resolveTaskID(env.store, args[0])
	if err != nil {
		return err
	}

	rec, err := env.store.Get(id)
	if err != nil {
		return err
	}

	ctrl := env.controller(nil)
	if rec.Task.Status() == task.StatusCompleted {
		rec, err = ctrl.EditAssignees(id, taskAssignWorkers, taskAssignBy)
	} else {
		rec, err = ctrl.Assign(id, taskAssignWorkers, taskAssignBy)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Assigned %s to %v\n", rec.Task.ID, rec.Task.AssignedWorkerIDs)
	return nil
}

func runTaskNote(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	id, err := resolveTaskID(env.store, args[0])
	if err != nil {
		return err
	}

	if _, err := env.controller(nil).SetNotes(id, args[1]); err != nil {
		return err
	}

	fmt.Printf("Noted %s\n", id)
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
