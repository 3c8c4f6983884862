package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/prepline/prepline/icon"
	"github.com/prepline/prepline/internal/ids"
	"github.com/prepline/prepline/internal/markdown"
	"github.com/prepline/prepline/internal/ui"
	"github.com/prepline/prepline/task"
)

var statusStyles = map[task.Status]lipgloss.Style{
	task.StatusNotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	task.StatusPaused:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	task.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
}

func styleStatus(status task.Status) string {
	style, ok := statusStyles[status]
	if !ok {
		return string(status)
	}
	return style.Render(string(status))
}

// printTaskTable prints tasks in a table format.
func printTaskTable(recs []task.Record, now time.Time) {
	if len(recs) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	fmt.Print(formatTaskTable(recs, now))
}

func formatTaskTable(recs []task.Record, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "STATUS", "ELAPSED", "WORKERS", "ICON", "TASK"}, len(recs))

	allIDs := make([]string, 0, len(recs))
	for _, rec := range recs {
		allIDs = append(allIDs, rec.Task.ID)
	}
	prefixLengths := ids.UniquePrefixLengths(allIDs)

	for _, rec := range recs {
		builder.AddRow([]string{
			ui.HighlightID(rec.Task.ID, ids.PrefixLength(prefixLengths, rec.Task.ID)),
			styleStatus(rec.Task.Status()),
			formatElapsed(rec, now),
			strings.Join(rec.Task.AssignedWorkerIDs, ","),
			icon.ForTask(&rec.Task).Class,
			ui.TruncateTableCell(rec.Task.Description),
		})
	}

	return builder.String()
}

func formatElapsed(rec task.Record, now time.Time) string {
	secs := task.ElapsedSeconds(rec, now)
	if secs == 0 && !rec.Task.Started() {
		return "-"
	}
	return ui.FormatDurationShort(time.Duration(secs) * time.Second)
}

// printTaskDetail prints one task with its sessions and notes.
func printTaskDetail(rec task.Record, now time.Time) {
	t := rec.Task

	fmt.Printf("%s  %s\n", t.ID, styleStatus(t.Status()))
	fmt.Printf("Task:     %s\n", wordwrap.String(t.Description, 72))
	fmt.Printf("Day:      %s\n", t.DayID)
	if len(t.AssignedWorkerIDs) > 0 {
		fmt.Printf("Workers:  %s\n", strings.Join(t.AssignedWorkerIDs, ", "))
	}
	if t.ScaleKey != "" {
		fmt.Printf("Scale:    %s\n", t.ScaleKey)
	}
	if t.MadeAmount != nil {
		fmt.Printf("Made:     %g %s\n", *t.MadeAmount, t.MadeUnit)
	}
	if t.StartedAt != nil {
		fmt.Printf("Started:  %s\n", ui.FormatClock(*t.StartedAt))
	}
	if t.FinishedAt != nil {
		fmt.Printf("Finished: %s\n", ui.FormatClock(*t.FinishedAt))
	}
	fmt.Printf("Elapsed:  %s\n", formatElapsed(rec, now))

	if len(rec.Sessions) > 0 {
		fmt.Println("Sessions:")
		builder := ui.NewTableBuilder([]string{"  START", "END", "PAUSE"}, len(rec.Sessions))
		for _, s := range rec.Sessions {
			end := "-"
			if s.EndedAt != nil {
				end = ui.FormatClock(*s.EndedAt)
			}
			builder.AddRow([]string{
				"  " + ui.FormatClock(s.StartedAt),
				end,
				ui.FormatDurationShort(time.Duration(s.PauseDurationSeconds) * time.Second),
			})
		}
		fmt.Print(builder.String())
	}

	if t.Notes != "" {
		rendered := markdown.SafeRender(80, 2, []byte(t.Notes))
		if rendered != nil {
			fmt.Printf("Notes:\n%s\n", rendered)
		}
	}
}
