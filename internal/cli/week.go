package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/calendar"
	"github.com/existflow/semplan/internal/model"
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the weekly schedule",
	Long: `Show the current semester's weekly schedule with the homework
due and exams held in the week.

Examples:
  semplan week
  semplan week --date 2025-03-20`,
	RunE: runWeek,
}

var weekDate string

func init() {
	weekCmd.Flags().StringVar(&weekDate, "date", "", "Any day of the week to show (YYYY-MM-DD)")
}

func runWeek(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if weekDate != "" {
		d, ok := model.ParseDate(weekDate)
		if !ok {
			return fmt.Errorf("invalid date: %s", weekDate)
		}
		now = d
	}

	return withApp(cmd, func(a *app.App) error {
		sem, err := currentSemester(a)
		if err != nil {
			return err
		}
		printWeek(cmd.OutOrStdout(), sem.Name, calendar.BuildWeek(sem, now))
		return nil
	})
}

func printWeek(out io.Writer, name string, w calendar.Week) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  📅 %s  %s - %s\n", name, w.Start.Format("Jan 2"), w.End.Format("Jan 2, 2006"))
	fmt.Fprintln(out, strings.Repeat("─", 50))

	byDay := map[int][]calendar.Block{}
	for _, b := range w.Blocks {
		byDay[b.Day] = append(byDay[b.Day], b)
	}

	for _, day := range w.Grid.Days {
		date := w.Start.AddDate(0, 0, day)
		marker := "  "
		if w.Now != nil && w.Now.Day == day {
			marker = "❯ "
		}
		fmt.Fprintf(out, "%s%s %s\n", marker, dayNames[day], date.Format("02/01"))

		blocks := byDay[day]
		sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
		for _, b := range blocks {
			where := ""
			if b.Location != "" {
				where = "  @ " + b.Location
			}
			fmt.Fprintf(out, "    %s-%s  %s%s\n", b.Start, b.End, b.CourseName, where)
		}
		for _, e := range w.Events[day] {
			switch e.Type {
			case calendar.EventExam:
				slot := "A"
				if e.ExamSlot == calendar.SlotMoedB {
					slot = "B"
				}
				fmt.Fprintf(out, "    📝 Exam %s: %s\n", slot, e.CourseName)
			default:
				fmt.Fprintf(out, "    %s %s (%s)\n", checkbox(e.Completed), e.Title, e.CourseName)
			}
		}
		if len(blocks) == 0 && len(w.Events[day]) == 0 {
			fmt.Fprintln(out, "    -")
		}
	}
	fmt.Fprintln(out)
}
