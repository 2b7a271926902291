package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/model"
)

var semesterCmd = &cobra.Command{
	Use:     "semester",
	Aliases: []string{"sem"},
	Short:   "Manage semesters",
	Long: `Create, list, and switch between semesters.

Examples:
  semplan semester new "Spring 2025"
  semplan semester ls
  semplan semester use "Winter 2024-2025"
  semplan semester hours 8 18 --days sun,mon,tue,wed,thu`,
}

var semesterNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a semester and switch to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSemesterNew,
}

var semesterListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List semesters, newest first",
	RunE:    runSemesterList,
}

var semesterRenameCmd = &cobra.Command{
	Use:   "rename [semester] [name]",
	Short: "Rename a semester",
	Args:  cobra.ExactArgs(2),
	RunE:  runSemesterRename,
}

var semesterDeleteCmd = &cobra.Command{
	Use:     "delete [semester]",
	Aliases: []string{"rm"},
	Short:   "Delete a semester with all its courses",
	Args:    cobra.ExactArgs(1),
	RunE:    runSemesterDelete,
}

var semesterUseCmd = &cobra.Command{
	Use:   "use [semester]",
	Short: "Switch the semester commands work on",
	Long: `Switch the semester commands work on. Without an argument the
context is cleared and commands use the latest semester.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSemesterUse,
}

var semesterHoursCmd = &cobra.Command{
	Use:   "hours [start] [end]",
	Short: "Set the calendar hours and visible days",
	Args:  cobra.ExactArgs(2),
	RunE:  runSemesterHours,
}

var semesterDays string

func init() {
	semesterHoursCmd.Flags().StringVar(&semesterDays, "days", "", "Visible days, comma separated (sun,mon,... or 0-6)")

	semesterCmd.AddCommand(semesterNewCmd)
	semesterCmd.AddCommand(semesterListCmd)
	semesterCmd.AddCommand(semesterRenameCmd)
	semesterCmd.AddCommand(semesterDeleteCmd)
	semesterCmd.AddCommand(semesterUseCmd)
	semesterCmd.AddCommand(semesterHoursCmd)
}

func runSemesterNew(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		sem, err := a.Services.Semesters.Create(args[0])
		if err != nil {
			return err
		}
		if err := SetContext(sem.ID); err != nil {
			return fmt.Errorf("failed to set context: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created semester: %s (id: %s)\n", sem.Name, sem.ID[:8])
		return nil
	})
}

func runSemesterList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		out := cmd.OutOrStdout()
		sems := a.Services.Semesters.List()
		if len(sems) == 0 {
			fmt.Fprintln(out, "No semesters found. Add one with: semplan semester new \"Spring 2025\"")
			return nil
		}

		current := a.Store.CurrentSemesterID()
		fmt.Fprintln(out)
		for _, s := range sems {
			marker := "  "
			if s.ID == current {
				marker = "❯ "
			}
			fmt.Fprintf(out, "%s%-10s  %-24s  %d courses\n", marker, s.ID[:min(8, len(s.ID))], s.Name, len(s.Courses))
		}
		fmt.Fprintln(out)
		return nil
	})
}

func runSemesterRename(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		sem, err := findSemester(a, args[0])
		if err != nil {
			return err
		}
		if !a.Services.Semesters.Rename(sem.ID, args[1]) {
			return fmt.Errorf("semester name is required")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed: %s → %s\n", sem.Name, strings.TrimSpace(args[1]))
		return nil
	})
}

func runSemesterDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		sem, err := findSemester(a, args[0])
		if err != nil {
			return err
		}
		a.Services.Semesters.Delete(sem.ID)
		if GetCurrentContext() == sem.ID {
			_ = ClearContext()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted semester: %s\n", sem.Name)
		return nil
	})
}

func runSemesterUse(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if err := ClearContext(); err != nil {
			return fmt.Errorf("failed to clear context: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "📅 Context cleared, using the latest semester")
		return nil
	}

	return withApp(cmd, func(a *app.App) error {
		sem, err := findSemester(a, args[0])
		if err != nil {
			return err
		}
		if err := SetContext(sem.ID); err != nil {
			return fmt.Errorf("failed to set context: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📅 Switched to: %s\n", sem.Name)
		return nil
	})
}

func runSemesterHours(cmd *cobra.Command, args []string) error {
	var start, end int
	if _, err := fmt.Sscan(args[0], &start); err != nil {
		return fmt.Errorf("invalid start hour: %s", args[0])
	}
	if _, err := fmt.Sscan(args[1], &end); err != nil {
		return fmt.Errorf("invalid end hour: %s", args[1])
	}

	return withApp(cmd, func(a *app.App) error {
		sem, err := currentSemester(a)
		if err != nil {
			return err
		}

		cs := model.CalendarSettings{StartHour: start, EndHour: end, VisibleDays: sem.CalendarSettings.VisibleDays}
		if semesterDays != "" {
			cs.VisibleDays = nil
			for _, d := range strings.Split(semesterDays, ",") {
				day, err := parseDay(strings.TrimSpace(d))
				if err != nil {
					return err
				}
				cs.VisibleDays = append(cs.VisibleDays, day)
			}
		}

		if err := a.Services.Semesters.UpdateCalendarSettings(sem.ID, cs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s calendar: %02d:00-%02d:00\n", sem.Name, start, end)
		return nil
	})
}
