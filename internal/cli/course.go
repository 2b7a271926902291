package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/service"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Manage courses of the current semester",
	Long: `Add, edit and organize the courses of the current semester.

Examples:
  semplan course add "Algorithms" --number 234247 --lecturer "Dr. Cohen"
  semplan course ls
  semplan course schedule add Algorithms mon 09:30 11:00
  semplan course exams Algorithms --moed-a 2025-07-01 --moed-b 2025-08-01`,
}

var courseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List courses",
	RunE:    runCourseList,
}

var courseShowCmd = &cobra.Command{
	Use:   "show [course]",
	Short: "Show course details",
	Args:  cobra.ExactArgs(1),
	RunE:  runCourseShow,
}

var courseAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runCourseAdd,
}

var courseEditCmd = &cobra.Command{
	Use:   "edit [course]",
	Short: "Edit course fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runCourseEdit,
}

var courseDeleteCmd = &cobra.Command{
	Use:     "delete [course]",
	Aliases: []string{"rm"},
	Short:   "Delete a course",
	Args:    cobra.ExactArgs(1),
	RunE:    runCourseDelete,
}

var courseMoveCmd = &cobra.Command{
	Use:       "move [course] [up|down]",
	Short:     "Move a course up or down the list",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"up", "down"},
	RunE:      runCourseMove,
}

var courseExamsCmd = &cobra.Command{
	Use:   "exams [course]",
	Short: "Set exam dates (YYYY-MM-DD, empty clears)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCourseExams,
}

var courseScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage weekly meetings",
}

var courseScheduleAddCmd = &cobra.Command{
	Use:   "add [course] [day] [start] [end]",
	Short: "Add a weekly meeting, e.g. mon 09:30 11:00",
	Args:  cobra.ExactArgs(4),
	RunE:  runCourseScheduleAdd,
}

var courseScheduleDeleteCmd = &cobra.Command{
	Use:     "delete [course] [number]",
	Aliases: []string{"rm"},
	Short:   "Remove a weekly meeting",
	Args:    cobra.ExactArgs(2),
	RunE:    runCourseScheduleDelete,
}

// courseFields are the free-text course fields settable by flags
var courseFields = []string{"color", "number", "points", "lecturer", "faculty", "location", "grade", "syllabus", "notes"}

var (
	examMoedA string
	examMoedB string
)

func init() {
	for _, f := range courseFields {
		courseAddCmd.Flags().String(f, "", "Course "+f)
		courseEditCmd.Flags().String(f, "", "Course "+f)
	}
	courseEditCmd.Flags().String("name", "", "Course name")

	courseExamsCmd.Flags().StringVar(&examMoedA, "moed-a", "", "First exam date")
	courseExamsCmd.Flags().StringVar(&examMoedB, "moed-b", "", "Second exam date")

	courseScheduleCmd.AddCommand(courseScheduleAddCmd)
	courseScheduleCmd.AddCommand(courseScheduleDeleteCmd)

	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseShowCmd)
	courseCmd.AddCommand(courseAddCmd)
	courseCmd.AddCommand(courseEditCmd)
	courseCmd.AddCommand(courseDeleteCmd)
	courseCmd.AddCommand(courseMoveCmd)
	courseCmd.AddCommand(courseExamsCmd)
	courseCmd.AddCommand(courseScheduleCmd)
}

// coursePatchFromFlags collects the flags the user actually passed
func coursePatchFromFlags(cmd *cobra.Command) service.CoursePatch {
	var patch service.CoursePatch
	fields := map[string]**string{
		"name":     &patch.Name,
		"color":    &patch.Color,
		"number":   &patch.Number,
		"points":   &patch.Points,
		"lecturer": &patch.Lecturer,
		"faculty":  &patch.Faculty,
		"location": &patch.Location,
		"grade":    &patch.Grade,
		"syllabus": &patch.Syllabus,
		"notes":    &patch.Notes,
	}
	for name, dst := range fields {
		if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetString(name)
		*dst = &v
	}
	return patch
}

func runCourseList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		sem, err := currentSemester(a)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sem.Courses) == 0 {
			fmt.Fprintf(out, "No courses in %s. Add one with: semplan course add \"Algorithms\"\n", sem.Name)
			return nil
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "  📅 %s\n", sem.Name)
		fmt.Fprintf(out, "  %-3s  %-8s  %-24s  %-10s  %s\n", "#", "ID", "Name", "Number", "Homework")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for i, c := range sem.Courses {
			open := 0
			for _, h := range c.Homework {
				if !h.Completed {
					open++
				}
			}
			fmt.Fprintf(out, "  %-3d  %-8s  %-24s  %-10s  %d/%d\n", i+1, c.ID[:min(8, len(c.ID))], c.Name, orDash(c.Number), open, len(c.Homework))
		}
		fmt.Fprintln(out)
		return nil
	})
}

func runCourseShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\n  %s  %s\n", c.Name, c.Color)
		fmt.Fprintln(out, strings.Repeat("─", 40))
		for _, row := range [][2]string{
			{"Number", c.Number}, {"Points", c.Points}, {"Lecturer", c.Lecturer},
			{"Faculty", c.Faculty}, {"Location", c.Location}, {"Grade", c.Grade},
			{"Syllabus", c.Syllabus}, {"Moed A", c.Exams.MoedA}, {"Moed B", c.Exams.MoedB},
		} {
			fmt.Fprintf(out, "  %-10s %s\n", row[0], orDash(row[1]))
		}
		if len(c.Schedule) > 0 {
			fmt.Fprintln(out, "\n  Schedule")
			for i, s := range c.Schedule {
				fmt.Fprintf(out, "  %d. %-9s %s-%s\n", i+1, dayNames[s.Day], s.Start, s.End)
			}
		}
		if c.Notes != "" {
			fmt.Fprintf(out, "\n  %s\n", c.Notes)
		}
		fmt.Fprintln(out)
		return nil
	})
}

func runCourseAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := a.Services.Courses.Add(args[0], coursePatchFromFlags(cmd))
		if err != nil {
			return err
		}
		sem, _ := a.Store.CurrentSemester()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added course: %s to %s (id: %s)\n", c.Name, sem.Name, c.ID[:8])
		return nil
	})
}

func runCourseEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		if !a.Services.Courses.Update(c.ID, coursePatchFromFlags(cmd)) {
			return fmt.Errorf("course name is required")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated course: %s\n", c.Name)
		return nil
	})
}

func runCourseDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		a.Services.Courses.Delete(c.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted course: %s\n", c.Name)
		return nil
	})
}

func runCourseMove(cmd *cobra.Command, args []string) error {
	delta := 0
	switch args[1] {
	case "up":
		delta = -1
	case "down":
		delta = 1
	default:
		return fmt.Errorf("direction must be up or down")
	}

	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		if !a.Services.Courses.Move(c.ID, delta) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already at the %s\n", c.Name, map[int]string{-1: "top", 1: "bottom"}[delta])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved %s %s\n", c.Name, args[1])
		return nil
	})
}

func runCourseExams(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		exams := c.Exams
		if cmd.Flags().Changed("moed-a") {
			exams.MoedA = examMoedA
		}
		if cmd.Flags().Changed("moed-b") {
			exams.MoedB = examMoedB
		}
		if err := a.Services.Courses.SetExams(c.ID, exams); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s exams: A %s, B %s\n", c.Name, orDash(exams.MoedA), orDash(exams.MoedB))
		return nil
	})
}

func runCourseScheduleAdd(cmd *cobra.Command, args []string) error {
	day, err := parseDay(args[1])
	if err != nil {
		return err
	}
	item := model.ScheduleItem{Day: day, Start: args[2], End: args[3]}

	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Services.Courses.AddSchedule(c.ID, item); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s meets %s %s-%s\n", c.Name, dayNames[day], item.Start, item.End)
		return nil
	})
}

func runCourseScheduleDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		i, err := parseIndex(args[1], len(c.Schedule))
		if err != nil {
			return err
		}
		a.Services.Courses.RemoveSchedule(c.ID, i)
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Removed %s meeting on %s\n", c.Name, dayNames[c.Schedule[i].Day])
		return nil
	})
}
