package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/service"
)

var homeworkCmd = &cobra.Command{
	Use:     "homework",
	Aliases: []string{"hw"},
	Short:   "Manage homework",
	Long: `Track assignments of the current semester's courses.

Homework is addressed by course and its number within the course,
as shown by 'semplan hw ls'.

Examples:
  semplan hw add Algorithms "Problem set 3" --due 2025-03-20
  semplan hw ls
  semplan hw done Algorithms 1
  semplan hw done Algorithms 1 --undo`,
}

var homeworkListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List homework by due date",
	RunE:    runHomeworkList,
}

var homeworkAddCmd = &cobra.Command{
	Use:   "add [course] [title]",
	Short: "Add homework to a course",
	Args:  cobra.ExactArgs(2),
	RunE:  runHomeworkAdd,
}

var homeworkEditCmd = &cobra.Command{
	Use:   "edit [course] [number]",
	Short: "Edit a homework item",
	Args:  cobra.ExactArgs(2),
	RunE:  runHomeworkEdit,
}

var homeworkDoneCmd = &cobra.Command{
	Use:   "done [course] [number]",
	Short: "Mark homework as done",
	Args:  cobra.ExactArgs(2),
	RunE:  runHomeworkDone,
}

var homeworkDeleteCmd = &cobra.Command{
	Use:     "delete [course] [number]",
	Aliases: []string{"rm"},
	Short:   "Delete a homework item",
	Args:    cobra.ExactArgs(2),
	RunE:    runHomeworkDelete,
}

var homeworkLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Manage homework links",
}

var homeworkLinkAddCmd = &cobra.Command{
	Use:   "add [course] [number] [url]",
	Short: "Attach a link",
	Args:  cobra.ExactArgs(3),
	RunE:  runHomeworkLinkAdd,
}

var homeworkLinkDeleteCmd = &cobra.Command{
	Use:     "delete [course] [number] [link-number]",
	Aliases: []string{"rm"},
	Short:   "Remove a link",
	Args:    cobra.ExactArgs(3),
	RunE:    runHomeworkLinkDelete,
}

var (
	homeworkAll   bool
	homeworkDue   string
	homeworkTitle string
	homeworkNotes string
	homeworkUndo  bool
	linkName      string
)

func init() {
	homeworkListCmd.Flags().BoolVarP(&homeworkAll, "all", "a", false, "Include completed homework")

	homeworkAddCmd.Flags().StringVarP(&homeworkDue, "due", "d", "", "Due date (YYYY-MM-DD)")

	homeworkEditCmd.Flags().StringVarP(&homeworkTitle, "title", "t", "", "Title")
	homeworkEditCmd.Flags().StringVarP(&homeworkDue, "due", "d", "", "Due date (YYYY-MM-DD, empty clears)")
	homeworkEditCmd.Flags().StringVarP(&homeworkNotes, "notes", "n", "", "Notes")

	homeworkDoneCmd.Flags().BoolVar(&homeworkUndo, "undo", false, "Mark homework as not done")

	homeworkLinkAddCmd.Flags().StringVar(&linkName, "name", "", "Link name (defaults to the URL)")

	homeworkLinkCmd.AddCommand(homeworkLinkAddCmd)
	homeworkLinkCmd.AddCommand(homeworkLinkDeleteCmd)

	homeworkCmd.AddCommand(homeworkListCmd)
	homeworkCmd.AddCommand(homeworkAddCmd)
	homeworkCmd.AddCommand(homeworkEditCmd)
	homeworkCmd.AddCommand(homeworkDoneCmd)
	homeworkCmd.AddCommand(homeworkDeleteCmd)
	homeworkCmd.AddCommand(homeworkLinkCmd)
}

// findHomework resolves a course reference and a 1-based homework number
func findHomework(a *app.App, courseRef, number string) (model.Course, int, error) {
	c, err := findCourse(a, courseRef)
	if err != nil {
		return c, 0, err
	}
	i, err := parseIndex(number, len(c.Homework))
	if err != nil {
		return c, 0, err
	}
	return c, i, nil
}

func runHomeworkList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		sem, err := currentSemester(a)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		showCompleted := homeworkAll || a.Store.Settings().ShowCompleted
		entries := service.Sidebar(sem, showCompleted, time.Now())
		if len(entries) == 0 {
			fmt.Fprintln(out, "No homework found. Add one with: semplan hw add <course> \"Problem set 1\"")
			return nil
		}

		fmt.Fprintln(out)
		for _, e := range entries {
			due := orDash(e.Item.DueDate)
			switch {
			case e.Item.Completed:
			case e.Overdue:
				due += " ⚠ overdue"
			case e.DueSoon:
				due += " ⏰"
			}
			fmt.Fprintf(out, "  %s %-16s %2d  %-32s  %s\n", checkbox(e.Item.Completed), e.CourseName, e.Index+1, e.Item.Title, due)
			for j, l := range e.Item.Links {
				fmt.Fprintf(out, "  %26s🔗 %d. %s <%s>\n", "", j+1, l.Name, l.URL)
			}
		}
		fmt.Fprintln(out)
		return nil
	})
}

func runHomeworkAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Services.Homework.Add(c.ID, args[1], homeworkDue); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added homework: \"%s\" to %s\n", strings.TrimSpace(args[1]), c.Name)
		return nil
	})
}

func runHomeworkEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, i, err := findHomework(a, args[0], args[1])
		if err != nil {
			return err
		}

		var patch service.HomeworkPatch
		if cmd.Flags().Changed("title") {
			patch.Title = &homeworkTitle
		}
		if cmd.Flags().Changed("due") {
			patch.DueDate = &homeworkDue
		}
		if cmd.Flags().Changed("notes") {
			patch.Notes = &homeworkNotes
		}
		if err := a.Services.Homework.Update(c.ID, i, patch); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated homework: \"%s\"\n", c.Homework[i].Title)
		return nil
	})
}

func runHomeworkDone(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, i, err := findHomework(a, args[0], args[1])
		if err != nil {
			return err
		}

		done := !homeworkUndo
		if err := a.Services.Homework.Update(c.ID, i, service.HomeworkPatch{Completed: &done}); err != nil {
			return err
		}

		if done {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Completed: \"%s\"\n", c.Homework[i].Title)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "○ Reopened: \"%s\"\n", c.Homework[i].Title)
		}
		return nil
	})
}

func runHomeworkDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, i, err := findHomework(a, args[0], args[1])
		if err != nil {
			return err
		}
		a.Services.Homework.Delete(c.ID, i)
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted homework: \"%s\"\n", c.Homework[i].Title)
		return nil
	})
}

func runHomeworkLinkAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, i, err := findHomework(a, args[0], args[1])
		if err != nil {
			return err
		}
		if !a.Services.Homework.AddLink(c.ID, i, model.HomeworkLink{Name: linkName, URL: args[2]}) {
			return fmt.Errorf("link URL is required")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔗 Linked %s to \"%s\"\n", args[2], c.Homework[i].Title)
		return nil
	})
}

func runHomeworkLinkDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, i, err := findHomework(a, args[0], args[1])
		if err != nil {
			return err
		}
		j, err := parseIndex(args[2], len(c.Homework[i].Links))
		if err != nil {
			return err
		}
		a.Services.Homework.RemoveLink(c.ID, i, j)
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Removed link %s\n", c.Homework[i].Links[j].URL)
		return nil
	})
}
