package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/service"
)

var recordingCmd = &cobra.Command{
	Use:     "recording",
	Aliases: []string{"rec"},
	Short:   "Manage lecture and tutorial recordings",
	Long: `Keep track of course recordings, grouped in tabs.

Every course has the Lectures and Tutorials tabs. Custom tabs can be
added, renamed and removed.

Examples:
  semplan rec add Algorithms lectures "Week 1" --video https://...
  semplan rec ls Algorithms
  semplan rec watched Algorithms lectures 1
  semplan rec tab add Algorithms "Recitations"`,
}

var recordingListCmd = &cobra.Command{
	Use:     "list [course]",
	Aliases: []string{"ls"},
	Short:   "List recordings of a course",
	Args:    cobra.ExactArgs(1),
	RunE:    runRecordingList,
}

var recordingAddCmd = &cobra.Command{
	Use:   "add [course] [tab] [name]",
	Short: "Add a recording",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecordingAdd,
}

var recordingEditCmd = &cobra.Command{
	Use:   "edit [course] [tab] [number]",
	Short: "Edit a recording",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecordingEdit,
}

var recordingWatchedCmd = &cobra.Command{
	Use:   "watched [course] [tab] [number]",
	Short: "Toggle the watched mark",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecordingToggle,
}

var recordingLikeCmd = &cobra.Command{
	Use:   "like [course] [tab] [number]",
	Short: "Toggle the liked mark",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecordingToggle,
}

var recordingMoveCmd = &cobra.Command{
	Use:   "move [course] [tab] [number] [up|down]",
	Short: "Move a recording up or down",
	Args:  cobra.ExactArgs(4),
	RunE:  runRecordingMove,
}

var recordingDeleteCmd = &cobra.Command{
	Use:     "delete [course] [tab] [number]",
	Aliases: []string{"rm"},
	Short:   "Delete a recording",
	Args:    cobra.ExactArgs(3),
	RunE:    runRecordingDelete,
}

var recordingTabCmd = &cobra.Command{
	Use:   "tab",
	Short: "Manage recording tabs",
}

var recordingTabAddCmd = &cobra.Command{
	Use:   "add [course] [name]",
	Short: "Add a custom tab",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordingTabAdd,
}

var recordingTabRenameCmd = &cobra.Command{
	Use:   "rename [course] [tab] [name]",
	Short: "Rename a custom tab",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecordingTabRename,
}

var recordingTabDeleteCmd = &cobra.Command{
	Use:     "delete [course] [tab]",
	Aliases: []string{"rm"},
	Short:   "Delete a custom tab with its recordings",
	Args:    cobra.ExactArgs(2),
	RunE:    runRecordingTabDelete,
}

var (
	recordingName   string
	recordingVideo  string
	recordingSlides string
)

func init() {
	recordingAddCmd.Flags().StringVar(&recordingVideo, "video", "", "Video link")
	recordingAddCmd.Flags().StringVar(&recordingSlides, "slides", "", "Slides link")

	recordingEditCmd.Flags().StringVar(&recordingName, "name", "", "Name")
	recordingEditCmd.Flags().StringVar(&recordingVideo, "video", "", "Video link")
	recordingEditCmd.Flags().StringVar(&recordingSlides, "slides", "", "Slides link")

	recordingTabCmd.AddCommand(recordingTabAddCmd)
	recordingTabCmd.AddCommand(recordingTabRenameCmd)
	recordingTabCmd.AddCommand(recordingTabDeleteCmd)

	recordingCmd.AddCommand(recordingListCmd)
	recordingCmd.AddCommand(recordingAddCmd)
	recordingCmd.AddCommand(recordingEditCmd)
	recordingCmd.AddCommand(recordingWatchedCmd)
	recordingCmd.AddCommand(recordingLikeCmd)
	recordingCmd.AddCommand(recordingMoveCmd)
	recordingCmd.AddCommand(recordingDeleteCmd)
	recordingCmd.AddCommand(recordingTabCmd)
}

// findRecording resolves course, tab and a 1-based recording number
func findRecording(a *app.App, courseRef, tabRef, number string) (model.Course, model.RecordingTab, int, error) {
	c, err := findCourse(a, courseRef)
	if err != nil {
		return c, model.RecordingTab{}, 0, err
	}
	tab, err := findTab(c, tabRef)
	if err != nil {
		return c, tab, 0, err
	}
	i, err := parseIndex(number, len(tab.Items))
	return c, tab, i, err
}

func runRecordingList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		for _, t := range c.Recordings.Tabs {
			watched := 0
			for _, r := range t.Items {
				if r.Watched {
					watched++
				}
			}
			fmt.Fprintf(out, "  🎬 %s (%d/%d watched)\n", t.Name, watched, len(t.Items))
			for i, r := range t.Items {
				like := " "
				if r.Liked {
					like = "♥"
				}
				fmt.Fprintf(out, "    %s %s %2d. %s\n", checkbox(r.Watched), like, i+1, r.Name)
				if r.VideoLink != "" {
					fmt.Fprintf(out, "           video  %s\n", r.VideoLink)
				}
				if r.SlideLink != "" {
					fmt.Fprintf(out, "           slides %s\n", r.SlideLink)
				}
			}
		}
		fmt.Fprintln(out)
		return nil
	})
}

func runRecordingAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		tab, err := findTab(c, args[1])
		if err != nil {
			return err
		}
		item := model.RecordingItem{Name: args[2], VideoLink: recordingVideo, SlideLink: recordingSlides}
		if !a.Services.Recordings.AddItem(c.ID, tab.ID, item) {
			return fmt.Errorf("recording name is required")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added recording: %s to %s/%s\n", args[2], c.Name, tab.Name)
		return nil
	})
}

func runRecordingEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, tab, i, err := findRecording(a, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		item := tab.Items[i]
		if cmd.Flags().Changed("name") {
			item.Name = recordingName
		}
		if cmd.Flags().Changed("video") {
			item.VideoLink = recordingVideo
		}
		if cmd.Flags().Changed("slides") {
			item.SlideLink = recordingSlides
		}
		if !a.Services.Recordings.UpdateItem(c.ID, tab.ID, i, item) {
			return fmt.Errorf("recording name is required")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated recording: %s\n", item.Name)
		return nil
	})
}

func runRecordingToggle(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, tab, i, err := findRecording(a, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		item := tab.Items[i]
		if cmd.Name() == "like" {
			a.Services.Recordings.ToggleLiked(c.ID, tab.ID, i)
			if item.Liked {
				fmt.Fprintf(cmd.OutOrStdout(), "♡ Unliked: %s\n", item.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "♥ Liked: %s\n", item.Name)
			}
			return nil
		}

		a.Services.Recordings.ToggleWatched(c.ID, tab.ID, i)
		if item.Watched {
			fmt.Fprintf(cmd.OutOrStdout(), "○ Unwatched: %s\n", item.Name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Watched: %s\n", item.Name)
		}
		return nil
	})
}

func runRecordingMove(cmd *cobra.Command, args []string) error {
	delta := 0
	switch args[3] {
	case "up":
		delta = -1
	case "down":
		delta = 1
	default:
		return fmt.Errorf("direction must be up or down")
	}

	return withApp(cmd, func(a *app.App) error {
		c, tab, i, err := findRecording(a, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if !a.Services.Recordings.MoveItem(c.ID, tab.ID, i, delta) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s cannot move %s\n", tab.Items[i].Name, args[3])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved %s %s\n", tab.Items[i].Name, args[3])
		return nil
	})
}

func runRecordingDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, tab, i, err := findRecording(a, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		a.Services.Recordings.DeleteItem(c.ID, tab.ID, i)
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted recording: %s\n", tab.Items[i].Name)
		return nil
	})
}

func runRecordingTabAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		if _, err := a.Services.Recordings.AddTab(c.ID, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added tab: %s to %s\n", args[1], c.Name)
		return nil
	})
}

func runRecordingTabRename(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		tab, err := findTab(c, args[1])
		if err != nil {
			return err
		}
		if err := a.Services.Recordings.RenameTab(c.ID, tab.ID, args[2]); err != nil {
			return tabError(tab, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed tab: %s → %s\n", tab.Name, args[2])
		return nil
	})
}

func runRecordingTabDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		c, err := findCourse(a, args[0])
		if err != nil {
			return err
		}
		tab, err := findTab(c, args[1])
		if err != nil {
			return err
		}
		if err := a.Services.Recordings.DeleteTab(c.ID, tab.ID); err != nil {
			return tabError(tab, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted tab: %s\n", tab.Name)
		return nil
	})
}

func tabError(tab model.RecordingTab, err error) error {
	if errors.Is(err, service.ErrProtectedTab) {
		return fmt.Errorf("cannot change the %s tab", tab.Name)
	}
	return err
}
