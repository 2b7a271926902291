package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
	Long: `Profiles keep fully separate planner data, for example one per degree.

Examples:
  semplan profile ls
  semplan profile new "Second degree"
  semplan profile use "Second degree"`,
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List profiles",
	RunE:    runProfileList,
}

var profileNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileNew,
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename [profile] [name]",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileRename,
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete [profile]",
	Aliases: []string{"rm"},
	Short:   "Delete a profile and its data",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileDelete,
}

var profileUseCmd = &cobra.Command{
	Use:   "use [profile]",
	Short: "Switch the active profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileUse,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileNewCmd)
	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileUseCmd)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		out := cmd.OutOrStdout()
		active := a.Store.ActiveProfile().ID

		fmt.Fprintln(out)
		for _, p := range a.Store.Profiles() {
			marker := "  "
			if p.ID == active {
				marker = "❯ "
			}
			fmt.Fprintf(out, "%s%-10s  %s\n", marker, p.ID[:min(8, len(p.ID))], p.Name)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use 'semplan profile use <profile>' to switch profile")
		return nil
	})
}

func runProfileNew(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		p, err := a.Store.CreateProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created profile: %s (id: %s)\n", p.Name, p.ID[:min(8, len(p.ID))])
		return nil
	})
}

func runProfileRename(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		p, err := findProfile(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Store.RenameProfile(cmd.Context(), p.ID, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed profile: %s → %s\n", p.Name, args[1])
		return nil
	})
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		p, err := findProfile(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Store.DeleteProfile(cmd.Context(), p.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted profile: %s\n", p.Name)
		return nil
	})
}

func runProfileUse(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		p, err := findProfile(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Store.SwitchProfile(cmd.Context(), p.ID); err != nil {
			return err
		}
		_ = ClearContext()
		fmt.Fprintf(cmd.OutOrStdout(), "👤 Switched to: %s\n", p.Name)
		return nil
	})
}
