package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/model"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all semesters of the active profile",
	Long: `Clear all semesters, courses and homework of the active profile.
Settings and other profiles are kept.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().Bool("force", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		fmt.Fprint(cmd.OutOrStdout(), "Are you sure you want to clear data? (y/N): ")
		var response string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
		if strings.ToLower(response) != "y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	return withApp(cmd, func(a *app.App) error {
		fmt.Fprintln(cmd.OutOrStdout(), "🧹 Clearing local data...")
		data := model.DefaultAppData()
		data.Settings = a.Store.Settings()
		if err := a.Store.ReplaceData(cmd.Context(), data); err != nil {
			return fmt.Errorf("failed to clear local data: %w", err)
		}
		_ = ClearContext()
		fmt.Fprintf(cmd.OutOrStdout(), "%s cleared.\n", a.Store.ActiveProfile().Name)
		return nil
	})
}
