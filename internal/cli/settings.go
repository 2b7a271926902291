package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change profile settings",
	Long: `Show or change the active profile's settings. Changing the color
theme or base hue recolors every course.

Examples:
  semplan settings
  semplan settings --theme dark --hide-completed
  semplan settings --color-theme single --hue 120`,
	RunE: runSettings,
}

var (
	settingsTheme      string
	settingsColorTheme string
	settingsHue        int
	settingsShow       bool
	settingsHide       bool
)

func init() {
	settingsCmd.Flags().StringVar(&settingsTheme, "theme", "", "light or dark")
	settingsCmd.Flags().StringVar(&settingsColorTheme, "color-theme", "", "colorful, single or mono")
	settingsCmd.Flags().IntVar(&settingsHue, "hue", 0, "Base color hue (0-359)")
	settingsCmd.Flags().BoolVar(&settingsShow, "show-completed", false, "Show completed homework")
	settingsCmd.Flags().BoolVar(&settingsHide, "hide-completed", false, "Hide completed homework")
	settingsCmd.MarkFlagsMutuallyExclusive("show-completed", "hide-completed")
}

func runSettings(cmd *cobra.Command, args []string) error {
	var patch model.SettingsPatch
	flags := cmd.Flags()
	if flags.Changed("theme") {
		if settingsTheme != model.ThemeLight && settingsTheme != model.ThemeDark {
			return fmt.Errorf("theme must be light or dark")
		}
		patch.Theme = &settingsTheme
	}
	if flags.Changed("color-theme") {
		patch.ColorTheme = &settingsColorTheme
	}
	if flags.Changed("hue") {
		patch.BaseColorHue = &settingsHue
	}
	if flags.Changed("show-completed") {
		patch.ShowCompleted = &settingsShow
	}
	if flags.Changed("hide-completed") {
		show := !settingsHide
		patch.ShowCompleted = &show
	}

	return withApp(cmd, func(a *app.App) error {
		if patch != (model.SettingsPatch{}) {
			if err := a.Services.Settings.Update(patch); err != nil {
				return err
			}
		}

		s := a.Store.Settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  %-15s %s\n", "Profile", a.Store.ActiveProfile().Name)
		fmt.Fprintf(out, "  %-15s %s\n", "Theme", s.Theme)
		fmt.Fprintf(out, "  %-15s %s\n", "Color theme", s.ColorTheme)
		fmt.Fprintf(out, "  %-15s %d\n", "Base hue", s.BaseColorHue)
		fmt.Fprintf(out, "  %-15s %t\n", "Show completed", s.ShowCompleted)
		return nil
	})
}
