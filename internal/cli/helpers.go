package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/logger"
	"github.com/existflow/semplan/internal/model"
)

// openApp opens storage for one command and selects the semester context
func openApp(cmd *cobra.Command) (*app.App, error) {
	a, err := app.Open(cmd.Context(), cfg, logger.L(), func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Could not save: %v\n", err)
	})
	if err != nil {
		return nil, err
	}

	ref := semesterFlag
	if ref == "" {
		ref = GetCurrentContext()
	}
	if ref != "" {
		if sem, err := findSemester(a, ref); err == nil {
			a.Store.SelectSemester(sem.ID)
		} else if semesterFlag != "" {
			_ = a.Close(cmd.Context())
			return nil, err
		}
	}
	return a, nil
}

// withApp runs fn against an opened app and flushes writes afterwards
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(context.WithoutCancel(cmd.Context())); err != nil && runErr == nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return runErr
}

func currentSemester(a *app.App) (model.Semester, error) {
	sem, ok := a.Store.CurrentSemester()
	if !ok {
		return model.Semester{}, errors.New("no semester yet. Create one with: semplan semester new \"Spring 2025\"")
	}
	return sem, nil
}

// matches accepts an exact id, an id prefix of at least 4 characters or a
// case-insensitive name
func matches(id, name, ref string) bool {
	if id == ref || strings.EqualFold(name, ref) {
		return true
	}
	return len(ref) >= 4 && strings.HasPrefix(id, ref)
}

func findSemester(a *app.App, ref string) (model.Semester, error) {
	for _, s := range a.Store.Data().Semesters {
		if matches(s.ID, s.Name, ref) {
			return s, nil
		}
	}
	return model.Semester{}, fmt.Errorf("semester not found: %s", ref)
}

func findCourse(a *app.App, ref string) (model.Course, error) {
	sem, err := currentSemester(a)
	if err != nil {
		return model.Course{}, err
	}
	for _, c := range sem.Courses {
		if matches(c.ID, c.Name, ref) || (c.Number != "" && c.Number == ref) {
			return c, nil
		}
	}
	return model.Course{}, fmt.Errorf("course not found in %s: %s", sem.Name, ref)
}

func findProfile(a *app.App, ref string) (model.Profile, error) {
	for _, p := range a.Store.Profiles() {
		if matches(p.ID, p.Name, ref) {
			return p, nil
		}
	}
	return model.Profile{}, fmt.Errorf("profile not found: %s", ref)
}

func findTab(c model.Course, ref string) (model.RecordingTab, error) {
	for _, t := range c.Recordings.Tabs {
		if matches(t.ID, t.Name, ref) {
			return t, nil
		}
	}
	return model.RecordingTab{}, fmt.Errorf("tab not found in %s: %s", c.Name, ref)
}

// parseIndex converts a 1-based number as printed by list commands
func parseIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("invalid number: %s", s)
	}
	return i - 1, nil
}

func parseDay(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return n, nil
	}
	for i, name := range dayNames {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(s)) && len(s) >= 2 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid day: %s", s)
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// readPassphrase prompts without echo. confirm asks twice.
func readPassphrase(cmd *cobra.Command, confirm bool) (string, error) {
	if p := os.Getenv("SEMPLAN_PASSPHRASE"); p != "" {
		return p, nil
	}

	out := cmd.ErrOrStderr()
	fmt.Fprint(out, "Passphrase: ")
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	passphrase := string(b)
	if passphrase == "" {
		return "", errors.New("passphrase is required")
	}

	if confirm {
		fmt.Fprint(out, "Confirm Passphrase: ")
		c, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase: %w", err)
		}
		if string(c) != passphrase {
			return "", errors.New("passphrases do not match")
		}
	}
	return passphrase, nil
}

func checkbox(done bool) string {
	if done {
		return "[✓]"
	}
	return "[ ]"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
