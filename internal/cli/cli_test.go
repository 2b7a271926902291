package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupHome points config and storage at a fresh directory
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("SEMPLAN_HOME", home)
	return home
}

// resetFlags undoes flag values left behind by an earlier run
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestSemesterLifecycle(t *testing.T) {
	setupHome(t)

	out := mustRun(t, "semester", "new", "Winter 2024-2025")
	assert.Contains(t, out, "Created semester: Winter 2024-2025")
	mustRun(t, "semester", "new", "Spring 2025")

	out = mustRun(t, "semester", "ls")
	assert.Contains(t, out, "❯ ")
	assert.Less(t, strings.Index(out, "Spring 2025"), strings.Index(out, "Winter 2024-2025"))

	mustRun(t, "semester", "use", "winter 2024-2025")
	mustRun(t, "course", "add", "Calculus")
	out = mustRun(t, "course", "ls")
	assert.Contains(t, out, "Winter 2024-2025")
	assert.Contains(t, out, "Calculus")

	out = mustRun(t, "course", "ls", "-S", "Spring 2025")
	assert.Contains(t, out, "No courses in Spring 2025")

	_, err := run(t, "course", "ls", "-S", "Fall 1999")
	assert.Error(t, err)
}

func TestSemesterHours(t *testing.T) {
	setupHome(t)
	mustRun(t, "semester", "new", "Spring 2025")

	mustRun(t, "semester", "hours", "9", "17", "--days", "sun,mon,2")
	_, err := run(t, "semester", "hours", "17", "9")
	assert.Error(t, err)
	_, err = run(t, "semester", "hours", "9", "17", "--days", "funday")
	assert.Error(t, err)
}

func TestCourseCommands(t *testing.T) {
	setupHome(t)
	mustRun(t, "semester", "new", "Spring 2025")

	_, err := run(t, "course", "add", "   ")
	assert.Error(t, err)

	mustRun(t, "course", "add", "Algorithms", "--number", "234247", "--lecturer", "Dr. Cohen")
	mustRun(t, "course", "add", "Databases")
	mustRun(t, "course", "edit", "234247", "--location", "Taub 2")
	mustRun(t, "course", "schedule", "add", "algorithms", "mon", "09:30", "11:00")
	mustRun(t, "course", "exams", "Algorithms", "--moed-a", "2025-07-01")

	_, err = run(t, "course", "schedule", "add", "Algorithms", "mon", "11:00", "09:30")
	assert.Error(t, err)
	_, err = run(t, "course", "exams", "Algorithms", "--moed-b", "01/08/2025")
	assert.Error(t, err)

	out := mustRun(t, "course", "show", "Algorithms")
	assert.Contains(t, out, "Dr. Cohen")
	assert.Contains(t, out, "Taub 2")
	assert.Contains(t, out, "Monday    09:30-11:00")
	assert.Contains(t, out, "2025-07-01")

	out = mustRun(t, "course", "move", "Databases", "up")
	assert.Contains(t, out, "Moved Databases up")
	out = mustRun(t, "course", "move", "Databases", "up")
	assert.Contains(t, out, "already at the top")

	out = mustRun(t, "course", "ls")
	assert.Less(t, strings.Index(out, "Databases"), strings.Index(out, "Algorithms"))

	mustRun(t, "course", "schedule", "rm", "Algorithms", "1")
	mustRun(t, "course", "rm", "Databases")
	out = mustRun(t, "course", "ls")
	assert.NotContains(t, out, "Databases")
}

func TestHomeworkCommands(t *testing.T) {
	setupHome(t)
	mustRun(t, "semester", "new", "Spring 2025")
	mustRun(t, "course", "add", "Algorithms")

	mustRun(t, "hw", "add", "Algorithms", "Later")
	mustRun(t, "hw", "add", "Algorithms", "Problem set 1", "--due", "2025-03-20")
	_, err := run(t, "hw", "add", "Algorithms", "Bad date", "--due", "tomorrow")
	assert.Error(t, err)

	out := mustRun(t, "hw", "ls")
	assert.Less(t, strings.Index(out, "Problem set 1"), strings.Index(out, "Later"))

	out = mustRun(t, "hw", "done", "Algorithms", "2")
	assert.Contains(t, out, `Completed: "Problem set 1"`)
	out = mustRun(t, "hw", "done", "Algorithms", "2", "--undo")
	assert.Contains(t, out, `Reopened: "Problem set 1"`)

	mustRun(t, "hw", "link", "add", "Algorithms", "2", "https://example.com/ps1.pdf")
	out = mustRun(t, "hw", "ls")
	assert.Contains(t, out, "https://example.com/ps1.pdf")
	mustRun(t, "hw", "link", "rm", "Algorithms", "2", "1")

	mustRun(t, "hw", "edit", "Algorithms", "1", "--title", "Final project")
	_, err = run(t, "hw", "done", "Algorithms", "3")
	assert.Error(t, err)

	mustRun(t, "hw", "rm", "Algorithms", "1")
	out = mustRun(t, "hw", "ls")
	assert.NotContains(t, out, "Final project")
}

func TestRecordingCommands(t *testing.T) {
	setupHome(t)
	mustRun(t, "semester", "new", "Spring 2025")
	mustRun(t, "course", "add", "Algorithms")

	mustRun(t, "rec", "add", "Algorithms", "lectures", "Week 1", "--video", "https://video/1")
	mustRun(t, "rec", "add", "Algorithms", "lectures", "Week 2")
	mustRun(t, "rec", "watched", "Algorithms", "lectures", "1")
	out := mustRun(t, "rec", "like", "Algorithms", "lectures", "1")
	assert.Contains(t, out, "Liked: Week 1")

	out = mustRun(t, "rec", "ls", "Algorithms")
	assert.Contains(t, out, "Lectures (1/2 watched)")
	assert.Contains(t, out, "https://video/1")

	mustRun(t, "rec", "move", "Algorithms", "lectures", "2", "up")
	mustRun(t, "rec", "edit", "Algorithms", "lectures", "1", "--name", "Week 2 (intro)")

	_, err := run(t, "rec", "tab", "rm", "Algorithms", "tutorials")
	assert.Error(t, err)
	mustRun(t, "rec", "tab", "add", "Algorithms", "Recitations")
	mustRun(t, "rec", "tab", "rename", "Algorithms", "Recitations", "Workshops")
	mustRun(t, "rec", "tab", "rm", "Algorithms", "Workshops")

	out = mustRun(t, "rec", "ls", "Algorithms")
	assert.Contains(t, out, "Week 2 (intro)")
	assert.NotContains(t, out, "Workshops")
}

func TestProfileCommands(t *testing.T) {
	setupHome(t)
	mustRun(t, "semester", "new", "Spring 2025")

	mustRun(t, "profile", "new", "Second degree")
	mustRun(t, "profile", "use", "second degree")
	_, err := run(t, "course", "ls")
	assert.Error(t, err)

	out := mustRun(t, "profile", "ls")
	assert.Contains(t, out, "❯ ")
	assert.Contains(t, out, "Second degree")

	_, err = run(t, "profile", "rm", "default")
	assert.Error(t, err)

	mustRun(t, "profile", "use", "default")
	out = mustRun(t, "semester", "ls")
	assert.Contains(t, out, "Spring 2025")

	mustRun(t, "profile", "rm", "Second degree")
	out = mustRun(t, "profile", "ls")
	assert.NotContains(t, out, "Second degree")
}

func TestWeekCommand(t *testing.T) {
	setupHome(t)
	mustRun(t, "semester", "new", "Spring 2025")
	mustRun(t, "course", "add", "Algorithms", "--location", "Taub 2")
	mustRun(t, "course", "schedule", "add", "Algorithms", "tue", "10:00", "12:00")
	mustRun(t, "course", "exams", "Algorithms", "--moed-a", "2025-03-13")
	mustRun(t, "hw", "add", "Algorithms", "Problem set 1", "--due", "2025-03-11")

	out := mustRun(t, "week", "--date", "2025-03-12")
	assert.Contains(t, out, "Mar 9 - Mar 15, 2025")
	assert.Contains(t, out, "10:00-12:00  Algorithms  @ Taub 2")
	assert.Contains(t, out, "Exam A: Algorithms")
	assert.Contains(t, out, "[ ] Problem set 1 (Algorithms)")

	out = mustRun(t, "week", "--date", "2025-04-01")
	assert.NotContains(t, out, "Problem set 1")

	_, err := run(t, "week", "--date", "12/03/2025")
	assert.Error(t, err)
}

func TestSettingsCommand(t *testing.T) {
	setupHome(t)

	out := mustRun(t, "settings", "--theme", "dark", "--hide-completed", "--hue", "400")
	assert.Contains(t, out, "dark")
	assert.Contains(t, out, "40")
	assert.Contains(t, out, "false")

	_, err := run(t, "settings", "--theme", "blue")
	assert.Error(t, err)
	_, err = run(t, "settings", "--color-theme", "neon")
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	home := setupHome(t)
	mustRun(t, "semester", "new", "Spring 2025")
	mustRun(t, "course", "add", "Algorithms")
	mustRun(t, "course", "schedule", "add", "Algorithms", "mon", "09:30", "11:00")

	path := filepath.Join(home, "planner.json")
	mustRun(t, "export", "-o", path)

	out := mustRun(t, "export", "--format", "ics")
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Algorithms")

	_, err := run(t, "export", "--format", "pdf")
	assert.Error(t, err)

	mustRun(t, "clear", "--force")
	_, err = run(t, "course", "ls")
	assert.Error(t, err)

	out = mustRun(t, "import", path)
	assert.Contains(t, out, "Imported 1 semesters")
	out = mustRun(t, "course", "ls")
	assert.Contains(t, out, "Algorithms")

	bad := filepath.Join(home, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"courses":[]}`), 0600))
	_, err = run(t, "import", bad)
	assert.Error(t, err)
}

func TestClear_AbortsWithoutConfirmation(t *testing.T) {
	setupHome(t)
	mustRun(t, "semester", "new", "Spring 2025")

	out := mustRun(t, "clear")
	assert.Contains(t, out, "Aborted.")
	out = mustRun(t, "semester", "ls")
	assert.Contains(t, out, "Spring 2025")
}

func TestBackupRestore_Encrypted(t *testing.T) {
	home := setupHome(t)
	t.Setenv("SEMPLAN_PASSPHRASE", "correct horse")
	mustRun(t, "semester", "new", "Spring 2025")
	mustRun(t, "profile", "new", "Work")

	path := filepath.Join(home, "backup.enc")
	mustRun(t, "backup", "--encrypt", "-o", path)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Spring 2025")

	mustRun(t, "clear", "--force")
	mustRun(t, "profile", "rm", "Work")

	out := mustRun(t, "restore", path)
	assert.Contains(t, out, "Restored 2 profiles")
	out = mustRun(t, "semester", "ls")
	assert.Contains(t, out, "Spring 2025")
	out = mustRun(t, "profile", "ls")
	assert.Contains(t, out, "Work")

	t.Setenv("SEMPLAN_PASSPHRASE", "wrong")
	_, err = run(t, "restore", path)
	assert.Error(t, err)
}

func TestStorageFlagsPersist(t *testing.T) {
	home := setupHome(t)
	dsn := filepath.Join(home, "other.db")

	mustRun(t, "--storage-dsn", dsn, "semester", "new", "Spring 2025")
	_, err := os.Stat(dsn)
	require.NoError(t, err)

	cfgRaw, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfgRaw), dsn)

	out := mustRun(t, "semester", "ls")
	assert.Contains(t, out, "Spring 2025")
}
