package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/app"
	"github.com/existflow/semplan/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the active profile's data",
	Long: `Export the active profile's data as JSON, or the current semester's
weekly schedule and exams as an iCalendar file.

Examples:
  semplan export -o planner.json
  semplan export --format ics -o spring.ics`,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the active profile's data with a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a backup of every profile",
	Long: `Write a backup of every profile. With --encrypt the file is sealed
with a passphrase (or $SEMPLAN_PASSPHRASE).

Examples:
  semplan backup -o semplan-backup.json
  semplan backup --encrypt -o semplan-backup.enc`,
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Replace every profile with a backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

var (
	exportFormat  string
	outputPath    string
	backupEncrypt bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, ics)")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default stdout)")

	backupCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default stdout)")
	backupCmd.Flags().BoolVar(&backupEncrypt, "encrypt", false, "Encrypt with a passphrase")
}

// writeOutput writes to the -o file or the command's stdout
func writeOutput(cmd *cobra.Command, data []byte) error {
	if outputPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", outputPath)
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		switch exportFormat {
		case "json":
			data, err := export.JSON(a.Store.Data())
			if err != nil {
				return err
			}
			return writeOutput(cmd, data)
		case "ics":
			sem, err := currentSemester(a)
			if err != nil {
				return err
			}
			return writeOutput(cmd, export.ICS(sem, time.Now()))
		default:
			return fmt.Errorf("unknown format: %s (use json or ics)", exportFormat)
		}
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	data, err := export.ParseImport(raw)
	if err != nil {
		return err
	}

	return withApp(cmd, func(a *app.App) error {
		if err := a.Store.ReplaceData(cmd.Context(), data); err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}
		_ = ClearContext()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d semesters into %s\n", len(data.Semesters), a.Store.ActiveProfile().Name)
		return nil
	})
}

func runBackup(cmd *cobra.Command, args []string) error {
	var passphrase string
	if backupEncrypt {
		p, err := readPassphrase(cmd, true)
		if err != nil {
			return err
		}
		passphrase = p
	}

	return withApp(cmd, func(a *app.App) error {
		b, err := a.Store.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to collect backup: %w", err)
		}
		data, err := export.EncodeBackup(b)
		if err != nil {
			return err
		}
		if backupEncrypt {
			if data, err = export.Seal(data, passphrase); err != nil {
				return fmt.Errorf("failed to encrypt backup: %w", err)
			}
		}
		return writeOutput(cmd, data)
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	if export.IsSealed(raw) {
		passphrase, err := readPassphrase(cmd, false)
		if err != nil {
			return err
		}
		if raw, err = export.Open(raw, passphrase); err != nil {
			return err
		}
	}
	b, err := export.DecodeBackup(raw)
	if err != nil {
		return err
	}

	return withApp(cmd, func(a *app.App) error {
		if err := a.Store.Restore(cmd.Context(), b); err != nil {
			return fmt.Errorf("failed to restore: %w", err)
		}
		_ = ClearContext()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %d profiles\n", len(b.Profiles))
		return nil
	})
}
