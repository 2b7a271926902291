package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/existflow/semplan/internal/config"
	"github.com/existflow/semplan/internal/logger"
	"github.com/existflow/semplan/internal/tui"
)

var (
	logLevel      string
	logFile       string
	logConsole    bool
	storageDriver string
	storageDSN    string
	semesterFlag  string
)

// cfg is loaded before every command runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "semplan",
	Short: "SemPlan - Terminal semester planner",
	Long: `SemPlan keeps your semesters, courses, weekly schedule, homework,
exams and lecture recordings in one place.

Run 'semplan' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}
		if cmd.Flags().Changed("storage-driver") {
			cfg.StorageDriver = storageDriver
			configChanged = true
		}
		if cmd.Flags().Changed("storage-dsn") {
			cfg.StorageDSN = storageDSN
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			cfg.Normalize()
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("SemPlan started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			logger.Error("Failed to open storage", logger.F("error", err))
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer func() {
			if err := a.Close(cmd.Context()); err != nil {
				logger.Error("Failed to save on exit", logger.F("error", err))
			}
			logger.Info("Storage closed")
		}()

		logger.Info("Launching TUI")
		m := tui.NewModel(a.Store, a.Services)
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("SemPlan exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Storage flags
	rootCmd.PersistentFlags().StringVar(&storageDriver, "storage-driver", "", "Storage driver (sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&storageDSN, "storage-dsn", "", "Database file or connection string")
	rootCmd.PersistentFlags().StringVarP(&semesterFlag, "semester", "S", "", "Semester to work on (id or name)")

	// Add subcommands
	rootCmd.AddCommand(semesterCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(homeworkCmd)
	rootCmd.AddCommand(recordingCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(serveCmd)
}
