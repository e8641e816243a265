package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/sirddft/internal/config"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	log = logrus.New()
	// logOut is the open --log-file, if any.
	logOut io.Closer
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sirddft",
		Short:         "epidemic models with diffusion and social interaction",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel, logFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sirddft", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(
		newRunCmd(),
		newScanCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd(),
		newBenchCmd(),
		newPresetsCmd(),
		newModelsCmd(),
		newCompareCmd(),
		newPhaseCmd(),
		newAnalyzeCmd(),
	)

	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogger(level, file string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if file == "" {
		closeLog()
		log.SetOutput(os.Stderr)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	closeLog()
	log.SetOutput(f)
	logOut = f
	return nil
}

// closeLog closes the current log file. Later log lines are dropped until
// setupLogger runs again.
func closeLog() {
	if logOut == nil {
		return
	}
	log.SetOutput(io.Discard)
	logOut.Close()
	logOut = nil
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models := config.Models()
			if len(args) == 1 {
				models = args
			}
			for _, model := range models {
				presets := config.ListPresets(model)
				if len(presets) == 0 {
					fmt.Printf("no presets for model: %s\n", model)
					continue
				}
				fmt.Printf("presets for %s:\n", model)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			fmt.Println("\nscans:")
			for _, name := range config.ListScans() {
				s := config.Scans[name]
				fmt.Printf("  %s (%s/%s)\n", name, s.Model, s.Preset)
			}
			return nil
		},
	}
}
