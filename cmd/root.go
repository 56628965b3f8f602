// Package cmd implements the bioreason CLI using cobra.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/config"
	"github.com/bioreason/bioreason/internal/coordinator"
	"github.com/bioreason/bioreason/internal/modes"
	"github.com/bioreason/bioreason/internal/shared/cmdutils"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK = iota
	exitError
	exitUnknownMode
	exitToolResolution
	exitLoopExceeded
)

var (
	configPath string
	verbose    bool
	logJSON    bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "bioreason",
	Short: cmdutils.Logo + " bioreason: reasoning-mode dispatch for biological questions",
	Long: cmdutils.Logo + ` bioreason answers biological questions by selecting a reasoning mode
(phylogenetic, teleonomic, mechanistic, ...) and letting a language model call the
tools that mode allows: its own parametric memory, vision models and public
databases such as PubMed, bioRxiv, UniProt, KEGG and Open Targets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging(os.Stderr)
	},
}

// Execute runs the root command and exits with a code reflecting the
// failure class.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.bioreason/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON instead of coloured text")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(transcriptsCmd)
}

func setupLogging(w io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if logJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		})
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the config file and applies the .env / environment overlay.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.ConfigPath()
	}
	config.LoadEnv()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, modes.ErrUnknownMode):
		return exitUnknownMode
	case errors.Is(err, coordinator.ErrToolResolution):
		return exitToolResolution
	case errors.Is(err, coordinator.ErrLoopExceeded):
		return exitLoopExceeded
	default:
		return exitError
	}
}
