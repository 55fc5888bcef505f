package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// errBelowThreshold is returned when a comparison scores under the configured
// threshold. main exits with status 2 for it.
var errBelowThreshold = errors.New("score below threshold")

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "jdelta",
		Short: "Compare structured regression-test results",
		Long: `jdelta compares a baseline result set against a new one and reports a
similarity score in [0, 1] together with a tree of per-key differences.

Inputs are JSON or YAML files. JSON inputs may use sentinel objects such as
{"$binary": "..."} or {"$std.time": "..."} for values JSON cannot express.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "YAML config file (default .jdelta.yml when present)")
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newCompareCmd(o))
	cmd.AddCommand(newBatchCmd(o))
	cmd.AddCommand(newConfigCmd())
	return cmd
}

// settings loads the config file and applies the flags set on cmd.
func (o *rootOptions) settings(cmd *cobra.Command) (Config, error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.override(cmd); err != nil {
		return Config{}, err
	}
	if o.verbose {
		cfg.Verbose = true
	}
	return cfg, cfg.validate()
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errBelowThreshold) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
