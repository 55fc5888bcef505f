package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/calumari/jdelta"
)

const defaultConfigFile = ".jdelta.yml"

// Config holds the CLI settings. Flags take precedence over the file.
type Config struct {
	// Threshold is the minimum passing score; 0 never fails.
	Threshold float64 `yaml:"threshold"`
	MaxDepth  int     `yaml:"max_depth"`
	MaxNodes  int     `yaml:"max_nodes"`
	// Workers is the batch concurrency; 0 uses GOMAXPROCS.
	Workers int    `yaml:"workers"`
	Format  string `yaml:"format"`
	Color   string `yaml:"color"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the settings used when neither a file nor a flag
// sets them.
func DefaultConfig() Config {
	return Config{
		MaxDepth: jdelta.DefaultMaxDepth,
		Format:   "text",
		Color:    "auto",
	}
}

// loadConfig reads path over the defaults. An empty path reads
// .jdelta.yml when it exists.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return cfg, nil
		}
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) override(cmd *cobra.Command) error {
	fs := cmd.Flags()
	var errs []error
	if fs.Changed("threshold") {
		v, err := fs.GetFloat64("threshold")
		c.Threshold, errs = v, append(errs, err)
	}
	if fs.Changed("max-depth") {
		v, err := fs.GetInt("max-depth")
		c.MaxDepth, errs = v, append(errs, err)
	}
	if fs.Changed("max-nodes") {
		v, err := fs.GetInt("max-nodes")
		c.MaxNodes, errs = v, append(errs, err)
	}
	if fs.Changed("workers") {
		v, err := fs.GetInt("workers")
		c.Workers, errs = v, append(errs, err)
	}
	if fs.Changed("format") {
		v, err := fs.GetString("format")
		c.Format, errs = v, append(errs, err)
	}
	if fs.Changed("color") {
		v, err := fs.GetString("color")
		c.Color, errs = v, append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) validate() error {
	var errs []error
	if c.Threshold < 0 || c.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold %v outside [0, 1]", c.Threshold))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative"))
	}
	switch c.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q (want text or json)", c.Format))
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("unknown color mode %q (want auto, always or never)", c.Color))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c Config) compareOptions() []jdelta.Option {
	return []jdelta.Option{jdelta.WithMaxDepth(c.MaxDepth), jdelta.WithMaxNodes(c.MaxNodes)}
}

const configHeader = `# jdelta configuration
#
# threshold: minimum passing score in [0, 1]; 0 never fails
# max_depth: container nesting limit; 0 removes the limit
# max_nodes: diff tree size limit; 0 removes the limit
# workers:   concurrent comparisons for "jdelta batch"; 0 uses all CPUs
# format:    text or json
# color:     auto, always or never

`

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jdelta configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [file]",
		Short: "Generate a default configuration file",
		Long: `Generate a default jdelta configuration file. If no file is specified,
creates .jdelta.yml in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigInit,
	})
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := defaultConfigFile
	if len(args) > 0 {
		out = args[0]
	}
	if _, err := os.Stat(out); err == nil {
		return fmt.Errorf("configuration file %s already exists", out)
	}

	body, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(out, append([]byte(configHeader), body...), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}
