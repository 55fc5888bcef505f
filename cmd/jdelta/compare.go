package main

import (
	"fmt"
	"log/slog"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/calumari/jdelta"
)

func addCompareFlags(cmd *cobra.Command) {
	d := DefaultConfig()
	cmd.Flags().Float64("threshold", d.Threshold, "minimum passing score in [0, 1]")
	cmd.Flags().Int("max-depth", d.MaxDepth, "container nesting limit (0 for none)")
	cmd.Flags().Int("max-nodes", d.MaxNodes, "diff tree size limit (0 for none)")
}

func newCompareCmd(o *rootOptions) *cobra.Command {
	var diffOnly bool
	cmd := &cobra.Command{
		Use:   "compare <baseline> <candidate>",
		Short: "Compare a baseline result file against a new one",
		Long: `Compare a baseline result file against a new one and print the similarity
score and diff tree. Exits with status 2 when the score is below --threshold.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.settings(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

			reg, err := builtinRegistry()
			if err != nil {
				return err
			}
			baseline, err := loadValue(args[0], reg)
			if err != nil {
				return err
			}
			candidate, err := loadValue(args[1], reg)
			if err != nil {
				return err
			}
			logger.Debug("inputs decoded",
				slog.String("baseline", args[0]),
				slog.String("candidate", args[1]),
				slog.String("baseline_type", baseline.TypeName()),
				slog.String("candidate_type", candidate.TypeName()),
			)

			r, err := jdelta.Build(baseline, candidate, cfg.compareOptions()...)
			if err != nil {
				return err
			}
			logger.Debug("report built", slog.Float64("score", r.Score), slog.Int("keys", len(r.Keys)))

			out := cmd.OutOrStdout()
			switch cfg.Format {
			case "json":
				b, err := r.Marshal(jsontext.Multiline(true))
				if err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}
				fmt.Fprintln(out, string(b))
			default:
				tw := textWriter{w: out, p: newPalette(colorEnabled(cfg.Color, out)), diffOnly: diffOnly}
				tw.writeReport(r, cfg.Threshold)
			}

			if r.Score < cfg.Threshold {
				return fmt.Errorf("%w: %.4f < %.4f", errBelowThreshold, r.Score, cfg.Threshold)
			}
			return nil
		},
	}
	addCompareFlags(cmd)
	d := DefaultConfig()
	cmd.Flags().String("format", d.Format, "output format: text or json")
	cmd.Flags().String("color", d.Color, "colour text output: auto, always or never")
	cmd.Flags().BoolVar(&diffOnly, "diff-only", false, "omit matching entries from text output")
	return cmd
}
