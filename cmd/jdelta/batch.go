package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/calumari/jdelta"
	"github.com/calumari/jdelta/batch"
)

// listInputs returns the slash-separated paths of result files under root.
func listInputs(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isInput(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	slices.Sort(out)
	return out, nil
}

// pairInputs matches files by relative path. Files without a counterpart,
// or that fail to decode, are returned as failed results.
func pairInputs(baseDir, candDir string, reg *jdelta.Registry) ([]batch.Pair, []batch.Result, error) {
	base, err := listInputs(baseDir)
	if err != nil {
		return nil, nil, err
	}
	cand, err := listInputs(candDir)
	if err != nil {
		return nil, nil, err
	}

	var pairs []batch.Pair
	var failed []batch.Result
	for _, rel := range base {
		if _, ok := slices.BinarySearch(cand, rel); !ok {
			failed = append(failed, batch.Result{ID: rel, Err: errors.New("missing from candidate directory")})
			continue
		}
		a, err := loadValue(filepath.Join(baseDir, filepath.FromSlash(rel)), reg)
		if err != nil {
			failed = append(failed, batch.Result{ID: rel, Err: err})
			continue
		}
		b, err := loadValue(filepath.Join(candDir, filepath.FromSlash(rel)), reg)
		if err != nil {
			failed = append(failed, batch.Result{ID: rel, Err: err})
			continue
		}
		pairs = append(pairs, batch.Pair{ID: rel, Baseline: a, Candidate: b})
	}
	for _, rel := range cand {
		if _, ok := slices.BinarySearch(base, rel); !ok {
			failed = append(failed, batch.Result{ID: rel, Err: errors.New("missing from baseline directory")})
		}
	}
	return pairs, failed, nil
}

func newBatchCmd(o *rootOptions) *cobra.Command {
	var metricsFile string
	cmd := &cobra.Command{
		Use:   "batch <baseline-dir> <candidate-dir>",
		Short: "Compare every result file in two directories",
		Long: `Compare every .json, .yaml and .yml file under baseline-dir against the file
with the same relative path under candidate-dir. Prints one line per file and
a summary. Fails when any comparison errors or scores below --threshold.`,
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
			pairs, results, err := pairInputs(args[0], args[1], reg)
			if err != nil {
				return err
			}
			logger.Debug("inputs paired", slog.Int("pairs", len(pairs)), slog.Int("unpaired", len(results)))

			metricsReg := prometheus.NewRegistry()
			runner := batch.New(
				batch.WithWorkers(cfg.Workers),
				batch.WithLogger(logger),
				batch.WithMetrics(batch.NewMetrics(metricsReg)),
				batch.WithCompareOptions(cfg.compareOptions()...),
			)
			ran, err := runner.Run(cmd.Context(), pairs)
			if err != nil {
				return err
			}
			results = append(results, ran...)
			slices.SortFunc(results, func(a, b batch.Result) int {
				return strings.Compare(a.ID, b.ID)
			})

			p := newPalette(colorEnabled(cfg.Color, cmd.OutOrStdout()))
			out := cmd.OutOrStdout()
			for _, res := range results {
				switch {
				case res.Err != nil:
					fmt.Fprintf(out, "%s  %s: %v\n", p.fail.Sprint("ERR "), res.ID, res.Err)
				case res.Report.Score < cfg.Threshold:
					fmt.Fprintf(out, "%s %.4f %s\n", p.fail.Sprint("FAIL"), res.Report.Score, res.ID)
				default:
					fmt.Fprintf(out, "%s %.4f %s\n", p.pass.Sprint("PASS"), res.Report.Score, res.ID)
				}
			}
			s := batch.Summarize(results, cfg.Threshold)
			fmt.Fprintf(out, "%d compared, %d failed, %d below threshold, mean %.4f, min %.4f\n",
				s.Total, s.Failed, s.Below, s.Mean, s.Min)

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, metricsReg); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}

			switch {
			case s.Failed > 0:
				return fmt.Errorf("%d of %d comparisons failed", s.Failed, s.Total)
			case s.Below > 0:
				return fmt.Errorf("%w: %d of %d comparisons", errBelowThreshold, s.Below, s.Total)
			}
			return nil
		},
	}
	addCompareFlags(cmd)
	d := DefaultConfig()
	cmd.Flags().Int("workers", d.Workers, "concurrent comparisons (0 for all CPUs)")
	cmd.Flags().String("color", d.Color, "colour output: auto, always or never")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file")
	return cmd
}
