package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/corpus"
	"github.com/CTAG07/charpredict/pkg/eval"
	"github.com/CTAG07/charpredict/pkg/ngram"
)

func newTuneCmd(a *app) *cobra.Command {
	var (
		gridPath   string
		devInput   string
		devAnswer  string
		refInput   string
		refAnswer  string
		devPerFile int
		top        int
	)
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Grid-search hyperparameters, training once per n-gram order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grid := eval.DefaultGrid()
			if gridPath != "" {
				var err error
				if grid, err = eval.LoadGrid(gridPath); err != nil {
					return err
				}
			}

			files, err := corpus.ResolveTrainingFiles(".")
			if err != nil {
				return err
			}
			maxLines, err := corpus.MaxLinesFromEnv()
			if err != nil {
				return err
			}

			dev, err := loadDevData(a.logger, files, devInput, devAnswer, devPerFile)
			if err != nil {
				return err
			}

			var opts []eval.TunerOption
			ref, err := corpus.ReadDevSet(refInput, refAnswer)
			switch {
			case err == nil:
				opts = append(opts, eval.WithReference(eval.Dataset{Name: refInput, Inputs: ref.Inputs, Answers: ref.Answers}))
			case errors.Is(err, fs.ErrNotExist):
				a.logger.Info("No reference set, scoring dev set only", slog.String("input", refInput))
			default:
				return err
			}

			if a.config.App.RecordRuns {
				store, closeStore, err := a.openStore()
				if err != nil {
					return err
				}
				defer closeStore()
				opts = append(opts, eval.WithRecorder(storeRecorder{store: store}))
			}

			tuner, err := eval.NewTuner(grid, opts...)
			if err != nil {
				return err
			}
			tuner.SetLogger(a.logger)

			a.logger.Info("Grid search start", slog.Int("combinations", grid.Size()), slog.Int("dev_examples", len(dev.Inputs)))
			start := time.Now()
			open := func() (ngram.LineSource, error) {
				src := corpus.NewSource(files, corpus.WithMaxLines(maxLines))
				src.SetLogger(a.logger)
				return src, nil
			}
			trials, err := tuner.Run(cmd.Context(), open, dev)
			if err != nil {
				return err
			}

			printTrials(cmd.OutOrStdout(), trials, top)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Total elapsed: %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&gridPath, "grid", "", "YAML grid file (default: built-in grid)")
	cmd.Flags().StringVar(&devInput, "dev_input", "", "dev input file (default: sampled from the training files)")
	cmd.Flags().StringVar(&devAnswer, "dev_answer", "", "dev answer file")
	cmd.Flags().IntVar(&devPerFile, "dev_per_file", 200, "dev examples sampled per training file when no dev files are given")
	cmd.Flags().StringVar(&refInput, "reference_input", "example/input.txt", "reference input file, scored but not ranked")
	cmd.Flags().StringVar(&refAnswer, "reference_answer", "example/answer.txt", "reference answer file")
	cmd.Flags().IntVar(&top, "top", 20, "number of results to print")
	return cmd
}

func loadDevData(logger *slog.Logger, files []string, input, answer string, perFile int) (eval.Dataset, error) {
	if input != "" || answer != "" {
		set, err := corpus.ReadDevSet(input, answer)
		if err != nil {
			return eval.Dataset{}, err
		}
		return eval.Dataset{Name: input, Inputs: set.Inputs, Answers: set.Answers}, nil
	}
	opts := corpus.DefaultDevSetOptions()
	opts.PerFile = perFile
	set, err := corpus.BuildDevSet(files, opts, logger)
	if err != nil {
		return eval.Dataset{}, err
	}
	return eval.Dataset{Name: "sampled", Inputs: set.Inputs, Answers: set.Answers}, nil
}

func printTrials(w io.Writer, trials []eval.Trial, top int) {
	_, _ = fmt.Fprintf(w, "%4s  %9s  %7s  %11s  %11s  %13s  %17s  %12s\n",
		"Rank", "Reference", "DevAcc", "ngram_order", "kn_discount", "laplace_alpha", "min_context_count", "max_contexts")
	for i, t := range trials[:min(top, len(trials))] {
		ref := "-"
		if t.Reference != nil {
			ref = fmt.Sprintf("%d/%d", t.Reference.Correct, t.Reference.Total)
		}
		c := t.Config
		_, _ = fmt.Fprintf(w, "%4d  %9s  %7.4f  %11d  %11g  %13g  %17d  %12d\n",
			i+1, ref, t.Dev.Accuracy, c.Order, c.Discount, c.Alpha, c.MinContextCount, c.MaxContexts)
	}
	if len(trials) == 0 {
		return
	}
	best := trials[0]
	_, _ = fmt.Fprintf(w, "\nBest dev accuracy: %.4f (%d/%d)\n", best.Dev.Accuracy, best.Dev.Correct, best.Dev.Total)
	_, _ = fmt.Fprintf(w, "Best params: --ngram_order %d --kn_discount %g --laplace_alpha %g --min_context_count %d --max_contexts %d --max_chars_per_context %d\n",
		best.Config.Order, best.Config.Discount, best.Config.Alpha, best.Config.MinContextCount, best.Config.MaxContexts, best.Config.MaxCharsPerContext)
}
