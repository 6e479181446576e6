package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/corpus"
	"github.com/CTAG07/charpredict/pkg/ngram"
	"github.com/CTAG07/charpredict/pkg/runstore"
)

func newTrainCmd(a *app) *cobra.Command {
	var (
		workDir string
		flags   modelFlags
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model on the resolved training files and save its checkpoint",
		Long: "Train reads every file named by " + corpus.EnvTrainFiles + ", or else every *.txt file under data/, corpus/ and train/, " +
			"or else " + corpus.FallbackFile + ". " + corpus.EnvMaxTrainLines + " caps the number of lines read.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workDir == "" {
				workDir = a.config.App.WorkDir
			}
			cfg := flags.apply(cmd, *a.config.Model)
			model, err := ngram.New(ngram.WithConfig(cfg))
			if err != nil {
				return err
			}
			model.SetLogger(a.logger)

			files, err := corpus.ResolveTrainingFiles(".")
			if err != nil {
				return err
			}
			maxLines, err := corpus.MaxLinesFromEnv()
			if err != nil {
				return err
			}
			src := corpus.NewSource(files, corpus.WithMaxLines(maxLines))
			src.SetLogger(a.logger)
			defer func(src *corpus.Source) {
				_ = src.Close()
			}(src)

			if err = os.MkdirAll(workDir, 0o755); err != nil {
				return fmt.Errorf("failed to create work directory: %w", err)
			}

			a.logger.Info("Training", slog.Int("files", len(files)), slog.Int("ngram_order", cfg.Order))
			start := time.Now()
			if err = model.Fit(cmd.Context(), src); err != nil {
				return err
			}
			took := time.Since(start)

			path := ngram.CheckpointPath(workDir)
			if err = model.SaveFile(path); err != nil {
				return err
			}
			size := fileSize(path)

			runID := a.recordRun(cmd.Context(), runstore.Run{
				Kind:            runstore.RunKindTrain,
				CheckpointPath:  path,
				Config:          model.Config(),
				Contexts:        len(model.Contexts()),
				TrainingLines:   src.Lines(),
				CheckpointBytes: size,
			})

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Loaded %d lines from %d file(s)", src.Lines(), src.FilesOpened())
			if skipped := len(src.Skipped()); skipped > 0 {
				_, _ = fmt.Fprintf(out, " (%d skipped)", skipped)
			}
			_, _ = fmt.Fprintf(out, "\nTrained in %s: %d contexts\n", took.Round(time.Millisecond), len(model.Contexts()))
			_, _ = fmt.Fprintf(out, "Saved %s (%s)\n", path, humanize.Bytes(uint64(size)))
			if runID != "" {
				_, _ = fmt.Fprintf(out, "Run %s\n", runID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work_dir", "", "where to save the checkpoint (default from config)")
	flags.register(cmd, ngram.DefaultConfig(), true)
	return cmd
}
