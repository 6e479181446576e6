package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/corpus"
	"github.com/CTAG07/charpredict/pkg/eval"
	"github.com/CTAG07/charpredict/pkg/ngram"
)

func newTestCmd(a *app) *cobra.Command {
	var (
		workDir    string
		testData   string
		testOutput string
		k          int
	)
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Predict the next characters for every line of a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if k < 1 {
				return fmt.Errorf("k must be positive, got %d", k)
			}
			if workDir == "" {
				workDir = a.config.App.WorkDir
			}
			model, err := a.loadModel(ngram.CheckpointPath(workDir))
			if err != nil {
				return err
			}
			inputs, err := corpus.ReadLines(testData)
			if err != nil {
				return fmt.Errorf("failed to load test data: %w", err)
			}

			predictions := model.PredictBatch(inputs, k)
			if len(predictions) != len(inputs) {
				return fmt.Errorf("expected %d predictions but got %d", len(inputs), len(predictions))
			}
			if err = corpus.WritePredictions(testOutput, predictions); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d predictions to %s\n", len(predictions), testOutput)
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work_dir", "", "directory holding the checkpoint (default from config)")
	cmd.Flags().StringVar(&testData, "test_data", "example/input.txt", "path to test data")
	cmd.Flags().StringVar(&testOutput, "test_output", "pred.txt", "path to write test predictions")
	cmd.Flags().IntVar(&k, "k", eval.DefaultK, "characters predicted per line")
	return cmd
}
