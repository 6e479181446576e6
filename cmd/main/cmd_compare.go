package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/corpus"
	"github.com/CTAG07/charpredict/pkg/eval"
	"github.com/CTAG07/charpredict/pkg/ngram"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		workA, workB string
		nameA, nameB string
		input        string
		answer       string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two trained checkpoints on the same dev set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := corpus.ReadDevSet(input, answer)
			if err != nil {
				return err
			}
			dataset := eval.Dataset{Name: input, Inputs: data.Inputs, Answers: data.Answers}

			type side struct {
				name, workDir string
				res           eval.Result
				size          int64
				cfg           ngram.Config
			}
			sides := []*side{{name: nameA, workDir: workA}, {name: nameB, workDir: workB}}
			for _, s := range sides {
				path := ngram.CheckpointPath(s.workDir)
				model, err := a.loadModel(path)
				if err != nil {
					return err
				}
				if s.res, err = eval.Evaluate(model, dataset, eval.DefaultK); err != nil {
					return err
				}
				s.res.Label = s.name
				s.size = fileSize(path)
				s.cfg = model.Config()
			}

			out := cmd.OutOrStdout()
			for _, s := range sides {
				printResult(out, s.name, s.res, s.size)
			}
			cmp := eval.Compare(sides[0].res, sides[1].res)
			if cmp.ByAccuracy {
				_, _ = fmt.Fprintf(out, "winner_by_acc: %s\n", cmp.Winner)
			} else {
				_, _ = fmt.Fprintf(out, "tie_breaker_by_speed: %s\n", cmp.Winner)
			}

			if !a.config.App.RecordRuns {
				return nil
			}
			store, closeStore, err := a.openStore()
			if err != nil {
				a.logger.Warn("Comparison not recorded", "error", err)
				return nil
			}
			defer closeStore()
			for _, s := range sides {
				if _, err := store.RecordEvaluation(cmd.Context(), evaluationFromResult(s.res, "", s.size, &s.cfg)); err != nil {
					a.logger.Warn("Comparison not recorded", "error", err)
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&workA, "work_a", "", "work dir for model A")
	cmd.Flags().StringVar(&workB, "work_b", "", "work dir for model B")
	cmd.Flags().StringVar(&input, "input", "eval/"+corpus.DevInputFile, "dev input file")
	cmd.Flags().StringVar(&answer, "answer", "eval/"+corpus.DevAnswerFile, "dev answer file")
	cmd.Flags().StringVar(&nameA, "name_a", "baseline", "name for model A")
	cmd.Flags().StringVar(&nameB, "name_b", "candidate", "name for model B")
	_ = cmd.MarkFlagRequired("work_a")
	_ = cmd.MarkFlagRequired("work_b")
	return cmd
}

func printResult(w io.Writer, name string, res eval.Result, checkpointBytes int64) {
	_, _ = fmt.Fprintf(w, "%s:\n", name)
	_, _ = fmt.Fprintf(w, "  acc: %.4f (%d/%d)\n", res.Accuracy, res.Correct, res.Total)
	_, _ = fmt.Fprintf(w, "  infer_sec: %.4f\n", res.Elapsed.Seconds())
	_, _ = fmt.Fprintf(w, "  ms_per_sample: %.4f\n", res.MsPerSample)
	_, _ = fmt.Fprintf(w, "  checkpoint: %s\n", humanize.Bytes(uint64(checkpointBytes)))
}
