package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/ngram"
	"github.com/CTAG07/charpredict/pkg/runstore"
)

func newPruneCmd(a *app) *cobra.Command {
	var (
		input  string
		output string
		flags  modelFlags
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Shrink a checkpoint without retraining",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := a.loadModel(input)
			if err != nil {
				return err
			}
			limits := ngram.Limits{
				MinContextCount:    flags.minContextCount,
				MaxContexts:        flags.maxContexts,
				MaxCharsPerContext: flags.maxCharsPerContext,
			}
			pruned, err := model.Pruned(limits)
			if err != nil {
				return err
			}
			if err = pruned.SaveFile(output); err != nil {
				return err
			}

			inSize, outSize := fileSize(input), fileSize(output)
			a.recordRun(cmd.Context(), runstore.Run{
				Kind:            runstore.RunKindPrune,
				CheckpointPath:  output,
				Config:          pruned.Config(),
				Contexts:        len(pruned.Contexts()),
				CheckpointBytes: outSize,
			})

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Pruned contexts: %d (was %d)\n", len(pruned.Contexts()), len(model.Contexts()))
			_, _ = fmt.Fprintf(out, "Input size:  %s\n", humanize.Bytes(uint64(inSize)))
			_, _ = fmt.Fprintf(out, "Output size: %s\n", humanize.Bytes(uint64(outSize)))
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "path to input checkpoint")
	cmd.Flags().StringVar(&output, "output", "", "path to output checkpoint")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	flags.register(cmd, ngram.Config{MinContextCount: 5, MaxContexts: 300000, MaxCharsPerContext: 48}, false)
	return cmd
}
