package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	var (
		limit       int
		evaluations bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, or the best recorded evaluations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			if evaluations {
				evals, err := store.TopEvaluations(cmd.Context(), limit)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%-26s  %-30s  %7s  %11s  %9s  %s\n", "ID", "LABEL", "ACC", "CORRECT", "MS/SAMPLE", "WHEN")
				for _, e := range evals {
					_, _ = fmt.Fprintf(out, "%-26s  %-30s  %7.4f  %11s  %9.4f  %s\n",
						e.ID, e.Label, e.Accuracy, fmt.Sprintf("%d/%d", e.Correct, e.Total), e.MsPerSample, humanize.Time(e.CreatedAt))
				}
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "%-26s  %-5s  %-20s  %5s  %10s  %10s  %s\n", "ID", "KIND", "CREATED", "ORDER", "CONTEXTS", "SIZE", "CHECKPOINT")
			for _, r := range runs {
				_, _ = fmt.Fprintf(out, "%-26s  %-5s  %-20s  %5d  %10s  %10s  %s\n",
					r.ID, r.Kind, r.CreatedAt.Local().Format(time.DateTime), r.Config.Order,
					humanize.Comma(int64(r.Contexts)), humanize.Bytes(uint64(r.CheckpointBytes)), r.CheckpointPath)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of rows")
	cmd.Flags().BoolVar(&evaluations, "evaluations", false, "list the most accurate evaluations instead of runs")
	return cmd
}
