package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/corpus"
)

func newDevSetCmd(a *app) *cobra.Command {
	var (
		dataGlob string
		outDir   string
		opts     = corpus.DefaultDevSetOptions()
	)
	cmd := &cobra.Command{
		Use:   "devset",
		Short: "Create a balanced dev set with the same number of examples from every file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				files []string
				err   error
			)
			if dataGlob != "" {
				files, err = filepath.Glob(dataGlob)
			} else {
				files, err = corpus.ResolveTrainingFiles(".")
			}
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files matched: %s", dataGlob)
			}

			set, err := corpus.BuildDevSet(files, opts, a.logger)
			if err != nil {
				return err
			}
			inPath, ansPath, err := set.Write(outDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Files used: %d\n", len(set.Files))
			_, _ = fmt.Fprintf(out, "Total examples: %d\n", set.Len())
			_, _ = fmt.Fprintf(out, "Input:  %s\n", inPath)
			_, _ = fmt.Fprintf(out, "Answer: %s\n", ansPath)
			const shown = 8
			for _, fs := range set.Files[:min(shown, len(set.Files))] {
				_, _ = fmt.Fprintf(out, "%s: took %d/%d\n", filepath.Base(fs.Path), fs.Taken, fs.Available)
			}
			if n := len(set.Files); n > shown {
				_, _ = fmt.Fprintf(out, "... (%d more files)\n", n-shown)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataGlob, "data_glob", "", "glob for corpus files (default: the training files)")
	cmd.Flags().StringVar(&outDir, "out_dir", "eval", "output directory")
	cmd.Flags().IntVar(&opts.PerFile, "per_file", opts.PerFile, "examples sampled per file")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	cmd.Flags().IntVar(&opts.MinLen, "min_len", opts.MinLen, "minimum line length in characters")
	return cmd
}
