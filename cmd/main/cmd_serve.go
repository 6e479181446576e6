package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		workDir string
		addr    string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions from a checkpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workDir == "" {
				workDir = a.config.App.WorkDir
			}
			if addr == "" {
				addr = a.config.App.ServeAddr
			}
			path := ngram.CheckpointPath(workDir)
			model, err := a.loadModel(path)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			NewPredictAPI(model, path, a.logger).RegisterRoutes(mux)
			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				a.logger.Info("Starting prediction server", "address", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
				close(errChan)
			}()

			select {
			case err := <-errChan:
				return err
			case <-cmd.Context().Done():
			}

			a.logger.Info("Stopping prediction server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err = srv.Shutdown(ctx); err != nil {
				a.logger.Error("Prediction server shutdown failed", "error", err)
				return err
			}
			a.logger.Info("Prediction server stopped.")
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work_dir", "", "directory holding the checkpoint (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
