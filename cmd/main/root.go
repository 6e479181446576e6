package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/ngram"
	"github.com/CTAG07/charpredict/pkg/runstore"
)

// app carries what every subcommand needs once the root command has loaded
// the configuration.
type app struct {
	configPath string
	config     *Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "charpredict",
		Short:         "Character n-gram next-character predictor",
		Long:          "Train, prune, evaluate and serve a character-level n-gram model that predicts the next character of a text prefix.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "./charpredict.json", "path to the JSON config file")

	root.AddCommand(
		newTrainCmd(a),
		newTestCmd(a),
		newPruneCmd(a),
		newDevSetCmd(a),
		newCompareCmd(a),
		newTuneCmd(a),
		newStatsCmd(a),
		newRunsCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init() error {
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.config = config
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(config.App.LogLevel)}))
	return nil
}

// openStore opens the run database. The returned function closes the store
// and the database.
func (a *app) openStore() (*runstore.Store, func(), error) {
	path := a.config.App.DatabasePath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := initDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = runstore.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup run store schema: %w", err)
	}
	store, err := runstore.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create run store: %w", err)
	}
	store.SetLogger(a.logger)
	return store, func() {
		store.Close()
		if err := db.Close(); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
	}, nil
}

// recordRun stores run when recording is enabled. Failures are logged, not
// returned, so a broken database never loses a trained checkpoint.
func (a *app) recordRun(ctx context.Context, run runstore.Run) string {
	if !a.config.App.RecordRuns {
		return ""
	}
	store, closeStore, err := a.openStore()
	if err != nil {
		a.logger.Warn("Run not recorded", "error", err)
		return ""
	}
	defer closeStore()
	id, err := store.RecordRun(ctx, run)
	if err != nil {
		a.logger.Warn("Run not recorded", "error", err)
		return ""
	}
	return id
}

// loadModel reads a checkpoint and attaches the application logger.
func (a *app) loadModel(path string) (*ngram.Model, error) {
	m, err := ngram.LoadFile(path)
	if err != nil {
		return nil, err
	}
	m.SetLogger(a.logger)
	a.logger.Info("Checkpoint loaded", slog.String("path", path), slog.Int("contexts", len(m.Contexts())))
	return m, nil
}

// fileSize returns the size of path, or 0 when it cannot be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// modelFlags binds the hyperparameter flags shared by train and prune.
type modelFlags struct {
	order              int
	discount           float64
	alpha              float64
	maxCharsPerContext int
	minContextCount    int
	maxContexts        int
}

func (f *modelFlags) register(cmd *cobra.Command, defaults ngram.Config, withSmoothing bool) {
	if withSmoothing {
		cmd.Flags().IntVar(&f.order, "ngram_order", defaults.Order, "n-gram order")
		cmd.Flags().Float64Var(&f.discount, "kn_discount", defaults.Discount, "absolute discount subtracted from every count")
		cmd.Flags().Float64Var(&f.alpha, "laplace_alpha", defaults.Alpha, "add-alpha constant of the lowest-order distribution")
	}
	cmd.Flags().IntVar(&f.maxCharsPerContext, "max_chars_per_context", defaults.MaxCharsPerContext, "max stored next-char candidates per context")
	cmd.Flags().IntVar(&f.minContextCount, "min_context_count", defaults.MinContextCount, "drop contexts observed fewer than this many times")
	cmd.Flags().IntVar(&f.maxContexts, "max_contexts", defaults.MaxContexts, "keep only this many most frequent contexts (<=0 means no cap)")
}

// apply overlays every flag the user set on cfg.
func (f *modelFlags) apply(cmd *cobra.Command, cfg ngram.Config) ngram.Config {
	changed := cmd.Flags().Changed
	if changed("ngram_order") {
		cfg.Order = f.order
	}
	if changed("kn_discount") {
		cfg.Discount = f.discount
	}
	if changed("laplace_alpha") {
		cfg.Alpha = f.alpha
	}
	if changed("max_chars_per_context") {
		cfg.MaxCharsPerContext = f.maxCharsPerContext
	}
	if changed("min_context_count") {
		cfg.MinContextCount = f.minContextCount
	}
	if changed("max_contexts") {
		cfg.MaxContexts = f.maxContexts
	}
	return cfg
}
