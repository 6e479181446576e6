package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

const (
	// RunKindTrain marks a checkpoint produced by training.
	RunKindTrain = "train"
	// RunKindPrune marks a checkpoint produced by pruning another one.
	RunKindPrune = "prune"
)

// timeLayout is how timestamps are stored. It sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SetupSchema creates the runs and evaluations tables. It is idempotent and
// safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const (
		schemaRuns = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    created_at TEXT NOT NULL,
    checkpoint_path TEXT NOT NULL DEFAULT '',
    ngram_order INTEGER NOT NULL,
    kn_discount REAL NOT NULL,
    laplace_alpha REAL NOT NULL,
    max_chars_per_context INTEGER NOT NULL,
    min_context_count INTEGER NOT NULL,
    max_contexts INTEGER NOT NULL,
    contexts INTEGER NOT NULL DEFAULT 0,
    training_lines INTEGER NOT NULL DEFAULT 0,
    checkpoint_bytes INTEGER NOT NULL DEFAULT 0
);
`
		schemaEvaluations = `
CREATE TABLE IF NOT EXISTS evaluations (
    evaluation_id TEXT PRIMARY KEY,
    run_id TEXT REFERENCES runs(run_id) ON DELETE SET NULL,
    label TEXT NOT NULL,
    dataset TEXT NOT NULL DEFAULT '',
    correct INTEGER NOT NULL,
    total INTEGER NOT NULL,
    accuracy REAL NOT NULL,
    seconds REAL NOT NULL,
    ms_per_sample REAL NOT NULL,
    checkpoint_bytes INTEGER NOT NULL DEFAULT 0,
    config TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
`
		indexAccuracy = `CREATE INDEX IF NOT EXISTS evaluations_accuracy ON evaluations (accuracy DESC, seconds ASC);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}
	if _, err = tx.Exec(schemaEvaluations); err != nil {
		return fmt.Errorf("could not create evaluations schema: %w", err)
	}
	if _, err = tx.Exec(indexAccuracy); err != nil {
		return fmt.Errorf("could not create evaluations index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Run describes a checkpoint written by training or pruning.
type Run struct {
	ID              string       `json:"id"`
	Kind            string       `json:"kind"`
	CreatedAt       time.Time    `json:"created_at"`
	CheckpointPath  string       `json:"checkpoint_path"`
	Config          ngram.Config `json:"config"`
	Contexts        int          `json:"contexts"`
	TrainingLines   int          `json:"training_lines"`
	CheckpointBytes int64        `json:"checkpoint_bytes"`
}

// Evaluation is one scored pass of a model over a dataset.
type Evaluation struct {
	ID              string        `json:"id"`
	RunID           string        `json:"run_id,omitempty"`
	Label           string        `json:"label"`
	Dataset         string        `json:"dataset"`
	Correct         int           `json:"correct"`
	Total           int           `json:"total"`
	Accuracy        float64       `json:"accuracy"`
	Seconds         float64       `json:"seconds"`
	MsPerSample     float64       `json:"ms_per_sample"`
	CheckpointBytes int64         `json:"checkpoint_bytes"`
	Config          *ngram.Config `json:"config,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Store records runs and evaluations using prepared statements. It is safe
// for concurrent use.
type Store struct {
	db                   *sql.DB
	stmtInsertRun        *sql.Stmt
	stmtInsertEvaluation *sql.Stmt
	stmtListRuns         *sql.Stmt
	stmtTopEvaluations   *sql.Stmt
	logger               *slog.Logger
}

// NewStore prepares the statements used by the Store. SetupSchema must have
// been called on db.
func NewStore(db *sql.DB) (*Store, error) {
	stmtInsertRun, err := db.Prepare(`INSERT INTO runs (run_id, kind, created_at, checkpoint_path, ngram_order, kn_discount, laplace_alpha, max_chars_per_context, min_context_count, max_contexts, contexts, training_lines, checkpoint_bytes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtInsertEvaluation, err := db.Prepare(`INSERT INTO evaluations (evaluation_id, run_id, label, dataset, correct, total, accuracy, seconds, ms_per_sample, checkpoint_bytes, config, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		_ = stmtInsertRun.Close()
		return nil, err
	}

	stmtListRuns, err := db.Prepare(`SELECT run_id, kind, created_at, checkpoint_path, ngram_order, kn_discount, laplace_alpha, max_chars_per_context, min_context_count, max_contexts, contexts, training_lines, checkpoint_bytes FROM runs ORDER BY created_at DESC, run_id DESC LIMIT ?;`)
	if err != nil {
		_ = stmtInsertRun.Close()
		_ = stmtInsertEvaluation.Close()
		return nil, err
	}

	stmtTopEvaluations, err := db.Prepare(`SELECT evaluation_id, coalesce(run_id, ''), label, dataset, correct, total, accuracy, seconds, ms_per_sample, checkpoint_bytes, config, created_at FROM evaluations ORDER BY accuracy DESC, seconds ASC, evaluation_id ASC LIMIT ?;`)
	if err != nil {
		_ = stmtInsertRun.Close()
		_ = stmtInsertEvaluation.Close()
		_ = stmtListRuns.Close()
		return nil, err
	}

	return &Store{
		db:                   db,
		stmtInsertRun:        stmtInsertRun,
		stmtInsertEvaluation: stmtInsertEvaluation,
		stmtListRuns:         stmtListRuns,
		stmtTopEvaluations:   stmtTopEvaluations,
		logger:               slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases the prepared statements. The database itself stays open.
func (s *Store) Close() {
	_ = s.stmtInsertRun.Close()
	_ = s.stmtInsertEvaluation.Close()
	_ = s.stmtListRuns.Close()
	_ = s.stmtTopEvaluations.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

func newID() string {
	return ulid.Make().String()
}

// RecordRun stores run and returns its ID. An empty ID or zero CreatedAt is
// filled in.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.Kind == "" {
		return "", errors.New("run kind is required")
	}
	if run.ID == "" {
		run.ID = newID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	cfg := run.Config
	_, err := s.stmtInsertRun.ExecContext(ctx,
		run.ID, run.Kind, run.CreatedAt.UTC().Format(timeLayout), run.CheckpointPath,
		cfg.Order, cfg.Discount, cfg.Alpha, cfg.MaxCharsPerContext, cfg.MinContextCount, cfg.MaxContexts,
		run.Contexts, run.TrainingLines, run.CheckpointBytes,
	)
	if err != nil {
		return "", fmt.Errorf("could not record run: %w", err)
	}
	s.logger.InfoContext(ctx, "Run recorded",
		slog.String("run_id", run.ID),
		slog.String("kind", run.Kind),
		slog.Int("contexts", run.Contexts),
	)
	return run.ID, nil
}

// RecordEvaluation stores e and returns its ID. An empty ID or zero CreatedAt
// is filled in. RunID may be empty.
func (s *Store) RecordEvaluation(ctx context.Context, e Evaluation) (string, error) {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	var runID sql.NullString
	if e.RunID != "" {
		runID = sql.NullString{String: e.RunID, Valid: true}
	}
	var cfg string
	if e.Config != nil {
		data, err := json.Marshal(e.Config)
		if err != nil {
			return "", fmt.Errorf("could not encode evaluation config: %w", err)
		}
		cfg = string(data)
	}
	_, err := s.stmtInsertEvaluation.ExecContext(ctx,
		e.ID, runID, e.Label, e.Dataset, e.Correct, e.Total, e.Accuracy, e.Seconds, e.MsPerSample,
		e.CheckpointBytes, cfg, e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("could not record evaluation: %w", err)
	}
	s.logger.DebugContext(ctx, "Evaluation recorded",
		slog.String("evaluation_id", e.ID),
		slog.String("label", e.Label),
		slog.Float64("accuracy", e.Accuracy),
	)
	return e.ID, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.stmtListRuns.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			created string
		)
		cfg := &run.Config
		if err = rows.Scan(&run.ID, &run.Kind, &created, &run.CheckpointPath,
			&cfg.Order, &cfg.Discount, &cfg.Alpha, &cfg.MaxCharsPerContext, &cfg.MinContextCount, &cfg.MaxContexts,
			&run.Contexts, &run.TrainingLines, &run.CheckpointBytes); err != nil {
			return nil, err
		}
		if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s has a bad timestamp: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// TopEvaluations returns up to limit evaluations, most accurate first. Equal
// accuracies are ordered by elapsed time, fastest first.
func (s *Store) TopEvaluations(ctx context.Context, limit int) ([]Evaluation, error) {
	rows, err := s.stmtTopEvaluations.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var evals []Evaluation
	for rows.Next() {
		var (
			e       Evaluation
			cfg     string
			created string
		)
		if err = rows.Scan(&e.ID, &e.RunID, &e.Label, &e.Dataset, &e.Correct, &e.Total, &e.Accuracy,
			&e.Seconds, &e.MsPerSample, &e.CheckpointBytes, &cfg, &created); err != nil {
			return nil, err
		}
		if cfg != "" {
			e.Config = new(ngram.Config)
			if err = json.Unmarshal([]byte(cfg), e.Config); err != nil {
				return nil, fmt.Errorf("evaluation %s has a bad config: %w", e.ID, err)
			}
		}
		if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("evaluation %s has a bad timestamp: %w", e.ID, err)
		}
		evals = append(evals, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return evals, nil
}
