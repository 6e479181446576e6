package main

import (
	"context"

	"github.com/CTAG07/charpredict/pkg/eval"
	"github.com/CTAG07/charpredict/pkg/ngram"
	"github.com/CTAG07/charpredict/pkg/runstore"
)

// storeRecorder saves tuning trials as evaluations.
type storeRecorder struct {
	store *runstore.Store
}

// RecordTrial implements eval.Recorder.
func (r storeRecorder) RecordTrial(ctx context.Context, trial eval.Trial) error {
	cfg := trial.Config
	_, err := r.store.RecordEvaluation(ctx, evaluationFromResult(trial.Dev, "", 0, &cfg))
	return err
}

func evaluationFromResult(res eval.Result, runID string, checkpointBytes int64, cfg *ngram.Config) runstore.Evaluation {
	return runstore.Evaluation{
		RunID:           runID,
		Label:           res.Label,
		Dataset:         res.Dataset,
		Correct:         res.Correct,
		Total:           res.Total,
		Accuracy:        res.Accuracy,
		Seconds:         res.Elapsed.Seconds(),
		MsPerSample:     res.MsPerSample,
		CheckpointBytes: checkpointBytes,
		Config:          cfg,
	}
}
