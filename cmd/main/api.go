package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/CTAG07/charpredict/pkg/eval"
	"github.com/CTAG07/charpredict/pkg/ngram"
)

// maxPredictInputs bounds a single /api/predict request.
const maxPredictInputs = 10000

// maxRequestBytes bounds a request body.
const maxRequestBytes = 8 << 20

// PredictAPI serves predictions from one loaded model. The model is
// read-only, so handlers share it without locking.
type PredictAPI struct {
	model          *ngram.Model
	checkpointPath string
	logger         *slog.Logger
}

// NewPredictAPI creates a new instance of the PredictAPI.
func NewPredictAPI(model *ngram.Model, checkpointPath string, logger *slog.Logger) *PredictAPI {
	return &PredictAPI{
		model:          model,
		checkpointPath: checkpointPath,
		logger:         logger,
	}
}

// RegisterRoutes sets up the routing for all /api endpoints.
func (p *PredictAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/predict", p.handlePredict)
	mux.HandleFunc("/api/model/stats", p.handleStats)
	mux.HandleFunc("/api/health", p.handleHealth)
}

type PredictRequest struct {
	Inputs []string `json:"inputs"`
	K      int      `json:"k"`
}

type PredictResponse struct {
	Predictions []string `json:"predictions"`
}

// handlePredict predicts k characters for every input, in order.
func (p *PredictAPI) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req PredictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.K == 0 {
		req.K = eval.DefaultK
	}
	if req.K < 1 || req.K > 100 {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("k must be between 1 and 100, got %d", req.K))
		return
	}
	if len(req.Inputs) > maxPredictInputs {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("At most %d inputs per request", maxPredictInputs))
		return
	}

	preds := p.model.PredictBatch(req.Inputs, req.K)
	p.logger.Debug("Served predictions", "inputs", len(req.Inputs), "k", req.K)
	respondWithJSON(w, http.StatusOK, PredictResponse{Predictions: preds})
}

// handleStats returns the model statistics.
func (p *PredictAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, newCheckpointStats(p.model, p.checkpointPath))
}

// handleHealth reports that the server is up, with build information.
func (p *PredictAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"trained": p.model.Trained(),
		"version": Version,
		"commit":  Commit,
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("Failed to encode JSON response", "error", err)
		}
	}
}
