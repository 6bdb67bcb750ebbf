package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fcaptcha/fcaptcha-go/internal/pzerr"
)

type buildPuzzleResponse struct {
	Data struct {
		Puzzle string `json:"puzzle"`
	} `json:"data"`
}

type verifyPuzzleRequest struct {
	Solution string `json:"solution"`
	Secret   string `json:"secret"`
}

type verifyPuzzleResponse struct {
	Success bool    `json:"success"`
	Errors  *string `json:"errors"`
}

// handleBuildPuzzle implements GET /build-puzzle?sitekey=....
func (s *Server) handleBuildPuzzle(w http.ResponseWriter, r *http.Request) {
	sitekey := r.URL.Query().Get("sitekey")
	if subtle.ConstantTimeCompare([]byte(sitekey), s.apiKey) != 1 {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	id, err := sourceID(s.ipStrategy, r)
	if err != nil || id == "" {
		s.logger.WarnContext(r.Context(), "could not resolve source id", "error", err)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	puzzleStr, err := s.builder.BuildRandom(id, time.Now(), s.cfg.AccessTTL)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to build puzzle", "error", err, "source", id)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s.metrics.puzzlesIssued.Inc()

	resp := buildPuzzleResponse{}
	resp.Data.Puzzle = puzzleStr

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// handleVerifyPuzzleResult implements POST /verify-puzzle-result.
func (s *Server) handleVerifyPuzzleResult(w http.ResponseWriter, r *http.Request) {
	var req verifyPuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), s.apiKey) != 1 {
		errMsg := "secret_invalid"
		writeJSON(w, http.StatusForbidden, verifyPuzzleResponse{Success: false, Errors: &errMsg})
		return
	}

	s.metrics.verifyAttempts.Inc()
	start := time.Now()
	err := s.verifier.Verify(r.Context(), req.Solution, time.Now(), s.cfg.PuzzleTTL)
	s.metrics.verifyDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		kind := pzerr.KindOf(err)
		if kind == "" {
			kind = "unknown"
		}
		s.metrics.verifyOutcomes.WithLabelValues(string(kind)).Inc()
		s.logger.WarnContext(r.Context(), "verification failed", "kind", kind, "error", err)
		writeJSON(w, http.StatusOK, verifyPuzzleResponse{Success: false, Errors: nil})
		return
	}

	s.metrics.verifyOutcomes.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, verifyPuzzleResponse{Success: true, Errors: nil})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
