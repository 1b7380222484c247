package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/usecase"
)

type assessRequest struct {
	CustomerID string         `json:"customer_id"`
	Features   map[string]any `json:"features"`
	Metadata   map[string]any `json:"metadata"`
}

func (s *Server) assess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assessRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	result, err := s.uc.Assessment.Assess(ctx, usecase.AssessInput{
		CustomerID: req.CustomerID,
		Features:   req.Features,
		Metadata:   req.Metadata,
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, result)
}

func (s *Server) assessmentHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID := chi.URLParam(r, "customerID")
	if customerID == "" {
		handleError(ctx, w, goerr.Wrap(usecase.ErrValidation, "customer ID is required"))
		return
	}
	limit := queryInt(r, "limit", 0)
	rng, err := queryRange(r)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	history, err := s.uc.Assessment.History(ctx, customerID, rng, limit)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"customer_id": customerID,
		"assessments": history,
	})
}

func (s *Server) assessmentStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rng, err := queryRange(r)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	stats, err := s.uc.Assessment.Stats(ctx, rng)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}

// queryRange reads the optional since/until bounds of a listing.
func queryRange(r *http.Request) (interfaces.AssessmentRange, error) {
	since, err := queryTime(r, "since")
	if err != nil {
		return interfaces.AssessmentRange{}, err
	}
	until, err := queryTime(r, "until")
	if err != nil {
		return interfaces.AssessmentRange{}, err
	}
	return interfaces.AssessmentRange{Since: since, Until: until}, nil
}
