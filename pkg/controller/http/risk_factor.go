package http

import (
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/domain/types"
	"github.com/cyffff/riskai/pkg/usecase"
)

type createRiskFactorRequest struct {
	FeatureID   int64   `json:"feature_id"`
	Weight      float64 `json:"weight"`
	Threshold   any     `json:"threshold"`
	Operator    string  `json:"operator"`
	RiskLevel   string  `json:"risk_level"`
	Description string  `json:"description"`
}

func (s *Server) createRiskFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRiskFactorRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	threshold, err := model.ValueFrom(req.Threshold)
	if err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidValue, err.Error()))
		return
	}

	created, err := s.uc.RiskFactor.Create(ctx, &model.RiskFactor{
		FeatureID:   req.FeatureID,
		Weight:      req.Weight,
		Threshold:   threshold,
		Operator:    types.Operator(req.Operator),
		RiskLevel:   types.RiskLevel(req.RiskLevel),
		Description: req.Description,
		IsActive:    true,
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, created)
}

func (s *Server) listRiskFactors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := interfaces.RiskFactorFilter{
		IsActive: queryBool(r, "is_active"),
	}
	if raw := r.URL.Query().Get("feature_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.FeatureID = &id
		}
	}
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)

	list, err := s.uc.RiskFactor.List(ctx, filter, page, pageSize)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, list)
}

func (s *Server) getRiskFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "factorID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	factor, err := s.uc.RiskFactor.Get(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, factor)
}

type updateRiskFactorRequest struct {
	Weight      *float64 `json:"weight"`
	Threshold   any      `json:"threshold"`
	Operator    *string  `json:"operator"`
	RiskLevel   *string  `json:"risk_level"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
}

func (s *Server) updateRiskFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "factorID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	var req updateRiskFactorRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	patch := usecase.RiskFactorUpdate{
		Weight:      req.Weight,
		Operator:    req.Operator,
		RiskLevel:   req.RiskLevel,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Threshold != nil {
		threshold, err := model.ValueFrom(req.Threshold)
		if err != nil {
			handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidValue, err.Error()))
			return
		}
		patch.Threshold = &threshold
	}

	updated, err := s.uc.RiskFactor.Update(ctx, id, patch)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, updated)
}
