package http

import (
	"net/http"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/domain/types"
	"github.com/cyffff/riskai/pkg/usecase"
)

type createFeatureRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	DataType    string            `json:"data_type"`
	Constraints model.Constraints `json:"constraints"`
	Tags        []string          `json:"tags"`
}

func (s *Server) createFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createFeatureRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	created, err := s.uc.Feature.Create(ctx, &model.Feature{
		Name:        req.Name,
		Description: req.Description,
		DataType:    types.DataType(req.DataType),
		Constraints: req.Constraints,
		Tags:        req.Tags,
		IsActive:    true,
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, created)
}

func (s *Server) listFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := interfaces.FeatureFilter{
		IsActive: queryBool(r, "is_active"),
		Tag:      r.URL.Query().Get("tag"),
		Search:   r.URL.Query().Get("search"),
	}
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)

	list, err := s.uc.Feature.List(ctx, filter, page, pageSize)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, list)
}

func (s *Server) getFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "featureID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	feature, err := s.uc.Feature.Get(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, feature)
}

type updateFeatureRequest struct {
	Description     *string            `json:"description"`
	Constraints     *model.Constraints `json:"constraints"`
	IsActive        *bool              `json:"is_active"`
	ImportanceScore *float64           `json:"importance_score"`
	Tags            []string           `json:"tags"`
}

func (s *Server) updateFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "featureID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	var req updateFeatureRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	updated, err := s.uc.Feature.Update(ctx, id, usecase.FeatureUpdate{
		Description:     req.Description,
		Constraints:     req.Constraints,
		IsActive:        req.IsActive,
		ImportanceScore: req.ImportanceScore,
		Tags:            req.Tags,
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, updated)
}

func (s *Server) deactivateFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "featureID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	deactivatedFactors, err := s.uc.Feature.Deactivate(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"id":                  id,
		"deactivated_factors": deactivatedFactors,
	})
}

type setValueRequest struct {
	EntityID string `json:"entity_id"`
	Value    any    `json:"value"`
}

func (s *Server) setFeatureValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "featureID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	var req setValueRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	saved, err := s.uc.Feature.SetValue(ctx, id, req.EntityID, req.Value)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, saved)
}

func (s *Server) listFeatureValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "featureID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	values, err := s.uc.Feature.ListValues(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"feature_id": id,
		"values":     values,
	})
}

type validateValueRequest struct {
	Value any `json:"value"`
}

func (s *Server) validateFeatureValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "featureID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	var req validateValueRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	result, err := s.uc.Feature.ValidateValue(ctx, id, req.Value)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

func (s *Server) syncImportance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ranking, err := s.uc.Feature.SyncImportance(ctx)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"features": ranking,
	})
}

func (s *Server) featureMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "featureID")
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	feature, err := s.uc.Feature.Get(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	metrics, err := s.uc.Feature.Metrics(ctx, feature.Name)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, metrics)
}
