package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/usecase"
	"github.com/cyffff/riskai/pkg/utils/errutil"
	"github.com/cyffff/riskai/pkg/utils/safe"
)

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

// handleError maps use case sentinels to HTTP status codes.
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, usecase.ErrInvalidValue):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrFeatureNotFound), errors.Is(err, usecase.ErrRiskFactorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrDuplicateFeature):
		status = http.StatusConflict
	}
	errutil.HandleHTTP(ctx, w, err, status)
}

func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "invalid request body")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, goerr.Wrap(usecase.ErrValidation, "invalid ID in path", goerr.V(name, raw))
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// queryTime parses an optional RFC3339 or YYYY-MM-DD query parameter.
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, goerr.Wrap(usecase.ErrValidation, "invalid timestamp in query", goerr.V(name, raw))
}

func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
