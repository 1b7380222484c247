package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	server "github.com/cyffff/riskai/pkg/controller/http"
	"github.com/cyffff/riskai/pkg/repository/memory"
	"github.com/cyffff/riskai/pkg/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	uc := usecase.New(memory.New())
	ts := httptest.NewServer(server.New(uc))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	gt.NoError(t, err).Required()
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	gt.NoError(t, err).Required()
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(out)).Required()
}

func createFeature(t *testing.T, baseURL string, body map[string]any) map[string]any {
	t.Helper()
	resp := postJSON(t, baseURL+"/api/v1/features", body)
	gt.Number(t, resp.StatusCode).Equal(http.StatusCreated)

	var created map[string]any
	decodeJSON(t, resp, &created)
	return created
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	gt.Number(t, resp.StatusCode).Equal(http.StatusOK)
}

func TestFeatureEndpoints(t *testing.T) {
	ts := newTestServer(t)

	feature := map[string]any{
		"name":        "transaction_amount",
		"description": "amount of the latest transaction",
		"data_type":   "numeric",
		"constraints": map[string]any{"min": 0, "max": 100000},
		"tags":        []string{"payments"},
	}

	t.Run("create and fetch", func(t *testing.T) {
		created := createFeature(t, ts.URL, feature)
		id := int64(created["id"].(float64))
		gt.Value(t, created["name"]).Equal("transaction_amount")

		resp, err := http.Get(fmt.Sprintf("%s/api/v1/features/%d", ts.URL, id))
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var fetched map[string]any
		decodeJSON(t, resp, &fetched)
		gt.Value(t, fetched["data_type"]).Equal("numeric")
	})

	t.Run("duplicate name returns conflict", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/features", feature)
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(http.StatusConflict)
	})

	t.Run("invalid definition returns bad request", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/features", map[string]any{
			"name":      "broken",
			"data_type": "tensor",
		})
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("unknown ID returns not found", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/features/9999")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(http.StatusNotFound)
	})

	t.Run("list with pagination", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/features?page=1&page_size=10")
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var list struct {
			Items []map[string]any `json:"items"`
			Total int              `json:"total"`
		}
		decodeJSON(t, resp, &list)
		gt.Number(t, list.Total).Equal(1)
	})
}

func TestFeatureValueEndpoints(t *testing.T) {
	ts := newTestServer(t)

	created := createFeature(t, ts.URL, map[string]any{
		"name":        "country_code",
		"data_type":   "categorical",
		"constraints": map[string]any{"categories": []string{"US", "GB", "JP"}},
	})
	id := int64(created["id"].(float64))

	t.Run("valid value is stored", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("%s/api/v1/features/%d/values", ts.URL, id), map[string]any{
			"entity_id": "cust-001",
			"value":     "JP",
		})
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(http.StatusCreated)
	})

	t.Run("constraint violation is rejected", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("%s/api/v1/features/%d/values", ts.URL, id), map[string]any{
			"entity_id": "cust-001",
			"value":     "XX",
		})
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("validate reports without storing", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("%s/api/v1/features/%d/validate", ts.URL, id), map[string]any{
			"value": "XX",
		})
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var result struct {
			IsValid bool     `json:"is_valid"`
			Errors  []string `json:"errors"`
		}
		decodeJSON(t, resp, &result)
		gt.Bool(t, result.IsValid).False()
		gt.Bool(t, len(result.Errors) > 0).True()
	})

	t.Run("stored values are listed", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/features/%d/values", ts.URL, id))
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var body struct {
			Values []map[string]any `json:"values"`
		}
		decodeJSON(t, resp, &body)
		gt.Number(t, len(body.Values)).Equal(1)
	})
}

func TestAssessmentFlow(t *testing.T) {
	ts := newTestServer(t)

	amount := createFeature(t, ts.URL, map[string]any{
		"name":        "transaction_amount",
		"data_type":   "numeric",
		"constraints": map[string]any{"min": 0, "max": 1000000},
	})

	resp := postJSON(t, ts.URL+"/api/v1/risk-factors", map[string]any{
		"feature_id": amount["id"],
		"weight":     0.5,
		"threshold":  10000,
		"operator":   "gt",
		"risk_level": "high",
	})
	gt.Number(t, resp.StatusCode).Equal(http.StatusCreated)
	resp.Body.Close()

	t.Run("assess stores and returns the result", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/assess", map[string]any{
			"customer_id": "cust-001",
			"features":    map[string]any{"transaction_amount": 50000},
		})
		gt.Number(t, resp.StatusCode).Equal(http.StatusCreated)

		var result struct {
			ID        string  `json:"id"`
			RiskScore float64 `json:"risk_score"`
			RiskLevel string  `json:"risk_level"`
		}
		decodeJSON(t, resp, &result)
		gt.Value(t, result.RiskScore).Equal(100.0)
		gt.Value(t, result.RiskLevel).Equal("high")
		gt.String(t, result.ID).NotEqual("")
	})

	t.Run("missing customer ID is rejected", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/assess", map[string]any{
			"features": map[string]any{"transaction_amount": 1},
		})
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("history returns stored assessments", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/assessments/cust-001")
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var body struct {
			Assessments []map[string]any `json:"assessments"`
		}
		decodeJSON(t, resp, &body)
		gt.Number(t, len(body.Assessments)).Equal(1)
	})

	t.Run("stats aggregate stored assessments", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/assessments/stats")
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var stats struct {
			TotalAssessments int `json:"total_assessments"`
			UniqueCustomers  int `json:"unique_customers"`
		}
		decodeJSON(t, resp, &stats)
		gt.Number(t, stats.TotalAssessments).Equal(1)
		gt.Number(t, stats.UniqueCustomers).Equal(1)
	})

	t.Run("history and stats accept a time range", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/assessments/cust-001?until=2000-01-01")
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var body struct {
			Assessments []map[string]any `json:"assessments"`
		}
		decodeJSON(t, resp, &body)
		gt.Number(t, len(body.Assessments)).Equal(0)

		resp, err = http.Get(ts.URL + "/api/v1/assessments/stats?since=2000-01-01T00:00:00Z")
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var stats struct {
			TotalAssessments int `json:"total_assessments"`
		}
		decodeJSON(t, resp, &stats)
		gt.Number(t, stats.TotalAssessments).Equal(1)
	})

	t.Run("malformed range bound is rejected", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/assessments/cust-001?since=yesterday")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("nested metadata survives the round trip", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/assess", map[string]any{
			"customer_id": "cust-meta",
			"features":    map[string]any{"transaction_amount": 1},
			"metadata": map[string]any{
				"source": "api-test",
				"labels": []string{"a", "b"},
				"extra":  map[string]any{"depth": 2},
			},
		})
		gt.Number(t, resp.StatusCode).Equal(http.StatusCreated)

		var result struct {
			Metadata map[string]any `json:"metadata"`
		}
		decodeJSON(t, resp, &result)
		gt.Value(t, result.Metadata["source"]).Equal(any("api-test"))
		labels, ok := result.Metadata["labels"].([]any)
		gt.Bool(t, ok).True()
		gt.Number(t, len(labels)).Equal(2)
		extra, ok := result.Metadata["extra"].(map[string]any)
		gt.Bool(t, ok).True()
		gt.Value(t, extra["depth"]).Equal(any(float64(2)))
	})
}

func TestRiskFactorEndpoints(t *testing.T) {
	ts := newTestServer(t)

	feature := createFeature(t, ts.URL, map[string]any{
		"name":        "country_code",
		"data_type":   "categorical",
		"constraints": map[string]any{"categories": []string{"US", "IR", "KP"}},
	})

	t.Run("incompatible operator is rejected", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/risk-factors", map[string]any{
			"feature_id": feature["id"],
			"weight":     0.3,
			"threshold":  100,
			"operator":   "gt",
			"risk_level": "high",
		})
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("list threshold with in operator works", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/risk-factors", map[string]any{
			"feature_id": feature["id"],
			"weight":     0.3,
			"threshold":  []string{"IR", "KP"},
			"operator":   "in",
			"risk_level": "high",
		})
		gt.Number(t, resp.StatusCode).Equal(http.StatusCreated)

		var created struct {
			ID       int64 `json:"id"`
			IsActive bool  `json:"is_active"`
		}
		decodeJSON(t, resp, &created)
		gt.Bool(t, created.IsActive).True()

		patch, err := json.Marshal(map[string]any{"is_active": false})
		gt.NoError(t, err).Required()
		req, err := http.NewRequest(http.MethodPatch,
			fmt.Sprintf("%s/api/v1/risk-factors/%d", ts.URL, created.ID), bytes.NewReader(patch))
		gt.NoError(t, err).Required()
		req.Header.Set("Content-Type", "application/json")

		patchResp, err := http.DefaultClient.Do(req)
		gt.NoError(t, err).Required()
		gt.Number(t, patchResp.StatusCode).Equal(http.StatusOK)

		var updated struct {
			IsActive bool `json:"is_active"`
		}
		decodeJSON(t, patchResp, &updated)
		gt.Bool(t, updated.IsActive).False()
	})

	t.Run("listing is paginated", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			resp := postJSON(t, ts.URL+"/api/v1/risk-factors", map[string]any{
				"feature_id": feature["id"],
				"weight":     0.1,
				"threshold":  []string{"IR"},
				"operator":   "in",
				"risk_level": "low",
			})
			gt.Number(t, resp.StatusCode).Equal(http.StatusCreated)
			resp.Body.Close()
		}

		resp, err := http.Get(ts.URL + "/api/v1/risk-factors?page=2&page_size=2")
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(http.StatusOK)

		var list struct {
			Items    []map[string]any `json:"items"`
			Total    int              `json:"total"`
			Page     int              `json:"page"`
			PageSize int              `json:"page_size"`
		}
		decodeJSON(t, resp, &list)
		gt.Number(t, list.Total).Equal(4)
		gt.Number(t, list.Page).Equal(2)
		gt.Number(t, list.PageSize).Equal(2)
		gt.Number(t, len(list.Items)).Equal(2)
	})
}
