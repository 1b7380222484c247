package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/domain/types"
	"github.com/cyffff/riskai/pkg/repository/memory"
)

func newAssessment(customerID string, score float64, assessedAt time.Time) *model.RiskAssessment {
	level := types.RiskLevelLow
	switch {
	case score >= 80:
		level = types.RiskLevelHigh
	case score >= 50:
		level = types.RiskLevelMedium
	}
	return &model.RiskAssessment{
		CustomerID: customerID,
		RiskScore:  score,
		RiskLevel:  level,
		Factors: []model.FactorScore{
			{FactorID: 1, FeatureID: 1, Triggered: score > 0, Score: score / 100, MaxScore: 1},
		},
		AssessedAt: assessedAt,
	}
}

func runAssessmentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamp when missing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Assessment().Create(ctx, &model.RiskAssessment{
			CustomerID: "cust-001",
			RiskScore:  42,
			RiskLevel:  types.RiskLevelLow,
		})
		if err != nil {
			t.Fatalf("failed to create assessment: %v", err)
		}
		if created.ID == "" {
			t.Error("expected generated ID")
		}
		if created.AssessedAt.IsZero() {
			t.Error("expected non-zero AssessedAt")
		}
	})

	t.Run("ListByCustomer returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().UTC().Add(-time.Hour)
		for i, score := range []float64{10, 55, 90} {
			a := newAssessment("cust-001", score, base.Add(time.Duration(i)*time.Minute))
			if _, err := repo.Assessment().Create(ctx, a); err != nil {
				t.Fatalf("failed to create assessment: %v", err)
			}
		}
		if _, err := repo.Assessment().Create(ctx, newAssessment("cust-002", 30, base)); err != nil {
			t.Fatalf("failed to create assessment: %v", err)
		}

		history, err := repo.Assessment().ListByCustomer(ctx, "cust-001", interfaces.AssessmentRange{}, 0)
		if err != nil {
			t.Fatalf("failed to list assessments: %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("expected 3 assessments, got %d", len(history))
		}
		if history[0].RiskScore != 90 {
			t.Errorf("expected newest assessment first, got score %v", history[0].RiskScore)
		}
		for i := 1; i < len(history); i++ {
			if history[i].AssessedAt.After(history[i-1].AssessedAt) {
				t.Errorf("expected descending order at index %d", i)
			}
		}

		limited, err := repo.Assessment().ListByCustomer(ctx, "cust-001", interfaces.AssessmentRange{}, 2)
		if err != nil {
			t.Fatalf("failed to list limited assessments: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 assessments with limit, got %d", len(limited))
		}
	})

	t.Run("ListByCustomer honors the time range", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		for i, score := range []float64{10, 55, 90} {
			a := newAssessment("cust-001", score, base.AddDate(0, 0, i))
			if _, err := repo.Assessment().Create(ctx, a); err != nil {
				t.Fatalf("failed to create assessment: %v", err)
			}
		}

		since := base.AddDate(0, 0, 1)
		until := base.AddDate(0, 0, 1)
		ranged, err := repo.Assessment().ListByCustomer(ctx, "cust-001",
			interfaces.AssessmentRange{Since: &since, Until: &until}, 0)
		if err != nil {
			t.Fatalf("failed to list ranged assessments: %v", err)
		}
		if len(ranged) != 1 {
			t.Fatalf("expected 1 assessment in range, got %d", len(ranged))
		}
		if ranged[0].RiskScore != 55 {
			t.Errorf("expected middle assessment, got score %v", ranged[0].RiskScore)
		}

		open, err := repo.Assessment().ListByCustomer(ctx, "cust-001",
			interfaces.AssessmentRange{Since: &since}, 0)
		if err != nil {
			t.Fatalf("failed to list open-ended range: %v", err)
		}
		if len(open) != 2 {
			t.Errorf("expected 2 assessments from since onward, got %d", len(open))
		}
	})

	t.Run("List honors the time range", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		if _, err := repo.Assessment().Create(ctx, newAssessment("cust-001", 85, base)); err != nil {
			t.Fatalf("failed to create assessment: %v", err)
		}
		if _, err := repo.Assessment().Create(ctx, newAssessment("cust-002", 20, base.AddDate(0, 0, 5))); err != nil {
			t.Fatalf("failed to create assessment: %v", err)
		}

		until := base.AddDate(0, 0, 1)
		ranged, err := repo.Assessment().List(ctx, interfaces.AssessmentRange{Until: &until})
		if err != nil {
			t.Fatalf("failed to list ranged assessments: %v", err)
		}
		if len(ranged) != 1 {
			t.Fatalf("expected 1 assessment before until, got %d", len(ranged))
		}
		if ranged[0].CustomerID != "cust-001" {
			t.Errorf("expected cust-001, got %s", ranged[0].CustomerID)
		}
	})

	t.Run("Metadata with nested values survives the round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := newAssessment("cust-001", 42, time.Now().UTC())
		a.Metadata = map[string]any{
			"source":  "batch-import",
			"attempt": float64(3),
			"flags":   []any{"manual-review", "vip"},
			"context": map[string]any{"channel": "web", "retries": float64(1)},
		}
		if _, err := repo.Assessment().Create(ctx, a); err != nil {
			t.Fatalf("failed to create assessment: %v", err)
		}

		history, err := repo.Assessment().ListByCustomer(ctx, "cust-001", interfaces.AssessmentRange{}, 1)
		if err != nil {
			t.Fatalf("failed to list assessments: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("expected 1 assessment, got %d", len(history))
		}

		got := history[0].Metadata
		if got["source"] != "batch-import" || got["attempt"] != float64(3) {
			t.Errorf("scalar metadata lost: %v", got)
		}
		flags, ok := got["flags"].([]any)
		if !ok || len(flags) != 2 || flags[0] != "manual-review" {
			t.Errorf("list metadata lost: %v", got["flags"])
		}
		nested, ok := got["context"].(map[string]any)
		if !ok || nested["channel"] != "web" {
			t.Errorf("nested metadata lost: %v", got["context"])
		}
	})

	t.Run("ListByCustomer returns empty for unknown customer", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		history, err := repo.Assessment().ListByCustomer(ctx, "nobody", interfaces.AssessmentRange{}, 0)
		if err != nil {
			t.Fatalf("failed to list assessments: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("expected empty history, got %d", len(history))
		}
	})

	t.Run("List returns all stored assessments with factors", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().UTC()
		if _, err := repo.Assessment().Create(ctx, newAssessment("cust-001", 85, base)); err != nil {
			t.Fatalf("failed to create assessment: %v", err)
		}
		if _, err := repo.Assessment().Create(ctx, newAssessment("cust-002", 20, base)); err != nil {
			t.Fatalf("failed to create assessment: %v", err)
		}

		all, err := repo.Assessment().List(ctx, interfaces.AssessmentRange{})
		if err != nil {
			t.Fatalf("failed to list assessments: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 assessments, got %d", len(all))
		}
		for _, a := range all {
			if len(a.Factors) != 1 {
				t.Errorf("expected factor breakdown to survive, got %d factors", len(a.Factors))
			}
		}
	})
}

func TestMemoryAssessmentRepository(t *testing.T) {
	runAssessmentRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreAssessmentRepository(t *testing.T) {
	runAssessmentRepositoryTest(t, newFirestoreRepository)
}
