package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/domain/types"
	"github.com/cyffff/riskai/pkg/repository"
	"github.com/cyffff/riskai/pkg/repository/memory"
)

func newHighAmountFactor(featureID int64) *model.RiskFactor {
	return &model.RiskFactor{
		FeatureID:   featureID,
		Weight:      0.4,
		Threshold:   model.NumberValue(10000),
		Operator:    types.OperatorGt,
		RiskLevel:   types.RiskLevelHigh,
		Description: "large transaction amount",
		IsActive:    true,
	}
}

func runRiskFactorRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns auto-increment IDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created1, err := repo.RiskFactor().Create(ctx, newHighAmountFactor(1))
		if err != nil {
			t.Fatalf("failed to create factor: %v", err)
		}
		if created1.ID != 1 {
			t.Errorf("expected ID=1, got %d", created1.ID)
		}

		created2, err := repo.RiskFactor().Create(ctx, newHighAmountFactor(2))
		if err != nil {
			t.Fatalf("failed to create second factor: %v", err)
		}
		if created2.ID != 2 {
			t.Errorf("expected ID=2, got %d", created2.ID)
		}
	})

	t.Run("Threshold survives the round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		factor := &model.RiskFactor{
			FeatureID: 1,
			Weight:    0.25,
			Threshold: model.ListValue(model.NumberValue(100), model.NumberValue(500)),
			Operator:  types.OperatorBetween,
			RiskLevel: types.RiskLevelMedium,
			IsActive:  true,
		}

		created, err := repo.RiskFactor().Create(ctx, factor)
		if err != nil {
			t.Fatalf("failed to create factor: %v", err)
		}

		retrieved, err := repo.RiskFactor().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get factor: %v", err)
		}
		if !retrieved.Threshold.Equal(factor.Threshold) {
			t.Errorf("expected threshold %v, got %v", factor.Threshold, retrieved.Threshold)
		}
		if retrieved.Operator != types.OperatorBetween {
			t.Errorf("expected between operator, got %s", retrieved.Operator)
		}
	})

	t.Run("Get returns ErrNotFound for missing factor", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.RiskFactor().Get(ctx, 99999)
		if err == nil {
			t.Error("expected error for non-existent factor")
		}
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List filters by feature and activity", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		f1 := newHighAmountFactor(1)
		f2 := newHighAmountFactor(1)
		f2.IsActive = false
		f3 := newHighAmountFactor(2)

		for _, f := range []*model.RiskFactor{f1, f2, f3} {
			if _, err := repo.RiskFactor().Create(ctx, f); err != nil {
				t.Fatalf("failed to create factor: %v", err)
			}
		}

		featureID := int64(1)
		byFeature, total, err := repo.RiskFactor().List(ctx, interfaces.RiskFactorFilter{FeatureID: &featureID}, 0, 0)
		if err != nil {
			t.Fatalf("failed to list factors: %v", err)
		}
		if len(byFeature) != 2 || total != 2 {
			t.Errorf("expected 2 factors for feature 1, got %d (total %d)", len(byFeature), total)
		}

		active, err := repo.RiskFactor().ListActive(ctx)
		if err != nil {
			t.Fatalf("failed to list active factors: %v", err)
		}
		if len(active) != 2 {
			t.Errorf("expected 2 active factors, got %d", len(active))
		}
	})

	t.Run("List paginates with offset and limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			if _, err := repo.RiskFactor().Create(ctx, newHighAmountFactor(1)); err != nil {
				t.Fatalf("failed to create factor: %v", err)
			}
		}

		page, total, err := repo.RiskFactor().List(ctx, interfaces.RiskFactorFilter{}, 0, 2)
		if err != nil {
			t.Fatalf("failed to list first page: %v", err)
		}
		if len(page) != 2 || total != 5 {
			t.Fatalf("expected 2 of 5 factors, got %d of %d", len(page), total)
		}
		if page[0].ID != 1 || page[1].ID != 2 {
			t.Errorf("expected IDs 1,2 on first page, got %d,%d", page[0].ID, page[1].ID)
		}

		page, total, err = repo.RiskFactor().List(ctx, interfaces.RiskFactorFilter{}, 4, 2)
		if err != nil {
			t.Fatalf("failed to list last page: %v", err)
		}
		if len(page) != 1 || total != 5 {
			t.Fatalf("expected 1 of 5 factors, got %d of %d", len(page), total)
		}
		if page[0].ID != 5 {
			t.Errorf("expected ID 5 on last page, got %d", page[0].ID)
		}

		page, total, err = repo.RiskFactor().List(ctx, interfaces.RiskFactorFilter{}, 10, 2)
		if err != nil {
			t.Fatalf("failed to list beyond last page: %v", err)
		}
		if len(page) != 0 || total != 5 {
			t.Errorf("expected empty page with total 5, got %d of %d", len(page), total)
		}
	})

	t.Run("Update modifies existing factor", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.RiskFactor().Create(ctx, newHighAmountFactor(1))
		if err != nil {
			t.Fatalf("failed to create factor: %v", err)
		}

		time.Sleep(10 * time.Millisecond)

		modified := *created
		modified.Weight = 0.6
		modified.Threshold = model.NumberValue(50000)
		updated, err := repo.RiskFactor().Update(ctx, &modified)
		if err != nil {
			t.Fatalf("failed to update factor: %v", err)
		}

		if updated.Weight != 0.6 {
			t.Errorf("expected weight 0.6, got %v", updated.Weight)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("CreatedAt should not change, got %v", updated.CreatedAt)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("UpdatedAt should advance, got %v", updated.UpdatedAt)
		}
	})

	t.Run("DeactivateByFeature deactivates only referencing factors", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		f1 := newHighAmountFactor(1)
		f2 := newHighAmountFactor(1)
		f3 := newHighAmountFactor(2)
		for _, f := range []*model.RiskFactor{f1, f2, f3} {
			if _, err := repo.RiskFactor().Create(ctx, f); err != nil {
				t.Fatalf("failed to create factor: %v", err)
			}
		}

		changed, err := repo.RiskFactor().DeactivateByFeature(ctx, 1)
		if err != nil {
			t.Fatalf("failed to deactivate factors: %v", err)
		}
		if changed != 2 {
			t.Errorf("expected 2 deactivated factors, got %d", changed)
		}

		active, err := repo.RiskFactor().ListActive(ctx)
		if err != nil {
			t.Fatalf("failed to list active factors: %v", err)
		}
		if len(active) != 1 {
			t.Errorf("expected 1 remaining active factor, got %d", len(active))
		}
		if len(active) == 1 && active[0].FeatureID != 2 {
			t.Errorf("expected surviving factor on feature 2, got %d", active[0].FeatureID)
		}

		// Already-inactive factors are not counted twice
		changed, err = repo.RiskFactor().DeactivateByFeature(ctx, 1)
		if err != nil {
			t.Fatalf("failed to re-deactivate factors: %v", err)
		}
		if changed != 0 {
			t.Errorf("expected 0 changed factors, got %d", changed)
		}
	})
}

func TestMemoryRiskFactorRepository(t *testing.T) {
	runRiskFactorRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreRiskFactorRepository(t *testing.T) {
	runRiskFactorRepositoryTest(t, newFirestoreRepository)
}
