package products

import (
	"context"
	"testing"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateProductDefaultsToTesting(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{Slug: "led-lamp", Name: "  LED Lamp  ", PriceCents: 2999})
	require.NoError(t, err)
	assert.Equal(t, "LED Lamp", created.Name)
	assert.Equal(t, enums.ProductStatusTesting, created.Status)

	_, err = svc.Create(ctx, CreateProductInput{Slug: "led-lamp", Name: "Another", PriceCents: 100})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCreateProductRejectsShortName(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateProductInput{Slug: "x-lamp", Name: " a ", PriceCents: 100})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListSortsByTrendScoreAndFilters(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	for _, p := range []models.Product{
		{Slug: "low-score", Name: "Low", PriceCents: 100, Status: enums.ProductStatusLive, TrendScore: 10},
		{Slug: "high-score", Name: "High", PriceCents: 100, Status: enums.ProductStatusLive, TrendScore: 90},
		{Slug: "paused-one", Name: "Paused", PriceCents: 100, Status: enums.ProductStatusPaused, TrendScore: 95},
	} {
		row := p
		_, err := repo.Create(ctx, &row)
		require.NoError(t, err)
	}

	live := enums.ProductStatusLive
	rows, err := svc.List(ctx, ListInput{Status: &live})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "high-score", rows[0].Slug)

	minScore := 50.0
	rows, err = svc.List(ctx, ListInput{MinTrendScore: &minScore})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "paused-one", rows[0].Slug)
}

func TestGetBySlugNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetBySlug(context.Background(), "missing-product")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRecordView(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, &models.Product{Slug: "viewed-item", Name: "Viewed", PriceCents: 100})
	require.NoError(t, err)

	require.NoError(t, svc.RecordView(ctx, "viewed-item", strPtr("sess-1")))
	require.NoError(t, svc.RecordView(ctx, "viewed-item", strPtr("  ")))

	var views []models.ProductView
	require.NoError(t, repo.(*repository).DB(ctx).Find(&views).Error)
	require.Len(t, views, 2)
	assert.Equal(t, "sess-1", *views[0].SessionID)
	assert.Nil(t, views[1].SessionID)
}

func TestDeleteSoftAndHard(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, &models.Product{Slug: "to-delete", Name: "Delete Me", PriceCents: 100, Status: enums.ProductStatusLive})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, false))
	row, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductStatusKilled, row.Status)

	require.NoError(t, svc.Delete(ctx, created.ID, true))
	_, err = repo.FindByID(ctx, created.ID)
	require.Error(t, err)

	err = svc.Delete(ctx, created.ID, true)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, &models.Product{Slug: "patch-me", Name: "Patch", PriceCents: 100})
	require.NoError(t, err)

	price := int64(2499)
	live := enums.ProductStatusLive
	updated, err := svc.Update(ctx, created.ID, UpdateProductInput{PriceCents: &price, Status: &live})
	require.NoError(t, err)
	assert.Equal(t, int64(2499), updated.PriceCents)
	assert.Equal(t, enums.ProductStatusLive, updated.Status)
	assert.Equal(t, "Patch", updated.Name)
}
