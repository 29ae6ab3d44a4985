package suggestions

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setup(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:suggestions_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.TrendSuggestion{}))
	svc, err := NewService(NewRepository(conn), products.NewRepository(conn), db.NewFromConn(conn))
	require.NoError(t, err)
	return svc, conn
}

func seedSuggestion(t *testing.T, conn *gorm.DB, s models.TrendSuggestion) *models.TrendSuggestion {
	t.Helper()
	if s.Status == "" {
		s.Status = enums.SuggestionStatusPending
	}
	require.NoError(t, conn.Create(&s).Error)
	return &s
}

func TestApproveCreatesExactlyOneProduct(t *testing.T) {
	svc, conn := setup(t)
	price := int64(2499)
	s := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "#Sunset Lamp", SuggestedPriceCents: &price, TrendScore: 88, UrgencyScore: 70})

	product, err := svc.Approve(context.Background(), s.ID, ApproveInput{})
	require.NoError(t, err)
	assert.Equal(t, "sunset-lamp", product.Slug)
	assert.Equal(t, "Trending: #Sunset Lamp", product.Name)
	assert.Equal(t, int64(2499), product.PriceCents)
	assert.Equal(t, enums.ProductStatusTesting, product.Status)
	assert.Equal(t, 88.0, product.TrendScore)
	require.NotNil(t, product.Description)
	assert.Equal(t, "Viral product inspired by #Sunset Lamp", *product.Description)

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored models.TrendSuggestion
	require.NoError(t, conn.First(&stored, s.ID).Error)
	assert.Equal(t, enums.SuggestionStatusApproved, stored.Status)
	require.NotNil(t, stored.ProductID)
	assert.Equal(t, product.ID, *stored.ProductID)
	assert.NotNil(t, stored.ReviewedAt)
}

func TestApproveTwiceFails(t *testing.T) {
	svc, conn := setup(t)
	s := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "cloudslides"})
	ctx := context.Background()

	_, err := svc.Approve(ctx, s.ID, ApproveInput{})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, s.ID, ApproveInput{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApproveUsesOverridesAndSuffixesTakenSlug(t *testing.T) {
	svc, conn := setup(t)
	require.NoError(t, conn.Create(&models.Product{Slug: "mini-fan", Name: "Existing", PriceCents: 100}).Error)
	s := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "mini fan"})

	name := "Pocket Fan"
	price := int64(1299)
	product, err := svc.Approve(context.Background(), s.ID, ApproveInput{Name: &name, PriceCents: &price})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("mini-fan-%d", s.ID), product.Slug)
	assert.Equal(t, "Pocket Fan", product.Name)
	assert.Equal(t, int64(1299), product.PriceCents)
}

func TestApproveKeepsSlugValidForOddHashtags(t *testing.T) {
	svc, conn := setup(t)
	ctx := context.Background()

	bare := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "#"})
	product, err := svc.Approve(ctx, bare.ID, ApproveInput{})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("trend-%d", bare.ID), product.Slug)
	assert.True(t, validators.IsSlug(product.Slug), product.Slug)

	short := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "#ok"})
	product, err = svc.Approve(ctx, short.ID, ApproveInput{})
	require.NoError(t, err)
	assert.Equal(t, "trend-ok", product.Slug)

	long := "#" + strings.Repeat("a", 150)
	for i := 0; i < 2; i++ {
		s := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: long})
		product, err = svc.Approve(ctx, s.ID, ApproveInput{})
		require.NoError(t, err)
		assert.True(t, validators.IsSlug(product.Slug), product.Slug)
		assert.LessOrEqual(t, len(product.Slug), validators.SlugMaxLen)
	}
	assert.Equal(t, strings.Repeat("a", products.MaxGeneratedSlugLen)+"-", product.Slug[:products.MaxGeneratedSlugLen+1])
}

func TestApproveDefaultsPrice(t *testing.T) {
	svc, conn := setup(t)
	s := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "desk-organizer"})

	product, err := svc.Approve(context.Background(), s.ID, ApproveInput{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPriceCents, product.PriceCents)
}

func TestApproveMissingSuggestion(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Approve(context.Background(), 404, ApproveInput{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRejectAndList(t *testing.T) {
	svc, conn := setup(t)
	low := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "low", TrendScore: 10})
	seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "high", TrendScore: 90})
	ctx := context.Background()

	pending := enums.SuggestionStatusPending
	list, err := svc.List(ctx, ListInput{Status: &pending})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "high", list[0].Hashtag)

	res, err := svc.Reject(ctx, low.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SuggestionStatusRejected, res.Status)

	list, err = svc.List(ctx, ListInput{Status: &pending})
	require.NoError(t, err)
	require.Len(t, list, 1)

	all, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRejectRefusesApprovedSuggestion(t *testing.T) {
	svc, conn := setup(t)
	s := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "cloud lamp"})
	ctx := context.Background()

	_, err := svc.Approve(ctx, s.ID, ApproveInput{})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, s.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var stored models.TrendSuggestion
	require.NoError(t, conn.First(&stored, s.ID).Error)
	assert.Equal(t, enums.SuggestionStatusApproved, stored.Status)

	rejected := seedSuggestion(t, conn, models.TrendSuggestion{Hashtag: "mood ring", Status: enums.SuggestionStatusRejected})
	res, err := svc.Reject(ctx, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SuggestionStatusRejected, res.Status)
}
