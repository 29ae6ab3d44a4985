package settings

import (
	"context"
	"testing"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:settings_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StoreSettings{}))
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc, db
}

func TestGetCreatesDefaultsOnce(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultStoreName, first.StoreName)
	assert.Equal(t, DefaultPrimaryColor, first.PrimaryColor)
	assert.Equal(t, DefaultSecondaryColor, first.SecondaryColor)

	second, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.StoreSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateIsPartial(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	name := "  Viral Finds "
	email := "help@viral.test"
	updated, err := svc.Update(ctx, UpdateInput{StoreName: &name, ContactEmail: &email})
	require.NoError(t, err)
	assert.Equal(t, "Viral Finds", updated.StoreName)
	require.NotNil(t, updated.ContactEmail)
	assert.Equal(t, email, *updated.ContactEmail)
	assert.Equal(t, DefaultPrimaryColor, updated.PrimaryColor)

	empty := ""
	cleared, err := svc.Update(ctx, UpdateInput{ContactEmail: &empty})
	require.NoError(t, err)
	assert.Nil(t, cleared.ContactEmail)
	assert.Equal(t, "Viral Finds", cleared.StoreName)
}

func TestUpdateRejectsBlankName(t *testing.T) {
	svc, _ := newService(t)
	blank := "   "
	_, err := svc.Update(context.Background(), UpdateInput{StoreName: &blank})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
