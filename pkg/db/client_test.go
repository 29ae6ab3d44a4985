package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&testModel{}))
	t.Cleanup(func() { conn.Exec("DELETE FROM test_models") })
	return conn
}

func countRows(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&testModel{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	conn := newTestDB(t)
	client := NewFromConn(conn)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}))
	assert.EqualValues(t, 1, countRows(t, conn))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.EqualValues(t, 1, countRows(t, conn))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	conn := newTestDB(t)
	client := NewFromConn(conn)

	assert.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&testModel{Name: "half-written"})
			panic("supplier payload exploded")
		})
	})
	assert.Zero(t, countRows(t, conn))
}

func TestNewFromConnDetectsDriver(t *testing.T) {
	client := NewFromConn(newTestDB(t))
	assert.Equal(t, "sqlite", client.Driver())
	require.NoError(t, client.Ping(context.Background()))
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor(config.DBConfig{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = dialectorFor(config.DBConfig{Driver: "postgres", DSN: "postgres://localhost/urgency"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestWithBusyTimeout(t *testing.T) {
	tests := map[string]string{
		"file::memory:":                      "file::memory:?_busy_timeout=5000",
		"file:shop.db?cache=shared":          "file:shop.db?_busy_timeout=5000&cache=shared",
		"file:shop.db?_busy_timeout=100&x=1": "file:shop.db?_busy_timeout=100&x=1",
	}
	for in, want := range tests {
		got, err := withBusyTimeout(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNewSQLiteEnablesForeignKeys(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: "file:fkcheck?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	defer client.Close()

	var enabled int
	require.NoError(t, client.DB().Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: "postgres", DSN: "  "}, nil)
	assert.EqualError(t, err, "database DSN is required")
}

func TestQueryLoggerReportsFailuresOnly(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: newQueryLogger(logg, time.Hour)})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&testModel{}))

	var row testModel
	_ = conn.First(&row, 99).Error
	assert.Zero(t, buf.Len(), "record-not-found should stay silent")

	_ = conn.Exec("SELECT * FROM missing_table").Error
	assert.Contains(t, buf.String(), "db.query_failed")
	assert.Contains(t, buf.String(), "missing_table")
}
