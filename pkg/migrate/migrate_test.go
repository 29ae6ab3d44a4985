package migrate_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/urgency-engine/pkg/migrate"
)

func TestEmbeddedSourceMatchesDisk(t *testing.T) {
	embedded, err := migrate.Source("")
	require.NoError(t, err)
	onDisk, err := migrate.Source("migrations")
	require.NoError(t, err)

	want, err := fs.Glob(onDisk, "*.sql")
	require.NoError(t, err)
	got, err := fs.Glob(embedded, "*.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, got)
	assert.Equal(t, want, got)
}

func TestSourceRejectsMissingDir(t *testing.T) {
	_, err := migrate.Source("does-not-exist")
	assert.Error(t, err)
}

func TestNewRunnerRequiresDatabase(t *testing.T) {
	source, err := migrate.Source("")
	require.NoError(t, err)

	_, err = migrate.NewRunner(nil, "postgres", source, nil)
	assert.EqualError(t, err, "db is required")
}
