package metrics

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "gorm.io/driver/sqlite"
)

type stubSQLSource struct {
	db  *sql.DB
	err error
}

func (s stubSQLSource) SQL() (*sql.DB, error) { return s.db, s.err }
func (s stubSQLSource) Driver() string        { return "sqlite" }

func TestRegisterDBPool(t *testing.T) {
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer sqlDB.Close()

	reg := prometheus.NewRegistry()
	src := stubSQLSource{db: sqlDB}
	require.NoError(t, RegisterDBPool(reg, src))
	require.NoError(t, RegisterDBPool(reg, src), "second registration is ignored")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "go_sql_max_open_connections")
}

func TestRegisterDBPoolPropagatesHandleError(t *testing.T) {
	err := RegisterDBPool(prometheus.NewRegistry(), stubSQLSource{err: errors.New("closed")})
	assert.EqualError(t, err, "closed")
	assert.NoError(t, RegisterDBPool(nil, stubSQLSource{}))
}
