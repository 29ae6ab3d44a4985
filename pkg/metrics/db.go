package metrics

import (
	"database/sql"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SQLSource hands out the pooled handle behind the GORM client.
type SQLSource interface {
	SQL() (*sql.DB, error)
	Driver() string
}

// RegisterDBPool exports go_sql_* pool gauges for the shared connection,
// labelled with db_name set to the driver. Registering the same pool twice
// is not an error.
func RegisterDBPool(reg prometheus.Registerer, src SQLSource) error {
	if reg == nil || src == nil {
		return nil
	}
	sqlDB, err := src.SQL()
	if err != nil {
		return err
	}
	err = reg.Register(collectors.NewDBStatsCollector(sqlDB, src.Driver()))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
