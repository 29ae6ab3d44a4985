package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// StoreDetail is the driver level view of a database failure. Only populated
// for postgres errors surfaced through pgx or lib/pq.
type StoreDetail struct {
	Code       string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

// ErrorDump is the log-only breakdown of an error chain. It never reaches clients.
type ErrorDump struct {
	TopMessage string
	Code       Code
	Chain      []string
	Store      *StoreDetail
}

// Fields flattens the dump for structured logging.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if s := d.Store; s != nil {
		fields["pg_code"] = s.Code
		fields["pg_constraint"] = s.Constraint
		fields["pg_table"] = s.Table
		fields["pg_column"] = s.Column
		fields["pg_detail"] = s.Detail
		fields["pg_message"] = s.Message
	}
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	if detail, ok := storeDetail(err); ok {
		d.Store = &detail
	}
	return d
}

func storeDetail(err error) (StoreDetail, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return StoreDetail{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return StoreDetail{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}, true
	}
	return StoreDetail{}, false
}

// IsUniqueViolation detects unique constraint failures from postgres (pgx or lib/pq) and sqlite.
func IsUniqueViolation(err error) bool {
	return matchesViolation(err, pgUniqueViolation, "UNIQUE constraint failed")
}

// IsForeignKeyViolation detects foreign key failures. sqlite reports them only
// when the foreign_keys pragma is on.
func IsForeignKeyViolation(err error) bool {
	return matchesViolation(err, pgForeignKeyViolation, "FOREIGN KEY constraint failed")
}

func matchesViolation(err error, pgCode, sqliteText string) bool {
	if err == nil {
		return false
	}
	if detail, ok := storeDetail(err); ok {
		return detail.Code == pgCode
	}
	return strings.Contains(err.Error(), sqliteText)
}
