package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so writes can run
// inside a caller-owned transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ErrMatchInvalid is returned when a child row references a missing match.
var ErrMatchInvalid = errors.New("referenced match does not exist")

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
)

func executor(db *sql.DB, exec SQLExecutor) SQLExecutor {
	if exec == nil {
		return db
	}
	return exec
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// mapChildError turns a foreign key violation on match_id into ErrMatchInvalid.
func mapChildError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return ErrMatchInvalid
		case pqCheckViolation:
			return fmt.Errorf("constraint %s violated: %w", pqErr.Constraint, err)
		}
	}
	return err
}

// nullableID maps an optional foreign key to a driver value.
func nullableID(id *int) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func scanNullableID(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	id := int(v.Int64)
	return &id
}
