package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

// appendScope narrows a user-owned query to one class when a scope is given.
func appendScope(query *strings.Builder, args []interface{}, filter models.ScopeFilter) []interface{} {
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		fmt.Fprintf(query, " AND class_id = $%d", len(args))
	}
	return args
}

// expectAffected converts a zero-row update into sql.ErrNoRows so services
// can surface NotFound for ids outside the caller's scope.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// deleteOwned removes a row by id within the owner's scope. Missing rows are
// not an error.
func deleteOwned(ctx context.Context, db sqlx.ExecerContext, table, userID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND user_id = $2", table)
	if _, err := db.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func rollback(tx *sqlx.Tx) {
	_ = tx.Rollback()
}
