package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

// updateByID issues a single UPDATE for the given row. Column names must come from the
// caller's allowed set; values are always bound as positional parameters. Zero affected rows
// are reported as sql.ErrNoRows.
func updateByID(ctx context.Context, db sqlx.ExecerContext, table string, allowed map[string]struct{}, id int64, values []models.ColumnValue) error {
	if len(values) == 0 {
		return fmt.Errorf("update %s: no columns to set", table)
	}

	sets := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values)+1)
	for _, cv := range values {
		if _, ok := allowed[cv.Column]; !ok {
			return fmt.Errorf("update %s: column %q is not editable", table, cv.Column)
		}
		args = append(args, cv.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", cv.Column, len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return requireAffected(result, table)
}

func requireAffected(result sql.Result, table string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated %s rows: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func columnSet(columns ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	return set
}
