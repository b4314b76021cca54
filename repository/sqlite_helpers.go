package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/pkg"
)

// isUniqueViolation reports a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports a SQLite FOREIGN KEY constraint failure.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// where accumulates AND-joined conditions with their positional args.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// search adds "(c1 LIKE ? OR c2 LIKE ? ...)" for a non-empty term.
func (w *where) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	pattern := likeContains(term)
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c + ` LIKE ? ESCAPE '\'`
		w.args = append(w.args, pattern)
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// count runs a COUNT query.
func count(ctx context.Context, db database.TxQuerier, query string, args ...any) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

// exists reports whether query returns at least one row.
func exists(ctx context.Context, db database.TxQuerier, query string, args ...any) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, "SELECT EXISTS("+query+")", args...).Scan(&one)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return one == 1, nil
}

// collect scans every row with scan.
func collect[T any](rows *sql.Rows, scan func(*sql.Rows, *T) error) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// affectedOne maps zero affected rows to ErrNotFound.
func affectedOne(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

func pageClause(p pkg.PageParams) string {
	return fmt.Sprintf(" LIMIT %d OFFSET %d", p.PerPage, p.Offset())
}

// inPlaceholders renders "?, ?, ?" for n values.
func inPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
