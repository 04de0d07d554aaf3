package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// LoadExisting reads every stored row of one resource-type table into a
// map keyed by the composite identity (idCol, accountCol). Column names
// are lowercased, values stringified; NULLs become empty strings.
func LoadExisting(ctx context.Context, q Querier, table, idCol, accountCol string) (map[types.Key]map[string]string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("failed to load existing %s rows: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s columns: %w", table, err)
	}
	for i := range cols {
		cols[i] = strings.ToLower(cols[i])
	}

	existing := make(map[types.Key]map[string]string)
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}

		row := make(map[string]string, len(cols))
		for i, col := range cols {
			row[col] = values[i].String
		}
		existing[types.Key{ID: row[idCol], AccountID: row[accountCol]}] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}
	return existing, nil
}

// InsertSnapshot writes one new row with a fresh last_updated stamp.
// All values are stored in coerced string form.
func InsertSnapshot(ctx context.Context, ex Execer, table string, fields []types.Field, now time.Time) error {
	cols := make([]string, 0, len(fields)+1)
	marks := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		cols = append(cols, f.Column)
		marks = append(marks, "?")
		args = append(args, types.Coerce(f.Value))
	}
	cols = append(cols, "last_updated")
	marks = append(marks, "?")
	args = append(args, types.Coerce(now))

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// UpdateSnapshot issues a single UPDATE covering every changed column
// plus a refreshed last_updated, scoped to one identity key.
func UpdateSnapshot(ctx context.Context, ex Execer, table string, changed []types.Field, idCol, accountCol string, key types.Key, now time.Time) error {
	sets := make([]string, 0, len(changed)+1)
	args := make([]any, 0, len(changed)+3)
	for _, f := range changed {
		sets = append(sets, f.Column+" = ?")
		args = append(args, types.Coerce(f.Value))
	}
	sets = append(sets, "last_updated = ?")
	args = append(args, types.Coerce(now), key.ID, key.AccountID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? AND %s = ?",
		table, strings.Join(sets, ", "), idCol, accountCol)
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}

// TouchSnapshot refreshes only last_updated for one identity key.
func TouchSnapshot(ctx context.Context, ex Execer, table, idCol, accountCol string, key types.Key, now time.Time) error {
	query := fmt.Sprintf("UPDATE %s SET last_updated = ? WHERE %s = ? AND %s = ?",
		table, idCol, accountCol)
	if _, err := ex.ExecContext(ctx, query, types.Coerce(now), key.ID, key.AccountID); err != nil {
		return fmt.Errorf("failed to touch %s: %w", table, err)
	}
	return nil
}
