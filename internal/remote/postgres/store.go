package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/remote"
)

// collections maps every served collection to its allowed columns. Payload
// keys, filter columns and order columns are validated against this list
// before any SQL is assembled.
var collections = map[string]map[string]bool{
	remote.CollectionGoals: cols(
		"id", "user_id", "title", "target_time", "status",
		"is_essential", "essential_category", "created_at", "updated_at",
	),
	remote.CollectionRetrospects: cols(
		"id", "user_id", "date", "content", "created_at", "updated_at",
	),
	remote.CollectionFlexibleGoals: cols(
		"id", "user_id", "title", "status", "created_at", "updated_at",
	),
	remote.CollectionDailyResolutions: cols(
		"id", "user_id", "content", "date", "created_at",
	),
}

func cols(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Store implements remote.Store over a Postgres schema.
type Store struct{ db *DB }

var _ remote.Store = (*Store)(nil)

// NewStore constructs the store.
func NewStore(db *DB) *Store { return &Store{db: db} }

// Collection returns the named collection, or errs.ErrUnknownCollection.
func (s *Store) Collection(name string) (remote.Collection, error) {
	allowed, ok := collections[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, errs.ErrUnknownCollection)
	}
	return &collection{db: s.db, table: name, columns: allowed}, nil
}

type collection struct {
	db      *DB
	table   string
	columns map[string]bool
}

// Insert stores a new row and returns it with the store-assigned id.
func (c *collection) Insert(ctx context.Context, row remote.Row) (remote.Row, error) {
	names, args, err := c.split(row)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: empty row", c.table)
	}

	ph := make([]string, len(names))
	for i := range names {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		c.table, strings.Join(names, ", "), strings.Join(ph, ", "),
	)

	var id string
	if err := c.db.Pool.QueryRow(ctx, q, args...).Scan(&id); err != nil {
		return nil, err
	}
	out := make(remote.Row, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	out["id"] = id
	return out, nil
}

// Update applies patch to rows matching every filter. Matching no rows is
// not an error.
func (c *collection) Update(ctx context.Context, patch remote.Row, filters ...remote.Eq) error {
	names, args, err := c.split(patch)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("%s: empty patch", c.table)
	}

	sets := make([]string, len(names))
	for i, n := range names {
		sets[i] = fmt.Sprintf("%s=$%d", n, i+1)
	}
	where, args, err := c.where(filters, args)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s", c.table, strings.Join(sets, ", "), where)
	_, err = c.db.Pool.Exec(ctx, q, args...)
	return err
}

// Delete removes rows matching every filter.
func (c *collection) Delete(ctx context.Context, filters ...remote.Eq) error {
	where, args, err := c.where(filters, nil)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE %s", c.table, where)
	_, err = c.db.Pool.Exec(ctx, q, args...)
	return err
}

// Select returns the named columns (all when empty) of matching rows.
func (c *collection) Select(ctx context.Context, columns []string, order *remote.Order, filters ...remote.Eq) ([]remote.Row, error) {
	if len(columns) == 0 {
		columns = c.allColumns()
	}
	for _, col := range columns {
		if !c.columns[col] {
			return nil, fmt.Errorf("%s: unknown column %q", c.table, col)
		}
	}
	where, args, err := c.where(filters, nil)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), c.table, where)
	if order != nil {
		if !c.columns[order.Column] {
			return nil, fmt.Errorf("%s: unknown order column %q", c.table, order.Column)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		q += fmt.Sprintf(" ORDER BY %s %s", order.Column, dir)
	}

	rows, err := c.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []remote.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(remote.Row, len(columns))
		for i, col := range columns {
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// split validates the row's keys and returns them in deterministic order
// with matching args.
func (c *collection) split(row remote.Row) ([]string, []any, error) {
	names := make([]string, 0, len(row))
	for k := range row {
		if !c.columns[k] {
			return nil, nil, fmt.Errorf("%s: unknown column %q", c.table, k)
		}
		names = append(names, k)
	}
	sort.Strings(names)
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = row[n]
	}
	return names, args, nil
}

// where builds the filter clause, appending values to args. At least one
// filter is required so a bad call can never touch a whole table.
func (c *collection) where(filters []remote.Eq, args []any) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("%s: at least one filter required", c.table)
	}
	conds := make([]string, len(filters))
	for i, f := range filters {
		if !c.columns[f.Column] {
			return "", nil, fmt.Errorf("%s: unknown filter column %q", c.table, f.Column)
		}
		args = append(args, f.Value)
		conds[i] = fmt.Sprintf("%s=$%d", f.Column, len(args))
	}
	return strings.Join(conds, " AND "), args, nil
}

func (c *collection) allColumns() []string {
	names := make([]string, 0, len(c.columns))
	for n := range c.columns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
