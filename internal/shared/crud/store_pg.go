package crud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ops-backend/internal/shared/storage/db"
)

// PGStore implements Store with generated SQL over database/sql.
type PGStore[T any] struct {
	DB    *sql.DB
	Table Table[T]

	listQuery   string
	getQuery    string
	insertQuery string
	updateQuery string
	deleteQuery string
}

// NewPGStore builds the statements for table once.
func NewPGStore[T any](database *sql.DB, table Table[T]) (*PGStore[T], error) {
	if database == nil {
		return nil, errors.New("crud: database is required")
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	sel := table.selectList()

	placeholders := make([]string, len(table.Columns))
	assignments := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}

	return &PGStore[T]{
		DB:    database,
		Table: table,
		listQuery: fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
			sel, table.Name, table.Key),
		getQuery: fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
			sel, table.Name, table.Key),
		insertQuery: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			table.Name, strings.Join(table.Columns, ", "), strings.Join(placeholders, ", "), sel),
		updateQuery: fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
			table.Name, strings.Join(assignments, ", "), table.Key, len(table.Columns)+1, sel),
		deleteQuery: fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
			table.Name, table.Key),
	}, nil
}

func (s *PGStore[T]) List(ctx context.Context) ([]T, error) {
	rows, err := s.DB.QueryContext(ctx, s.listQuery)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Table.Name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := s.Table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.Table.Name, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Table.Name, err)
	}
	return out, nil
}

func (s *PGStore[T]) Get(ctx context.Context, id int64) (T, error) {
	return s.one(ctx, "get", s.getQuery, id)
}

func (s *PGStore[T]) Create(ctx context.Context, v T) (T, error) {
	return s.one(ctx, "create", s.insertQuery, s.Table.Values(v)...)
}

func (s *PGStore[T]) Update(ctx context.Context, id int64, v T) (T, error) {
	args := append(s.Table.Values(v), id)
	return s.one(ctx, "update", s.updateQuery, args...)
}

func (s *PGStore[T]) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, s.deleteQuery, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.Table.Name, db.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.Table.Name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore[T]) one(ctx context.Context, op, query string, args ...any) (T, error) {
	item, err := s.Table.Scan(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("%s %s: %w", op, s.Table.Name, db.Classify(err))
	}
	return item, nil
}
