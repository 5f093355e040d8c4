// Package crud serves list/retrieve/create/update/delete endpoints for
// entities declared as static table descriptions.
package crud

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no row has the requested key.
var ErrNotFound = errors.New("not found")

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Table describes how an entity maps onto a Postgres table.
//
// Scan must read the key, then Columns, then Generated, in that order.
// Values must return one value per entry in Columns.
type Table[T any] struct {
	Name      string
	Key       string
	Columns   []string
	Generated []string
	Scan      func(Scanner) (T, error)
	Values    func(T) []any
}

func (t Table[T]) selectList() string {
	cols := make([]string, 0, 1+len(t.Columns)+len(t.Generated))
	cols = append(cols, t.Key)
	cols = append(cols, t.Columns...)
	cols = append(cols, t.Generated...)
	return strings.Join(cols, ", ")
}

func (t Table[T]) validate() error {
	if t.Name == "" || t.Key == "" {
		return errors.New("crud: table name and key are required")
	}
	if t.Scan == nil || t.Values == nil {
		return fmt.Errorf("crud: table %s needs Scan and Values", t.Name)
	}
	return nil
}

// Store persists one entity type.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id int64, v T) (T, error)
	Delete(ctx context.Context, id int64) error
}
