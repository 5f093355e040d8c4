package crud

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"ops-backend/internal/shared/storage/db"
)

type gadget struct {
	ID        int64
	Name      string
	OwnerID   *int64
	CreatedAt time.Time
}

var gadgetTable = Table[gadget]{
	Name:      "gadgets",
	Key:       "gadget_id",
	Columns:   []string{"name", "owner_id"},
	Generated: []string{"created_at"},
	Scan: func(s Scanner) (gadget, error) {
		var g gadget
		var owner sql.NullInt64
		if err := s.Scan(&g.ID, &g.Name, &owner, &g.CreatedAt); err != nil {
			return gadget{}, err
		}
		if owner.Valid {
			g.OwnerID = &owner.Int64
		}
		return g, nil
	},
	Values: func(g gadget) []any {
		var owner any
		if g.OwnerID != nil {
			owner = *g.OwnerID
		}
		return []any{g.Name, owner}
	},
}

func newGadgetStore(t *testing.T) (*PGStore[gadget], sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	store, err := NewPGStore(conn, gadgetTable)
	if err != nil {
		t.Fatalf("NewPGStore: %v", err)
	}
	return store, mock
}

func TestPGStoreListOrdersByKey(t *testing.T) {
	store, mock := newGadgetStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT gadget_id, name, owner_id, created_at FROM gadgets ORDER BY gadget_id")).
		WillReturnRows(sqlmock.NewRows([]string{"gadget_id", "name", "owner_id", "created_at"}).
			AddRow(1, "a", nil, now).
			AddRow(2, "b", 7, now))

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].OwnerID != nil || *items[1].OwnerID != 7 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreCreateReturnsGeneratedColumns(t *testing.T) {
	store, mock := newGadgetStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO gadgets (name, owner_id) VALUES ($1, $2) RETURNING gadget_id, name, owner_id, created_at")).
		WithArgs("widget", nil).
		WillReturnRows(sqlmock.NewRows([]string{"gadget_id", "name", "owner_id", "created_at"}).AddRow(5, "widget", nil, now))

	got, err := store.Create(context.Background(), gadget{Name: "widget"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != 5 || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected row: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreUpdateMissingRow(t *testing.T) {
	store, mock := newGadgetStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE gadgets SET name = $1, owner_id = $2 WHERE gadget_id = $3 RETURNING")).
		WithArgs("x", nil, int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"gadget_id", "name", "owner_id", "created_at"}))

	if _, err := store.Update(context.Background(), 42, gadget{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreCreateClassifiesForeignKey(t *testing.T) {
	store, mock := newGadgetStore(t)
	owner := int64(9)
	mock.ExpectQuery("INSERT INTO gadgets").
		WithArgs("x", int64(9)).
		WillReturnError(&pgconn.PgError{
			Code:           "23503",
			TableName:      "gadgets",
			ConstraintName: "gadgets_owner_id_fkey",
			Detail:         `Key (owner_id)=(9) is not present in table "owners".`,
		})

	_, err := store.Create(context.Background(), gadget{Name: "x", OwnerID: &owner})
	var ce *db.ConstraintError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConstraintError, got %v", err)
	}
	if ce.Kind != db.ForeignKey || ce.Column != "owner_id" || ce.Value != "9" {
		t.Fatalf("unexpected constraint error: %+v", ce)
	}
}

func TestPGStoreDelete(t *testing.T) {
	store, mock := newGadgetStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gadgets WHERE gadget_id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gadgets WHERE gadget_id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(context.Background(), 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewPGStoreRejectsIncompleteTable(t *testing.T) {
	conn, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()
	if _, err := NewPGStore(conn, Table[gadget]{Name: "gadgets", Key: "gadget_id"}); err == nil {
		t.Fatalf("expected error for table without Scan/Values")
	}
}
