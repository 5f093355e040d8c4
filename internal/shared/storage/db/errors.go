package db

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the API layer turns into field errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeStringTooLong       = "22001"
)

// ConstraintKind classifies an integrity failure.
type ConstraintKind int

const (
	Unique ConstraintKind = iota + 1
	ForeignKey
	NotNull
	TooLong
)

// ConstraintError is an integrity failure reported by Postgres, reduced to
// the table and column it concerns.
type ConstraintError struct {
	Kind       ConstraintKind
	Table      string
	Column     string
	Constraint string
	// Value is the offending key value when Postgres reports one in the detail.
	Value string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %s on %s.%s: %v", e.Constraint, e.Table, e.Column, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Classify converts pgx integrity errors into *ConstraintError and returns any
// other error unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind ConstraintKind
	switch pgErr.Code {
	case codeUniqueViolation:
		kind = Unique
	case codeForeignKeyViolation:
		kind = ForeignKey
	case codeNotNullViolation:
		kind = NotNull
	case codeStringTooLong:
		kind = TooLong
	default:
		return err
	}

	column := pgErr.ColumnName
	var value string
	if m := detailKeyPattern.FindStringSubmatch(pgErr.Detail); m != nil {
		if column == "" {
			column = m[1]
		}
		value = m[2]
	}
	if column == "" {
		column = columnFromConstraint(pgErr.TableName, pgErr.ConstraintName)
	}
	return &ConstraintError{
		Kind:       kind,
		Table:      pgErr.TableName,
		Column:     column,
		Constraint: pgErr.ConstraintName,
		Value:      value,
		Err:        err,
	}
}

// detailKeyPattern matches "Key (expert_id)=(9) is not present ..." details,
// including lower(col::text) keys from case-insensitive unique indexes.
var detailKeyPattern = regexp.MustCompile(`^Key \((?:lower\()?([a-z0-9_]+)(?:::text\))?\)=\((.*)\) `)

// columnFromConstraint recovers the column from Postgres' default constraint
// names: <table>_<column>_key and <table>_<column>_fkey.
func columnFromConstraint(table, constraint string) string {
	name := constraint
	for _, suffix := range []string{"_fkey", "_key"} {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	if table != "" {
		name = strings.TrimPrefix(name, table+"_")
	}
	return name
}
