package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: uniqueViolation}
	if !isUniqueViolation(unique) {
		t.Error("expected unique-violation PgError to be recognised")
	}

	wrapped := fmt.Errorf("insert failed: %w", unique)
	if !isUniqueViolation(wrapped) {
		t.Error("expected wrapped unique-violation PgError to be recognised")
	}

	other := &pgconn.PgError{Code: "42601"}
	if isUniqueViolation(other) {
		t.Error("non-unique-violation PgError should not be recognised")
	}

	if isUniqueViolation(errors.New("plain error")) {
		t.Error("plain error should not be recognised as a unique violation")
	}
}
