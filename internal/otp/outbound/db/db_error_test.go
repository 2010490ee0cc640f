package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

func TestMapError(t *testing.T) {
	s := &DB{}

	t.Run("NilStaysNil", func(t *testing.T) {
		if err := s.mapError(nil); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("NoRowsIsNotFound", func(t *testing.T) {
		err := s.mapError(fmt.Errorf("scan row: %w", pgx.ErrNoRows))

		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UniqueViolationIsConflict", func(t *testing.T) {
		err := s.mapError(&pgconn.PgError{Code: "23505"})

		if !errors.Is(err, goerror.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("ConnectionExceptionIsUnavailable", func(t *testing.T) {
		err := s.mapError(&pgconn.PgError{Code: "08006"})

		if !errors.Is(err, goerror.ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("OtherErrorsPassThrough", func(t *testing.T) {
		boom := errors.New("boom")

		err := s.mapError(boom)

		if !errors.Is(err, boom) {
			t.Fatalf("expected the original error back, got %v", err)
		}
	})
}
