package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/boardgen-api/internal/store"
)

func TestMapErrorNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
}

func TestMapErrorNoRows(t *testing.T) {
	err := MapError(fmt.Errorf("query: %w", sql.ErrNoRows))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMapErrorPgCodes(t *testing.T) {
	cases := []struct {
		name string
		code string
		want error
	}{
		{"unique violation", "23505", store.ErrDuplicate},
		{"foreign key violation", "23503", store.ErrInvalidEntity},
		{"check violation", "23514", store.ErrInvalidEntity},
		{"not null violation", "23502", store.ErrInvalidEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tc.code, ConstraintName: "some_constraint"}
			assert.ErrorIs(t, MapError(pgErr), tc.want)
		})
	}
}

func TestMapErrorUnmappedPassthrough(t *testing.T) {
	sentinel := errors.New("connection reset")
	assert.Equal(t, sentinel, MapError(sentinel))
}
