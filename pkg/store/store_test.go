package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestWrapNotFound(t *testing.T) {
	t.Run("no rows maps to ErrNotFound", func(t *testing.T) {
		err := wrapNotFound(pgx.ErrNoRows)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other errors are joined with ErrFailedToQuery", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := wrapNotFound(cause)
		assert.ErrorIs(t, err, ErrFailedToQuery)
		assert.ErrorIs(t, err, cause)
	})
}
