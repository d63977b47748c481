package book_test

import (
	"testing"
	"time"

	"shelf/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSnapshot(t *testing.T) {
	t.Run("nil collection encodes as empty array", func(t *testing.T) {
		raw, err := book.EncodeSnapshot(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", raw)
	})

	t.Run("field names and ISO-8601 createdAt", func(t *testing.T) {
		raw, err := book.EncodeSnapshot([]book.Book{{
			ID:        "a",
			Title:     "Dune",
			Author:    "Herbert",
			Genre:     "Science Fiction",
			Year:      1965,
			CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 600000000, time.UTC),
		}})
		require.NoError(t, err)
		assert.JSONEq(t, `[{
			"id": "a",
			"title": "Dune",
			"author": "Herbert",
			"genre": "Science Fiction",
			"year": 1965,
			"description": "",
			"createdAt": "2024-01-02T03:04:05.6Z"
		}]`, raw)
	})
}

func TestDecodeSnapshot(t *testing.T) {
	t.Run("null and blank decode as empty", func(t *testing.T) {
		for _, raw := range []string{"null", "", "  \n"} {
			books, err := book.DecodeSnapshot(raw)
			require.NoError(t, err)
			assert.NotNil(t, books)
			assert.Empty(t, books)
		}
	})

	t.Run("accepts millisecond timestamps", func(t *testing.T) {
		books, err := book.DecodeSnapshot(`[{"id":"a","createdAt":"2023-11-05T10:20:30.123Z"}]`)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, 123*time.Millisecond, time.Duration(books[0].CreatedAt.Nanosecond()))
	})

	t.Run("malformed input", func(t *testing.T) {
		for _, raw := range []string{"{", `{"id":"a"}`, `[{"createdAt":"yesterday"}]`, `[{"year":"nineteen"}]`} {
			_, err := book.DecodeSnapshot(raw)
			assert.ErrorIs(t, err, book.ErrCorruptSnapshot, "input %q", raw)
		}
	})
}
