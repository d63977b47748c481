package storage

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

// testBackend runs the read/write contract every backend must satisfy.
func testBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	key := "test_" + gofakeit.UUID()

	t.Run("missing key", func(t *testing.T) {
		v, found, err := b.Read(ctx, key)
		require.NoError(t, err)
		require.False(t, found)
		require.Empty(t, v)
	})

	t.Run("write then read", func(t *testing.T) {
		require.NoError(t, b.Write(ctx, key, `[{"id":"1"}]`))

		v, found, err := b.Read(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, `[{"id":"1"}]`, v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, b.Write(ctx, key, "[]"))

		v, found, err := b.Read(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "[]", v)
	})

	t.Run("empty value is still present", func(t *testing.T) {
		other := key + "_empty"
		require.NoError(t, b.Write(ctx, other, ""))

		v, found, err := b.Read(ctx, other)
		require.NoError(t, err)
		require.True(t, found)
		require.Empty(t, v)
	})
}
