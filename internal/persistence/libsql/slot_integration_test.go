//go:build integration

package libsql

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"example.com/gymgenius/internal/planstore"
	"example.com/gymgenius/internal/testsupport"
)

// Requires a running sqld, e.g. `docker run -p 8081:8080 ghcr.io/tursodatabase/libsql-server`.
func TestSlotBacksPlanStore(t *testing.T) {
	url := os.Getenv("LIBSQL_TEST_URL")
	if url == "" {
		t.Skip("LIBSQL_TEST_URL not set")
	}
	ctx := context.Background()

	slot, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	key := "it-" + uuid.NewString()
	store := planstore.NewStore(slot, key)
	t.Cleanup(func() { _ = store.Clear(ctx) })

	require.NoError(t, store.Save(ctx, testsupport.Profile(), testsupport.Bundle()))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, testsupport.Profile(), *loaded.Profile)

	require.NoError(t, slot.Put(ctx, key, []byte("{")))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)

	_, ok, err := slot.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
}
