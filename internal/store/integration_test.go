//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: go test -tags integration ./internal/store/
// against TEST_BOLT_URL (for example bolt://localhost:7687) and/or
// TEST_REDIS_URL (for example redis://localhost:6379/15).
func TestBackends(t *testing.T) {
	_ = godotenv.Load("../../.env")

	urls := map[string]string{
		"graph": os.Getenv("TEST_BOLT_URL"),
		"redis": os.Getenv("TEST_REDIS_URL"),
	}
	for name, url := range urls {
		t.Run(name, func(t *testing.T) {
			if url == "" {
				t.Skipf("Skipping %s backend: URL not set", name)
			}
			ctx := context.Background()
			s, err := Open(ctx, url, testr.New(t))
			require.NoError(t, err)
			defer s.Close(ctx)

			key := "integration_" + name
			require.NoError(t, s.Save(ctx, key, asha))

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, asha, *got)

			require.NoError(t, s.Delete(ctx, key))
			_, err = s.Get(ctx, key)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
