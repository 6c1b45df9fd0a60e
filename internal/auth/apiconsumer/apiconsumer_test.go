package apiconsumer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "immersionfacile/pkg/domain-errors"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	registry, err := New([]string{"cci:key-1", "unJeuneUneSolution:key-2"})
	require.NoError(t, err)

	t.Run("known key", func(t *testing.T) {
		c, err := registry.Authenticate(ctx, "key-2")
		require.NoError(t, err)
		assert.Equal(t, "unJeuneUneSolution", c.Name)
		assert.True(t, c.IsAuthorized)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := registry.Authenticate(ctx, "key-3")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("malformed entries", func(t *testing.T) {
		for _, entry := range []string{"no-separator", ":key", "name:"} {
			_, err := New([]string{entry})
			assert.Error(t, err, entry)
		}
	})
}
