package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		_, ok := ConventionActor(ctx)
		assert.False(t, ok)
		assert.Empty(t, AdminUser(ctx))
		assert.Empty(t, RequestID(ctx))
		_, ok = APIConsumerFrom(ctx)
		assert.False(t, ok)
		assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
	})

	t.Run("injected values", func(t *testing.T) {
		fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		ctx := WithTime(ctx, fixed)
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithConventionActor(ctx, Actor{ConventionID: "c-1", Role: "validator"})
		ctx = WithClientMetadata(ctx, "10.0.0.1", "curl/8")

		actor, ok := ConventionActor(ctx)
		assert.True(t, ok)
		assert.Equal(t, "validator", actor.Role)
		assert.Equal(t, fixed, Now(ctx))
		assert.Equal(t, "req-1", RequestID(ctx))
		assert.Equal(t, "10.0.0.1", ClientIP(ctx))
		assert.Equal(t, "curl/8", UserAgent(ctx))

		ctx = WithAPIConsumer(ctx, APIConsumer{Name: "cci", IsAuthorized: true})
		consumer, ok := APIConsumerFrom(ctx)
		assert.True(t, ok)
		assert.Equal(t, "cci", consumer.Name)
	})
}
