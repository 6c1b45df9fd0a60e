// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values; services read them without importing net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//	actor, ok := requestcontext.ConventionActor(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	actorKey       struct{}
	adminKey       struct{}
	consumerKey    struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyActor       = actorKey{}
	ContextKeyAdmin       = adminKey{}
	ContextKeyAPIConsumer = consumerKey{}
)

// -----------------------------------------------------------------------------
// Magic link actor
// -----------------------------------------------------------------------------

// Actor is the holder of a verified convention magic link.
type Actor struct {
	ConventionID string
	Role         string
	EmailHash    string
}

// ConventionActor returns the actor authenticated by a magic link, if any.
func ConventionActor(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ContextKeyActor).(Actor)
	return actor, ok
}

// WithConventionActor injects a magic link actor into the context.
func WithConventionActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// AdminUser returns the authenticated back-office user name, or "".
func AdminUser(ctx context.Context) string {
	if user, ok := ctx.Value(ContextKeyAdmin).(string); ok {
		return user
	}
	return ""
}

// WithAdminUser injects the authenticated back-office user name.
func WithAdminUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, ContextKeyAdmin, user)
}

// APIConsumer is a partner calling the /v1 API with a key.
type APIConsumer struct {
	Name         string
	IsAuthorized bool
}

// APIConsumerFrom returns the partner identified by an API key, if any.
func APIConsumerFrom(ctx context.Context) (APIConsumer, bool) {
	c, ok := ctx.Value(ContextKeyAPIConsumer).(APIConsumer)
	return c, ok
}

// WithAPIConsumer injects an identified API consumer.
func WithAPIConsumer(ctx context.Context, c APIConsumer) context.Context {
	return context.WithValue(ctx, ContextKeyAPIConsumer, c)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (crawler, cron jobs, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Workers use it to keep one timestamp across a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
