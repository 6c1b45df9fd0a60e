// Package apiconsumer resolves partner API keys.
package apiconsumer

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"

	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/requestcontext"
)

type consumer struct {
	name    string
	keyHash [sha256.Size]byte
}

// Registry holds the configured partners and their keys.
type Registry struct {
	consumers []consumer
}

// New parses "name:key" entries. Every configured consumer is authorized.
func New(entries []string) (*Registry, error) {
	r := &Registry{}
	for _, entry := range entries {
		name, key, ok := strings.Cut(entry, ":")
		name, key = strings.TrimSpace(name), strings.TrimSpace(key)
		if !ok || name == "" || key == "" {
			return nil, fmt.Errorf("api consumer %q: expected name:key", entry)
		}
		r.consumers = append(r.consumers, consumer{name: name, keyHash: sha256.Sum256([]byte(key))})
	}
	return r, nil
}

// Authenticate returns the consumer owning key.
func (r *Registry) Authenticate(_ context.Context, key string) (requestcontext.APIConsumer, error) {
	sum := sha256.Sum256([]byte(key))
	for _, c := range r.consumers {
		if subtle.ConstantTimeCompare(sum[:], c.keyHash[:]) == 1 {
			return requestcontext.APIConsumer{Name: c.name, IsAuthorized: true}, nil
		}
	}
	return requestcontext.APIConsumer{}, dErrors.New(dErrors.CodeUnauthorized, "unknown api key")
}
