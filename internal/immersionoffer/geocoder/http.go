// Package geocoder turns postal addresses into positions.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"immersionfacile/pkg/geo"
	"immersionfacile/pkg/platform/circuit"
	"immersionfacile/pkg/platform/sentinel"
)

// HTTP queries a BAN compatible address API.
type HTTP struct {
	baseURL string
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*HTTP)

func WithHTTPClient(client *http.Client) Option {
	return func(g *HTTP) {
		g.client = client
	}
}

func WithCircuitBreaker(b *circuit.Breaker) Option {
	return func(g *HTTP) {
		g.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *HTTP) {
		g.logger = logger
	}
}

func NewHTTP(baseURL string, opts ...Option) *HTTP {
	g := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuit.New("address-api"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type featureCollection struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode returns the best match for address, or sentinel.ErrNotFound.
func (g *HTTP) Geocode(ctx context.Context, address string) (geo.Position, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return geo.Position{}, sentinel.ErrNotFound
	}
	if !g.breaker.Allow() {
		return geo.Position{}, fmt.Errorf("geocode: address api circuit open: %w", sentinel.ErrUnavailable)
	}

	pos, status, err := g.search(ctx, address)
	failed := err != nil && !errors.Is(err, sentinel.ErrNotFound)
	if failed || status >= http.StatusInternalServerError {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "address api circuit opened", "breaker", g.breaker.Name())
		}
	} else if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "address api circuit closed", "breaker", g.breaker.Name())
	}
	if err != nil {
		return geo.Position{}, fmt.Errorf("geocode: %w", err)
	}
	if status >= http.StatusMultipleChoices {
		return geo.Position{}, fmt.Errorf("address api returned %d", status)
	}
	return pos, nil
}

func (g *HTTP) search(ctx context.Context, address string) (geo.Position, int, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search/?"+q.Encode(), nil)
	if err != nil {
		return geo.Position{}, 0, fmt.Errorf("build address request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return geo.Position{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		g.logger.ErrorContext(ctx, "address api rejected query",
			"status", resp.StatusCode,
			"body", string(detail),
		)
		return geo.Position{}, resp.StatusCode, nil
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return geo.Position{}, resp.StatusCode, fmt.Errorf("decode address response: %w", err)
	}
	if len(fc.Features) == 0 || len(fc.Features[0].Geometry.Coordinates) < 2 {
		return geo.Position{}, resp.StatusCode, sentinel.ErrNotFound
	}
	// GeoJSON orders coordinates longitude first.
	c := fc.Features[0].Geometry.Coordinates
	pos := geo.Position{Lat: c[1], Lon: c[0]}
	if !pos.Valid() {
		return geo.Position{}, resp.StatusCode, fmt.Errorf("address api returned out of bounds position %v", c)
	}
	return pos, resp.StatusCode, nil
}
