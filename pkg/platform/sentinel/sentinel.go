// Package sentinel holds the infrastructure errors stores and gateways
// return. Services translate them into domain errors; input validation
// uses pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no convention, agency or establishment with that key.
	ErrNotFound = errors.New("not found")
	// ErrConflict: duplicate convention id or establishment siret.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: an outbound provider is failing and calls are suspended.
	ErrUnavailable = errors.New("unavailable")
)
