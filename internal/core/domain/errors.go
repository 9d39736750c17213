// internal/core/domain/errors.go
package domain

import "errors"

var (
	// ErrEmptyTarget indicates no target domain was provided
	ErrEmptyTarget = errors.New("target domain is empty")

	// ErrInvalidDomain indicates the target is not a usable domain
	ErrInvalidDomain = errors.New("invalid target domain")

	// ErrNoSourcesAvailable indicates no source could be built for the run
	ErrNoSourcesAvailable = errors.New("no sources available")
)
