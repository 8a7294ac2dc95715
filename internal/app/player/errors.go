package player

import "github.com/cockroachdb/errors"

// Error kinds surfaced by the queue engine, registry and controller. Causes
// are attached with errors.Mark so errors.Is classification survives
// wrapping. Nothing in this package retries or swallows a failure; the
// controller alone turns errors into spoken text.
var (
	ErrNotConfigured       = errors.New("no resolver address configured")
	ErrResolverUnavailable = errors.New("resolver unavailable")
	ErrNotFound            = errors.New("not found")
	ErrBadIdentifier       = errors.New("malformed encoded identifier")
	ErrQueueEmpty          = errors.New("queue is empty")
)
