package ports

import "context"

// AccessUnitSource delivers complete Annex-B access units from a live feed.
type AccessUnitSource interface {
	// Run calls handle for every access unit until ctx is cancelled, the
	// feed ends or handle returns an error. Cancellation is not an error.
	Run(ctx context.Context, handle func(au []byte) error) error
}
