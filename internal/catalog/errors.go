package catalog

import "errors"

var (
	// ErrMissingCompanyID is returned by LoadStores for an empty company id.
	ErrMissingCompanyID = errors.New("company id is not specified")
	// ErrSuperseded is returned by a load whose result was discarded because
	// a newer load started while it was in flight.
	ErrSuperseded = errors.New("load superseded by a newer request")
	// ErrCorruptPreferences marks persisted preferences that could not be
	// decoded. The current preferences are kept.
	ErrCorruptPreferences = errors.New("persisted preferences are malformed")
	// ErrClosed is returned by operations on a closed container.
	ErrClosed = errors.New("catalog is closed")
)
