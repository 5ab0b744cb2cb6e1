package types

import "errors"

// Sentinel errors for the recommendation engine. Handlers map these onto
// HTTP statuses; everything else is treated as an internal error.
var (
	// ErrDataUnavailable signals the store was unreachable or a required
	// collection could not be read.
	ErrDataUnavailable = errors.New("store data unavailable")

	// ErrSchemaMismatch signals a collection is missing a field the loader
	// expects. Raised at load time, before any rows are derived.
	ErrSchemaMismatch = errors.New("store schema mismatch")

	// ErrPropertyNotFound signals a lookup by complex name had no match.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrModelUnavailable signals the scoring model artifact is missing or
	// corrupt. Inference never falls back to a zero score.
	ErrModelUnavailable = errors.New("scoring model unavailable")

	// ErrInvalidPreference signals malformed user weights or tolerances,
	// e.g. a zero price tolerance.
	ErrInvalidPreference = errors.New("invalid preference")
)
