package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// record does not exist in the local store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. blank name, end before start).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidRange is returned by loop creation when the end time is before the start time.
var ErrInvalidRange = fmt.Errorf("%w: end must not be before start", ErrValidation)

// ErrInvalidName is returned by loop creation when the name is blank after trimming.
var ErrInvalidName = fmt.Errorf("%w: name is required", ErrValidation)

// ErrLoopNotFound is returned when neither the local store nor a link payload
// can produce the requested loop. It wraps ErrNotFound.
var ErrLoopNotFound = fmt.Errorf("loop %w", ErrNotFound)

// ErrMalformedLink is returned when a share link has no recognisable loop id.
// Recipients should see the same message as for ErrLoopNotFound.
var ErrMalformedLink = errors.New("malformed link")

// ErrPersistenceFailed wraps any local store failure. The in-memory state that
// triggered the write is kept; the caller may retry the write.
// Handlers should map this to HTTP 503.
var ErrPersistenceFailed = errors.New("persistence failed")
