package coordinator

import "errors"

// ErrNoCommonCore is returned when a coin or beacon request names an epoch
// whose certificates have not yet been decided; the caller retries after a
// backoff.
var ErrNoCommonCore = errors.New("coordinator: common core not yet decided")

// ErrInvalidIndex is returned when a request's index falls outside the
// committee's configured coin or beacon range. It is not retryable.
var ErrInvalidIndex = errors.New("coordinator: index out of range")

// ErrGarbageCollected is delivered to any request still pending for an
// epoch that GarbageCollect drops before it could be answered.
var ErrGarbageCollected = errors.New("coordinator: epoch garbage collected before request completed")
