package raptor

import "github.com/pkg/errors"

// InvalidStopError is returned when a query names a source or target stop
// id that does not exist in the current snapshot.
type InvalidStopError struct {
	StopID string
}

func (e *InvalidStopError) Error() string {
	return "invalid stop id: " + e.StopID
}

// LoadError wraps a GTFS parse or IO failure encountered while building a
// new snapshot. The lifecycle manager logs it and retains the current
// snapshot rather than propagating it to in-flight queries.
type LoadError struct {
	cause error
}

func (e *LoadError) Error() string {
	return "loading GTFS feed: " + e.cause.Error()
}

func (e *LoadError) Unwrap() error {
	return e.cause
}

func wrapLoadError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &LoadError{cause: errors.Wrap(err, msg)}
}

// CorruptIndexError indicates an internal invariant violation detected at
// query time — it should never happen against a snapshot built by
// BuildSnapshot, and signals a bug rather than bad input.
type CorruptIndexError struct {
	Reason string
}

func (e *CorruptIndexError) Error() string {
	return "corrupt schedule index: " + e.Reason
}
