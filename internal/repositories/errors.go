package repositories

import "errors"

var (
	// ErrQueueUnavailable is returned when an envelope could not be pushed.
	ErrQueueUnavailable = errors.New("queue_unavailable")

	// ErrStoreUnavailable is returned when the key-value store cannot be reached.
	ErrStoreUnavailable = errors.New("store_unavailable")

	// ErrRecordNotOwned is returned when a state record belongs to another
	// partner. The record stays in place.
	ErrRecordNotOwned = errors.New("record_not_owned")
)
