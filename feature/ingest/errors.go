package ingest

import "errors"

var (
	// ErrStoreNotFound is returned when no store matches the given
	// identifier or shop domain.
	ErrStoreNotFound = errors.New("store not found")

	// ErrAccessDenied is returned when the requester does not own the
	// store a sync was requested for.
	ErrAccessDenied = errors.New("access denied for store")

	// ErrSyncInProgress is returned when a sync is requested for a store
	// that already has one running. Overlapping runs would be idempotent
	// but wasteful, so they are rejected outright.
	ErrSyncInProgress = errors.New("a sync is already running for this store")

	// ErrMalformedPayload is returned when a webhook body cannot be
	// decoded as the expected resource.
	ErrMalformedPayload = errors.New("malformed webhook payload")
)
