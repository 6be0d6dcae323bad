package billsync

import "errors"

// Errors reported by the sync engine and its collaborators. They are wrapped
// with context by the layer that detects them, test them with errors.Is.
var (
	// ErrTokenNotFound reports a capture holding no bearer token.
	ErrTokenNotFound = errors.New("bearer token not found")
	// ErrCaptureParse reports a capture that is not valid structured data.
	ErrCaptureParse = errors.New("invalid capture")
	// ErrTransport reports a network failure or a non-success status from the usage API.
	ErrTransport = errors.New("usage api transport error")
	// ErrNoData reports a successful usage API call without any usable usage record.
	ErrNoData = errors.New("no usage data")
	// ErrTemplateMissing reports an account without any ledger row to clone.
	ErrTemplateMissing = errors.New("no template row")
	// ErrDuplicate reports a reading already recorded in the ledger. It is informational.
	ErrDuplicate = errors.New("reading already recorded")
	// ErrPersist reports a failure of the ledger store to append or save rows.
	ErrPersist = errors.New("cannot persist ledger")
)
