package domain

import "errors"

// Store-level sentinels shared by every persistence backend.
var (
	ErrNotFound         = errors.New("record not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)
