package service

import "errors"

var (
	// ErrNotReady is returned by every store operation before Init succeeds.
	ErrNotReady = errors.New("ledger not initialized")
	// ErrNotFound is wrapped by lookups of a missing id or barcode.
	ErrNotFound = errors.New("not found")
	// ErrAdapter is wrapped around failures reported by external adapters.
	ErrAdapter = errors.New("adapter failed")
)
