package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrBatchTooLarge is returned when a registration batch exceeds MaxBatchSize
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrNoContracts is returned when a registration batch is empty
	ErrNoContracts = errors.New("no contracts in request")

	// ErrIndexerNotRunning is returned when an operation needs a live indexer process
	ErrIndexerNotRunning = errors.New("indexer is not running")
)

// ConfigError indicates the persisted manifest or the environment is
// unusable. Fatal at startup: the service refuses to start rather than
// run against configuration it cannot trust.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError describes why a single registration item was rejected.
// Reported per item; never aborts the batch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// StorageError wraps a mapping-store or manifest I/O failure. Aborts the
// current batch's commit but never crashes the service.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ProcessError reports an indexer lifecycle failure. Logged and absorbed
// by the supervisor; registration callers never see it as a failure of
// their own request.
type ProcessError struct {
	Op  string
	Err error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("indexer process %s failed: %v", e.Op, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }
