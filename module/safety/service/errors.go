package service

import "errors"

// Sample rejection reasons. All are recoverable: the sample is dropped and
// tracking continues.
var (
	ErrLowAccuracy     = errors.New("sample rejected: accuracy above limit")
	ErrOutOfOrder      = errors.New("sample rejected: timestamp not after last accepted sample")
	ErrImplausibleJump = errors.New("sample rejected: implied speed above plausibility limit")
)

// ErrStateTransition rejects a caller-requested transition that is not valid
// from the entity's current state. The entity is left unmodified.
var ErrStateTransition = errors.New("state transition not allowed")

// ErrDispatchUnavailable is returned after dispatch retries are exhausted.
// The emergency case stays open in the dispatch_failed state.
var ErrDispatchUnavailable = errors.New("dispatch service unavailable")

var ErrAlertNotFound = errors.New("alert not found")

var ErrNoOpenCase = errors.New("no open emergency case")
