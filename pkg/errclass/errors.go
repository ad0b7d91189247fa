// Package errclass defines the stable, machine-readable error classes
// surfaced by chainlog. Integrity failures are terminal and are never
// silently recovered; missing-artifact errors are distinguishable from
// them so operators know whether to re-snapshot or investigate
// tampering.
package errclass

import (
	"errors"
	"fmt"
)

// LedgerError is a stable, machine-readable error class.
type LedgerError struct {
	Code    string
	Message string
}

func (e *LedgerError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new LedgerError with the same Code but a specific message.
func (e *LedgerError) WithMessage(msg string) *LedgerError {
	return &LedgerError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new LedgerError with a formatted message.
func (e *LedgerError) WithMessagef(format string, args ...any) *LedgerError {
	return &LedgerError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// All stable error classes for format v1.
var (
	// Append-time failures.
	ErrEncoding = &LedgerError{Code: "E_ENCODING"}

	// Integrity failures. Terminal: downstream trust decisions must halt.
	ErrContentHashMismatch = &LedgerError{Code: "E_CONTENT_HASH_MISMATCH"}
	ErrChainHashMismatch   = &LedgerError{Code: "E_CHAIN_HASH_MISMATCH"}
	ErrMerkleRootMismatch  = &LedgerError{Code: "E_MERKLE_ROOT_MISMATCH"}
	ErrLedgerCorrupt       = &LedgerError{Code: "E_LEDGER_CORRUPT"}

	// Missing artifacts.
	ErrManifestNotFound = &LedgerError{Code: "E_MANIFEST_NOT_FOUND"}
	ErrLogNotFound      = &LedgerError{Code: "E_LOG_NOT_FOUND"}

	// Writer lock failures.
	ErrLockConflict    = &LedgerError{Code: "E_LOCK_CONFLICT"}
	ErrLockExpired     = &LedgerError{Code: "E_LOCK_EXPIRED"}
	ErrLockNotHeld     = &LedgerError{Code: "E_LOCK_NOT_HELD"}
	ErrFencingMismatch = &LedgerError{Code: "E_FENCING_MISMATCH"}

	// Repository and naming failures.
	ErrNameInvalid       = &LedgerError{Code: "E_NAME_INVALID"}
	ErrJournalNotFound   = &LedgerError{Code: "E_JOURNAL_NOT_FOUND"}
	ErrFormatUnsupported = &LedgerError{Code: "E_FORMAT_UNSUPPORTED"}
	ErrAlgoUnsupported   = &LedgerError{Code: "E_ALGO_UNSUPPORTED"}
)

// IsIntegrityFailure reports whether err is one of the tamper/corruption
// classes, as opposed to a missing artifact or transient failure.
func IsIntegrityFailure(err error) bool {
	for _, class := range []*LedgerError{
		ErrContentHashMismatch,
		ErrChainHashMismatch,
		ErrMerkleRootMismatch,
		ErrLedgerCorrupt,
	} {
		if errors.Is(err, class) {
			return true
		}
	}
	return false
}

// IsMissingArtifact reports whether err indicates an absent log or
// manifest rather than tampering.
func IsMissingArtifact(err error) bool {
	return errors.Is(err, ErrLogNotFound) || errors.Is(err, ErrManifestNotFound)
}
