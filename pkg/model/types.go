package model

// HashValue is a SHA-256 digest stored as a lowercase hex string.
type HashValue string

// GenesisHash is the prev_hash of the very first event ever appended
// to a journal: 64 hex zero characters. It is also the Merkle root of
// an empty day.
const GenesisHash HashValue = "0000000000000000000000000000000000000000000000000000000000000000"

// Algo identifies the digest function used by a ledger instance.
type Algo string

const (
	// AlgoSHA256 is the only supported digest algorithm in format v1.
	AlgoSHA256 Algo = "sha256"
)

// LockState represents the current state of a journal writer lock.
type LockState string

const (
	LockStateHeld    LockState = "held"
	LockStateExpired LockState = "expired"
	LockStateFree    LockState = "free"
)
