package registry

import "errors"

// Named, non-recoverable rejection signals. The verifier and the block-hash
// gate only return booleans; translating a false result into one of these
// happens here at the registry boundary, and no partial state is ever
// committed alongside them.
var (
	ErrUnauthorizedCaller        = errors.New("caller not authorized for this account")
	ErrInheritanceNotConfigured  = errors.New("inheritance not configured")
	ErrInactivityNotMarked       = errors.New("inactivity start not marked")
	ErrInactivityPeriodNotMet    = errors.New("inactivity period not yet elapsed")
	ErrAccountStillActive        = errors.New("account nonce changed since marking")
	ErrInheritanceAlreadyClaimed = errors.New("inheritance already claimed")
	ErrInvalidInheritor          = errors.New("invalid inheritor address")
	ErrInvalidPeriod             = errors.New("inactivity period must be positive")
	ErrInvalidStateProof         = errors.New("invalid account state proof")
	ErrInvalidBlockHash          = errors.New("block hash not confirmed by environment")
)
