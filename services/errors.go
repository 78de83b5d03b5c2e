package services

import "errors"

// Sentinel errors returned by the ledger, escrow and approval services.
// Handlers map these onto HTTP statuses; none of them leaves the database
// changed when returned.
var (
	ErrDuplicateAccount       = errors.New("account already exists for this user or account number")
	ErrNoAccount              = errors.New("no account linked to this user")
	ErrInvalidSecret          = errors.New("invalid secret")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrCourseNotFound         = errors.New("course not found")
	ErrCourseNotApproved      = errors.New("course is not approved for purchase")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrForbidden              = errors.New("caller is not a counterparty of this transaction")
)
