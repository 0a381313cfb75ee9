package apperrors

import "errors"

// Sentinel errors for all expected, caller-recoverable failures in the core.
// Callers match with errors.Is; anything else is treated as a storage fault.
var (
	// ErrNotFound indicates an experiment, round, pool, player or currency id
	// could not be resolved.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAmount indicates a non-positive swap or liquidity amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientLiquidity indicates a swap that would zero or invert a
	// pool reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrInsufficientBalance indicates the player lacks funds for the
	// in-currency of a swap.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSlippageExceeded indicates the computed output fell below the
	// caller's min_amount_out.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrInvalidTransition indicates a lifecycle guard rejected the
	// operation (double start, end before start, re-initialization).
	ErrInvalidTransition = errors.New("invalid state transition")
)
