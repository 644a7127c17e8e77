// Package chainerr defines the sentinel error kinds shared across the
// node's packages, so callers can use errors.Is regardless of which
// package produced the wrapped error.
package chainerr

import "errors"

var (
	// ErrMalformed means a value failed to parse into its expected shape
	// (wrong-length key, bad signature encoding, truncated wire message).
	ErrMalformed = errors.New("malformed")

	// ErrVerifyFailed means a value parsed fine but its cryptographic
	// proof did not check out.
	ErrVerifyFailed = errors.New("signature verification failed")

	// ErrStoreFailure means the durable chain store could not complete
	// a read or write.
	ErrStoreFailure = errors.New("chain store failure")

	// ErrChannelClosed means a component tried to send on or receive
	// from a channel whose producer has already shut down.
	ErrChannelClosed = errors.New("channel closed")

	// ErrExecution means EVM execution hit a condition that is not a
	// normal revert/out-of-gas outcome (malformed execution environment).
	ErrExecution = errors.New("execution failure")

	// ErrNetwork means an outbound network call (bridge notification,
	// p2p publish) failed. Callers generally log and continue.
	ErrNetwork = errors.New("network failure")
)
