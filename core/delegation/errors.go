// Copyright 2025 The account Authors
// This file is part of the account library.

package delegation

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrKeyDoesNotExist is returned when a key hash resolves to no record.
	ErrKeyDoesNotExist = errors.New("key does not exist")
	// ErrInvalidNonce is returned when a nonce does not match the exact
	// next counter value of its sequence.
	ErrInvalidNonce = errors.New("invalid nonce")
	// ErrOpDataTooShort is returned when operation data cannot hold a nonce.
	ErrOpDataTooShort = errors.New("op data too short")
	// ErrNewSequenceMustBeLarger is returned when a nonce invalidation does
	// not strictly advance its sequence counter.
	ErrNewSequenceMustBeLarger = errors.New("new sequence must be larger")
	// ErrUnauthorized is shared with the guarded executor: the caller,
	// signature, or delegate gate check failed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSetCapacityReached is returned when an insertion would push an
	// enumerable set past its fixed cap.
	ErrSetCapacityReached = errors.New("set capacity reached")
	// ErrUnsupportedExecutionMode is returned for a mode neither the core
	// nor the guarded executor understands.
	ErrUnsupportedExecutionMode = errors.New("unsupported execution mode")
	// ErrKeyExpiryOverflow is returned when a key expiry does not fit the
	// packed 5-byte field.
	ErrKeyExpiryOverflow = errors.New("key expiry exceeds 5-byte range")
	// ErrNoImplementation is returned when a delegate target passed the
	// approval gate but no implementation is bound for it.
	ErrNoImplementation = errors.New("no implementation bound for target")
)

// DelegateRevertError carries the exact failure data produced by a delegate
// implementation, forwarded verbatim to the submitter.
type DelegateRevertError struct {
	Target common.Address
	Data   []byte
	Err    error
}

func (e *DelegateRevertError) Error() string {
	return fmt.Sprintf("delegate call to %s reverted: %v", e.Target, e.Err)
}

func (e *DelegateRevertError) Unwrap() error { return e.Err }
