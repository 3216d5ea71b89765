// Copyright 2025 The account Authors
// This file is part of the account library.
//
// ERC-1271 signature validation endpoint. Deliberately narrower than the
// execution path: a merely-authorized session key must not be able to
// impersonate the account for third-party approval flows, so non-root keys
// additionally need the super-admin flag or an explicit checker approval
// for the asking contract.

package delegation

import (
	"github.com/ethereum/go-ethereum/common"
)

// MagicValue is the 4-byte ERC-1271 return sentinel.
type MagicValue [4]byte

var (
	// MagicValueAccept is the ERC-1271 isValidSignature selector 0x1626ba7e.
	MagicValueAccept = MagicValue{0x16, 0x26, 0xba, 0x7e}
	// MagicValueReject is the fixed failure sentinel.
	MagicValueReject = MagicValue{0xff, 0xff, 0xff, 0xff}
)

// IsValidSignature validates a wrapped signature for an external checker.
// It never fails hard: any malformed input or missing key yields the reject
// sentinel.
func (a *Account) IsValidSignature(caller common.Address, digest common.Hash, signature []byte) MagicValue {
	valid, keyHash, err := a.verifier.UnwrapAndValidate(digest, signature)
	if err != nil || !valid {
		return MagicValueReject
	}
	if keyHash == (common.Hash{}) {
		// Root signature from the account's own address.
		return MagicValueAccept
	}
	key, err := a.keys.Get(keyHash)
	if err != nil {
		return MagicValueReject
	}
	if key.SuperAdmin {
		return MagicValueAccept
	}
	if set, ok := a.state.checkers[keyHash]; ok && set.Contains(caller) {
		return MagicValueAccept
	}
	return MagicValueReject
}
