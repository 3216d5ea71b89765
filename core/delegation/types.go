// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Core types for the delegation authorization layer: delegation keys,
// execution calls, and the execution mode encoding.

package delegation

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// KeyType identifies the signature scheme a delegation key verifies under.
// The enum is closed: the verifier dispatches exhaustively over these four
// values and nothing else can resolve to a valid signature.
type KeyType uint8

const (
	// KeyTypeP256 is a raw NIST P-256 ECDSA key.
	KeyTypeP256 KeyType = iota
	// KeyTypeWebAuthnP256 is a P-256 key exercised through WebAuthn
	// authenticator assertions (passkeys).
	KeyTypeWebAuthnP256
	// KeyTypeSecp256k1 is a secp256k1 key identified by its Ethereum address.
	KeyTypeSecp256k1
	// KeyTypeBLS is a BLS key on BN254 (public key in G1, signature in G2).
	KeyTypeBLS
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeP256:
		return "p256"
	case KeyTypeWebAuthnP256:
		return "webauthnp256"
	case KeyTypeSecp256k1:
		return "secp256k1"
	case KeyTypeBLS:
		return "bls"
	}
	return "unknown"
}

// Key is a signing key authorized on the account.
type Key struct {
	// Expiry is a unix timestamp after which the key stops validating.
	// Zero means the key never expires. Stored in 5 bytes.
	Expiry uint64
	// Type selects the verification scheme for PublicKey.
	Type KeyType
	// SuperAdmin keys may be used for ERC-1271 validation without a
	// checker approval and satisfy the executor's super-admin hook.
	SuperAdmin bool
	// PublicKey is the scheme-dependent public key encoding.
	PublicKey []byte
}

// Hash returns the key's content-derived identifier:
// keccak256(keyType || keccak256(publicKey)) with the type left-padded to a
// 32-byte word. Expiry and the super-admin flag are deliberately excluded,
// so re-authorizing the same (type, publicKey) pair addresses the same record.
func (k *Key) Hash() common.Hash {
	var word [32]byte
	word[31] = byte(k.Type)
	inner := crypto.Keccak256(k.PublicKey)
	return common.BytesToHash(crypto.Keccak256(word[:], inner))
}

// Call is one element of an execution batch handed to the guarded executor.
type Call struct {
	To    common.Address
	Value *uint256.Int
	Data  []byte
}

// executionPayload is the RLP wire form of a batch execution request:
// the calls plus the auxiliary opData (nonce || wrapped signature).
type executionPayload struct {
	Calls  []Call
	OpData []byte
}

// Mode is the 32-byte execution mode selector. The leading tag byte picks
// the call type; everything past it is interpreted by the guarded executor.
type Mode [32]byte

const (
	// ModeTagBatch marks a standard batch execution, dispatched to the
	// guarded executor after authorization.
	ModeTagBatch = 0x01
	// ModeTagDelegate marks the privileged delegate-call path into an
	// approved implementation.
	ModeTagDelegate = 0xff
)

// Tag returns the leading call-type byte of the mode.
func (m Mode) Tag() byte { return m[0] }

// maxSetEntries caps every enumerable set kept by the account (keys,
// checkers, implementations, implementation callers) so that a full
// enumeration is always bounded.
const maxSetEntries = 512

// multichainNoncePrefix is the reserved top-16-bit sequence-key prefix that
// opts a nonce into the chain-agnostic digest domain.
const multichainNoncePrefix = 0xc1d0

// DefaultEntryPointAddress is the trusted relay allowed to submit
// pre-packed (nonce || signature) operation data on behalf of signers.
var DefaultEntryPointAddress = common.HexToAddress("0x0000000000000000000000000000000000E17210")

// GuardedExecutor is the external guarded-execution collaborator. The core
// decides whether a batch is authorized and hands it off; spend limits and
// per-call policy live behind this interface.
type GuardedExecutor interface {
	// Execute runs an authorized batch. keyHash identifies the key that
	// authorized it; the zero hash means the account itself (root) did.
	Execute(mode Mode, calls []Call, keyHash common.Hash) error
	// SupportsExecutionMode reports whether the executor understands mode.
	SupportsExecutionMode(mode Mode) bool
}

// DelegateImplementation is host-registered code bound to an approved
// implementation address. Run executes with the full authority of the
// account: it receives the account handle itself and may re-enter it.
type DelegateImplementation interface {
	Run(acct *Account, input []byte) ([]byte, error)
}
