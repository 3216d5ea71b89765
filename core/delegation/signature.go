// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Signature envelope unwrapping and multi-scheme verification.
//
// A 64/65-byte signature is the unwrapped root form, verified as a
// secp256k1 signature against the account's own address. Anything longer is
// the wrapped envelope innerSignature || keyHash(32) || prehashFlag(1).
// Malformed cryptographic material never raises an error here: decoders
// yield sentinel values that are guaranteed to fail verification, keeping
// "is this authorized" a pure boolean question. Only a well-formed envelope
// referencing an unknown key is a hard failure.

package delegation

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/nikbhintade/account/crypto/blssig"
	"github.com/nikbhintade/account/crypto/webauthn"
)

// envelopeTailLength is keyHash(32) || prehashFlag(1).
const envelopeTailLength = 33

// SignatureVerifier resolves wrapped signatures against the key store and
// dispatches to the scheme named by the resolved key.
type SignatureVerifier struct {
	keys    *KeyStore
	account common.Address
	now     func() uint64
}

func newSignatureVerifier(keys *KeyStore, account common.Address, now func() uint64) *SignatureVerifier {
	return &SignatureVerifier{keys: keys, account: account, now: now}
}

// UnwrapAndValidate unwraps a signature envelope and verifies it against
// digest. The returned hash identifies the signing key; the zero hash means
// the implicit root key (the account's own address).
func (sv *SignatureVerifier) UnwrapAndValidate(digest common.Hash, signature []byte) (bool, common.Hash, error) {
	if len(signature) == 64 || len(signature) == 65 {
		addr, ok := recoverAddress(digest, signature)
		return ok && addr == sv.account, common.Hash{}, nil
	}
	if len(signature) < envelopeTailLength {
		// Malformed envelope: fail closed, not loudly.
		return false, common.Hash{}, nil
	}

	split := len(signature) - envelopeTailLength
	inner := signature[:split]
	keyHash := common.BytesToHash(signature[split : split+32])
	prehash := signature[len(signature)-1] != 0

	key, err := sv.keys.Get(keyHash)
	if err != nil {
		return false, keyHash, err
	}
	if key.Expiry != 0 && sv.now() > key.Expiry {
		return false, keyHash, nil
	}

	if prehash {
		digest = common.Hash(sha256.Sum256(digest[:]))
	}

	switch key.Type {
	case KeyTypeP256:
		return verifyP256(digest, inner, key.PublicKey), keyHash, nil
	case KeyTypeWebAuthnP256:
		return verifyWebAuthnP256(digest, inner, key.PublicKey), keyHash, nil
	case KeyTypeSecp256k1:
		return verifySecp256k1(digest, inner, key.PublicKey), keyHash, nil
	case KeyTypeBLS:
		return blssig.Verify(key.PublicKey, inner, digest[:]), keyHash, nil
	}
	// Closed enum; a record with an unknown type never validates.
	return false, keyHash, nil
}

// verifyP256 checks a raw r||s signature with an x||y public key on NIST
// P-256. Short or oversized inputs decode to the all-zero sentinel, which
// cannot verify.
func verifyP256(digest common.Hash, signature, publicKey []byte) bool {
	r, s := decodeScalarPair(signature)
	x, y := decodeScalarPair(publicKey)
	if !elliptic.P256().IsOnCurve(x, y) {
		return false
	}
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	return ecdsa.Verify(pub, digest[:], r, s)
}

// verifyWebAuthnP256 checks an RLP-encoded authenticator assertion with the
// digest as challenge. User verification is not required.
func verifyWebAuthnP256(digest common.Hash, signature, publicKey []byte) bool {
	var assertion webauthn.Assertion
	if err := rlp.DecodeBytes(signature, &assertion); err != nil {
		return false
	}
	x, y := decodeScalarPair(publicKey)
	return webauthn.Verify(&assertion, digest[:], x, y, false)
}

// verifySecp256k1 checks a recoverable signature against a public key that
// is just a 20-byte address.
func verifySecp256k1(digest common.Hash, signature, publicKey []byte) bool {
	if len(publicKey) != common.AddressLength {
		return false
	}
	addr, ok := recoverAddress(digest, signature)
	return ok && addr == common.BytesToAddress(publicKey)
}

// recoverAddress recovers the signer address from a 65-byte r||s||v or
// 64-byte EIP-2098 compact signature.
func recoverAddress(digest common.Hash, signature []byte) (common.Address, bool) {
	var rsv [65]byte
	switch len(signature) {
	case 65:
		copy(rsv[:], signature)
		if rsv[64] == 27 || rsv[64] == 28 {
			rsv[64] -= 27
		}
	case 64:
		copy(rsv[:64], signature)
		rsv[64] = rsv[32] >> 7
		rsv[32] &= 0x7f
	default:
		return common.Address{}, false
	}
	if rsv[64] > 1 {
		return common.Address{}, false
	}
	pub, err := crypto.SigToPub(digest[:], rsv[:])
	if err != nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(*pub), true
}

// decodeScalarPair splits a 64-byte blob into two big-endian 32-byte
// integers. Any other length yields the (0, 0) sentinel pair, which fails
// every downstream check.
func decodeScalarPair(data []byte) (*big.Int, *big.Int) {
	if len(data) != 64 {
		return new(big.Int), new(big.Int)
	}
	return new(big.Int).SetBytes(data[:32]), new(big.Int).SetBytes(data[32:])
}
