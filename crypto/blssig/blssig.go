// Copyright 2025 The account Authors
// This file is part of the account library.
//
// BLS signatures over BN254 for delegation key verification.
// Public keys live in G1, signatures in G2, messages are hashed to G2.

package blssig

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	// PublicKeyLength is the uncompressed G1 encoding size.
	PublicKeyLength = 64
	// SignatureLength is the uncompressed G2 encoding size.
	SignatureLength = 128
)

// hashToG2Domain is the domain separation tag for hashing digests onto G2.
var hashToG2Domain = []byte("ACCOUNT_DELEGATION_BLS_BN254G2_XMD:SHA-256_SSWU_RO_")

var (
	// negG1Gen is the negated G1 generator, fixed at init so every
	// verification reuses the same pairing input.
	negG1Gen bn254.G1Affine

	// ErrInvalidPrivateKey is returned when a scalar does not reduce to a
	// usable secret key.
	ErrInvalidPrivateKey = errors.New("invalid bls private key")
)

func init() {
	_, _, g1Gen, _ := bn254.Generators()
	negG1Gen.Neg(&g1Gen)
}

// PrivateKey is a BLS secret scalar.
type PrivateKey struct {
	scalar fr.Element
}

// GenerateKey creates a new random BLS key pair.
func GenerateKey() (*PrivateKey, error) {
	var sk PrivateKey
	if _, err := sk.scalar.SetRandom(); err != nil {
		return nil, err
	}
	if sk.scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return &sk, nil
}

// PrivateKeyFromBytes reconstructs a private key from a 32-byte scalar.
func PrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if len(data) != 32 {
		return nil, ErrInvalidPrivateKey
	}
	var sk PrivateKey
	sk.scalar.SetBytes(data)
	if sk.scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return &sk, nil
}

// Bytes returns the 32-byte secret scalar.
func (sk *PrivateKey) Bytes() []byte {
	b := sk.scalar.Bytes()
	return b[:]
}

// PublicKey returns the uncompressed G1 public key sk*G1.
func (sk *PrivateKey) PublicKey() []byte {
	_, _, g1Gen, _ := bn254.Generators()
	var pub bn254.G1Affine
	pub.ScalarMultiplication(&g1Gen, sk.scalar.BigInt(new(big.Int)))
	return pub.Marshal()
}

// Sign produces the uncompressed G2 signature sk*HashToG2(digest).
func (sk *PrivateKey) Sign(digest []byte) ([]byte, error) {
	hm, err := bn254.HashToG2(digest, hashToG2Domain)
	if err != nil {
		return nil, err
	}
	var sig bn254.G2Affine
	sig.ScalarMultiplication(&hm, sk.scalar.BigInt(new(big.Int)))
	return sig.Marshal(), nil
}

// Verify checks the pairing equation e(-G1, sig) * e(pub, H(digest)) == 1.
// Malformed or infinity point encodings make it return false; it never
// reports an error to the caller.
func Verify(publicKey, signature, digest []byte) bool {
	pub, ok := decodeG1(publicKey)
	if !ok {
		return false
	}
	sig, ok := decodeG2(signature)
	if !ok {
		return false
	}
	hm, err := bn254.HashToG2(digest, hashToG2Domain)
	if err != nil {
		return false
	}
	valid, err := bn254.PairingCheck(
		[]bn254.G1Affine{negG1Gen, pub},
		[]bn254.G2Affine{sig, hm},
	)
	if err != nil {
		return false
	}
	return valid
}

// decodeG1 parses an uncompressed G1 point. The zero-value sentinel (the
// point at infinity) is rejected rather than returned: an infinity public
// key would make the pairing product trivially satisfiable.
func decodeG1(data []byte) (bn254.G1Affine, bool) {
	var p bn254.G1Affine
	if len(data) != PublicKeyLength {
		return p, false
	}
	if err := p.Unmarshal(data); err != nil {
		return bn254.G1Affine{}, false
	}
	if p.IsInfinity() {
		return bn254.G1Affine{}, false
	}
	return p, true
}

func decodeG2(data []byte) (bn254.G2Affine, bool) {
	var p bn254.G2Affine
	if len(data) != SignatureLength {
		return p, false
	}
	if err := p.Unmarshal(data); err != nil {
		return bn254.G2Affine{}, false
	}
	if p.IsInfinity() {
		return bn254.G2Affine{}, false
	}
	return p, true
}
