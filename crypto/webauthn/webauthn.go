// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Minimal WebAuthn authenticator-assertion verification for passkey-backed
// delegation keys. Verifies the challenge binding in clientDataJSON, the
// authenticator flags, and the P-256 signature over
// authenticatorData || sha256(clientDataJSON).

package webauthn

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"math/big"
)

const (
	// minAuthDataLength covers rpIdHash(32) || flags(1) || signCount(4).
	minAuthDataLength = 37

	// flagUserPresent is the UP bit of the authenticator flags byte.
	flagUserPresent = 0x01
	// flagUserVerified is the UV bit of the authenticator flags byte.
	flagUserVerified = 0x04
)

// Assertion is a decoded authenticator assertion. ChallengeIndex and
// TypeIndex locate the respective fields inside ClientDataJSON so the
// verifier can check them without a full JSON parse.
type Assertion struct {
	AuthenticatorData []byte
	ClientDataJSON    []byte
	ChallengeIndex    uint64
	TypeIndex         uint64
	R                 []byte
	S                 []byte
}

// Verify checks an assertion against a challenge and a P-256 public key.
// User verification is only demanded when requireUV is set; user presence
// is always demanded. Any malformed field makes it return false.
func Verify(a *Assertion, challenge []byte, x, y *big.Int, requireUV bool) bool {
	if a == nil || len(a.AuthenticatorData) < minAuthDataLength {
		return false
	}
	flags := a.AuthenticatorData[32]
	if flags&flagUserPresent == 0 {
		return false
	}
	if requireUV && flags&flagUserVerified == 0 {
		return false
	}
	if !checkClientData(a, challenge) {
		return false
	}

	clientDataHash := sha256.Sum256(a.ClientDataJSON)
	message := sha256.Sum256(append(a.AuthenticatorData[:len(a.AuthenticatorData):len(a.AuthenticatorData)], clientDataHash[:]...))

	if x == nil || y == nil || !elliptic.P256().IsOnCurve(x, y) {
		return false
	}
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	r := new(big.Int).SetBytes(a.R)
	s := new(big.Int).SetBytes(a.S)
	return ecdsa.Verify(pub, message[:], r, s)
}

// checkClientData verifies the type and challenge fields at their claimed
// offsets inside ClientDataJSON.
func checkClientData(a *Assertion, challenge []byte) bool {
	typeField := []byte(`"type":"webauthn.get"`)
	if !fieldAt(a.ClientDataJSON, a.TypeIndex, typeField) {
		return false
	}
	encoded := base64.RawURLEncoding.EncodeToString(challenge)
	challengeField := []byte(`"challenge":"` + encoded + `"`)
	return fieldAt(a.ClientDataJSON, a.ChallengeIndex, challengeField)
}

func fieldAt(data []byte, index uint64, field []byte) bool {
	end := index + uint64(len(field))
	if index > uint64(len(data)) || end > uint64(len(data)) {
		return false
	}
	return bytes.Equal(data[index:end], field)
}
