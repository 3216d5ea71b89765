// Copyright 2025 The account Authors

package webauthn

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"testing"
)

func buildAssertion(t *testing.T, priv *ecdsa.PrivateKey, challenge []byte, flags byte) *Assertion {
	t.Helper()
	clientDataJSON := []byte(fmt.Sprintf(
		`{"type":"webauthn.get","challenge":"%s","origin":"https://example.com"}`,
		base64.RawURLEncoding.EncodeToString(challenge),
	))
	authData := make([]byte, 37)
	authData[32] = flags

	clientDataHash := sha256.Sum256(clientDataJSON)
	message := sha256.Sum256(append(append([]byte{}, authData...), clientDataHash[:]...))
	r, s, err := ecdsa.Sign(rand.Reader, priv, message[:])
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return &Assertion{
		AuthenticatorData: authData,
		ClientDataJSON:    clientDataJSON,
		ChallengeIndex:    uint64(bytes.Index(clientDataJSON, []byte(`"challenge"`))),
		TypeIndex:         uint64(bytes.Index(clientDataJSON, []byte(`"type"`))),
		R:                 r.Bytes(),
		S:                 s.Bytes(),
	}
}

func TestVerify(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	challenge := bytes.Repeat([]byte{0x11}, 32)
	a := buildAssertion(t, priv, challenge, 0x05)

	if !Verify(a, challenge, priv.PublicKey.X, priv.PublicKey.Y, false) {
		t.Errorf("valid assertion rejected")
	}
	if !Verify(a, challenge, priv.PublicKey.X, priv.PublicKey.Y, true) {
		t.Errorf("UV-flagged assertion rejected under requireUV")
	}
	if Verify(a, bytes.Repeat([]byte{0x22}, 32), priv.PublicKey.X, priv.PublicKey.Y, false) {
		t.Errorf("assertion accepted for a different challenge")
	}

	other, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if Verify(a, challenge, other.PublicKey.X, other.PublicKey.Y, false) {
		t.Errorf("assertion accepted for a different key")
	}
}

func TestVerifyFlags(t *testing.T) {
	priv, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	challenge := bytes.Repeat([]byte{0x11}, 32)

	// UP only: fine without requireUV, rejected with it.
	upOnly := buildAssertion(t, priv, challenge, 0x01)
	if !Verify(upOnly, challenge, priv.PublicKey.X, priv.PublicKey.Y, false) {
		t.Errorf("UP-only assertion rejected")
	}
	if Verify(upOnly, challenge, priv.PublicKey.X, priv.PublicKey.Y, true) {
		t.Errorf("UP-only assertion accepted under requireUV")
	}

	// Missing UP is always rejected.
	noUP := buildAssertion(t, priv, challenge, 0x04)
	if Verify(noUP, challenge, priv.PublicKey.X, priv.PublicKey.Y, false) {
		t.Errorf("assertion without user presence accepted")
	}
}

func TestVerifyMalformed(t *testing.T) {
	priv, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	challenge := bytes.Repeat([]byte{0x11}, 32)
	good := buildAssertion(t, priv, challenge, 0x05)

	if Verify(nil, challenge, priv.PublicKey.X, priv.PublicKey.Y, false) {
		t.Errorf("nil assertion accepted")
	}

	short := *good
	short.AuthenticatorData = short.AuthenticatorData[:20]
	if Verify(&short, challenge, priv.PublicKey.X, priv.PublicKey.Y, false) {
		t.Errorf("short authenticator data accepted")
	}

	badIndex := *good
	badIndex.ChallengeIndex = uint64(len(badIndex.ClientDataJSON)) + 10
	if Verify(&badIndex, challenge, priv.PublicKey.X, priv.PublicKey.Y, false) {
		t.Errorf("out-of-range challenge index accepted")
	}

	wrongType := *good
	wrongType.ClientDataJSON = bytes.Replace(wrongType.ClientDataJSON, []byte("webauthn.get"), []byte("webauthn.create"), 1)
	if Verify(&wrongType, challenge, priv.PublicKey.X, priv.PublicKey.Y, false) {
		t.Errorf("webauthn.create assertion accepted")
	}

	if Verify(good, challenge, nil, nil, false) {
		t.Errorf("nil public key accepted")
	}
}
