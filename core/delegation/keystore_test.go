// Copyright 2025 The account Authors

package delegation

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

type execRecord struct {
	mode    Mode
	calls   []Call
	keyHash common.Hash
}

// mockExecutor implements GuardedExecutor for testing.
type mockExecutor struct {
	executed []execRecord
	fail     error
}

func (m *mockExecutor) Execute(mode Mode, calls []Call, keyHash common.Hash) error {
	if m.fail != nil {
		return m.fail
	}
	m.executed = append(m.executed, execRecord{mode: mode, calls: calls, keyHash: keyHash})
	return nil
}

func (m *mockExecutor) SupportsExecutionMode(mode Mode) bool {
	return mode.Tag() == ModeTagBatch
}

var testAccountAddress = common.HexToAddress("0x1111111111111111111111111111111111111111")

func newTestAccount(t *testing.T) (*Account, *mockExecutor) {
	t.Helper()
	exec := &mockExecutor{}
	acct, err := New(Config{
		Address:  testAccountAddress,
		ChainID:  1337,
		Executor: exec,
		Now:      func() uint64 { return 1_700_000_000 },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return acct, exec
}

func TestAuthorizeAndGet(t *testing.T) {
	acct, _ := newTestAccount(t)

	key := &Key{Type: KeyTypeSecp256k1, PublicKey: common.HexToAddress("0xabcd").Bytes(), Expiry: 0}
	keyHash, err := acct.Authorize(testAccountAddress, key)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if keyHash != key.Hash() {
		t.Errorf("returned hash does not match key.Hash()")
	}

	got, err := acct.GetKey(keyHash)
	if err != nil {
		t.Fatalf("GetKey failed: %v", err)
	}
	if got.Type != key.Type || got.Expiry != key.Expiry || got.SuperAdmin != key.SuperAdmin {
		t.Errorf("decoded key mismatch: %+v", got)
	}
	if !bytes.Equal(got.PublicKey, key.PublicKey) {
		t.Errorf("public key mismatch")
	}
}

func TestAuthorizeNotSelf(t *testing.T) {
	acct, _ := newTestAccount(t)
	outsider := common.HexToAddress("0x9999")
	_, err := acct.Authorize(outsider, &Key{Type: KeyTypeP256, PublicKey: make([]byte, 64)})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestReauthorizeUpdatesInPlace(t *testing.T) {
	acct, _ := newTestAccount(t)

	key := &Key{Type: KeyTypeP256, PublicKey: make([]byte, 64), Expiry: 100}
	first, err := acct.Authorize(testAccountAddress, key)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	// Same (type, publicKey), new expiry and admin flag.
	updated := &Key{Type: KeyTypeP256, PublicKey: make([]byte, 64), Expiry: 9999, SuperAdmin: true}
	second, err := acct.Authorize(testAccountAddress, updated)
	if err != nil {
		t.Fatalf("re-Authorize failed: %v", err)
	}
	if first != second {
		t.Errorf("hash changed on re-authorize: %s vs %s", first, second)
	}
	if acct.KeyCount() != 1 {
		t.Errorf("expected 1 key, got %d", acct.KeyCount())
	}

	got, err := acct.GetKey(first)
	if err != nil {
		t.Fatalf("GetKey failed: %v", err)
	}
	if got.Expiry != 9999 || !got.SuperAdmin {
		t.Errorf("record not updated in place: %+v", got)
	}
}

func TestRevoke(t *testing.T) {
	acct, _ := newTestAccount(t)

	keyHash, err := acct.Authorize(testAccountAddress, &Key{Type: KeyTypeBLS, PublicKey: make([]byte, 64)})
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	checker := common.HexToAddress("0x4444")
	if err := acct.SetSignatureCheckerApproval(testAccountAddress, keyHash, checker, true); err != nil {
		t.Fatalf("SetSignatureCheckerApproval failed: %v", err)
	}

	if err := acct.Revoke(testAccountAddress, keyHash); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := acct.GetKey(keyHash); !errors.Is(err, ErrKeyDoesNotExist) {
		t.Errorf("expected ErrKeyDoesNotExist after revoke, got %v", err)
	}
	if got := acct.ApprovedSignatureCheckers(keyHash); len(got) != 0 {
		t.Errorf("checker approvals not cleared on revoke: %v", got)
	}
	if err := acct.Revoke(testAccountAddress, keyHash); !errors.Is(err, ErrKeyDoesNotExist) {
		t.Errorf("expected ErrKeyDoesNotExist on double revoke, got %v", err)
	}
}

func TestKeyEnumerationOrder(t *testing.T) {
	acct, _ := newTestAccount(t)

	pubkeys := [][]byte{{0x01}, {0x02}, {0x03}}
	for _, pk := range pubkeys {
		if _, err := acct.Authorize(testAccountAddress, &Key{Type: KeyTypeSecp256k1, PublicKey: pk}); err != nil {
			t.Fatalf("Authorize failed: %v", err)
		}
	}
	if acct.KeyCount() != len(pubkeys) {
		t.Fatalf("expected %d keys, got %d", len(pubkeys), acct.KeyCount())
	}
	for i, pk := range pubkeys {
		key, err := acct.KeyAt(i)
		if err != nil {
			t.Fatalf("KeyAt(%d) failed: %v", i, err)
		}
		if !bytes.Equal(key.PublicKey, pk) {
			t.Errorf("enumeration order broken at %d", i)
		}
	}
	if _, err := acct.KeyAt(len(pubkeys)); err == nil {
		t.Errorf("expected error for out-of-range index")
	}
}

func TestKeyRecordRoundTrip(t *testing.T) {
	keys := []*Key{
		{Type: KeyTypeP256, PublicKey: bytes.Repeat([]byte{0xaa}, 64), Expiry: 0},
		{Type: KeyTypeWebAuthnP256, PublicKey: bytes.Repeat([]byte{0xbb}, 64), Expiry: 1<<40 - 1, SuperAdmin: true},
		{Type: KeyTypeSecp256k1, PublicKey: bytes.Repeat([]byte{0xcc}, 20), Expiry: 12345},
		{Type: KeyTypeBLS, PublicKey: bytes.Repeat([]byte{0xdd}, 64), SuperAdmin: true},
	}
	for _, key := range keys {
		record, err := encodeKeyRecord(key)
		if err != nil {
			t.Fatalf("encode failed for %s: %v", key.Type, err)
		}
		got, err := decodeKeyRecord(record)
		if err != nil {
			t.Fatalf("decode failed for %s: %v", key.Type, err)
		}
		if got.Type != key.Type || got.Expiry != key.Expiry || got.SuperAdmin != key.SuperAdmin || !bytes.Equal(got.PublicKey, key.PublicKey) {
			t.Errorf("round trip mismatch for %s: %+v", key.Type, got)
		}
	}
}

func TestKeyExpiryOverflow(t *testing.T) {
	acct, _ := newTestAccount(t)
	_, err := acct.Authorize(testAccountAddress, &Key{Type: KeyTypeP256, PublicKey: make([]byte, 64), Expiry: 1 << 40})
	if !errors.Is(err, ErrKeyExpiryOverflow) {
		t.Errorf("expected ErrKeyExpiryOverflow, got %v", err)
	}
}
