// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Key storage and lifecycle. Keys are addressed by their content-derived
// hash and persisted in a packed record:
//
//	publicKey || expiry(5 bytes, big-endian) || keyType(1) || superAdmin(1)
//
// An empty record means the key does not exist.

package delegation

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

const (
	// keyRecordTailLength is the fixed tail past the public key.
	keyRecordTailLength = 5 + 1 + 1

	// maxKeyExpiry is the largest expiry representable in the packed
	// 5-byte field.
	maxKeyExpiry = 1<<40 - 1
)

// KeyStore owns the account's key records.
type KeyStore struct {
	state  *state
	events *eventFeed
}

func newKeyStore(st *state, events *eventFeed) *KeyStore {
	return &KeyStore{state: st, events: events}
}

// Authorize upserts a key record under its content-derived hash and returns
// that hash. Re-authorizing an existing (type, publicKey) pair updates the
// expiry and super-admin flag in place; the hash never changes.
func (ks *KeyStore) Authorize(key *Key) (common.Hash, error) {
	record, err := encodeKeyRecord(key)
	if err != nil {
		return common.Hash{}, err
	}
	keyHash := key.Hash()
	if _, exists := ks.state.records[keyHash]; !exists {
		if !ks.state.keyOrder.Add(keyHash) {
			return common.Hash{}, fmt.Errorf("authorize: %w", ErrSetCapacityReached)
		}
	}
	ks.state.records[keyHash] = record
	log.Info("Key authorized", "keyHash", keyHash, "type", key.Type, "superAdmin", key.SuperAdmin, "expiry", key.Expiry)
	ks.events.send(KeyAuthorizedEvent{KeyHash: keyHash, Key: *key})
	return keyHash, nil
}

// Revoke deletes a key record along with its checker approvals.
func (ks *KeyStore) Revoke(keyHash common.Hash) error {
	if _, exists := ks.state.records[keyHash]; !exists {
		return fmt.Errorf("revoke %s: %w", keyHash, ErrKeyDoesNotExist)
	}
	delete(ks.state.records, keyHash)
	delete(ks.state.checkers, keyHash)
	ks.state.keyOrder.Remove(keyHash)
	log.Info("Key revoked", "keyHash", keyHash)
	ks.events.send(KeyRevokedEvent{KeyHash: keyHash})
	return nil
}

// Get decodes the key stored under keyHash.
func (ks *KeyStore) Get(keyHash common.Hash) (*Key, error) {
	record, exists := ks.state.records[keyHash]
	if !exists || len(record) == 0 {
		return nil, fmt.Errorf("get %s: %w", keyHash, ErrKeyDoesNotExist)
	}
	return decodeKeyRecord(record)
}

// Count returns the number of authorized keys.
func (ks *KeyStore) Count() int {
	return ks.state.keyOrder.Len()
}

// At returns the i-th authorized key in insertion order.
func (ks *KeyStore) At(i int) (*Key, error) {
	keyHash, ok := ks.state.keyOrder.At(i)
	if !ok {
		return nil, fmt.Errorf("key index %d out of range: %w", i, ErrKeyDoesNotExist)
	}
	return ks.Get(keyHash)
}

// encodeKeyRecord packs a key into its persisted form.
func encodeKeyRecord(key *Key) ([]byte, error) {
	if key.Expiry > maxKeyExpiry {
		return nil, ErrKeyExpiryOverflow
	}
	record := make([]byte, len(key.PublicKey)+keyRecordTailLength)
	copy(record, key.PublicKey)
	tail := record[len(key.PublicKey):]
	var expiry [8]byte
	binary.BigEndian.PutUint64(expiry[:], key.Expiry)
	copy(tail[:5], expiry[3:])
	tail[5] = byte(key.Type)
	if key.SuperAdmin {
		tail[6] = 1
	}
	return record, nil
}

// decodeKeyRecord is the inverse of encodeKeyRecord.
func decodeKeyRecord(record []byte) (*Key, error) {
	if len(record) < keyRecordTailLength {
		return nil, fmt.Errorf("truncated key record (%d bytes): %w", len(record), ErrKeyDoesNotExist)
	}
	split := len(record) - keyRecordTailLength
	publicKey := make([]byte, split)
	copy(publicKey, record[:split])
	tail := record[split:]
	var expiry [8]byte
	copy(expiry[3:], tail[:5])
	return &Key{
		Expiry:     binary.BigEndian.Uint64(expiry[:]),
		Type:       KeyType(tail[5]),
		SuperAdmin: tail[6] == 1,
		PublicKey:  publicKey,
	}, nil
}
