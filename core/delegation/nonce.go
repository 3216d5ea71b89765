// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Two-dimensional replay protection. A full nonce is
// sequenceKey(192 bits) || counter(64 bits); each sequence key owns an
// independent monotonic counter. Counters only move forward: execution
// consumes the exact next value, the admin path may jump a counter ahead to
// invalidate leaked nonces.

package delegation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// NonceSequencer maintains the per-sequence-key counters.
type NonceSequencer struct {
	state  *state
	events *eventFeed
}

func newNonceSequencer(st *state, events *eventFeed) *NonceSequencer {
	return &NonceSequencer{state: st, events: events}
}

// splitNonce decomposes a full nonce into its sequence key and counter.
func splitNonce(nonce *uint256.Int) (sequenceKey, uint64) {
	full := nonce.Bytes32()
	var seqKey sequenceKey
	copy(seqKey[:], full[:24])
	return seqKey, nonce.Uint64()
}

// isMultichainNonce reports whether the top 16 bits of the nonce carry the
// reserved multichain prefix.
func isMultichainNonce(nonce *uint256.Int) bool {
	return new(uint256.Int).Rsh(nonce, 240).Uint64() == multichainNoncePrefix
}

// Get returns the next expected counter for a sequence key. Sequences come
// into existence lazily at zero.
func (ns *NonceSequencer) Get(seqKey sequenceKey) uint64 {
	return ns.state.nonces[seqKey]
}

// Invalidate jumps a sequence counter forward to the counter encoded in
// newNonce, discarding every value below it. The new counter must strictly
// exceed the stored one.
func (ns *NonceSequencer) Invalidate(newNonce *uint256.Int) error {
	seqKey, seq := splitNonce(newNonce)
	current := ns.state.nonces[seqKey]
	if seq <= current {
		return fmt.Errorf("invalidate: counter %d <= current %d: %w", seq, current, ErrNewSequenceMustBeLarger)
	}
	ns.state.nonces[seqKey] = seq
	log.Info("Nonce invalidated", "sequenceKey", fmt.Sprintf("%x", seqKey), "counter", seq)
	ns.events.send(NonceInvalidatedEvent{Nonce: newNonce.Clone()})
	return nil
}

// ConsumeExpected accepts a nonce only if its counter equals the exact next
// value of its sequence, then advances the counter by one. Replayed,
// out-of-order, and skipped-ahead nonces are all rejected.
func (ns *NonceSequencer) ConsumeExpected(nonce *uint256.Int) error {
	seqKey, seq := splitNonce(nonce)
	current := ns.state.nonces[seqKey]
	if seq != current {
		return fmt.Errorf("consume: counter %d, expected %d: %w", seq, current, ErrInvalidNonce)
	}
	ns.state.nonces[seqKey] = current + 1
	ns.events.send(NonceInvalidatedEvent{Nonce: nonce.Clone()})
	return nil
}
