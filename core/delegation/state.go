// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Namespaced state container for the delegation account. The on-chain
// original scatters this over hashed storage slots; here the logical key
// spaces are explicit maps. Whole-container snapshots back the
// all-or-nothing semantics of a single authorization request: every map is
// bounded (set caps, 5-byte expiries), so a deep copy is bounded too.

package delegation

import "github.com/ethereum/go-ethereum/common"

// sequenceKey is the high 192 bits of a nonce, big-endian.
type sequenceKey [24]byte

// state holds all mutable account state.
type state struct {
	label string

	// proxyInitialized latches the one-shot proxy delegation signal
	// emitted after the first successful non-delegate execution.
	proxyInitialized bool

	// records maps keyHash to the packed key record. An absent or empty
	// record means the key does not exist.
	records map[common.Hash][]byte
	// keyOrder indexes authorized key hashes for enumeration.
	keyOrder *orderedSet[common.Hash]
	// checkers maps keyHash to the addresses approved to accept that
	// key's signatures through the ERC-1271 path.
	checkers map[common.Hash]*orderedSet[common.Address]

	// nonces maps sequence keys to their next expected counter.
	nonces map[sequenceKey]uint64

	// impls is the delegate-call implementation allow-list.
	impls *orderedSet[common.Address]
	// implCallers maps an approved implementation to its caller allow-list.
	implCallers map[common.Address]*orderedSet[common.Address]
}

func newState() *state {
	return &state{
		records:     make(map[common.Hash][]byte),
		keyOrder:    newOrderedSet[common.Hash](),
		checkers:    make(map[common.Hash]*orderedSet[common.Address]),
		nonces:      make(map[sequenceKey]uint64),
		impls:       newOrderedSet[common.Address](),
		implCallers: make(map[common.Address]*orderedSet[common.Address]),
	}
}

// checkersFor returns the checker set for a key, creating it on demand.
func (s *state) checkersFor(keyHash common.Hash) *orderedSet[common.Address] {
	set, ok := s.checkers[keyHash]
	if !ok {
		set = newOrderedSet[common.Address]()
		s.checkers[keyHash] = set
	}
	return set
}

// callersFor returns the caller set for an implementation, creating it on
// demand.
func (s *state) callersFor(impl common.Address) *orderedSet[common.Address] {
	set, ok := s.implCallers[impl]
	if !ok {
		set = newOrderedSet[common.Address]()
		s.implCallers[impl] = set
	}
	return set
}

// snapshot deep-copies the container.
func (s *state) snapshot() *state {
	cpy := &state{
		label:            s.label,
		proxyInitialized: s.proxyInitialized,
		records:          make(map[common.Hash][]byte, len(s.records)),
		keyOrder:         s.keyOrder.Copy(),
		checkers:         make(map[common.Hash]*orderedSet[common.Address], len(s.checkers)),
		nonces:           make(map[sequenceKey]uint64, len(s.nonces)),
		impls:            s.impls.Copy(),
		implCallers:      make(map[common.Address]*orderedSet[common.Address], len(s.implCallers)),
	}
	for k, v := range s.records {
		rec := make([]byte, len(v))
		copy(rec, v)
		cpy.records[k] = rec
	}
	for k, v := range s.checkers {
		cpy.checkers[k] = v.Copy()
	}
	for k, v := range s.nonces {
		cpy.nonces[k] = v
	}
	for k, v := range s.implCallers {
		cpy.implCallers[k] = v.Copy()
	}
	return cpy
}

// restore replaces the container contents with a snapshot.
func (s *state) restore(snap *state) {
	*s = *snap
}
