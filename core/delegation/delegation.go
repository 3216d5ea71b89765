// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Account ties the authorization components together and exposes the
// external surface. Admin operations are restricted to the account acting
// on itself; the caller identity is passed explicitly, the way the original
// reads msg.sender.

package delegation

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Config parameterizes a delegation account.
type Config struct {
	// Address is the account's own address.
	Address common.Address
	// ChainID binds ordinary (non-multichain) digests to one chain.
	ChainID uint64
	// EntryPoint overrides the trusted relay address. Zero selects
	// DefaultEntryPointAddress.
	EntryPoint common.Address
	// Executor is the external guarded-execution collaborator.
	Executor GuardedExecutor
	// Now overrides the clock used for key expiry, mainly for tests.
	Now func() uint64
}

// Account is the authorization core of a delegated smart account.
type Account struct {
	address    common.Address
	entryPoint common.Address

	state  *state
	events *eventFeed

	keys     *KeyStore
	nonces   *NonceSequencer
	digests  *DigestComputer
	verifier *SignatureVerifier
	registry *ImplementationRegistry

	executor GuardedExecutor

	// impls binds approved implementation addresses to host code. The
	// binding is a host concern, separate from the on-account allow-list.
	impls map[common.Address]DelegateImplementation
}

// New creates a delegation account around the given executor.
func New(cfg Config) (*Account, error) {
	if cfg.Address == (common.Address{}) {
		return nil, errors.New("account address must not be zero")
	}
	if cfg.Executor == nil {
		return nil, errors.New("guarded executor is required")
	}
	entryPoint := cfg.EntryPoint
	if entryPoint == (common.Address{}) {
		entryPoint = DefaultEntryPointAddress
	}
	now := cfg.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}

	st := newState()
	events := &eventFeed{}
	keys := newKeyStore(st, events)
	acct := &Account{
		address:    cfg.Address,
		entryPoint: entryPoint,
		state:      st,
		events:     events,
		keys:       keys,
		nonces:     newNonceSequencer(st, events),
		digests:    newDigestComputer(cfg.Address, cfg.ChainID),
		verifier:   newSignatureVerifier(keys, cfg.Address, now),
		registry:   newImplementationRegistry(st, events, cfg.Address),
		executor:   cfg.Executor,
		impls:      make(map[common.Address]DelegateImplementation),
	}
	return acct, nil
}

// Address returns the account's own address.
func (a *Account) Address() common.Address { return a.address }

// EntryPoint returns the trusted relay address.
func (a *Account) EntryPoint() common.Address { return a.entryPoint }

// requireSelf guards the admin surface.
func (a *Account) requireSelf(caller common.Address) error {
	if caller != a.address {
		return fmt.Errorf("caller %s is not the account: %w", caller, ErrUnauthorized)
	}
	return nil
}

// Authorize upserts a key. Restricted to the account acting on itself.
func (a *Account) Authorize(caller common.Address, key *Key) (common.Hash, error) {
	if err := a.requireSelf(caller); err != nil {
		return common.Hash{}, err
	}
	return a.keys.Authorize(key)
}

// Revoke removes a key and its checker approvals.
func (a *Account) Revoke(caller common.Address, keyHash common.Hash) error {
	if err := a.requireSelf(caller); err != nil {
		return err
	}
	return a.keys.Revoke(keyHash)
}

// SetLabel updates the account label.
func (a *Account) SetLabel(caller common.Address, label string) error {
	if err := a.requireSelf(caller); err != nil {
		return err
	}
	a.state.label = label
	a.events.send(LabelChangedEvent{Label: label})
	return nil
}

// SetImplementationApproval changes the delegate-call target allow-list.
func (a *Account) SetImplementationApproval(caller, target common.Address, approved bool) error {
	if err := a.requireSelf(caller); err != nil {
		return err
	}
	return a.registry.SetApproval(target, approved)
}

// SetImplementationCallerApproval changes the caller allow-list of an
// approved delegate-call target.
func (a *Account) SetImplementationCallerApproval(caller, target, allowed common.Address, approved bool) error {
	if err := a.requireSelf(caller); err != nil {
		return err
	}
	return a.registry.SetCallerApproval(target, allowed, approved)
}

// SetSignatureCheckerApproval changes the set of addresses allowed to
// accept keyHash's signatures through the ERC-1271 path.
func (a *Account) SetSignatureCheckerApproval(caller common.Address, keyHash common.Hash, checker common.Address, approved bool) error {
	if err := a.requireSelf(caller); err != nil {
		return err
	}
	if _, err := a.keys.Get(keyHash); err != nil {
		return err
	}
	if approved {
		if !a.state.checkersFor(keyHash).Add(checker) {
			return fmt.Errorf("approve checker: %w", ErrSetCapacityReached)
		}
	} else {
		a.state.checkersFor(keyHash).Remove(checker)
	}
	log.Info("Signature checker approval changed", "keyHash", keyHash, "checker", checker, "approved", approved)
	a.events.send(SignatureCheckerApprovalEvent{KeyHash: keyHash, Checker: checker, Approved: approved})
	return nil
}

// InvalidateNonce jumps a sequence counter forward.
func (a *Account) InvalidateNonce(caller common.Address, nonce *uint256.Int) error {
	if err := a.requireSelf(caller); err != nil {
		return err
	}
	return a.nonces.Invalidate(nonce)
}

// BindImplementation attaches host code to an implementation address. The
// binding alone grants nothing; the address still has to pass the
// registry's approval gates.
func (a *Account) BindImplementation(target common.Address, impl DelegateImplementation) {
	a.impls[target] = impl
}

// Label returns the account label.
func (a *Account) Label() string { return a.state.label }

// GetNonce returns the next expected counter for a 192-bit sequence key.
func (a *Account) GetNonce(seqKey *uint256.Int) uint64 {
	full := new(uint256.Int).Lsh(seqKey, 64)
	k, _ := splitNonce(full)
	return a.nonces.Get(k)
}

// KeyCount returns the number of authorized keys.
func (a *Account) KeyCount() int { return a.keys.Count() }

// KeyAt returns the i-th authorized key in insertion order.
func (a *Account) KeyAt(i int) (*Key, error) { return a.keys.At(i) }

// GetKey returns the key stored under keyHash.
func (a *Account) GetKey(keyHash common.Hash) (*Key, error) { return a.keys.Get(keyHash) }

// ApprovedImplementations returns the delegate-call target allow-list.
func (a *Account) ApprovedImplementations() []common.Address {
	return a.registry.ApprovedImplementations()
}

// ApprovedImplementationCallers returns target's caller allow-list.
func (a *Account) ApprovedImplementationCallers(target common.Address) []common.Address {
	return a.registry.ApprovedCallers(target)
}

// ApprovedSignatureCheckers returns keyHash's checker allow-list.
func (a *Account) ApprovedSignatureCheckers(keyHash common.Hash) []common.Address {
	set, ok := a.state.checkers[keyHash]
	if !ok {
		return nil
	}
	return set.Values()
}

// ComputeDigest builds the signing commitment for a batch and nonce.
func (a *Account) ComputeDigest(calls []Call, nonce *uint256.Int) common.Hash {
	return a.digests.ComputeDigest(calls, nonce)
}

// UnwrapAndValidateSignature verifies a wrapped signature against digest.
func (a *Account) UnwrapAndValidateSignature(digest common.Hash, signature []byte) (bool, common.Hash, error) {
	return a.verifier.UnwrapAndValidate(digest, signature)
}

// IsSuperAdmin answers the executor's super-admin hook from the key record.
func (a *Account) IsSuperAdmin(keyHash common.Hash) (bool, error) {
	key, err := a.keys.Get(keyHash)
	if err != nil {
		return false, err
	}
	return key.SuperAdmin, nil
}

// ProxyInitialized reports whether the one-shot proxy delegation signal has
// fired.
func (a *Account) ProxyInitialized() bool { return a.state.proxyInitialized }

// SubscribeEvents registers ch for all account events.
func (a *Account) SubscribeEvents(ch chan<- any) event.Subscription {
	return a.events.subscribe(ch)
}
