// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Execution entry point. Routes an authorization request through nonce
// consumption and signature verification, then either runs the gated
// delegate-call path or hands the approved batch to the guarded executor.
// A request commits atomically: any failure restores the pre-request state.

package delegation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Execute authorizes and dispatches one request. For the delegate-call mode
// executionData is target(20 bytes) || calldata and the callee's output is
// returned verbatim; for batch modes it is rlp([calls, opData]) and the
// returned data is nil.
func (a *Account) Execute(caller common.Address, mode Mode, executionData []byte) ([]byte, error) {
	if !a.SupportsExecutionMode(mode) {
		return nil, fmt.Errorf("mode tag %#x: %w", mode.Tag(), ErrUnsupportedExecutionMode)
	}
	snap := a.state.snapshot()
	out, err := a.execute(caller, mode, executionData)
	if err != nil {
		a.state.restore(snap)
		log.Warn("Execution rejected", "caller", caller, "modeTag", mode.Tag(), "err", err)
		return nil, err
	}
	return out, nil
}

// SupportsExecutionMode reports whether mode can be dispatched: the
// reserved delegate-call tag is handled by the core, everything else is the
// guarded executor's decision.
func (a *Account) SupportsExecutionMode(mode Mode) bool {
	if mode.Tag() == ModeTagDelegate {
		return true
	}
	return a.executor.SupportsExecutionMode(mode)
}

func (a *Account) execute(caller common.Address, mode Mode, executionData []byte) ([]byte, error) {
	if mode.Tag() == ModeTagDelegate {
		return a.executeDelegate(caller, executionData)
	}

	var payload executionPayload
	if err := rlp.DecodeBytes(executionData, &payload); err != nil {
		return nil, fmt.Errorf("decode execution payload: %w", err)
	}

	switch {
	case caller == a.entryPoint:
		// The relay pre-packs nonce || wrapped signature; the checks are
		// the same as for an untrusted submitter.
		return nil, a.executeSigned(mode, payload.Calls, payload.OpData)

	case caller == a.address && len(payload.OpData) == 0:
		// The account calling itself is already authorized; no nonce or
		// signature involved, null key identifier.
		if err := a.executor.Execute(mode, payload.Calls, common.Hash{}); err != nil {
			return nil, err
		}
		a.signalProxyInit()
		return nil, nil

	default:
		return nil, a.executeSigned(mode, payload.Calls, payload.OpData)
	}
}

// executeSigned is the common authorized path: consume the nonce, compute
// the batch digest, verify the wrapped signature, hand off.
func (a *Account) executeSigned(mode Mode, calls []Call, opData []byte) error {
	if len(opData) < 32 {
		return fmt.Errorf("op data %d bytes: %w", len(opData), ErrOpDataTooShort)
	}
	nonce := new(uint256.Int).SetBytes(opData[:32])
	if err := a.nonces.ConsumeExpected(nonce); err != nil {
		return err
	}
	digest := a.digests.ComputeDigest(calls, nonce)
	valid, keyHash, err := a.verifier.UnwrapAndValidate(digest, opData[32:])
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("signature rejected for digest %s: %w", digest, ErrUnauthorized)
	}
	if err := a.executor.Execute(mode, calls, keyHash); err != nil {
		return err
	}
	a.signalProxyInit()
	return nil
}

// executeDelegate runs approved external code with the account's full
// authority. Trust rests entirely on the implementation and caller
// allow-lists; there is deliberately no re-entrancy lock, so an approved
// implementation may re-enter the account.
func (a *Account) executeDelegate(caller common.Address, payload []byte) ([]byte, error) {
	if len(payload) < common.AddressLength {
		return nil, fmt.Errorf("delegate payload %d bytes: %w", len(payload), ErrOpDataTooShort)
	}
	target := common.BytesToAddress(payload[:common.AddressLength])
	if !a.registry.IsDelegateAuthorized(target, caller) {
		return nil, fmt.Errorf("delegate call to %s from %s: %w", target, caller, ErrUnauthorized)
	}
	impl, ok := a.impls[target]
	if !ok {
		return nil, fmt.Errorf("%s: %w", target, ErrNoImplementation)
	}
	out, err := impl.Run(a, payload[common.AddressLength:])
	if err != nil {
		return nil, &DelegateRevertError{Target: target, Data: out, Err: err}
	}
	return out, nil
}

// signalProxyInit latches the one-shot proxy delegation initialization
// signal after the first successful non-delegate execution.
func (a *Account) signalProxyInit() {
	if a.state.proxyInitialized {
		return
	}
	a.state.proxyInitialized = true
	a.events.send(ProxyDelegationInitializedEvent{})
	log.Info("Proxy delegation initialized", "account", a.address)
}
