// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Allow-list for the privileged delegate-call execution mode. Both the
// target set and each target's caller set are bounded; revoking a target
// wipes its caller set as a side effect.

package delegation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// ImplementationRegistry gates which external code may run with the
// account's authority, and who may route calls into it.
type ImplementationRegistry struct {
	state   *state
	events  *eventFeed
	account common.Address
}

func newImplementationRegistry(st *state, events *eventFeed, account common.Address) *ImplementationRegistry {
	return &ImplementationRegistry{state: st, events: events, account: account}
}

// SetApproval adds or removes an implementation from the allow-list.
// Revoking clears the implementation's caller allow-list.
func (ir *ImplementationRegistry) SetApproval(target common.Address, approved bool) error {
	if approved {
		if !ir.state.impls.Add(target) {
			return fmt.Errorf("approve implementation: %w", ErrSetCapacityReached)
		}
	} else {
		ir.state.impls.Remove(target)
		delete(ir.state.implCallers, target)
	}
	log.Info("Implementation approval changed", "target", target, "approved", approved)
	ir.events.send(ImplementationApprovalEvent{Implementation: target, Approved: approved})
	return nil
}

// SetCallerApproval updates the caller allow-list of an approved
// implementation. The implementation must already be approved.
func (ir *ImplementationRegistry) SetCallerApproval(target, caller common.Address, approved bool) error {
	if !ir.state.impls.Contains(target) {
		return fmt.Errorf("caller approval for unapproved implementation %s: %w", target, ErrUnauthorized)
	}
	if approved {
		if !ir.state.callersFor(target).Add(caller) {
			return fmt.Errorf("approve caller: %w", ErrSetCapacityReached)
		}
	} else {
		ir.state.callersFor(target).Remove(caller)
	}
	log.Info("Implementation caller approval changed", "target", target, "caller", caller, "approved", approved)
	ir.events.send(ImplementationCallerApprovalEvent{Implementation: target, Caller: caller, Approved: approved})
	return nil
}

// IsDelegateAuthorized reports whether caller may route a delegate call
// into target. The account itself may always call into an approved target.
func (ir *ImplementationRegistry) IsDelegateAuthorized(target, caller common.Address) bool {
	if !ir.state.impls.Contains(target) {
		return false
	}
	if caller == ir.account {
		return true
	}
	callers, ok := ir.state.implCallers[target]
	return ok && callers.Contains(caller)
}

// ApprovedImplementations returns the allow-list in insertion order.
func (ir *ImplementationRegistry) ApprovedImplementations() []common.Address {
	return ir.state.impls.Values()
}

// ApprovedCallers returns target's caller allow-list in insertion order.
func (ir *ImplementationRegistry) ApprovedCallers(target common.Address) []common.Address {
	callers, ok := ir.state.implCallers[target]
	if !ok {
		return nil
	}
	return callers.Values()
}
