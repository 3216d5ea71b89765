// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Side-channel account events. These mirror the log topics of the on-chain
// original; nothing in the core consumes them.

package delegation

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
)

// LabelChangedEvent signals a new account label.
type LabelChangedEvent struct {
	Label string
}

// KeyAuthorizedEvent signals a key upsert.
type KeyAuthorizedEvent struct {
	KeyHash common.Hash
	Key     Key
}

// KeyRevokedEvent signals a key removal.
type KeyRevokedEvent struct {
	KeyHash common.Hash
}

// ImplementationApprovalEvent signals a delegate-target allow-list change.
type ImplementationApprovalEvent struct {
	Implementation common.Address
	Approved       bool
}

// ImplementationCallerApprovalEvent signals a caller allow-list change for
// an approved delegate target.
type ImplementationCallerApprovalEvent struct {
	Implementation common.Address
	Caller         common.Address
	Approved       bool
}

// SignatureCheckerApprovalEvent signals a checker allow-list change for a key.
type SignatureCheckerApprovalEvent struct {
	KeyHash  common.Hash
	Checker  common.Address
	Approved bool
}

// NonceInvalidatedEvent signals that a sequence counter moved forward,
// either by consumption or by an admin jump.
type NonceInvalidatedEvent struct {
	Nonce *uint256.Int
}

// ProxyDelegationInitializedEvent is the one-shot signal consumed by the
// surrounding proxy-upgrade collaborator.
type ProxyDelegationInitializedEvent struct{}

// eventFeed fans account events out to subscribers.
type eventFeed struct {
	feed event.FeedOf[any]
}

func (f *eventFeed) send(ev any) {
	f.feed.Send(ev)
}

// subscribe registers ch for all account events.
func (f *eventFeed) subscribe(ch chan<- any) event.Subscription {
	return f.feed.Subscribe(ch)
}
