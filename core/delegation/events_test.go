// Copyright 2025 The account Authors

package delegation

import (
	"testing"
)

func TestEventSubscription(t *testing.T) {
	acct, _ := newTestAccount(t)
	ch := make(chan any, 16)
	sub := acct.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	keyHash, err := acct.Authorize(testAccountAddress, &Key{Type: KeyTypeP256, PublicKey: make([]byte, 64)})
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if err := acct.SetLabel(testAccountAddress, "primary"); err != nil {
		t.Fatalf("SetLabel failed: %v", err)
	}
	if err := acct.InvalidateNonce(testAccountAddress, makeNonce(0, 5)); err != nil {
		t.Fatalf("InvalidateNonce failed: %v", err)
	}
	if err := acct.Revoke(testAccountAddress, keyHash); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	want := []any{
		KeyAuthorizedEvent{},
		LabelChangedEvent{},
		NonceInvalidatedEvent{},
		KeyRevokedEvent{},
	}
	for i := range want {
		select {
		case got := <-ch:
			switch i {
			case 0:
				ev, ok := got.(KeyAuthorizedEvent)
				if !ok || ev.KeyHash != keyHash {
					t.Errorf("event %d: %+v", i, got)
				}
			case 1:
				ev, ok := got.(LabelChangedEvent)
				if !ok || ev.Label != "primary" {
					t.Errorf("event %d: %+v", i, got)
				}
			case 2:
				ev, ok := got.(NonceInvalidatedEvent)
				if !ok || ev.Nonce.Cmp(makeNonce(0, 5)) != 0 {
					t.Errorf("event %d: %+v", i, got)
				}
			case 3:
				ev, ok := got.(KeyRevokedEvent)
				if !ok || ev.KeyHash != keyHash {
					t.Errorf("event %d: %+v", i, got)
				}
			}
		default:
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestProxyInitSignalIsOneShot(t *testing.T) {
	acct, _ := newTestAccount(t)
	ch := make(chan any, 16)
	sub := acct.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	for i := 0; i < 2; i++ {
		if _, err := acct.Execute(testAccountAddress, batchMode, encodeExecutionData(t, nil, nil)); err != nil {
			t.Fatalf("Execute %d failed: %v", i, err)
		}
	}

	signals := 0
	for {
		select {
		case ev := <-ch:
			if _, ok := ev.(ProxyDelegationInitializedEvent); ok {
				signals++
			}
			continue
		default:
		}
		break
	}
	if signals != 1 {
		t.Errorf("proxy init signaled %d times, want 1", signals)
	}
}
