// Copyright 2025 The account Authors
// This file is part of the account library.

/*
Package delegation implements the authorization core of a smart-account
delegation object: key storage and lifecycle, multi-scheme signature
verification, two-dimensional replay protection, domain-separated batch
digests, and the allow-list gating the privileged delegate-call mode.

# Architecture

The package composes six pieces around a shared state container:

 1. KeyStore — key records addressed by a content-derived hash, packed as
    publicKey || expiry(5) || keyType(1) || superAdmin(1).

 2. SignatureVerifier — unwraps the signature envelope, resolves the
    signing key and dispatches over the four supported schemes: P-256,
    WebAuthn P-256, secp256k1 and BLS on BN254.

 3. NonceSequencer — per-sequence-key monotonic counters; a full nonce is
    sequenceKey(192 bits) || counter(64 bits). Execution consumes the exact
    next counter; the admin path may jump ahead to burn leaked nonces.

 4. DigestComputer — EIP-712 style commitment over the call batch and
    nonce. The reserved multichain nonce prefix switches to a domain
    separator without the chain id.

 5. ImplementationRegistry — bounded allow-lists for delegate-call targets
    and their permitted callers.

 6. Account — the dispatcher and external surface. It routes a request
    through nonce and signature checks and hands authorized batches to the
    external guarded executor, or runs the delegate-call path in place.

# Request Flow

	Execute(caller, mode, executionData)
	    → delegate tag: registry gate → bound implementation runs
	    → otherwise: decode rlp([calls, opData])
	        → entry point or untrusted caller: consume nonce,
	          compute digest, verify wrapped signature
	        → account itself with empty opData: already authorized
	    → guarded executor performs the batch

Authorization decisions are boolean: malformed signatures and curve points
fail closed instead of erroring. Structural defects (unknown key, short op
data, nonce misuse) are hard failures, and any failure rolls the whole
request back.
*/
package delegation
