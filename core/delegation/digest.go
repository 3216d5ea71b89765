// Copyright 2025 The account Authors
// This file is part of the account library.
//
// Domain-separated digest computation for authorizing call batches,
// following the EIP-712 structured-hash layout. A nonce carrying the
// multichain prefix selects a domain separator without the chain id, so one
// signature can authorize the same batch on several chains; all other
// nonces stay chain-bound.

package delegation

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var (
	callTypeHash    = crypto.Keccak256Hash([]byte("Call(address to,uint256 value,bytes data)"))
	executeTypeHash = crypto.Keccak256Hash([]byte("Execute(bool multichain,Call[] calls,uint256 nonce)"))

	domainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	multichainDomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,address verifyingContract)"))

	domainNameHash    = crypto.Keccak256Hash([]byte("DelegationAccount"))
	domainVersionHash = crypto.Keccak256Hash([]byte("1"))
)

// DigestComputer builds the commitment hash a key signs to authorize a
// batch of calls.
type DigestComputer struct {
	account common.Address
	chainID uint64
}

func newDigestComputer(account common.Address, chainID uint64) *DigestComputer {
	return &DigestComputer{account: account, chainID: chainID}
}

// ComputeDigest hashes a batch and its nonce under the account's signing
// domain. Call order is commitment-relevant.
func (dc *DigestComputer) ComputeDigest(calls []Call, nonce *uint256.Int) common.Hash {
	leaves := make([]byte, 0, len(calls)*common.HashLength)
	for i := range calls {
		leaf := dc.hashCall(&calls[i])
		leaves = append(leaves, leaf[:]...)
	}
	aggregate := crypto.Keccak256Hash(leaves)

	multichain := isMultichainNonce(nonce)
	structHash := crypto.Keccak256Hash(
		executeTypeHash[:],
		boolWord(multichain),
		aggregate[:],
		wordOfUint256(nonce),
	)

	separator := dc.domainSeparator(multichain)
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, separator[:], structHash[:])
}

// hashCall builds one leaf commitment over (typehash, to, value, hash(data)).
func (dc *DigestComputer) hashCall(call *Call) common.Hash {
	return crypto.Keccak256Hash(
		callTypeHash[:],
		wordOfAddress(call.To),
		wordOfUint256(call.Value),
		crypto.Keccak256(call.Data),
	)
}

// domainSeparator binds the digest to this account, and to this chain
// unless the signer opted into the multichain domain.
func (dc *DigestComputer) domainSeparator(multichain bool) common.Hash {
	if multichain {
		return crypto.Keccak256Hash(
			multichainDomainTypeHash[:],
			domainNameHash[:],
			domainVersionHash[:],
			wordOfAddress(dc.account),
		)
	}
	return crypto.Keccak256Hash(
		domainTypeHash[:],
		domainNameHash[:],
		domainVersionHash[:],
		wordOfUint64(dc.chainID),
		wordOfAddress(dc.account),
	)
}

func wordOfAddress(addr common.Address) []byte {
	var word [32]byte
	copy(word[12:], addr[:])
	return word[:]
}

func wordOfUint64(v uint64) []byte {
	word := new(uint256.Int).SetUint64(v).Bytes32()
	return word[:]
}

func wordOfUint256(v *uint256.Int) []byte {
	if v == nil {
		v = new(uint256.Int)
	}
	word := v.Bytes32()
	return word[:]
}

func boolWord(b bool) []byte {
	var word [32]byte
	if b {
		word[31] = 1
	}
	return word[:]
}
