// Package chain holds the shared data model for the hybrid-consensus
// EVM chain: transactions, blocks, and the canonical encoding used to
// hash and sign them. It has no dependency on consensus, storage, or
// execution — every other package imports it, it imports nothing of
// theirs.
package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// HybridTransaction carries both a classical ECDSA signature and an
// optional post-quantum ML-DSA-44 signature over the same canonical
// body. Either signature slot may be empty; spec-level verification of
// the classical half is advisory only (see pkg/crypto).
type HybridTransaction struct {
	Hash common.Hash
	From common.Address
	To   *common.Address // nil for contract creation

	Nonce                *uint256.Int
	GasLimit             uint64
	MaxFeePerGas         *uint256.Int
	MaxPriorityFeePerGas *uint256.Int
	Value                *uint256.Int
	Data                 []byte
	ChainID              uint64

	// Sig is the classical secp256k1 signature, 65 bytes [R || S || V].
	Sig []byte

	// PQSig and PQPubKey are the ML-DSA-44 detached signature and public
	// key. Both are populated together or both left empty.
	PQSig    []byte
	PQPubKey []byte
}

// BlockHeader is the minimal header this chain produces. StateRoot stays
// the zero hash — committing to EVM state is explicitly out of scope.
type BlockHeader struct {
	Number     uint64
	Hash       common.Hash
	ParentHash common.Hash
	StateRoot  common.Hash
	TxRoot     common.Hash
	Timestamp  uint64
}

// Block is a header plus its ordered transactions, exactly as handed
// off from the consensus engine's commit rule to the node runtime.
type Block struct {
	Header BlockHeader
	Txs    []HybridTransaction
}
