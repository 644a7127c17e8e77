// Package consensus implements the Narwhal-style mempool DAG and the
// Bullshark-lite deterministic commit rule that turns it into a linear
// chain of blocks.
package consensus

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/hybridchain/node/pkg/chain"
)

// Round is a DAG round number. Round 0 is the genesis round; a round-0
// batch has no parents.
type Round uint64

// NodeID identifies a validator authoring batches.
type NodeID string

// BatchID uniquely identifies a batch. It is UUID-backed so an author
// can mint one locally without coordination, and is sortable as a
// big-endian uint128 for the deterministic commit ordering.
type BatchID uuid.UUID

func NewBatchID() BatchID { return BatchID(uuid.New()) }

// Less reports whether b sorts before other, treating both as
// big-endian uint128s — the ordering the commit rule uses to
// linearize batches within a round.
func (b BatchID) Less(other BatchID) bool {
	for i := range b {
		if b[i] != other[i] {
			return b[i] < other[i]
		}
	}
	return false
}

func (b BatchID) String() string { return uuid.UUID(b).String() }

// Batch is a Narwhal batch: a validator's locally-authored bundle of
// transactions for a round, referencing the batches it builds on from
// the previous round.
//
// Cert is an optional BLS signature over the batch's digest (see
// BatchDigest), attesting that Author vouches for having produced or
// received this exact batch. It is advisory only — the commit rule
// never requires or aggregates it — gesturing at a future
// availability-certificate hardening path without implementing quorum
// enforcement.
type Batch struct {
	ID      BatchID
	Round   Round
	Author  NodeID
	Parents []BatchID
	Txs     []chain.HybridTransaction
	Cert    []byte
}

// BatchDigest hashes the fields of b that identify its content,
// excluding Cert itself, so a batch's certificate can be produced and
// checked independent of whether one is attached.
func BatchDigest(b Batch) []byte {
	h := sha256.New()
	h.Write(b.ID[:])
	var roundBuf [8]byte
	binary.BigEndian.PutUint64(roundBuf[:], uint64(b.Round))
	h.Write(roundBuf[:])
	h.Write([]byte(b.Author))
	for _, p := range b.Parents {
		h.Write(p[:])
	}
	for i := range b.Txs {
		h.Write(b.Txs[i].Hash[:])
	}
	return h.Sum(nil)
}

// ConsensusInput is the tagged union of messages the engine consumes:
// either a freshly gossiped transaction destined for the local
// mempool, or a batch authored by a peer to insert into the DAG.
// Exactly one field is populated.
type ConsensusInput struct {
	Tx    *chain.HybridTransaction
	Batch *Batch
}

func NewTxInput(tx chain.HybridTransaction) ConsensusInput { return ConsensusInput{Tx: &tx} }
func NewBatchInput(batch Batch) ConsensusInput             { return ConsensusInput{Batch: &batch} }
func (in ConsensusInput) IsTx() bool                       { return in.Tx != nil }
func (in ConsensusInput) IsBatch() bool                    { return in.Batch != nil }

// ConsensusOutput is the tagged union of messages the engine emits.
// Only CommittedBlock exists today, but the shape mirrors
// ConsensusInput's so a second variant slots in without disturbing
// callers.
type ConsensusOutput struct {
	CommittedBlock *chain.Block
}

func NewCommittedBlockOutput(b chain.Block) ConsensusOutput {
	return ConsensusOutput{CommittedBlock: &b}
}

// Network is the outbound half of the gossip layer the engine needs:
// publishing locally-authored transactions and batches to peers. It
// has no inbound side — peers' messages arrive as ConsensusInput over
// the engine's input channel instead.
type Network interface {
	PublishTx(tx chain.HybridTransaction) error
	PublishBatch(b Batch) error
}

// WAL is an append-only commit log, defined here so the engine depends
// only on this package; pkg/storage supplies concrete implementations.
type WAL interface {
	Append(line string)
}
