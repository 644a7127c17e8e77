package consensus

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/chainerr"
	"github.com/hybridchain/node/pkg/crypto"
	"github.com/hybridchain/node/pkg/storage"
	"github.com/hybridchain/node/pkg/util"
)

func msToDuration(ms uint64) time.Duration { return time.Duration(ms) * time.Millisecond }

// Engine is the Narwhal-mempool / Bullshark-lite commit engine. It
// drains an inbound channel of gossiped transactions and peer batches,
// ticks a block-time clock to author its own batch each round, and
// attempts the deterministic commit rule on every tick.
type Engine struct {
	ID         NodeID
	TargetTPS  uint64
	BlockTime  uint64 // milliseconds
	RejectPQ   bool   // reject txs whose PQ signature fails verification, instead of admitting them advisorily

	Store storage.ChainStore
	WAL   WAL
	Net   Network
	Clock util.Clock

	// BLSSigner, if set, signs every locally-authored batch's digest
	// into Batch.Cert. PeerBLSKeys maps a peer NodeID to the public key
	// used to advisory-check its batches' certificates; a batch whose
	// author has no entry in PeerBLSKeys is accepted without a
	// certificate check.
	BLSSigner   *crypto.BLSSigner
	PeerBLSKeys map[NodeID]*crypto.BLSPubKey

	Logger *zap.SugaredLogger

	dag     *DAG
	mempool *Mempool

	input  <-chan ConsensusInput
	output chan<- ConsensusOutput
}

func NewEngine(id NodeID, targetTPS, blockTimeMS uint64, store storage.ChainStore, net Network, input <-chan ConsensusInput, output chan<- ConsensusOutput, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		ID:        id,
		TargetTPS: targetTPS,
		BlockTime: blockTimeMS,
		Store:     store,
		Net:       net,
		Clock:     util.RealClock{},
		Logger:    logger,
		dag:       NewDAG(),
		mempool:   NewMempool(),
		input:     input,
		output:    output,
	}
}

// Run drives the engine until ctx is cancelled. It has no leader/
// follower split: every validator authors a batch each round from its
// own mempool and applies the same deterministic commit rule to
// whatever batches it has seen, so the chain it produces is the same
// regardless of which validator is asked.
func (e *Engine) Run(ctx context.Context) error {
	var currentRound Round
	tick := e.Clock.After(msToDuration(e.BlockTime))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case in, ok := <-e.input:
			if !ok {
				return fmt.Errorf("%w: consensus input channel closed", chainerr.ErrChannelClosed)
			}
			e.handleInput(in)

		case <-tick:
			tick = e.Clock.After(msToDuration(e.BlockTime))
			currentRound++
			e.produceLocalBatch(currentRound)

			block, err := TryCommit(e.Store, e.dag, currentRound)
			if err != nil {
				if e.Logger != nil {
					e.Logger.Errorw("commit_failed", "round", currentRound, "err", err)
				}
				continue
			}
			if block == nil {
				continue
			}
			if err := e.commitBlock(*block); err != nil {
				if e.Logger != nil {
					e.Logger.Errorw("commit_store_failed", "number", block.Header.Number, "err", err)
				}
				continue
			}

			commitRound := currentRound - commitLag
			e.dag.Prune(commitRound)
		}
	}
}

func (e *Engine) handleInput(in ConsensusInput) {
	switch {
	case in.IsTx():
		tx := *in.Tx
		if err := crypto.VerifyPQ(&tx); err != nil {
			if e.RejectPQ {
				if e.Logger != nil {
					e.Logger.Warnw("tx_rejected_pq", "hash", tx.Hash.Hex(), "err", err)
				}
				return
			}
			if e.Logger != nil {
				e.Logger.Debugw("tx_admitted_despite_pq_failure", "hash", tx.Hash.Hex(), "err", err)
			}
		}
		e.mempool.Push(tx)

	case in.IsBatch():
		batch := *in.Batch
		if pk, ok := e.PeerBLSKeys[batch.Author]; ok {
			if len(batch.Cert) == 0 || !crypto.Verify(pk, batch.Cert, BatchDigest(batch)) {
				if e.Logger != nil {
					e.Logger.Warnw("batch_cert_invalid", "id", batch.ID, "author", batch.Author)
				}
			}
		}
		if err := e.dag.Insert(batch); err != nil {
			if e.Logger != nil {
				e.Logger.Warnw("batch_rejected", "id", batch.ID, "err", err)
			}
		}
	}
}

// produceLocalBatch bundles whatever is in the mempool into a batch
// parented on every batch this node has seen for the previous round,
// inserts it locally, and gossips it to peers.
func (e *Engine) produceLocalBatch(round Round) {
	txs := e.mempool.Drain()
	if len(txs) == 0 {
		return
	}

	var parents []BatchID
	for _, b := range e.dag.BatchesAt(round - 1) {
		parents = append(parents, b.ID)
	}

	batch := Batch{
		ID:      NewBatchID(),
		Round:   round,
		Author:  e.ID,
		Parents: parents,
		Txs:     txs,
	}
	if e.BLSSigner != nil {
		batch.Cert = e.BLSSigner.Sign(BatchDigest(batch))
	}

	if err := e.dag.Insert(batch); err != nil {
		if e.Logger != nil {
			e.Logger.Errorw("local_batch_insert_failed", "id", batch.ID, "err", err)
		}
		return
	}

	if e.Net != nil {
		if err := e.Net.PublishBatch(batch); err != nil && e.Logger != nil {
			e.Logger.Warnw("batch_publish_failed", "id", batch.ID, "err", err)
		}
	}
}

func (e *Engine) commitBlock(block chain.Block) error {
	if err := e.Store.PutBlock(block); err != nil {
		return err
	}
	if err := e.Store.PutHead(block.Header.Number, block.Header.Hash); err != nil {
		return err
	}
	if e.WAL != nil {
		e.WAL.Append(fmt.Sprintf("commit number=%d hash=%s txs=%d", block.Header.Number, block.Header.Hash.Hex(), len(block.Txs)))
	}
	if e.Logger != nil {
		e.Logger.Infow("commit", "number", block.Header.Number, "hash", block.Header.Hash.Hex(), "txs", len(block.Txs))
	}
	if e.output != nil {
		e.output <- NewCommittedBlockOutput(block)
	}
	return nil
}
