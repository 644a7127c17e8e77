package consensus

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/storage"
)

// commitLag is the number of rounds a batch must age before its round
// becomes eligible for commit — "commit round 2 behind current round",
// matching the Bullshark-lite rule: a round only commits once two
// further rounds have landed on top of it, giving peers time to gossip
// their batches in.
const commitLag = 2

// minRoundForCommit is the first current_round at which any commit can
// fire (commitLag rounds of history plus the round itself).
const minRoundForCommit = commitLag + 1

// TryCommit attempts to materialize a block from the batches of
// round (currentRound - commitLag). It returns (nil, nil) if there is
// nothing to commit yet — either because not enough rounds have
// elapsed, or because the target round has no batches.
//
// Batches are ordered deterministically by BatchID before their
// transactions are concatenated, so every honest validator that has
// seen the same batches produces the same block.
func TryCommit(store storage.ChainStore, dag *DAG, currentRound Round) (*chain.Block, error) {
	if currentRound < minRoundForCommit {
		return nil, nil
	}
	commitRound := currentRound - commitLag

	batches := dag.BatchesAt(commitRound)
	if len(batches) == 0 {
		return nil, nil
	}

	var allTxs []chain.HybridTransaction
	for _, b := range batches {
		allTxs = append(allTxs, b.Txs...)
	}

	parentHeader, ok, err := store.GetHeadHeader()
	if err != nil {
		return nil, err
	}

	var number uint64
	var parentHash common.Hash
	if ok {
		number = parentHeader.Number + 1
		parentHash = parentHeader.Hash
	}

	txRoot := chain.TxRoot(allTxs)
	header := chain.BlockHeader{
		Number:     number,
		ParentHash: parentHash,
		TxRoot:     txRoot,
		Timestamp:  uint64(time.Now().Unix()),
	}
	header.Hash = chain.HashHeader(header.Number, header.ParentHash, header.TxRoot)

	return &chain.Block{Header: header, Txs: allTxs}, nil
}
