// Package evm executes committed blocks against an embedded go-ethereum
// EVM. Execution is sequential and single-threaded per block, matching
// the reference engine's mutex-guarded revm instance; state persists
// across blocks in an in-memory trie but the resulting state root is
// never folded into the header (see pkg/chain.BlockHeader.StateRoot).
package evm

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/chainerr"
)

// blockGasLimit is a fixed per-block gas cap; this chain has no
// EIP-1559-style gas limit elasticity or on-chain governance of it.
const blockGasLimit = 30_000_000

// TxResult is the per-transaction outcome of executing a block.
type TxResult struct {
	Hash         common.Hash
	Status       uint64 // types.ReceiptStatusSuccessful or types.ReceiptStatusFailed
	GasUsed      uint64
	Logs         []*types.Log
	RevertReason string
}

// Executor wraps a single long-lived go-ethereum StateDB. Blocks are
// executed one at a time under a mutex, in commit order — there is no
// parallel execution and no speculative re-ordering.
type Executor struct {
	mu      sync.Mutex
	statedb *state.StateDB
	config  *params.ChainConfig
}

func NewExecutor(chainID uint64) (*Executor, error) {
	statedb, err := state.New(common.Hash{}, state.NewDatabaseForTesting())
	if err != nil {
		return nil, fmt.Errorf("%w: init state db: %v", chainerr.ErrExecution, err)
	}

	cfg := *params.AllDevChainProtocolChanges
	cfg.ChainID = new(big.Int).SetUint64(chainID)

	return &Executor{statedb: statedb, config: &cfg}, nil
}

// ExecuteBlock applies every transaction in b to the executor's state
// in order, returning one TxResult per transaction. A transaction that
// reverts or runs out of gas does not abort the block — the chain
// records the failure and moves on, mirroring how a real EVM chain
// keeps failed transactions on-chain. A transaction whose preconditions
// can't be evaluated at all (e.g. insufficient balance to buy gas) is a
// fatal engine error: it halts execution of the rest of the block and
// is returned to the caller.
func (e *Executor) ExecuteBlock(b chain.Block) ([]TxResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	header := &types.Header{
		Number:     new(big.Int).SetUint64(b.Header.Number),
		Time:       b.Header.Timestamp,
		Difficulty: big.NewInt(0),
		GasLimit:   blockGasLimit,
		BaseFee:    big.NewInt(0),
	}
	blockCtx := core.NewEVMBlockContext(header, nil, &common.Address{})

	results := make([]TxResult, 0, len(b.Txs))
	gp := new(core.GasPool).AddGas(header.GasLimit)

	for i := range b.Txs {
		tx := &b.Txs[i]
		msg := toMessage(tx)

		e.statedb.SetTxContext(tx.Hash, i)

		evmInst := vm.NewEVM(blockCtx, e.statedb, e.config, vm.Config{})
		evmInst.SetTxContext(core.NewEVMTxContext(msg))

		result, err := core.ApplyMessage(evmInst, msg, gp)
		if err != nil {
			return nil, fmt.Errorf("%w: tx %s preconditions: %v", chainerr.ErrExecution, tx.Hash.Hex(), err)
		}

		res := TxResult{Hash: tx.Hash}
		res.GasUsed = result.UsedGas
		if result.Failed() {
			res.Status = types.ReceiptStatusFailed
			res.RevertReason = result.Err.Error()
		} else {
			res.Status = types.ReceiptStatusSuccessful
			res.Logs = e.statedb.GetLogs(tx.Hash, header.Number.Uint64(), common.Hash{})
		}
		e.statedb.Finalise(true)
		results = append(results, res)
	}

	return results, nil
}

func toMessage(tx *chain.HybridTransaction) *core.Message {
	var to *common.Address
	if tx.To != nil {
		addr := *tx.To
		to = &addr
	}

	return &core.Message{
		From:             tx.From,
		To:               to,
		Nonce:            tx.Nonce.Uint64(),
		Value:            tx.Value.ToBig(),
		GasLimit:         tx.GasLimit,
		GasPrice:         tx.MaxFeePerGas.ToBig(),
		GasFeeCap:        tx.MaxFeePerGas.ToBig(),
		GasTipCap:        tx.MaxPriorityFeePerGas.ToBig(),
		Data:             tx.Data,
		SkipNonceChecks:  true,
		SkipFromEOACheck: true,
	}
}
