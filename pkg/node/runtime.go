// Package node wires a committed block to its two downstream
// consumers: the EVM executor (synchronous, in order) and the bridge
// notifiers (asynchronous, best-effort).
package node

import (
	"context"

	"go.uber.org/zap"

	"github.com/hybridchain/node/pkg/bridge"
	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/consensus"
	"github.com/hybridchain/node/pkg/evm"
)

// Runtime drains the consensus engine's output channel, executing each
// committed block in order before handing it off to the bridge
// manager as a fire-and-forget notification.
type Runtime struct {
	executor *evm.Executor
	bridge   *bridge.Manager
	output   <-chan consensus.ConsensusOutput
	log      *zap.SugaredLogger

	// OnCommit, if set, is called with every successfully executed
	// block, in commit order, before bridge notification is spawned.
	// The API server's WebSocket hub hangs off this hook rather than
	// pkg/node importing pkg/api directly.
	OnCommit func(chain.Block)
}

func NewRuntime(executor *evm.Executor, bridgeMgr *bridge.Manager, output <-chan consensus.ConsensusOutput, log *zap.SugaredLogger) *Runtime {
	return &Runtime{executor: executor, bridge: bridgeMgr, output: output, log: log}
}

// Run blocks until ctx is cancelled or the output channel closes.
// Execution is strictly sequential in commit order; bridge
// notification for a block is spawned in its own goroutine so a slow
// or unreachable bridge endpoint never delays executing the next
// block.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case out, ok := <-r.output:
			if !ok {
				return nil
			}
			if out.CommittedBlock == nil {
				continue
			}
			block := *out.CommittedBlock

			results, err := r.executor.ExecuteBlock(block)
			if err != nil {
				if r.log != nil {
					r.log.Errorw("execute_block_failed", "number", block.Header.Number, "err", err)
				}
				continue
			}
			if r.log != nil {
				r.log.Infow("executed_block", "number", block.Header.Number, "tx_results", len(results))
			}

			if r.OnCommit != nil {
				r.OnCommit(block)
			}

			go r.bridge.NotifyAll(context.Background(), block)
		}
	}
}
