package node

import (
	"context"
	"testing"
	"time"

	"github.com/hybridchain/node/pkg/bridge"
	"github.com/hybridchain/node/pkg/consensus"
	"github.com/hybridchain/node/pkg/evm"

	"github.com/hybridchain/node/pkg/chain"
)

func TestRuntimeExecutesCommittedBlocks(t *testing.T) {
	executor, err := evm.NewExecutor(1337)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	bridgeMgr := bridge.NewManager(bridge.Config{}, nil)

	output := make(chan consensus.ConsensusOutput, 1)
	rt := NewRuntime(executor, bridgeMgr, output, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	block := chain.Block{Header: chain.BlockHeader{Number: 1}}
	output <- consensus.NewCommittedBlockOutput(block)

	select {
	case <-time.After(200 * time.Millisecond):
	case <-done:
		t.Fatalf("runtime exited early")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for runtime shutdown")
	}
}
