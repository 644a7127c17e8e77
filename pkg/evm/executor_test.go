package evm

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/chainerr"
)

func sampleTransfer(from common.Address, nonce uint64) chain.HybridTransaction {
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	tx := chain.HybridTransaction{
		From:                 from,
		To:                   &to,
		Nonce:                uint256.NewInt(nonce),
		GasLimit:             21000,
		MaxFeePerGas:         uint256.NewInt(1),
		MaxPriorityFeePerGas: uint256.NewInt(1),
		Value:                uint256.NewInt(0),
		ChainID:              1337,
	}
	tx.Hash = chain.HashTx(&tx)
	return tx
}

func TestExecuteBlockReturnsOneResultPerTx(t *testing.T) {
	ex, err := NewExecutor(1337)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	ex.statedb.AddBalance(from, uint256.NewInt(1_000_000_000_000_000_000), tracing.BalanceChangeUnspecified)
	tx1 := sampleTransfer(from, 0)
	tx2 := sampleTransfer(from, 1)

	block := chain.Block{
		Header: chain.BlockHeader{Number: 1},
		Txs:    []chain.HybridTransaction{tx1, tx2},
	}

	results, err := ex.ExecuteBlock(block)
	if err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Hash != tx1.Hash || results[1].Hash != tx2.Hash {
		t.Fatalf("result hashes don't match input tx hashes")
	}
}

func TestExecuteBlockFailsFatallyOnUnaffordableGas(t *testing.T) {
	ex, err := NewExecutor(1337)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	from := common.HexToAddress("0x3333333333333333333333333333333333333333")
	tx := sampleTransfer(from, 0)
	tx.MaxFeePerGas = uint256.NewInt(1_000_000_000)
	tx.Hash = chain.HashTx(&tx)

	block := chain.Block{
		Header: chain.BlockHeader{Number: 1},
		Txs:    []chain.HybridTransaction{tx},
	}

	results, err := ex.ExecuteBlock(block)
	if err == nil {
		t.Fatalf("expected a fatal error for an account with no balance to buy gas, got results %+v", results)
	}
	if !errors.Is(err, chainerr.ErrExecution) {
		t.Fatalf("expected error to wrap chainerr.ErrExecution, got %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results on fatal error, got %+v", results)
	}
}

func TestExecuteBlockRecordsSuccessForFundedAccount(t *testing.T) {
	ex, err := NewExecutor(1337)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	from := common.HexToAddress("0x4444444444444444444444444444444444444444")
	ex.statedb.AddBalance(from, uint256.NewInt(1_000_000_000_000_000_000), tracing.BalanceChangeUnspecified)

	tx := sampleTransfer(from, 0)

	block := chain.Block{
		Header: chain.BlockHeader{Number: 1},
		Txs:    []chain.HybridTransaction{tx},
	}

	results, err := ex.ExecuteBlock(block)
	if err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Status != types.ReceiptStatusSuccessful {
		t.Fatalf("expected ReceiptStatusSuccessful, got %d (revert reason: %q)", results[0].Status, results[0].RevertReason)
	}
}

func TestExecuteBlockHandlesEmptyBlock(t *testing.T) {
	ex, err := NewExecutor(1337)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	results, err := ex.ExecuteBlock(chain.Block{Header: chain.BlockHeader{Number: 0}})
	if err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results for empty block, got %d", len(results))
	}
}
