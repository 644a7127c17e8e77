package storage

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hybridchain/node/pkg/chain"
)

func newTestStore(t *testing.T) *PebbleStore {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "chaindb")
	s, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("NewPebbleStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBlock(number uint64) chain.Block {
	tx := chain.HybridTransaction{
		From:                 common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Nonce:                uint256.NewInt(number),
		GasLimit:             21000,
		MaxFeePerGas:         uint256.NewInt(1_000_000_000),
		MaxPriorityFeePerGas: uint256.NewInt(1),
		Value:                uint256.NewInt(1),
		ChainID:              1337,
	}
	tx.Hash = chain.HashTx(&tx)

	h := chain.BlockHeader{
		Number:    number,
		TxRoot:    chain.TxRoot([]chain.HybridTransaction{tx}),
		Timestamp: 1000 + number,
	}
	h.Hash = chain.HashHeader(h.Number, h.ParentHash, h.TxRoot)

	return chain.Block{Header: h, Txs: []chain.HybridTransaction{tx}}
}

func TestPebbleStorePutGetBlockRoundTrip(t *testing.T) {
	s := newTestStore(t)
	b := sampleBlock(1)

	if err := s.PutBlock(b); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}

	got, ok, err := s.GetBlock(1)
	if err != nil || !ok {
		t.Fatalf("GetBlock: ok=%v err=%v", ok, err)
	}
	if got.Header.Hash != b.Header.Hash {
		t.Fatalf("header hash mismatch: got %s want %s", got.Header.Hash.Hex(), b.Header.Hash.Hex())
	}
	if len(got.Txs) != 1 {
		t.Fatalf("expected 1 tx, got %d", len(got.Txs))
	}
}

func TestPebbleStoreGetTxIndexedIndependently(t *testing.T) {
	s := newTestStore(t)
	b := sampleBlock(2)

	if err := s.PutBlock(b); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}

	tx, ok, err := s.GetTx(b.Txs[0].Hash)
	if err != nil || !ok {
		t.Fatalf("GetTx: ok=%v err=%v", ok, err)
	}
	if tx.Hash != b.Txs[0].Hash {
		t.Fatalf("tx hash mismatch")
	}
}

func TestPebbleStoreMissingBlockNotFound(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.GetBlock(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected block 999 to be absent")
	}
}

func TestPebbleStoreHeadTracksLatestPut(t *testing.T) {
	s := newTestStore(t)
	b1 := sampleBlock(1)
	b2 := sampleBlock(2)

	if err := s.PutBlock(b1); err != nil {
		t.Fatalf("PutBlock b1: %v", err)
	}
	if err := s.PutHead(b1.Header.Number, b1.Header.Hash); err != nil {
		t.Fatalf("PutHead b1: %v", err)
	}
	if err := s.PutBlock(b2); err != nil {
		t.Fatalf("PutBlock b2: %v", err)
	}
	if err := s.PutHead(b2.Header.Number, b2.Header.Hash); err != nil {
		t.Fatalf("PutHead b2: %v", err)
	}

	n, err := s.GetHeadNumber()
	if err != nil {
		t.Fatalf("GetHeadNumber: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected head number 2, got %d", n)
	}

	header, ok, err := s.GetHeadHeader()
	if err != nil || !ok {
		t.Fatalf("GetHeadHeader: ok=%v err=%v", ok, err)
	}
	if header.Number != 2 {
		t.Fatalf("expected head header number 2, got %d", header.Number)
	}
}

func TestPebbleStoreHeadAbsentBeforeAnyPut(t *testing.T) {
	s := newTestStore(t)

	n, err := s.GetHeadNumber()
	if err != nil {
		t.Fatalf("GetHeadNumber: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected zero head number before any PutHead, got %d", n)
	}

	_, ok, err := s.GetHeadHeader()
	if err != nil {
		t.Fatalf("GetHeadHeader: %v", err)
	}
	if ok {
		t.Fatalf("expected no head header before any block exists")
	}
}

func TestPebbleStorePersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chaindb")
	s, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("NewPebbleStore: %v", err)
	}

	b := sampleBlock(5)
	if err := s.PutBlock(b); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}
	if err := s.PutHead(b.Header.Number, b.Header.Hash); err != nil {
		t.Fatalf("PutHead: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.GetBlock(5)
	if err != nil || !ok {
		t.Fatalf("GetBlock after reopen: ok=%v err=%v", ok, err)
	}
	if got.Header.Hash != b.Header.Hash {
		t.Fatalf("header mismatch after reopen")
	}

	n, err := reopened.GetHeadNumber()
	if err != nil || n != 5 {
		t.Fatalf("head not persisted: n=%d err=%v", n, err)
	}
}
