package storage

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hybridchain/node/pkg/chain"
)

// InMemoryChainStore is a ChainStore backed by plain maps, useful for
// tests and single-process dry runs where pebble's durability isn't
// needed. It holds the same atomicity contract as PebbleStore: PutBlock
// writes the block and every transaction under one lock before
// returning.
type InMemoryChainStore struct {
	mu sync.Mutex

	blocks    map[uint64]chain.Block
	txs       map[common.Hash]chain.HybridTransaction
	headNum   uint64
	headKnown bool
}

func NewInMemoryChainStore() *InMemoryChainStore {
	return &InMemoryChainStore{
		blocks: make(map[uint64]chain.Block),
		txs:    make(map[common.Hash]chain.HybridTransaction),
	}
}

func (s *InMemoryChainStore) PutBlock(b chain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks[b.Header.Number] = b
	for _, tx := range b.Txs {
		s.txs[tx.Hash] = tx
	}
	return nil
}

func (s *InMemoryChainStore) GetBlock(height uint64) (chain.Block, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blocks[height]
	return b, ok, nil
}

func (s *InMemoryChainStore) GetTx(hash common.Hash) (chain.HybridTransaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[hash]
	return tx, ok, nil
}

func (s *InMemoryChainStore) PutHead(height uint64, hash common.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.headNum = height
	s.headKnown = true
	return nil
}

func (s *InMemoryChainStore) GetHeadNumber() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.headNum, nil
}

func (s *InMemoryChainStore) GetHeadHeader() (*chain.BlockHeader, bool, error) {
	s.mu.Lock()
	known := s.headKnown
	n := s.headNum
	s.mu.Unlock()

	if !known {
		return nil, false, nil
	}
	b, ok, err := s.GetBlock(n)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &b.Header, true, nil
}

var _ ChainStore = (*InMemoryChainStore)(nil)
