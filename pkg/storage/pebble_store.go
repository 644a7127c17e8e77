package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/chainerr"
)

// PebbleStore is the durable ChainStore, backed by cockroachdb/pebble.
// Keys are prefixed by column: "b:" for blocks (8-byte big-endian
// height), "t:" for transactions (32-byte hash), and a single "head"
// key holding the current height + hash.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("%w: open pebble at %s: %v", chainerr.ErrStoreFailure, path, err)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

func kBlock(height uint64) []byte { return append([]byte("b:"), heightKey(height)...) }
func kTx(hash common.Hash) []byte { return append([]byte("t:"), hashKey(hash)...) }
func kHead() []byte               { return []byte("head") }

// PutBlock durably writes the block's header+txs and every transaction
// individually, in one atomic pebble batch synced to disk. The block is
// fully durable before this call returns, satisfying the
// "block write precedes head write" ordering the engine relies on.
func (s *PebbleStore) PutBlock(b chain.Block) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	blockBytes, err := encodeGob(b)
	if err != nil {
		return fmt.Errorf("%w: encode block %d: %v", chainerr.ErrStoreFailure, b.Header.Number, err)
	}
	if err := batch.Set(kBlock(b.Header.Number), blockBytes, nil); err != nil {
		return fmt.Errorf("%w: stage block %d: %v", chainerr.ErrStoreFailure, b.Header.Number, err)
	}

	for i := range b.Txs {
		txBytes, err := encodeGob(b.Txs[i])
		if err != nil {
			return fmt.Errorf("%w: encode tx %s: %v", chainerr.ErrStoreFailure, b.Txs[i].Hash.Hex(), err)
		}
		if err := batch.Set(kTx(b.Txs[i].Hash), txBytes, nil); err != nil {
			return fmt.Errorf("%w: stage tx %s: %v", chainerr.ErrStoreFailure, b.Txs[i].Hash.Hex(), err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%w: commit block %d: %v", chainerr.ErrStoreFailure, b.Header.Number, err)
	}
	return nil
}

func (s *PebbleStore) GetBlock(height uint64) (chain.Block, bool, error) {
	val, closer, err := s.db.Get(kBlock(height))
	if err == pebble.ErrNotFound {
		return chain.Block{}, false, nil
	}
	if err != nil {
		return chain.Block{}, false, fmt.Errorf("%w: get block %d: %v", chainerr.ErrStoreFailure, height, err)
	}
	defer closer.Close()

	var out chain.Block
	if err := decodeGob(val, &out); err != nil {
		return chain.Block{}, false, fmt.Errorf("%w: decode block %d: %v", chainerr.ErrStoreFailure, height, err)
	}
	return out, true, nil
}

func (s *PebbleStore) GetTx(hash common.Hash) (chain.HybridTransaction, bool, error) {
	val, closer, err := s.db.Get(kTx(hash))
	if err == pebble.ErrNotFound {
		return chain.HybridTransaction{}, false, nil
	}
	if err != nil {
		return chain.HybridTransaction{}, false, fmt.Errorf("%w: get tx %s: %v", chainerr.ErrStoreFailure, hash.Hex(), err)
	}
	defer closer.Close()

	var out chain.HybridTransaction
	if err := decodeGob(val, &out); err != nil {
		return chain.HybridTransaction{}, false, fmt.Errorf("%w: decode tx %s: %v", chainerr.ErrStoreFailure, hash.Hex(), err)
	}
	return out, true, nil
}

// PutHead advances the chain head. Callers must only invoke this after
// the corresponding PutBlock has returned successfully.
func (s *PebbleStore) PutHead(height uint64, hash common.Hash) error {
	val := make([]byte, 8+common.HashLength)
	binary.BigEndian.PutUint64(val[:8], height)
	copy(val[8:], hash[:])

	if err := s.db.Set(kHead(), val, pebble.Sync); err != nil {
		return fmt.Errorf("%w: put head %d: %v", chainerr.ErrStoreFailure, height, err)
	}
	return nil
}

func (s *PebbleStore) GetHeadNumber() (uint64, error) {
	val, closer, err := s.db.Get(kHead())
	if err == pebble.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get head: %v", chainerr.ErrStoreFailure, err)
	}
	defer closer.Close()
	return binary.BigEndian.Uint64(val[:8]), nil
}

func (s *PebbleStore) GetHeadHeader() (*chain.BlockHeader, bool, error) {
	n, err := s.GetHeadNumber()
	if err != nil {
		return nil, false, err
	}
	block, ok, err := s.GetBlock(n)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &block.Header, true, nil
}

var _ ChainStore = (*PebbleStore)(nil)
