package storage

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/hybridchain/node/pkg/chain"
)

// ChainStore is the durable home for blocks, transactions, and the
// chain head pointer. PutBlock must make a block and every one of its
// transactions durable as a single atomic unit; PutHead must only be
// called once that write has returned successfully, so a crash can
// never leave the head pointing at a block that isn't there.
type ChainStore interface {
	PutBlock(b chain.Block) error
	GetBlock(height uint64) (chain.Block, bool, error)
	GetTx(hash common.Hash) (chain.HybridTransaction, bool, error)

	PutHead(height uint64, hash common.Hash) error
	GetHeadNumber() (uint64, error)
	GetHeadHeader() (*chain.BlockHeader, bool, error)
}
