package consensus

import (
	"sync"

	"github.com/hybridchain/node/pkg/chain"
)

// Mempool is an unbounded FIFO queue of transactions awaiting inclusion
// in a locally-authored batch. Unlike the teacher's bucketed
// classifier, there is no fee-tier prioritization — the Narwhal layer
// cares about throughput, not ordering, since final tx order within a
// committed block comes from the commit rule's batch sort, not mempool
// order.
type Mempool struct {
	mu  sync.Mutex
	txs []chain.HybridTransaction
}

func NewMempool() *Mempool {
	return &Mempool{}
}

func (m *Mempool) Push(tx chain.HybridTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, tx)
}

func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

// Drain removes and returns every pending transaction, leaving the
// mempool empty.
func (m *Mempool) Drain() []chain.HybridTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.txs
	m.txs = nil
	return out
}
