package consensus

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hybridchain/node/pkg/chainerr"
)

// DAG holds every batch the local node has seen, indexed by round. It
// is the Narwhal mempool structure: each round's batches name their
// parents from the previous round, but the DAG itself does not verify
// anything about transaction validity — that is the engine's and the
// EVM executor's job.
type DAG struct {
	mu      sync.Mutex
	batches map[Round]map[BatchID]Batch
}

func NewDAG() *DAG {
	return &DAG{batches: make(map[Round]map[BatchID]Batch)}
}

// Insert adds a batch to the DAG. Round 0 batches must have no
// parents; any later round's batch whose declared parents don't all
// resolve in round-1 is rejected, matching the spec's requirement that
// a batch only ever cites the immediately preceding round. A batch whose
// ID is already present in its round is dropped as a duplicate.
func (d *DAG) Insert(b Batch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if b.Round == 0 && len(b.Parents) != 0 {
		return fmt.Errorf("%w: round 0 batch %s declares parents", chainerr.ErrMalformed, b.ID)
	}
	if b.Round > 0 {
		prev := d.batches[b.Round-1]
		for _, p := range b.Parents {
			if _, ok := prev[p]; !ok {
				return fmt.Errorf("%w: batch %s parent %s not found in round %d", chainerr.ErrMalformed, b.ID, p, b.Round-1)
			}
		}
	}

	round, ok := d.batches[b.Round]
	if !ok {
		round = make(map[BatchID]Batch)
		d.batches[b.Round] = round
	}
	if _, dup := round[b.ID]; dup {
		return nil
	}
	round[b.ID] = b
	return nil
}

// BatchesAt returns every batch known for round, sorted ascending by
// BatchID treated as a big-endian uint128 — the deterministic order
// the commit rule relies on.
func (d *DAG) BatchesAt(round Round) []Batch {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := d.batches[round]
	out := make([]Batch, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	return out
}

// Prune discards every round strictly before round, keeping the DAG's
// memory footprint bounded once those rounds have been committed and
// can no longer be cited as parents.
func (d *DAG) Prune(before Round) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for r := range d.batches {
		if r < before {
			delete(d.batches, r)
		}
	}
}
