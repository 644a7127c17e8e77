package chain

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// HashTx computes a transaction's content hash over its canonical body
// encoding. It does not cover Sig/PQSig/PQPubKey — the hash identifies
// what was agreed to, not who agreed to it.
func HashTx(tx *HybridTransaction) common.Hash {
	return sha256.Sum256(EncodeBody(tx))
}

// TxRoot folds an ordered list of transaction hashes into a single
// digest. This is not a Merkle tree — just a deterministic
// accumulator, matching the original engine's placeholder root.
func TxRoot(txs []HybridTransaction) common.Hash {
	h := sha256.New()
	for i := range txs {
		h.Write(txs[i].Hash[:])
	}
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// HashHeader computes the block hash from the fields fixed at
// materialization time: number, parent hash, and tx root. Timestamp and
// state root are deliberately excluded — state root is unknown until
// execution, and the header's own Hash field can't hash itself.
func HashHeader(number uint64, parentHash, txRoot common.Hash) common.Hash {
	h := sha256.New()
	var numBuf [8]byte
	binary.BigEndian.PutUint64(numBuf[:], number)
	h.Write(numBuf[:])
	h.Write(parentHash[:])
	h.Write(txRoot[:])
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}
