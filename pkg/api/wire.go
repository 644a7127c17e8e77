package api

import (
	"bytes"
	"encoding/gob"

	"github.com/hybridchain/node/pkg/chain"
)

// decodeTx unmarshals the gob-encoded chain.HybridTransaction carried
// as the hex payload of an eth_sendRawTransaction call. This chain has
// no RLP wire format of its own; gob is what every other internal
// transport (pkg/p2p, pkg/storage) already uses for the same type.
func decodeTx(raw []byte) (chain.HybridTransaction, error) {
	var tx chain.HybridTransaction
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&tx); err != nil {
		return chain.HybridTransaction{}, err
	}
	return tx, nil
}
