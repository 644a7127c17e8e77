package p2p

import (
	"bytes"
	"encoding/gob"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/consensus"
)

func init() {
	gob.Register(GossipMessage{})
}

// GossipMessage is the wire envelope carried over both gossip topics.
// Exactly one of Tx/Batch is populated; a message with both or neither
// set is malformed and dropped by the receiver.
type GossipMessage struct {
	Tx    *chain.HybridTransaction
	Batch *consensus.Batch
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(b []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}
