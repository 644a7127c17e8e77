package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/ethereum/go-ethereum/common"
)

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(b []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

// heightKey encodes a block height as an 8-byte big-endian key, so
// range scans over "blocks" iterate in height order.
func heightKey(height uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], height)
	return k[:]
}

// hashKey encodes a transaction hash as its raw 32 bytes.
func hashKey(h common.Hash) []byte {
	return h[:]
}
