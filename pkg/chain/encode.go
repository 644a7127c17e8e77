package chain

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EncodeBody writes the canonical, length-prefixed, fixed-width
// big-endian encoding of a transaction's content fields. This excludes
// Hash and both signature slots (Sig, PQSig, PQPubKey): it is the one
// byte string every validator must agree on, since it is both the
// preimage of Hash and the payload the PQ signature authenticates.
func EncodeBody(tx *HybridTransaction) []byte {
	buf := make([]byte, 0, 160+len(tx.Data))

	buf = append(buf, tx.From[:]...)

	if tx.To != nil {
		buf = append(buf, 1)
		buf = append(buf, tx.To[:]...)
	} else {
		buf = append(buf, 0)
		buf = append(buf, make([]byte, common.AddressLength)...)
	}

	buf = appendUint256(buf, tx.Nonce)

	var gasLimit [8]byte
	binary.BigEndian.PutUint64(gasLimit[:], tx.GasLimit)
	buf = append(buf, gasLimit[:]...)

	buf = appendUint256(buf, tx.MaxFeePerGas)
	buf = appendUint256(buf, tx.MaxPriorityFeePerGas)
	buf = appendUint256(buf, tx.Value)

	var dataLen [4]byte
	binary.BigEndian.PutUint32(dataLen[:], uint32(len(tx.Data)))
	buf = append(buf, dataLen[:]...)
	buf = append(buf, tx.Data...)

	var chainID [8]byte
	binary.BigEndian.PutUint64(chainID[:], tx.ChainID)
	buf = append(buf, chainID[:]...)

	return buf
}

func appendUint256(buf []byte, v *uint256.Int) []byte {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	return append(buf, b[:]...)
}
