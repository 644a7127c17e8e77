package crypto

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/chainerr"
)

func samplePQTx() *chain.HybridTransaction {
	return &chain.HybridTransaction{
		From:                 common.HexToAddress("0x1"),
		Nonce:                uint256.NewInt(0),
		GasLimit:             21000,
		MaxFeePerGas:         uint256.NewInt(1),
		MaxPriorityFeePerGas: uint256.NewInt(1),
		Value:                uint256.NewInt(0),
		ChainID:              1337,
	}
}

func TestGeneratePQKeyAndSignVerify(t *testing.T) {
	kp, err := GeneratePQKey()
	if err != nil {
		t.Fatalf("generate pq key: %v", err)
	}

	tx := samplePQTx()
	tx.PQPubKey = kp.PublicKeyBytes()
	tx.PQSig = kp.SignBody(tx)

	if err := VerifyPQ(tx); err != nil {
		t.Fatalf("VerifyPQ failed on a correctly signed tx: %v", err)
	}
}

func TestVerifyPQRejectsTamperedBody(t *testing.T) {
	kp, err := GeneratePQKey()
	if err != nil {
		t.Fatalf("generate pq key: %v", err)
	}

	tx := samplePQTx()
	tx.PQPubKey = kp.PublicKeyBytes()
	tx.PQSig = kp.SignBody(tx)

	tx.Value = uint256.NewInt(999)

	if err := VerifyPQ(tx); err == nil {
		t.Fatal("VerifyPQ should reject a tx whose body changed after signing")
	}
}

func TestVerifyPQRejectsMissingFields(t *testing.T) {
	tx := samplePQTx()
	if err := VerifyPQ(tx); err == nil {
		t.Fatal("VerifyPQ should reject a tx with no pq signature")
	}
}

func TestVerifyPQRejectsWrongSizeKey(t *testing.T) {
	tx := samplePQTx()
	tx.PQPubKey = []byte{1, 2, 3}
	tx.PQSig = make([]byte, 10)

	err := VerifyPQ(tx)
	if !errors.Is(err, chainerr.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
