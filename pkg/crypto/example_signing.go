package crypto

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/hybridchain/node/pkg/chain"
)

// ExampleSignHybridTransaction demonstrates minting a HybridTransaction
// and attaching both the classical EIP-712 signature and the ML-DSA-44
// post-quantum signature to it.
func ExampleSignHybridTransaction() {
	signer, err := GenerateKey()
	if err != nil {
		panic(err)
	}
	fmt.Printf("classical address: %s\n", signer.Address().Hex())

	pqKey, err := GeneratePQKey()
	if err != nil {
		panic(err)
	}

	tx := &chain.HybridTransaction{
		From:                 signer.Address(),
		Nonce:                uint256.NewInt(0),
		GasLimit:             21000,
		MaxFeePerGas:         uint256.NewInt(1_000_000_000),
		MaxPriorityFeePerGas: uint256.NewInt(1),
		Value:                uint256.NewInt(1),
		ChainID:              1337,
	}

	eip712 := NewEIP712Signer(DefaultDomain(tx.ChainID))

	classicalSig, err := eip712.SignTransaction(signer, tx)
	if err != nil {
		panic(err)
	}
	tx.Sig = classicalSig

	tx.PQPubKey = pqKey.PublicKeyBytes()
	tx.PQSig = pqKey.SignBody(tx)

	tx.Hash = chain.HashTx(tx)

	fmt.Printf("tx hash: %s\n", tx.Hash.Hex())
	fmt.Printf("classical sig: 0x%x\n", tx.Sig)
	fmt.Printf("pq sig len: %d bytes, pq pubkey len: %d bytes\n", len(tx.PQSig), len(tx.PQPubKey))

	if err := VerifyPQ(tx); err != nil {
		fmt.Printf("pq verification failed: %v\n", err)
		return
	}
	fmt.Println("pq signature verified")

	recovered, err := eip712.RecoverSigner(tx, tx.Sig)
	if err != nil {
		fmt.Printf("classical recovery failed: %v\n", err)
		return
	}
	fmt.Printf("recovered classical signer: %s (matches: %v)\n", recovered.Hex(), recovered == signer.Address())
}
