// Command gen-tx mints a sample HybridTransaction, signs it with a
// fresh classical key (and, optionally, a fresh ML-DSA-44 key), and
// prints the gob-encoded payload ready to paste into an
// eth_sendRawTransaction call.
package main

import (
	"bytes"
	"encoding/gob"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/holiman/uint256"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/crypto"
)

func main() {
	chainID := flag.Uint64("chain-id", 1337, "chain id to sign against")
	withPQ := flag.Bool("pq", true, "also attach an ML-DSA-44 signature")
	value := flag.Uint64("value", 0, "transfer value in wei")
	flag.Parse()

	signer, err := crypto.GenerateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("From:        %s\n", signer.Address().Hex())
	fmt.Printf("Private key: %s (sample only, do not reuse)\n\n", signer.PrivateKeyHex())

	tx := &chain.HybridTransaction{
		From:                 signer.Address(),
		To:                   nil,
		Nonce:                uint256.NewInt(0),
		GasLimit:             21_000,
		MaxFeePerGas:         uint256.NewInt(1_000_000_000),
		MaxPriorityFeePerGas: uint256.NewInt(1_000_000_000),
		Value:                uint256.NewInt(*value),
		ChainID:              *chainID,
	}

	eip712Signer := crypto.NewEIP712Signer(crypto.DefaultDomain(*chainID))
	sig, err := eip712Signer.SignTransaction(signer, tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign transaction: %v\n", err)
		os.Exit(1)
	}
	tx.Sig = sig

	if *withPQ {
		pqKey, err := crypto.GeneratePQKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate pq key: %v\n", err)
			os.Exit(1)
		}
		tx.PQPubKey = pqKey.PublicKeyBytes()
		tx.PQSig = pqKey.SignBody(tx)
		fmt.Println("PQ signature: attached (ML-DSA-44)")
	}

	tx.Hash = chain.HashTx(tx)
	fmt.Printf("Tx hash:     %s\n\n", tx.Hash.Hex())

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(*tx); err != nil {
		fmt.Fprintf(os.Stderr, "encode transaction: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Raw transaction (eth_sendRawTransaction param):")
	fmt.Printf("0x%s\n", hex.EncodeToString(buf.Bytes()))
}
