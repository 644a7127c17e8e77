package crypto

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethmath "github.com/ethereum/go-ethereum/common/math"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/hybridchain/node/pkg/chain"
)

// EIP712Domain is the domain separator for the transaction typed-data
// signature, preventing replay across chains and deployments.
type EIP712Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract common.Address
}

// EIP712Signer signs and verifies HybridTransaction bodies as EIP-712
// typed data, so a standard Ethereum wallet can produce the classical
// half of a hybrid signature.
type EIP712Signer struct {
	domain EIP712Domain
}

func NewEIP712Signer(domain EIP712Domain) *EIP712Signer {
	return &EIP712Signer{domain: domain}
}

// DefaultDomain returns the domain used when none is configured.
func DefaultDomain(chainID uint64) EIP712Domain {
	return EIP712Domain{
		Name:              "HybridChain",
		Version:           "1",
		ChainID:           chainID,
		VerifyingContract: common.Address{},
	}
}

func (e *EIP712Signer) typedData(tx *chain.HybridTransaction) apitypes.TypedData {
	to := ""
	if tx.To != nil {
		to = tx.To.Hex()
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Transaction": []apitypes.Type{
				{Name: "from", Type: "address"},
				{Name: "to", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "gasLimit", Type: "uint256"},
				{Name: "maxFeePerGas", Type: "uint256"},
				{Name: "maxPriorityFeePerGas", Type: "uint256"},
				{Name: "value", Type: "uint256"},
				{Name: "chainId", Type: "uint256"},
			},
		},
		PrimaryType: "Transaction",
		Domain: apitypes.TypedDataDomain{
			Name:              e.domain.Name,
			Version:           e.domain.Version,
			ChainId:           (*gethmath.HexOrDecimal256)(new(big.Int).SetUint64(e.domain.ChainID)),
			VerifyingContract: e.domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"from":                 tx.From.Hex(),
			"to":                   to,
			"nonce":                tx.Nonce.String(),
			"gasLimit":             fmt.Sprintf("%d", tx.GasLimit),
			"maxFeePerGas":         tx.MaxFeePerGas.String(),
			"maxPriorityFeePerGas": tx.MaxPriorityFeePerGas.String(),
			"value":                tx.Value.String(),
			"chainId":              fmt.Sprintf("%d", tx.ChainID),
		},
	}
}

// HashTypedData computes the EIP-712 digest for tx, the value the
// classical signature is taken over.
func (e *EIP712Signer) HashTypedData(tx *chain.HybridTransaction) ([]byte, error) {
	td := e.typedData(tx)

	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("hash domain: %w", err)
	}
	msgHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, fmt.Errorf("hash message: %w", err)
	}

	raw := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(msgHash)))
	return gethcrypto.Keccak256Hash(raw).Bytes(), nil
}

// SignTransaction signs tx's typed-data digest and returns the
// classical 65-byte signature.
func (e *EIP712Signer) SignTransaction(signer *Signer, tx *chain.HybridTransaction) ([]byte, error) {
	hash, err := e.HashTypedData(tx)
	if err != nil {
		return nil, fmt.Errorf("hash transaction: %w", err)
	}
	return signer.Sign(hash)
}

// RecoverSigner recovers the address that produced sig over tx's
// typed-data digest. Verification of this signature is advisory only —
// the consensus engine never rejects a transaction on its account.
func (e *EIP712Signer) RecoverSigner(tx *chain.HybridTransaction, sig []byte) (common.Address, error) {
	hash, err := e.HashTypedData(tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("hash transaction: %w", err)
	}
	return RecoverAddress(hash, sig)
}
