package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa44"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/chainerr"
)

// PQKeyPair holds an ML-DSA-44 (Dilithium-II) key pair, mirroring the
// classical Signer's role for the post-quantum half of a hybrid
// transaction's authentication.
type PQKeyPair struct {
	Public  *mldsa44.PublicKey
	private *mldsa44.PrivateKey
}

// GeneratePQKey creates a new random ML-DSA-44 key pair.
func GeneratePQKey() (*PQKeyPair, error) {
	pub, priv, err := mldsa44.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate pq key: %w", err)
	}
	return &PQKeyPair{Public: pub, private: priv}, nil
}

// PublicKeyBytes returns the packed public key, suitable for
// HybridTransaction.PQPubKey.
func (k *PQKeyPair) PublicKeyBytes() []byte {
	return k.Public.Bytes()
}

// SignBody signs the canonical body encoding of tx with the PQ private
// key and returns the detached signature bytes.
func (k *PQKeyPair) SignBody(tx *chain.HybridTransaction) []byte {
	return mldsa44.Sign(k.private, chain.EncodeBody(tx))
}

// VerifyPQ checks tx.PQSig against tx.PQPubKey over the transaction's
// canonical body. It returns chainerr.ErrMalformed if either field is
// missing or the wrong size, and chainerr.ErrVerifyFailed if the
// signature does not authenticate the body.
func VerifyPQ(tx *chain.HybridTransaction) error {
	if len(tx.PQPubKey) != mldsa44.PublicKeySize {
		return fmt.Errorf("%w: pq public key size %d, want %d", chainerr.ErrMalformed, len(tx.PQPubKey), mldsa44.PublicKeySize)
	}
	if len(tx.PQSig) != mldsa44.SignatureSize {
		return fmt.Errorf("%w: pq signature size %d, want %d", chainerr.ErrMalformed, len(tx.PQSig), mldsa44.SignatureSize)
	}

	pub := mldsa44.PublicKeyFromBytes(tx.PQPubKey)
	if pub == nil {
		return fmt.Errorf("%w: pq public key unmarshal failed", chainerr.ErrMalformed)
	}

	if !mldsa44.Verify(pub, chain.EncodeBody(tx), tx.PQSig) {
		return chainerr.ErrVerifyFailed
	}
	return nil
}
