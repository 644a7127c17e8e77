package api

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/consensus"
	"github.com/hybridchain/node/pkg/storage"
)

func newTestServer(t *testing.T) (*Server, *InMemoryInput, storage.ChainStore) {
	t.Helper()
	store := storage.NewInMemoryChainStore()
	input := make(chan consensus.ConsensusInput, 8)
	s := NewServer(store, input, nil)
	return s, &InMemoryInput{ch: input}, store
}

// InMemoryInput lets a test drain what handleSendRawTransaction
// published without needing a running consensus engine.
type InMemoryInput struct {
	ch chan consensus.ConsensusInput
}

func rpcCall(t *testing.T, s *Server, req rpcRequest) rpcResponse {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	rec := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	s.handleRPC(rec, httpReq)

	var resp rpcResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestBlockNumberReflectsHead(t *testing.T) {
	s, _, store := newTestServer(t)

	block := chain.Block{Header: chain.BlockHeader{Number: 5, Hash: common.HexToHash("0xaa")}}
	if err := store.PutBlock(block); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}
	if err := store.PutHead(5, block.Header.Hash); err != nil {
		t.Fatalf("PutHead: %v", err)
	}

	resp := rpcCall(t, s, rpcRequest{JSONRPC: "2.0", ID: 1, Method: "eth_blockNumber"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result != hexUint64(5) {
		t.Fatalf("expected 0x5, got %v", resp.Result)
	}
}

func TestGetBlockByNumberReturnsTxHashes(t *testing.T) {
	s, _, store := newTestServer(t)

	tx := chain.HybridTransaction{Hash: common.HexToHash("0xbb")}
	block := chain.Block{
		Header: chain.BlockHeader{Number: 2, Hash: common.HexToHash("0xcc"), ParentHash: common.HexToHash("0xdd")},
		Txs:    []chain.HybridTransaction{tx},
	}
	if err := store.PutBlock(block); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}

	resp := rpcCall(t, s, rpcRequest{
		JSONRPC: "2.0", ID: 1, Method: "eth_getBlockByNumber",
		Params: []any{hexUint64(2)},
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var view blockView
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("unmarshal blockView: %v", err)
	}
	if len(view.Transactions) != 1 || view.Transactions[0] != tx.Hash.Hex() {
		t.Fatalf("unexpected transactions: %+v", view.Transactions)
	}
}

func TestGetBlockByNumberMissingReturnsNilResult(t *testing.T) {
	s, _, _ := newTestServer(t)

	resp := rpcCall(t, s, rpcRequest{
		JSONRPC: "2.0", ID: 1, Method: "eth_getBlockByNumber",
		Params: []any{hexUint64(99)},
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result != nil {
		t.Fatalf("expected nil result, got %v", resp.Result)
	}
}

func TestSendRawTransactionEnqueuesInput(t *testing.T) {
	s, in, _ := newTestServer(t)

	tx := chain.HybridTransaction{
		Hash:  common.HexToHash("0xee"),
		From:  common.HexToAddress("0x01"),
		Nonce: uint256.NewInt(1),
		Value: uint256.NewInt(0),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tx); err != nil {
		t.Fatalf("gob encode: %v", err)
	}

	resp := rpcCall(t, s, rpcRequest{
		JSONRPC: "2.0", ID: 1, Method: "eth_sendRawTransaction",
		Params: []any{"0x" + bytesToHex(buf.Bytes())},
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result != tx.Hash.Hex() {
		t.Fatalf("expected tx hash in result, got %v", resp.Result)
	}

	select {
	case got := <-in.ch:
		if !got.IsTx() || got.Tx.Hash != tx.Hash {
			t.Fatalf("unexpected consensus input: %+v", got)
		}
	default:
		t.Fatal("expected a ConsensusInput on the channel")
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	resp := rpcCall(t, s, rpcRequest{JSONRPC: "2.0", ID: 1, Method: "eth_nonsense"})
	if resp.Error == nil || resp.Error.Code != errCodeMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp.Error)
	}
}

func bytesToHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}
