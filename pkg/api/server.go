// Package api exposes the node over JSON-RPC 2.0 (eth_blockNumber,
// eth_getBlockByNumber, eth_sendRawTransaction) plus a WebSocket feed
// of committed blocks and a plain health check.
package api

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/consensus"
	"github.com/hybridchain/node/pkg/storage"
)

// Server serves the JSON-RPC API and the block-commit WebSocket feed.
type Server struct {
	store  storage.ChainStore
	input  chan<- consensus.ConsensusInput
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger
}

func NewServer(store storage.ChainStore, input chan<- consensus.ConsensusInput, log *zap.SugaredLogger) *Server {
	s := &Server{
		store:  store,
		input:  input,
		router: mux.NewRouter(),
		hub:    NewHub(),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleRPC).Methods("POST")
	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the WebSocket hub and blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	})
	handler := c.Handler(s.router)

	if s.log != nil {
		s.log.Infow("api_listening", "addr", addr)
	}
	return http.ListenAndServe(addr, handler)
}

// BroadcastBlock notifies every "blocks"-subscribed WebSocket client
// that a new block was committed.
func (s *Server) BroadcastBlock(b chain.Block) {
	s.hub.BroadcastToChannel("blocks", blockNotification{
		Type:   "block",
		Number: b.Header.Number,
		Hash:   b.Header.Hash.Hex(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondRPCError(w, nil, errCodeParse, "parse error")
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		respondRPCError(w, req.ID, errCodeInvalidRequest, "invalid request")
		return
	}

	switch req.Method {
	case "eth_blockNumber":
		s.handleBlockNumber(w, req)
	case "eth_getBlockByNumber":
		s.handleGetBlockByNumber(w, req)
	case "eth_sendRawTransaction":
		s.handleSendRawTransaction(w, req)
	default:
		respondRPCError(w, req.ID, errCodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) handleBlockNumber(w http.ResponseWriter, req rpcRequest) {
	n, err := s.store.GetHeadNumber()
	if err != nil {
		respondRPCError(w, req.ID, errCodeInternal, err.Error())
		return
	}
	respondRPCResult(w, req.ID, hexUint64(n))
}

func (s *Server) handleGetBlockByNumber(w http.ResponseWriter, req rpcRequest) {
	if len(req.Params) < 1 {
		respondRPCError(w, req.ID, errCodeInvalidParams, "expected block number as first param")
		return
	}
	numberHex, ok := req.Params[0].(string)
	if !ok {
		respondRPCError(w, req.ID, errCodeInvalidParams, "block number must be a hex string")
		return
	}
	number, err := parseHexUint64(numberHex)
	if err != nil {
		respondRPCError(w, req.ID, errCodeInvalidParams, err.Error())
		return
	}

	block, found, err := s.store.GetBlock(number)
	if err != nil {
		respondRPCError(w, req.ID, errCodeInternal, err.Error())
		return
	}
	if !found {
		respondRPCResult(w, req.ID, nil)
		return
	}

	txHashes := make([]string, len(block.Txs))
	for i, tx := range block.Txs {
		txHashes[i] = tx.Hash.Hex()
	}

	respondRPCResult(w, req.ID, blockView{
		Number:       hexUint64(block.Header.Number),
		Hash:         block.Header.Hash.Hex(),
		ParentHash:   block.Header.ParentHash.Hex(),
		Timestamp:    hexUint64(block.Header.Timestamp),
		Transactions: txHashes,
	})
}

// handleSendRawTransaction accepts a hex-encoded gob payload of a
// chain.HybridTransaction and hands it to consensus as a new mempool
// candidate.
func (s *Server) handleSendRawTransaction(w http.ResponseWriter, req rpcRequest) {
	if len(req.Params) < 1 {
		respondRPCError(w, req.ID, errCodeInvalidParams, "expected raw transaction as first param")
		return
	}
	txHex, ok := req.Params[0].(string)
	if !ok {
		respondRPCError(w, req.ID, errCodeInvalidParams, "raw transaction must be a hex string")
		return
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(txHex, "0x"))
	if err != nil {
		respondRPCError(w, req.ID, errCodeInvalidParams, "invalid hex encoding")
		return
	}

	tx, err := decodeTx(raw)
	if err != nil {
		respondRPCError(w, req.ID, errCodeInvalidParams, err.Error())
		return
	}

	// Blocks until consensus drains the channel; backpressure belongs on
	// the submitter, not a dropped transaction.
	s.input <- consensus.NewTxInput(tx)

	respondRPCResult(w, req.ID, tx.Hash.Hex())
}

func hexUint64(n uint64) string {
	return "0x" + strconv.FormatUint(n, 16)
}

func parseHexUint64(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondRPCResult(w http.ResponseWriter, id any, result any) {
	respondJSON(w, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func respondRPCError(w http.ResponseWriter, id any, code int, message string) {
	respondJSON(w, rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}
