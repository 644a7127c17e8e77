// Package bridge notifies external chains (Solana, Sui, Aptos) of newly
// committed blocks. Notification is best-effort and fire-and-forget —
// a bridge endpoint being unreachable never blocks or fails block
// commitment itself.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hybridchain/node/pkg/chain"
)

// Config names the outbound endpoints for each target chain. An empty
// URL disables notification to that chain.
type Config struct {
	SolanaURL string
	SuiURL    string
	AptosURL  string
}

type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type blockParam struct {
	Number uint64 `json:"number"`
	Hash   string `json:"hash"`
}

// Manager posts a notification per configured chain for every block
// the node commits.
type Manager struct {
	cfg    Config
	client *http.Client
	log    *zap.SugaredLogger
}

func NewManager(cfg Config, log *zap.SugaredLogger) *Manager {
	return &Manager{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// NotifyAll notifies every configured bridge target about b. Each
// target's failure is logged independently and does not prevent the
// others from being attempted.
func (m *Manager) NotifyAll(ctx context.Context, b chain.Block) {
	if m.cfg.SolanaURL != "" {
		if err := m.notifySolana(ctx, b); err != nil && m.log != nil {
			m.log.Warnw("bridge_notify_failed", "chain", "solana", "number", b.Header.Number, "err", err)
		}
	}
	if m.cfg.SuiURL != "" {
		if err := m.notifySui(ctx, b); err != nil && m.log != nil {
			m.log.Warnw("bridge_notify_failed", "chain", "sui", "number", b.Header.Number, "err", err)
		}
	}
	if m.cfg.AptosURL != "" {
		if err := m.notifyAptos(ctx, b); err != nil && m.log != nil {
			m.log.Warnw("bridge_notify_failed", "chain", "aptos", "number", b.Header.Number, "err", err)
		}
	}
}

func (m *Manager) notifySolana(ctx context.Context, b chain.Block) error {
	return m.postJSONRPC(ctx, m.cfg.SolanaURL, b, "solana")
}

func (m *Manager) notifySui(ctx context.Context, b chain.Block) error {
	return m.postJSONRPC(ctx, m.cfg.SuiURL, b, "sui")
}

// notifyAptos uses a plain REST POST rather than the JSON-RPC envelope
// the other two chains expect, matching Aptos's own API convention.
func (m *Manager) notifyAptos(ctx context.Context, b chain.Block) error {
	url := m.cfg.AptosURL + "/bridge/eth_block"
	payload := blockParam{Number: b.Header.Number, Hash: b.Header.Hash.Hex()}

	status, err := m.post(ctx, url, payload)
	if err != nil {
		return err
	}
	if m.log != nil {
		m.log.Debugw("bridge_notified", "chain", "aptos", "number", b.Header.Number, "status", status)
	}
	return nil
}

func (m *Manager) postJSONRPC(ctx context.Context, url string, b chain.Block, chainName string) error {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "bridge_notifyEthBlock",
		Params: []any{blockParam{
			Number: b.Header.Number,
			Hash:   b.Header.Hash.Hex(),
		}},
	}

	status, err := m.post(ctx, url, req)
	if err != nil {
		return err
	}
	if m.log != nil {
		m.log.Debugw("bridge_notified", "chain", chainName, "number", b.Header.Number, "status", status)
	}
	return nil
}

func (m *Manager) post(ctx context.Context, url string, payload any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal bridge payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build bridge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("post bridge request: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
