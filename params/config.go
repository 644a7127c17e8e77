package params

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ValidatorConfig names a validator's identity, stake weight, and
// hex-encoded ML-DSA-44 public key. These fields are loaded from
// configuration only; no signature check in the node uses PQPubKeyHex.
type ValidatorConfig struct {
	ID          string
	Stake       uint64
	PQPubKeyHex string
}

// BridgeConfig names the outbound endpoints notified on every
// committed block.
type BridgeConfig struct {
	SolanaRPCURL string
	SuiRPCURL    string
	AptosRPCURL  string
}

// Config is the full node configuration: identity, listen addresses,
// storage location, consensus pacing, validator set, and bridge
// targets.
type Config struct {
	NodeKeySeed string // seeds the node's BLS batch signer; empty means local batches carry no certificate
	P2PListen   string
	RPCListen   string
	StoragePath string

	ChainID     uint64
	TargetTPS   uint64
	BlockTimeMS uint64

	// RejectPQFailures, when true, drops a gossiped transaction whose
	// ML-DSA-44 signature fails verification instead of admitting it
	// with a logged warning.
	RejectPQFailures bool

	Validators []ValidatorConfig
	Bridges    BridgeConfig
}

func Default() Config {
	return Config{
		P2PListen:        "/ip4/0.0.0.0/tcp/7000",
		RPCListen:        "0.0.0.0:8545",
		StoragePath:      "data/chain.db",
		ChainID:          1337,
		TargetTPS:        10_000,
		BlockTimeMS:      100,
		RejectPQFailures: false,
		Validators:       nil,
		Bridges: BridgeConfig{
			SolanaRPCURL: "https://api.devnet.solana.com",
			SuiRPCURL:    "https://fullnode.testnet.sui.io:443",
			AptosRPCURL:  "https://fullnode.testnet.aptoslabs.com/v1",
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("NODE_KEY_SEED"); v != "" {
		cfg.NodeKeySeed = v
	}
	if v := os.Getenv("P2P_LISTEN"); v != "" {
		cfg.P2PListen = v
	}
	if v := os.Getenv("RPC_LISTEN"); v != "" {
		cfg.RPCListen = v
	}
	if v := os.Getenv("STORAGE_PATH"); v != "" {
		cfg.StoragePath = v
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.ChainID = n
		}
	}
	if v := os.Getenv("TARGET_TPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.TargetTPS = n
		}
	}
	if v := os.Getenv("BLOCK_TIME_MS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.BlockTimeMS = n
		}
	}
	if v := os.Getenv("REJECT_PQ_FAILURES"); v != "" {
		cfg.RejectPQFailures = v == "true"
	}

	if v := os.Getenv("VALIDATORS"); v != "" {
		cfg.Validators = parseValidators(v)
	}

	if v := os.Getenv("BRIDGE_SOLANA_URL"); v != "" {
		cfg.Bridges.SolanaRPCURL = v
	}
	if v := os.Getenv("BRIDGE_SUI_URL"); v != "" {
		cfg.Bridges.SuiRPCURL = v
	}
	if v := os.Getenv("BRIDGE_APTOS_URL"); v != "" {
		cfg.Bridges.AptosRPCURL = v
	}

	return cfg
}

// parseValidators reads a comma-separated "id:stake:pqPubKeyHex" list,
// e.g. "val1:100:deadbeef,val2:100:cafebabe".
func parseValidators(raw string) []ValidatorConfig {
	var out []ValidatorConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		v := ValidatorConfig{ID: parts[0]}
		if len(parts) > 1 {
			if n, err := strconv.ParseUint(parts[1], 10, 64); err == nil {
				v.Stake = n
			}
		}
		if len(parts) > 2 {
			v.PQPubKeyHex = parts[2]
		}
		out = append(out, v)
	}
	return out
}
