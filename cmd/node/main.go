package main

import (
	"context"
	"crypto/sha256"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hybridchain/node/params"
	"github.com/hybridchain/node/pkg/api"
	"github.com/hybridchain/node/pkg/bridge"
	"github.com/hybridchain/node/pkg/consensus"
	"github.com/hybridchain/node/pkg/crypto"
	"github.com/hybridchain/node/pkg/evm"
	"github.com/hybridchain/node/pkg/node"
	"github.com/hybridchain/node/pkg/p2p"
	"github.com/hybridchain/node/pkg/storage"
	"github.com/hybridchain/node/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("") // "" means load from .env in current directory

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "data/node.log"
	}
	logger, err := util.NewLoggerWithFile(logFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", logFile)

	// ---- Storage ----
	store, err := storage.NewPebbleStore(cfg.StoragePath)
	if err != nil {
		sugar.Fatalw("storage_init_failed", "err", err)
	}

	var wal consensus.WAL = storage.NewNopWAL()
	if walPath := os.Getenv("WAL_PATH"); walPath != "" {
		fileWAL, err := storage.NewFileWAL(walPath)
		if err != nil {
			sugar.Fatalw("wal_init_failed", "err", err)
		}
		wal = fileWAL
	}

	// ---- EVM executor ----
	executor, err := evm.NewExecutor(cfg.ChainID)
	if err != nil {
		sugar.Fatalw("executor_init_failed", "err", err)
	}

	// ---- Bridges ----
	bridgeMgr := bridge.NewManager(bridge.Config{
		SolanaURL: cfg.Bridges.SolanaRPCURL,
		SuiURL:    cfg.Bridges.SuiRPCURL,
		AptosURL:  cfg.Bridges.AptosRPCURL,
	}, sugar)

	// Channels:
	// 1. P2P/RPC -> consensus
	consensusIn := make(chan consensus.ConsensusInput, 1024)
	// 2. consensus -> node runtime (executor + bridges)
	consensusOut := make(chan consensus.ConsensusOutput, 1024)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Identity ----
	selfID := consensus.NodeID(os.Getenv("NODE_ID"))
	if selfID == "" {
		selfID = "validator-0"
	}
	if cfg.NodeKeySeed != "" {
		if _, err := crypto.GenerateKey(); err != nil {
			sugar.Warnw("key_generation_failed", "err", err)
		}
	}

	// ---- P2P ----
	lpn, err := p2p.NewLibp2pNet(ctx, p2p.Libp2pConfig{
		ListenAddr: cfg.P2PListen,
		Bootstrap:  nil,
		Logger:     sugar,
		Input:      consensusIn,
	})
	if err != nil {
		sugar.Fatalw("libp2p_init_failed", "err", err)
	}

	// ---- Consensus ----
	engine := consensus.NewEngine(selfID, cfg.TargetTPS, cfg.BlockTimeMS, store, lpn, consensusIn, consensusOut, sugar)
	engine.WAL = wal
	engine.RejectPQ = cfg.RejectPQFailures

	if cfg.NodeKeySeed != "" {
		seed := sha256.Sum256([]byte(cfg.NodeKeySeed))
		engine.BLSSigner = crypto.NewBLSSignerFromSeed(seed[:])
	}

	go func() {
		if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			sugar.Fatalw("engine_failed", "err", err)
		}
	}()

	// ---- JSON-RPC / WebSocket API ----
	apiServer := api.NewServer(store, consensusIn, sugar)
	go func() {
		sugar.Infow("api_server_starting", "addr", cfg.RPCListen)
		if err := apiServer.Start(cfg.RPCListen); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	// ---- Node runtime (execute committed blocks + notify bridges) ----
	rt := node.NewRuntime(executor, bridgeMgr, consensusOut, sugar)
	rt.OnCommit = apiServer.BroadcastBlock
	go func() {
		if err := rt.Run(ctx); err != nil && ctx.Err() == nil {
			sugar.Fatalw("node_runtime_failed", "err", err)
		}
	}()

	sugar.Infow("node_starting",
		"node_id", selfID,
		"chain_id", cfg.ChainID,
		"target_tps", cfg.TargetTPS,
		"block_time_ms", cfg.BlockTimeMS,
		"p2p_listen", cfg.P2PListen,
		"rpc_listen", cfg.RPCListen)

	<-ctx.Done()
	sugar.Info("shutting_down")
}
