package p2p

import (
	"context"

	libp2p "github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"

	"github.com/hybridchain/node/pkg/chain"
	"github.com/hybridchain/node/pkg/consensus"
)

const (
	topicTx    = "eth-narwhal-tx"
	topicBatch = "eth-narwhal-batch"
)

// Libp2pNet is the gossipsub-backed implementation of consensus.Network.
// It publishes locally-authored transactions and batches on their
// respective topics, and forwards whatever it receives from peers into
// the engine's input channel as a ConsensusInput.
type Libp2pNet struct {
	h   host.Host
	ps  *pubsub.PubSub
	log *zap.SugaredLogger

	tTx, tBatch     *pubsub.Topic
	subTx, subBatch *pubsub.Subscription

	input chan<- consensus.ConsensusInput
}

type Libp2pConfig struct {
	ListenAddr string
	Bootstrap  []string
	Logger     *zap.SugaredLogger
	Input      chan<- consensus.ConsensusInput
}

func NewLibp2pNet(ctx context.Context, cfg Libp2pConfig) (*Libp2pNet, error) {
	var opts []libp2p.Option
	if cfg.ListenAddr != "" {
		maddr, err := ma.NewMultiaddr(cfg.ListenAddr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, libp2p.ListenAddrs(maddr))
	}
	h, err := libp2p.New(opts...)
	if err != nil {
		return nil, err
	}
	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return nil, err
	}

	net := &Libp2pNet{h: h, ps: ps, log: cfg.Logger, input: cfg.Input}

	for _, bs := range cfg.Bootstrap {
		if err := connectMultiaddr(ctx, h, bs); err != nil && cfg.Logger != nil {
			cfg.Logger.Warnw("bootstrap_connect_failed", "addr", bs, "err", err)
		}
	}

	if err := net.joinTopics(); err != nil {
		return nil, err
	}

	go net.handleTx(ctx)
	go net.handleBatch(ctx)

	if cfg.Logger != nil {
		cfg.Logger.Infow("libp2p_ready", "peer", h.ID().String(), "listen", cfg.ListenAddr)
	}
	return net, nil
}

func connectMultiaddr(ctx context.Context, h host.Host, addr string) error {
	m, err := ma.NewMultiaddr(addr)
	if err != nil {
		return err
	}
	info, err := peer.AddrInfoFromP2pAddr(m)
	if err != nil {
		return err
	}
	return h.Connect(ctx, *info)
}

func (n *Libp2pNet) joinTopics() error {
	var err error
	if n.tTx, err = n.ps.Join(topicTx); err != nil {
		return err
	}
	if n.tBatch, err = n.ps.Join(topicBatch); err != nil {
		return err
	}
	if n.subTx, err = n.tTx.Subscribe(); err != nil {
		return err
	}
	if n.subBatch, err = n.tBatch.Subscribe(); err != nil {
		return err
	}
	return nil
}

func (n *Libp2pNet) Host() host.Host { return n.h }

// PublishTx implements consensus.Network.
func (n *Libp2pNet) PublishTx(tx chain.HybridTransaction) error {
	data, err := gobEncode(GossipMessage{Tx: &tx})
	if err != nil {
		return err
	}
	return n.tTx.Publish(context.Background(), data)
}

// PublishBatch implements consensus.Network.
func (n *Libp2pNet) PublishBatch(b consensus.Batch) error {
	data, err := gobEncode(GossipMessage{Batch: &b})
	if err != nil {
		return err
	}
	return n.tBatch.Publish(context.Background(), data)
}

func (n *Libp2pNet) handleTx(ctx context.Context) {
	for {
		msg, err := n.subTx.Next(ctx)
		if err != nil {
			return
		}
		var gm GossipMessage
		if err := gobDecode(msg.Data, &gm); err != nil || gm.Tx == nil || gm.Batch != nil {
			continue
		}
		n.forward(ctx, consensus.NewTxInput(*gm.Tx))
	}
}

func (n *Libp2pNet) handleBatch(ctx context.Context) {
	for {
		msg, err := n.subBatch.Next(ctx)
		if err != nil {
			return
		}
		var gm GossipMessage
		if err := gobDecode(msg.Data, &gm); err != nil || gm.Batch == nil || gm.Tx != nil {
			continue
		}
		n.forward(ctx, consensus.NewBatchInput(*gm.Batch))
	}
}

// forward blocks until the consensus engine drains the input channel,
// per the no-drop backpressure contract; only ctx cancellation (node
// shutdown) can abandon the send.
func (n *Libp2pNet) forward(ctx context.Context, in consensus.ConsensusInput) {
	if n.input == nil {
		return
	}
	select {
	case n.input <- in:
	case <-ctx.Done():
	}
}

var _ consensus.Network = (*Libp2pNet)(nil)
