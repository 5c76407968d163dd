package relay

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/metrics"
	"bridge-gate.backend/pkg/logger"
)

const (
	headerKind      = "Bridge-Kind"
	headerReference = "Bridge-Reference"
	headerChainTo   = "Bridge-Chain-To"
)

// Publisher hands outbox messages to the transport that carries them to their destination chain
type Publisher interface {
	Publish(ctx context.Context, msg *entities.CrossChainMessage) error
}

// jetStream is the part of nats.JetStreamContext the publisher uses
type jetStream interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// NATSPublisher publishes outbox messages on JetStream subjects <prefix>.<chainTo>.<kind>
type NATSPublisher struct {
	js     jetStream
	prefix string
}

// NewNATSPublisher creates a publisher on an existing JetStream context
func NewNATSPublisher(js nats.JetStreamContext, prefix string) *NATSPublisher {
	return newNATSPublisher(js, prefix)
}

func newNATSPublisher(js jetStream, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "bridge"
	}
	return &NATSPublisher{js: js, prefix: prefix}
}

// Subject returns the subject a message is published on
func (p *NATSPublisher) Subject(msg *entities.CrossChainMessage) string {
	return fmt.Sprintf("%s.%d.%s", p.prefix, msg.ChainIDTo, strings.ToLower(string(msg.Kind)))
}

// Publish sends msg and waits for the stream ack. The message id doubles as the
// JetStream dedup id, so a retried publish is stored once.
func (p *NATSPublisher) Publish(ctx context.Context, msg *entities.CrossChainMessage) error {
	out := nats.NewMsg(p.Subject(msg))
	out.Data = msg.Payload
	out.Header.Set(headerKind, string(msg.Kind))
	out.Header.Set(headerReference, msg.Reference)
	out.Header.Set(headerChainTo, strconv.FormatUint(uint64(msg.ChainIDTo), 10))

	ack, err := p.js.PublishMsg(out, nats.MsgId(msg.ID.String()), nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("publish %s: %w", out.Subject, err)
	}
	if ack != nil && ack.Duplicate {
		logger.Debug(ctx, "Outbox message already in stream",
			zap.String("message_id", msg.ID.String()),
			zap.String("stream", ack.Stream),
		)
	}
	return nil
}

// NATSConfig holds the connection settings of the relay
type NATSConfig struct {
	URL           string
	Stream        string
	SubjectPrefix string
	Timeout       time.Duration
}

// Connect dials NATS and makes sure the relay stream exists
func Connect(cfg NATSConfig) (*nats.Conn, nats.JetStreamContext, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Timeout(timeout),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn(context.Background(), "NATS disconnected", zap.Error(err))
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info(context.Background(), "NATS reconnected", zap.String("url", nc.ConnectedUrl()))
			metrics.NATSConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect NATS: %w", err)
	}
	metrics.NATSConnectionStatus.Set(1)

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	if err := ensureStream(js, cfg); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, js, nil
}

func ensureStream(js nats.JetStreamContext, cfg NATSConfig) error {
	if _, err := js.StreamInfo(cfg.Stream); err == nil {
		return nil
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "bridge"
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:       cfg.Stream,
		Subjects:   []string{prefix + ".>"},
		Retention:  nats.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: time.Hour,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", cfg.Stream, err)
	}
	logger.Info(context.Background(), "NATS stream created", zap.String("stream", cfg.Stream))
	return nil
}
