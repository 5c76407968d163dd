package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-gate.backend/internal/domain/entities"
)

type fakeJetStream struct {
	msgs []*nats.Msg
	opts [][]nats.PubOpt
	ack  *nats.PubAck
	err  error
}

func (f *fakeJetStream) PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, m)
	f.opts = append(f.opts, opts)
	return f.ack, nil
}

func unlockMessage() *entities.CrossChainMessage {
	return &entities.CrossChainMessage{
		ID:        uuid.New(),
		Kind:      entities.MessageKindUnlock,
		ChainIDTo: 56,
		Reference: "0xabc",
		Payload:   json.RawMessage(`{"orderIds":["0xabc"]}`),
		Status:    entities.MessageStatusPending,
	}
}

func TestNATSPublisher_Publish(t *testing.T) {
	js := &fakeJetStream{ack: &nats.PubAck{Stream: "BRIDGE", Sequence: 1}}
	p := newNATSPublisher(js, "")
	msg := unlockMessage()

	require.NoError(t, p.Publish(context.Background(), msg))
	require.Len(t, js.msgs, 1)

	out := js.msgs[0]
	assert.Equal(t, "bridge.56.unlock", out.Subject)
	assert.JSONEq(t, `{"orderIds":["0xabc"]}`, string(out.Data))
	assert.Equal(t, "UNLOCK", out.Header.Get(headerKind))
	assert.Equal(t, "0xabc", out.Header.Get(headerReference))
	assert.Equal(t, "56", out.Header.Get(headerChainTo))
	assert.Len(t, js.opts[0], 2)
}

func TestNATSPublisher_DuplicateAckIsSuccess(t *testing.T) {
	js := &fakeJetStream{ack: &nats.PubAck{Stream: "BRIDGE", Duplicate: true}}
	p := newNATSPublisher(js, "gate")

	msg := unlockMessage()
	msg.Kind = entities.MessageKindSent
	require.NoError(t, p.Publish(context.Background(), msg))
	assert.Equal(t, "gate.56.sent", js.msgs[0].Subject)
}

func TestNATSPublisher_Error(t *testing.T) {
	p := newNATSPublisher(&fakeJetStream{err: errors.New("no responders")}, "bridge")
	err := p.Publish(context.Background(), unlockMessage())
	require.ErrorContains(t, err, "publish bridge.56.unlock")
}
