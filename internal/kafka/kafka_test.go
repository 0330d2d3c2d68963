package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// chanReader 从 channel 读取消息，ctx 取消时返回
type chanReader struct {
	ch     chan kafka.Message
	closed bool
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.ch:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) Close() error {
	r.closed = true
	return nil
}

func sampleEvent() *model.VoteEvent {
	return &model.VoteEvent{
		VoteID:      "v-1",
		SessionID:   "s-1",
		AssociateID: "as-1",
		Option:      model.OptionAffirm,
		VotedAt:     time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSendVoteEventKeysBySession(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil)

	require.NoError(t, p.SendVoteEvent(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "s-1", string(w.msgs[0].Key))

	decoded, err := decodeVoteEvent(w.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), decoded)
}

func TestSendVoteEventWrapsWriterError(t *testing.T) {
	down := errors.New("leader not available")
	p := newProducer(&fakeWriter{err: down}, nil)

	err := p.SendVoteEvent(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, down)
}

func TestConsumerDispatchesAndStops(t *testing.T) {
	reader := &chanReader{ch: make(chan kafka.Message, 4)}
	c := newConsumer([]messageReader{reader}, nil)

	var (
		mu   sync.Mutex
		seen []string
		done = make(chan struct{}, 2)
	)
	c.StartConsuming(func(ctx context.Context, event *model.VoteEvent) error {
		mu.Lock()
		seen = append(seen, event.VoteID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	msg, err := encodeVoteEvent(sampleEvent())
	require.NoError(t, err)
	reader.ch <- kafka.Message{Value: []byte("not json")}
	reader.ch <- msg
	second := sampleEvent()
	second.VoteID = "v-2"
	msg2, _ := encodeVoteEvent(second)
	reader.ch <- msg2

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler was not called")
		}
	}

	require.NoError(t, c.Stop())
	assert.True(t, reader.closed)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"v-1", "v-2"}, seen)
}
