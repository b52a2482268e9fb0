package consumers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/impairment-ledger/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves a fixed queue of messages and records commits
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestNewKafkaConsumer(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := &config.KafkaConfig{
		Brokers:       "localhost:9092",
		PostedTopic:   "impairments.posted",
		ConsumerGroup: "test-group",
		MinBytes:      1024,
		MaxBytes:      10240,
		MaxWait:       time.Second,
	}

	consumer := NewKafkaConsumer(context.Background(), logger, cfg)
	require.NotNil(t, consumer)
	require.NotNil(t, consumer.reader, "Kafka reader should be initialized")
	assert.Equal(t, "impairments.posted", consumer.topic)
	assert.Equal(t, "test-group", consumer.groupID)
	require.NoError(t, consumer.Close())
}

func TestKafkaConsumer_Subscribe(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("CommitsAfterSuccessfulHandling", func(t *testing.T) {
		reader := &fakeReader{messages: []kafka.Message{
			{Key: []byte("a"), Value: []byte("1"), Offset: 10},
			{Key: []byte("b"), Value: []byte("2"), Offset: 11},
		}}
		consumer := &KafkaConsumer{reader: reader, logger: logger, topic: "t", groupID: "g", retryBackoff: time.Millisecond}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var seen []string
		var mu sync.Mutex
		done := make(chan error, 1)
		go func() {
			done <- consumer.Subscribe(ctx, func(_ context.Context, key, _ []byte) error {
				mu.Lock()
				seen = append(seen, string(key))
				mu.Unlock()
				return nil
			})
		}()

		assert.Eventually(t, func() bool { return len(reader.commits()) == 2 }, time.Second, 5*time.Millisecond)
		cancel()
		require.NoError(t, <-done)

		mu.Lock()
		assert.Equal(t, []string{"a", "b"}, seen)
		mu.Unlock()
		assert.Equal(t, []int64{10, 11}, reader.commits())
	})

	t.Run("RetriesFailedMessageBeforeCommitting", func(t *testing.T) {
		reader := &fakeReader{messages: []kafka.Message{{Key: []byte("a"), Offset: 5}}}
		consumer := &KafkaConsumer{reader: reader, logger: logger, topic: "t", groupID: "g", retryBackoff: time.Millisecond}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		attempts := 0
		done := make(chan error, 1)
		go func() {
			done <- consumer.Subscribe(ctx, func(context.Context, []byte, []byte) error {
				mu.Lock()
				defer mu.Unlock()
				attempts++
				if attempts < 3 {
					return errors.New("mongo unavailable")
				}
				return nil
			})
		}()

		assert.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, 5*time.Millisecond)
		cancel()
		require.NoError(t, <-done)

		mu.Lock()
		assert.Equal(t, 3, attempts)
		mu.Unlock()
		assert.Equal(t, []int64{5}, reader.commits())
	})
}

func TestKafkaConsumer_Close(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("CloseWithNilReader", func(t *testing.T) {
		consumer := &KafkaConsumer{
			reader: nil,
			logger: logger,
		}
		err := consumer.Close()
		require.NoError(t, err, "Close should return nil if reader is nil")
	})

	t.Run("ClosesReader", func(t *testing.T) {
		reader := &fakeReader{}
		consumer := &KafkaConsumer{reader: reader, logger: logger}
		require.NoError(t, consumer.Close())
		assert.True(t, reader.closed)
	})
}
