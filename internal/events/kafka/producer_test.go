package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dicegame/internal/model"
)

func testEvent() model.Event {
	return model.Event{
		Type:      model.EventPlayerJoined,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		GameID:    "game-1",
		Sender:    "alice",
		Version:   1,
		Payload:   model.PlayerJoinedPayload{Name: "name0", Seat: 0, Deposit: 1_000_000, Pot: 1_000_000},
	}
}

func TestPublishSendsJSON(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig())
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var decoded map[string]any
		if err := json.Unmarshal(val, &decoded); err != nil {
			return err
		}
		if decoded["type"] != "player_joined" || decoded["game_id"] != "game-1" {
			return errors.New("unexpected event body")
		}
		return nil
	})

	producer := NewWithProducer(mock, "dice-events")
	err := producer.Publish(context.Background(), testEvent())
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestPublishKeysByGame(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig())
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "game-1" {
			return errors.New("message not keyed by game id")
		}
		if msg.Topic != "dice-events" {
			return errors.New("wrong topic")
		}
		return nil
	})

	producer := NewWithProducer(mock, "dice-events")
	require.NoError(t, producer.Publish(context.Background(), testEvent()))
	require.NoError(t, producer.Close())
}

func TestPublishReturnsSendError(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	producer := NewWithProducer(mock, "dice-events")
	err := producer.Publish(context.Background(), testEvent())
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	require.NoError(t, producer.Close())
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	producer := NewWithProducer(mock, "dice-events")
	err := producer.Publish(ctx, testEvent())
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, producer.Close())
}
