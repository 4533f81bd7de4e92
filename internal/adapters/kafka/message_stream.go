package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"room-relay/internal/models"

	"github.com/IBM/sarama"
)

// Store is the write side of the message store.
type Store interface {
	AddMessage(ctx context.Context, roomID, roomName, text string) error
}

// MessageStream wraps a Store and publishes every message it persists to a
// topic, keyed by room id. Publishing is best-effort: a failed send is
// logged and never fails the insert.
type MessageStream struct {
	store    Store
	producer sarama.SyncProducer
	topic    string
}

func NewMessageStream(store Store, producer sarama.SyncProducer, topic string) *MessageStream {
	return &MessageStream{store: store, producer: producer, topic: topic}
}

func (s *MessageStream) AddMessage(ctx context.Context, roomID, roomName, text string) error {
	if err := s.store.AddMessage(ctx, roomID, roomName, text); err != nil {
		return err
	}

	value, err := json.Marshal(models.MessageRecord{RoomID: roomID, RoomName: roomName, Text: text})
	if err != nil {
		slog.Error("Failed to encode message record", "roomID", roomID, "error", err)
		return nil
	}

	partition, offset, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(roomID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		slog.Warn("Failed to publish message record", "topic", s.topic, "roomID", roomID, "error", err)
		return nil
	}

	slog.Debug("Published message record", "topic", s.topic, "partition", partition, "offset", offset)
	return nil
}

func (s *MessageStream) Close() error {
	return s.producer.Close()
}
