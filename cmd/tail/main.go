// Command tail follows the relay's message stream and prints one line per
// relayed message.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"room-relay/internal/config"
	"room-relay/internal/models"
	"room-relay/pkg/logger"

	"github.com/segmentio/kafka-go"
)

func main() {
	room := flag.String("room", "", "only print messages for this room id")
	group := flag.String("group", "room-relay-tail", "consumer group id")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.New(cfg.Log.Level, cfg.Log.Format)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("KAFKA_BROKERS must be set")
	}

	// A new group starts from the oldest retained record.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		GroupID:     *group,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Following message stream", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Error("Failed to read from message stream", "error", err)
			os.Exit(1)
		}

		var record models.MessageRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			slog.Warn("Skipping undecodable record", "partition", msg.Partition, "offset", msg.Offset, "error", err)
			continue
		}
		if *room != "" && record.RoomID != *room {
			continue
		}

		fmt.Printf("%s [%s] %s: %s\n", msg.Time.Format("2006-01-02 15:04:05"), record.RoomID, record.RoomName, record.Text)
	}
}
