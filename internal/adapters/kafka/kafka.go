package kafka

import (
	"github.com/IBM/sarama"
)

const (
	// Bytes a MessageRecord adds around its text: field names, quotes and
	// the room id and name.
	recordEnvelope = 4 * 1024

	// JSON escaping can turn one byte of text into six ("\u0000").
	maxEscapeGrowth = 6
)

// InitKafkaProducer creates the producer behind MessageStream. maxFrameSize
// is the relay's inbound frame limit; the largest record is sized from it.
func InitKafkaProducer(brokers []string, maxFrameSize int64) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(brokers, newProducerConfig(maxFrameSize))
}

func newProducerConfig(maxFrameSize int64) *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "room-relay"
	config.Version = sarama.V2_0_0_0

	// A record is acknowledged by every in-sync replica before SendMessage returns
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	// Keyed by room id: one room, one partition, in relay order
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.MaxMessageBytes = recordLimit(maxFrameSize)

	return config
}

// recordLimit is the largest encoded MessageRecord a frame of maxFrameSize
// bytes can produce, never below sarama's default.
func recordLimit(maxFrameSize int64) int {
	limit := int(maxFrameSize)*maxEscapeGrowth + recordEnvelope
	return max(limit, sarama.NewConfig().Producer.MaxMessageBytes)
}
