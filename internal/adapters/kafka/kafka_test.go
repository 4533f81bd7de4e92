package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerConfig(t *testing.T) {
	config := newProducerConfig(64 * 1024)

	require.NoError(t, config.Validate())
	assert.Equal(t, sarama.WaitForAll, config.Producer.RequiredAcks)
	assert.True(t, config.Producer.Return.Successes)
	assert.Equal(t, "room-relay", config.ClientID)
}

func TestRecordLimit(t *testing.T) {
	floor := sarama.NewConfig().Producer.MaxMessageBytes

	assert.Equal(t, floor, recordLimit(1024))
	assert.Equal(t, 1024*1024*maxEscapeGrowth+recordEnvelope, recordLimit(1024*1024))
	assert.Greater(t, recordLimit(64*1024), 64*1024)
}
