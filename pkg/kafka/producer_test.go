package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(ProducerConfig{Topic: "results"})
	assert.Error(t, err)

	_, err = NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, Topic: "results"})
	require.NoError(t, err)
	assert.Equal(t, "results", p.Topic())
	assert.NoError(t, p.Close())
}

func TestBuildHeadersSorted(t *testing.T) {
	headers := buildHeaders(map[string]string{"request_id": "r1", "event_type": "publish.completed"})
	require.Len(t, headers, 2)
	assert.Equal(t, "event_type", headers[0].Key)
	assert.Equal(t, []byte("r1"), headers[1].Value)

	assert.Nil(t, buildHeaders(nil))
}

func TestCompressionFromString(t *testing.T) {
	assert.Equal(t, kafkago.Gzip, CompressionFromString("GZIP"))
	assert.Equal(t, kafkago.Zstd, CompressionFromString("zstd"))
	assert.Equal(t, kafkago.Lz4, CompressionFromString(" lz4 "))
	assert.Equal(t, kafkago.Snappy, CompressionFromString("bogus"))
	assert.Equal(t, kafkago.Compression(0), CompressionFromString("none"))
}
