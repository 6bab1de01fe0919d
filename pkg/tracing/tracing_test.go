package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttributes(t *testing.T) {
	attrs := ParseAttributes(" service.namespace=crosspost, broken ,team = social,,")
	assert.Equal(t, map[string]string{
		"service.namespace": "crosspost",
		"team":              "social",
	}, attrs)

	assert.Empty(t, ParseAttributes(""))
}

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "crosspost"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := Tracer("test").Start(context.Background(), "noop")
	span.End()
}
