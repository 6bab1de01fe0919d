package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/publish"
	"github.com/your-org/crosspost/internal/target"
)

func sampleReport() publish.Report {
	body := provider.ParseBody([]byte("queued"))
	return publish.Report{
		RequestID: "req-1",
		Status:    publish.StatusPartial,
		Metadata: publish.Metadata{
			BodyText:     "hello",
			ScheduleMode: provider.ScheduleImmediate,
		},
		Ledger: []publish.Outcome{
			{AssetName: "a.png", Provider: target.ProviderPostiz, Success: true, Payload: &body},
			{AssetName: "a.png", Provider: target.ProviderBlotato, Error: "boom", ErrorKind: provider.KindDispatch},
		},
		RequestedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestHTTPSinkPostsReport(t *testing.T) {
	var got map[string]any
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get(APIKeyHeader)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewHTTPSink(HTTPConfig{URL: srv.URL, APIKey: "secret"})
	require.NoError(t, sink.Report(context.Background(), sampleReport()))

	assert.Equal(t, "secret", key)
	assert.Equal(t, "req-1", got["requestId"])
	assert.Equal(t, "partial", got["status"])
	ledger, ok := got["ledger"].([]any)
	require.True(t, ok)
	require.Len(t, ledger, 2)
	first := ledger[0].(map[string]any)
	assert.Equal(t, map[string]any{"success": true, "message": "queued"}, first["payload"])
}

func TestHTTPSinkNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPSink(HTTPConfig{URL: srv.URL, APIKey: "k"}).Report(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestHTTPSinkNotConfigured(t *testing.T) {
	err := NewHTTPSink(HTTPConfig{}).Report(context.Background(), sampleReport())
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "REPORT_WEBHOOK_URL")
	assert.Contains(t, err.Error(), "REPORT_API_KEY")
}

type fakePublisher struct {
	key     []byte
	value   []byte
	headers map[string]string
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, key, value []byte, headers map[string]string) error {
	f.key, f.value, f.headers = key, value, headers
	return f.err
}

func TestKafkaSinkPublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewKafkaSink(pub)
	sink.now = func() time.Time { return time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, sink.Report(context.Background(), sampleReport()))

	assert.Equal(t, "req-1", string(pub.key))
	assert.Equal(t, EventTypeCompleted, pub.headers["event_type"])
	assert.Equal(t, "req-1", pub.headers["request_id"])
	assert.Equal(t, "partial", pub.headers["status"])

	var event CompletedEvent
	require.NoError(t, json.Unmarshal(pub.value, &event))
	assert.Equal(t, pub.headers["event_id"], event.ID)
	assert.Equal(t, "req-1", event.Report.RequestID)
	assert.Len(t, event.Report.Ledger, 2)
}

func TestKafkaSinkWrapsPublishError(t *testing.T) {
	cause := errors.New("broker down")
	err := NewKafkaSink(&fakePublisher{err: cause}).Report(context.Background(), sampleReport())
	assert.ErrorIs(t, err, cause)

	err = NewKafkaSink(nil).Report(context.Background(), sampleReport())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type reporterFunc func(ctx context.Context, r publish.Report) error

func (f reporterFunc) Report(ctx context.Context, r publish.Report) error { return f(ctx, r) }

func TestMultiJoinsErrors(t *testing.T) {
	first := errors.New("first")
	var reached bool
	m := Multi{
		reporterFunc(func(context.Context, publish.Report) error { return first }),
		nil,
		reporterFunc(func(context.Context, publish.Report) error { reached = true; return nil }),
	}
	err := m.Report(context.Background(), sampleReport())
	assert.ErrorIs(t, err, first)
	assert.True(t, reached)

	assert.NoError(t, Multi{}.Report(context.Background(), sampleReport()))
}
