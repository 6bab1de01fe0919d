package postiz

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/target"
)

func testSubmission() provider.Submission {
	at := time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC)
	return provider.Submission{
		RequestID: "req-1",
		Targets: []target.Target{
			{ID: "postiz-a1", NativeID: "a1", DisplayName: "Brand IG", Platform: target.PlatformInstagram, Provider: target.ProviderPostiz, Group: "Brand"},
			{ID: "blotato-3", NativeID: "row_3", Provider: target.ProviderBlotato},
		},
		Category:     media.CategoryImage,
		ScheduleMode: provider.ScheduleScheduled,
		ScheduledAt:  &at,
		BodyText:     "launch day",
	}
}

func TestSubmitSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, uploadPath, r.URL.Path)
		assert.Equal(t, "pz-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "cover.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)

		var meta metadata
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("metadata")), &meta))
		require.Len(t, meta.Targets, 1, "only postiz targets are forwarded")
		assert.Equal(t, "a1", meta.Targets[0].IntegrationID)
		assert.Equal(t, "scheduled", meta.ScheduleMode)
		assert.Equal(t, "launch day", meta.Text)
		require.NotNil(t, meta.ScheduledAt)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"media-9","path":"https://uploads.postiz.com/media-9.png"}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL + "/", APIKey: "pz-key"})
	res, err := client.Submit(context.Background(), media.Asset{Name: "cover.png", ContentType: "image/png", Category: media.CategoryImage, Data: []byte("png-bytes")}, testSubmission())
	require.NoError(t, err)
	assert.True(t, res.Body.IsJSON())
	assert.JSONEq(t, `{"id":"media-9","path":"https://uploads.postiz.com/media-9.png"}`, string(res.Body.JSON))
	assert.Empty(t, res.PublicURL)
}

func TestSubmitNonJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte("uploaded"))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, APIKey: "pz-key"})
	res, err := client.Submit(context.Background(), media.Asset{Name: "a.png", Data: []byte("x")}, testSubmission())
	require.NoError(t, err)
	assert.Equal(t, "uploaded", res.Body.Text)
}

func TestSubmitErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, APIKey: "pz-key"})
	_, err := client.Submit(context.Background(), media.Asset{Name: "a.png", Data: []byte("x")}, testSubmission())
	var statusErr *provider.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "quota exceeded", statusErr.Body)
	assert.Equal(t, provider.KindDispatch, provider.Classify(err))
}

func TestSubmitMissingConfigurationMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})
	_, err := client.Submit(context.Background(), media.Asset{Name: "a.png", Data: []byte("x")}, testSubmission())

	var cfgErr *provider.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{envAPIKey}, cfgErr.Missing)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, target.ProviderPostiz, client.Provider())
}
