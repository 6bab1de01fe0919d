// Package report forwards finished publish ledgers to downstream sinks.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/crosspost/internal/publish"
)

// APIKeyHeader carries the shared secret expected by the webhook.
const APIKeyHeader = "csm-api-key"

// ErrNotConfigured is returned by a sink missing its endpoint or credentials.
var ErrNotConfigured = errors.New("report sink not configured")

type HTTPConfig struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// HTTPSink posts the report as JSON to a webhook.
type HTTPSink struct {
	url    string
	apiKey string
	http   *http.Client
	logger *zap.Logger
}

func NewHTTPSink(cfg HTTPConfig) *HTTPSink {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logr := cfg.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	return &HTTPSink{
		url:    strings.TrimSpace(cfg.URL),
		apiKey: strings.TrimSpace(cfg.APIKey),
		http:   client,
		logger: logr.With(zap.String("sink", "http")),
	}
}

func (s *HTTPSink) Report(ctx context.Context, r publish.Report) error {
	var missing []string
	if s.url == "" {
		missing = append(missing, "REPORT_WEBHOOK_URL")
	}
	if s.apiKey == "" {
		missing = append(missing, "REPORT_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", ErrNotConfigured, strings.Join(missing, ", "))
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("report webhook returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Debug("report delivered",
		zap.String("request_id", r.RequestID),
		zap.Int("status_code", resp.StatusCode),
	)
	return nil
}
