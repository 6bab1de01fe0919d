// Package postiz uploads media to Postiz as multipart form submissions.
package postiz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/target"
)

const (
	uploadPath = "/api/public/v1/upload"

	envBaseURL = "POSTIZ_BASE_URL"
	envAPIKey  = "POSTIZ_API_KEY"
)

// Config carries the Postiz endpoint and credential.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client implements provider.Submitter for Postiz.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// New constructs a Postiz submitter. Missing settings are reported by Configured
// and by every Submit call, never here.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	logr := cfg.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		http:    client,
		logger:  logr.With(zap.String("provider", string(target.ProviderPostiz))),
	}
}

func (c *Client) Provider() target.Provider { return target.ProviderPostiz }

func (c *Client) Configured() error {
	return provider.RequireSettings(target.ProviderPostiz,
		[2]string{envBaseURL, c.baseURL},
		[2]string{envAPIKey, c.apiKey},
	)
}

// metadata is serialized into the "metadata" form field next to the file.
type metadata struct {
	RequestID     string           `json:"requestId,omitempty"`
	Targets       []metadataTarget `json:"targets"`
	MediaType     media.Category   `json:"mediaType"`
	ScheduleMode  string           `json:"scheduleMode"`
	ScheduledAt   *time.Time       `json:"scheduledAt,omitempty"`
	Text          string           `json:"text"`
	SecondaryText string           `json:"secondaryText,omitempty"`
}

type metadataTarget struct {
	ID            string          `json:"id"`
	IntegrationID string          `json:"integrationId"`
	Name          string          `json:"name"`
	Platform      target.Platform `json:"platform"`
	Profile       string          `json:"profile,omitempty"`
	Group         string          `json:"group,omitempty"`
}

func buildMetadata(sub provider.Submission) metadata {
	m := metadata{
		RequestID:     sub.RequestID,
		Targets:       make([]metadataTarget, 0, len(sub.Targets)),
		MediaType:     sub.Category,
		ScheduleMode:  string(sub.ScheduleMode),
		ScheduledAt:   sub.ScheduledAt,
		Text:          sub.BodyText,
		SecondaryText: sub.SecondaryText,
	}
	for _, t := range sub.Targets {
		if t.Provider != target.ProviderPostiz {
			continue
		}
		m.Targets = append(m.Targets, metadataTarget{
			ID:            t.ID,
			IntegrationID: t.NativeID,
			Name:          t.DisplayName,
			Platform:      t.Platform,
			Profile:       t.Profile,
			Group:         t.Group,
		})
	}
	return m
}

// Submit streams the asset and its metadata to the Postiz upload endpoint.
func (c *Client) Submit(ctx context.Context, asset media.Asset, sub provider.Submission) (provider.Result, error) {
	if err := c.Configured(); err != nil {
		return provider.Result{}, err
	}

	meta, err := json.Marshal(buildMetadata(sub))
	if err != nil {
		return provider.Result{}, fmt.Errorf("marshal metadata: %w", err)
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	form := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(form, asset, meta))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, pr)
	if err != nil {
		return provider.Result{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	c.logger.Debug("uploading asset",
		zap.String("asset", asset.Name),
		zap.Int64("size_bytes", asset.Size()),
		zap.Int("targets", len(sub.Targets)),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return provider.Result{}, fmt.Errorf("upload to postiz: %w", err)
	}
	defer resp.Body.Close()

	body, err := provider.ReadResponse(target.ProviderPostiz, resp)
	if err != nil {
		return provider.Result{}, err
	}
	return provider.Result{Body: body}, nil
}

func writeForm(form *multipart.Writer, asset media.Asset, meta []byte) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, asset.Name))
	contentType := asset.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(asset.Data); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := form.WriteField("metadata", string(meta)); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return form.Close()
}
