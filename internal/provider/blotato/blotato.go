// Package blotato publishes media to Blotato by reference: the asset is stored under
// a public URL and only that URL is sent upstream.
package blotato

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/target"
	"github.com/your-org/crosspost/pkg/storage/objectstore"
)

const (
	envAPIKey   = "BLOTATO_API_KEY"
	envMediaURL = "BLOTATO_MEDIA_URL"
	envStorage  = "STORAGE_PUBLIC_BASE_URL"

	apiKeyHeader = "blotato-api-key"
)

// Config carries the Blotato endpoint, credential and public media store.
type Config struct {
	APIKey     string
	MediaURL   string
	Store      objectstore.Client
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client implements provider.Submitter for Blotato.
type Client struct {
	apiKey   string
	mediaURL string
	store    objectstore.Client
	http     *http.Client
	logger   *zap.Logger
	now      func() time.Time
}

// New constructs a Blotato submitter.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	logr := cfg.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		mediaURL: strings.TrimSpace(cfg.MediaURL),
		store:    cfg.Store,
		http:     client,
		logger:   logr.With(zap.String("provider", string(target.ProviderBlotato))),
		now:      time.Now,
	}
}

func (c *Client) Provider() target.Provider { return target.ProviderBlotato }

func (c *Client) Configured() error {
	return provider.RequireSettings(target.ProviderBlotato,
		[2]string{envAPIKey, c.apiKey},
		[2]string{envMediaURL, c.mediaURL},
		[2]string{envStorage, publicBase(c.store)},
	)
}

// publicBase returns the store's public prefix, or "" when Blotato could not fetch
// from it: no store, an empty base, or anything but an absolute http(s) URL.
func publicBase(store objectstore.Client) string {
	if store == nil {
		return ""
	}
	base := strings.TrimSpace(store.BaseURL())
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return base
}

// Submit stores the asset publicly, then hands its URL to Blotato. Once the asset is
// stored, the returned Result carries the URL whether or not the upstream call succeeds.
func (c *Client) Submit(ctx context.Context, asset media.Asset, sub provider.Submission) (provider.Result, error) {
	if err := c.Configured(); err != nil {
		return provider.Result{}, err
	}

	key := c.objectKey(asset)
	meta := map[string]string{
		objectstore.MetaContentType: asset.ContentType,
		"original_filename":         asset.Name,
	}
	if sub.RequestID != "" {
		meta["request_id"] = sub.RequestID
	}
	if err := c.store.Put(ctx, key, bytes.NewReader(asset.Data), asset.Size(), meta); err != nil {
		return provider.Result{}, fmt.Errorf("store asset: %w", err)
	}

	res := provider.Result{PublicURL: c.store.URL(key)}
	c.logger.Debug("asset stored", zap.String("asset", asset.Name), zap.String("url", res.PublicURL))

	payload, err := json.Marshal(map[string]string{"url": res.PublicURL})
	if err != nil {
		return res, fmt.Errorf("marshal media request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mediaURL, bytes.NewReader(payload))
	if err != nil {
		return res, fmt.Errorf("build media request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return res, fmt.Errorf("post to blotato: %w", err)
	}
	defer resp.Body.Close()

	body, err := provider.ReadResponse(target.ProviderBlotato, resp)
	if err != nil {
		return res, err
	}
	res.Body = body
	return res, nil
}

// objectKey is "<unix millis>-<random token><ext>".
func (c *Client) objectKey(asset media.Asset) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", c.now().UnixMilli(), token, cleanExt(asset.Ext()))
}

func cleanExt(ext string) string {
	clean := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.ToLower(ext))
	if clean == "" {
		return ""
	}
	return "." + clean
}
