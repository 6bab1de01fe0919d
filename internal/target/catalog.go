package target

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
	"golang.org/x/sync/errgroup"
)

const postizIntegrationsPath = "/api/public/v1/integrations"

// CatalogConfig points the catalog at both listing sources.
type CatalogConfig struct {
	PostizBaseURL      string
	PostizAPIKey       string
	BlotatoProfilesURL string
	HTTPClient         *http.Client
	Logger             *zap.Logger
}

// Catalog fetches and merges the provider listings.
type Catalog struct {
	cfg    CatalogConfig
	client *http.Client
	logger *zap.Logger
}

// NewCatalog constructs a Catalog.
func NewCatalog(cfg CatalogConfig) *Catalog {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logr := cfg.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	return &Catalog{cfg: cfg, client: client, logger: logr}
}

// List fetches both listings concurrently. A failing source contributes no targets;
// an error is returned only when every source failed.
func (c *Catalog) List(ctx context.Context) ([]Target, error) {
	var (
		postiz  []Target
		blotato []Target
		errs    [2]error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := c.fetchPostiz(gctx)
		if err != nil {
			errs[0] = fmt.Errorf("%s listing: %w", ProviderPostiz, err)
			c.logger.Warn("listing fetch failed", zap.String("provider", string(ProviderPostiz)), zap.Error(err))
			return nil
		}
		postiz = FromPostiz(records)
		return nil
	})
	g.Go(func() error {
		rows, err := c.fetchBlotato(gctx)
		if err != nil {
			errs[1] = fmt.Errorf("%s listing: %w", ProviderBlotato, err)
			c.logger.Warn("listing fetch failed", zap.String("provider", string(ProviderBlotato)), zap.Error(err))
			return nil
		}
		blotato = FromBlotato(rows)
		return nil
	})
	_ = g.Wait()

	if errs[0] != nil && errs[1] != nil {
		return nil, errors.Join(errs[0], errs[1])
	}

	merged := Merge(postiz, blotato)
	c.logger.Debug("listings merged",
		zap.Int("postiz", len(postiz)),
		zap.Int("blotato", len(blotato)),
	)
	return merged, nil
}

// UnknownTargetsError lists requested ids absent from the catalog.
type UnknownTargetsError struct {
	IDs []string
}

func (e *UnknownTargetsError) Error() string {
	return fmt.Sprintf("unknown targets: %s", strings.Join(e.IDs, ", "))
}

// Resolve maps ids onto catalog targets, keeping the requested order and dropping
// duplicates.
func (c *Catalog) Resolve(ctx context.Context, ids []string) ([]Target, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return Select(all, ids)
}

// Select picks ids out of targets. Unknown ids yield *UnknownTargetsError.
func Select(targets []Target, ids []string) ([]Target, error) {
	byID := make(map[string]Target, len(targets))
	for _, t := range targets {
		byID[t.ID] = t
	}

	seen := map[string]struct{}{}
	out := make([]Target, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		t, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, t)
	}
	if len(unknown) > 0 {
		return nil, &UnknownTargetsError{IDs: unknown}
	}
	return out, nil
}

func (c *Catalog) fetchPostiz(ctx context.Context) ([]PostizIntegration, error) {
	if c.cfg.PostizBaseURL == "" || c.cfg.PostizAPIKey == "" {
		return nil, errors.New("POSTIZ_BASE_URL or POSTIZ_API_KEY is not configured")
	}
	body, err := c.get(ctx, strings.TrimRight(c.cfg.PostizBaseURL, "/")+postizIntegrationsPath, map[string]string{
		"Authorization": c.cfg.PostizAPIKey,
	})
	if err != nil {
		return nil, err
	}

	var records []PostizIntegration
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}
	var wrapped struct {
		Integrations []PostizIntegration `json:"integrations"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode integrations: %w", err)
	}
	return wrapped.Integrations, nil
}

func (c *Catalog) fetchBlotato(ctx context.Context) ([]BlotatoRow, error) {
	if c.cfg.BlotatoProfilesURL == "" {
		return nil, errors.New("BLOTATO_PROFILES_URL is not configured")
	}
	body, err := c.get(ctx, c.cfg.BlotatoProfilesURL, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var row BlotatoRow
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, fmt.Errorf("decode profiles: %w", err)
		}
		return []BlotatoRow{row}, nil
	}
	var rows []BlotatoRow
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return rows, nil
}

func (c *Catalog) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("listing returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}
