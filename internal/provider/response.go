package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/your-org/crosspost/internal/target"
)

// maxErrorBodyBytes caps how much of a non-2xx body is kept in a StatusError.
// Successful bodies are read in full so JSON is never cut short.
const maxErrorBodyBytes = 1 << 20

// Body is either a parsed JSON document or raw text from a successful response.
// Raw text marshals as {"success":true,"message":<text>}.
type Body struct {
	JSON json.RawMessage
	Text string
}

// IsJSON reports whether the upstream returned parseable JSON.
func (b Body) IsJSON() bool {
	return len(b.JSON) > 0
}

func (b Body) MarshalJSON() ([]byte, error) {
	if b.IsJSON() {
		return b.JSON, nil
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: true, Message: b.Text})
}

func (b *Body) UnmarshalJSON(data []byte) error {
	b.JSON = append(json.RawMessage(nil), data...)
	b.Text = ""
	return nil
}

// ParseBody classifies a successful response payload.
func ParseBody(raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return Body{JSON: json.RawMessage(trimmed)}
	}
	return Body{Text: string(raw)}
}

// ReadResponse consumes resp. A 2xx status yields a Body, degrading non-JSON payloads
// to text. Any other status yields a *StatusError carrying the raw body.
func ReadResponse(p target.Provider, resp *http.Response) (Body, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		if err != nil {
			return Body{}, fmt.Errorf("read %s response: %w", p, err)
		}
		return Body{}, &StatusError{
			Provider:   p,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Body{}, fmt.Errorf("read %s response: %w", p, err)
	}
	return ParseBody(raw), nil
}
