package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/crosspost/internal/target"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestReadResponseJSON(t *testing.T) {
	body, err := ReadResponse(target.ProviderPostiz, response(http.StatusOK, ` {"id":"m1","path":"/x.png"} `))
	require.NoError(t, err)
	assert.True(t, body.IsJSON())

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1","path":"/x.png"}`, string(out))
}

func TestReadResponseTextDegradesToSuccess(t *testing.T) {
	body, err := ReadResponse(target.ProviderBlotato, response(http.StatusCreated, "Accepted"))
	require.NoError(t, err)
	assert.False(t, body.IsJSON())

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Accepted"}`, string(out))

	empty, err := ReadResponse(target.ProviderBlotato, response(http.StatusNoContent, ""))
	require.NoError(t, err)
	assert.False(t, empty.IsJSON())
	assert.Empty(t, empty.Text)
}

func TestReadResponseKeepsLargeJSONWhole(t *testing.T) {
	large := `{"items":["` + strings.Repeat("x", 2<<20) + `"]}`
	body, err := ReadResponse(target.ProviderPostiz, response(http.StatusOK, large))
	require.NoError(t, err)
	require.True(t, body.IsJSON())
	assert.Len(t, body.JSON, len(large))
}

func TestReadResponseErrorStatusKeepsRawText(t *testing.T) {
	_, err := ReadResponse(target.ProviderPostiz, response(http.StatusBadGateway, "<html>bad gateway</html>\n"))
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "<html>bad gateway</html>", statusErr.Body)
	assert.Contains(t, err.Error(), "postiz API error: 502 Bad Gateway")

	_, err = ReadResponse(target.ProviderPostiz, response(http.StatusUnauthorized, `{"error":"bad key"}`))
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, `{"error":"bad key"}`, statusErr.Body)
}

func TestRequireSettings(t *testing.T) {
	assert.NoError(t, RequireSettings(target.ProviderPostiz, [2]string{"POSTIZ_API_KEY", "k"}))

	err := RequireSettings(target.ProviderPostiz,
		[2]string{"POSTIZ_BASE_URL", " "},
		[2]string{"POSTIZ_API_KEY", ""},
	)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"POSTIZ_BASE_URL", "POSTIZ_API_KEY"}, cfgErr.Missing)
	assert.Equal(t, "postiz is not configured (missing POSTIZ_BASE_URL, POSTIZ_API_KEY)", err.Error())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindConfiguration, Classify(fmt.Errorf("wrap: %w", &ConfigError{Provider: target.ProviderBlotato})))
	assert.Equal(t, KindTimeout, Classify(fmt.Errorf("post: %w", context.DeadlineExceeded)))
	assert.Equal(t, KindDispatch, Classify(errors.New("connection reset")))
}

func TestBodyUnmarshalRoundTrip(t *testing.T) {
	var b Body
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"message":"ok"}`), &b))
	assert.True(t, b.IsJSON())
}
