package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the JSON body every API endpoint answers with
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *EnvelopeError  `json:"error"`
	Meta    *EnvelopeMeta   `json:"meta"`
}

// EnvelopeError is the error block of a failed response
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EnvelopeMeta carries list pagination
type EnvelopeMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// APIClient drives an http.Handler in-process and decodes the envelope.
// Paths are joined onto Prefix.
type APIClient struct {
	t       *testing.T
	handler http.Handler
	Prefix  string
}

// NewAPIClient returns a client for h rooted at prefix
func NewAPIClient(t *testing.T, h http.Handler, prefix string) *APIClient {
	return &APIClient{t: t, handler: h, Prefix: prefix}
}

// Do sends a request and returns the status code and decoded envelope.
// A string body is sent as-is so malformed JSON can be exercised; any other
// non-nil body is marshalled. Headers are given as key, value pairs.
func (c *APIClient) Do(method, path string, body any, headers ...string) (int, Envelope) {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		reader = ToJSONReader(c.t, b)
	}

	req := httptest.NewRequest(method, c.Prefix+path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var env Envelope
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

// Decode requires a successful response with the wanted status and
// unmarshals its data into v
func (c *APIClient) Decode(status, want int, env Envelope, v any) {
	c.t.Helper()
	require.Equal(c.t, want, status, "error: %+v", env.Error)
	require.True(c.t, env.Success)
	require.NoError(c.t, json.Unmarshal(env.Data, v))
}

// AssertErrorEnvelope checks a failed response's status and error code
func AssertErrorEnvelope(t *testing.T, status int, env Envelope, wantStatus int, wantCode string) {
	t.Helper()
	assert.Equal(t, wantStatus, status)
	assert.False(t, env.Success)
	if assert.NotNil(t, env.Error) {
		assert.Equal(t, wantCode, env.Error.Code)
	}
}

// ToJSONReader marshals v into a reader usable as a request body
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}
