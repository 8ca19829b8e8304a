package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/studioport/internal/config"
	"github.com/harunnryd/studioport/internal/convert"
	"github.com/harunnryd/studioport/internal/render"
)

func newTestServer(t *testing.T, cfg config.ServerConfig) *Server {
	t.Helper()
	s, err := New(cfg, convert.DefaultParams(), render.NewFormatterFactory(render.Options{}),
		convert.WithIDGenerator(convert.SequenceGenerator{}))
	require.NoError(t, err)
	return s
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHandleConvert_OK(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{}).Handler()

	rec := post(t, h, `{
		"tools": [{"name":"search","alias":"web_search"}],
		"transcript": [
			{"role":"user","content":"hi"},
			{"role":"assistant","tool_calls":[{"name":"search","args":{"q":"go"}}]}
		],
		"params": {"temperature": 0, "tool_choice": "required"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(TraceHeader))

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["message_count"])
	assert.EqualValues(t, 1, body["tool_count"])
	assert.True(t, strings.HasPrefix(body["curl"].(string), "curl "))
	assert.Contains(t, body["script"], "set -euo pipefail")

	request := body["request"].(map[string]interface{})
	assert.EqualValues(t, 0, request["temperature"])
	assert.EqualValues(t, 0.1, request["top_p"])
	assert.Equal(t, "required", request["tool_choice"])
	assert.Len(t, request["messages"], 2)
}

func TestHandleConvert_ErrorMapping(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{}).Handler()

	tests := []struct {
		name     string
		body     string
		status   int
		category string
	}{
		{"not json", `{`, http.StatusBadRequest, "ErrInvalidInput"},
		{"missing tools", `{"transcript":[{"role":"user","content":"hi"}]}`, http.StatusBadRequest, "ErrInvalidInput"},
		{"empty transcript", `{"tools":[{"name":"a"}],"transcript":[]}`, http.StatusBadRequest, "ErrInvalidInput"},
		{"nothing survives", `{"tools":[{"name":"a"}],"transcript":[{"role":"user","content":" "}]}`, http.StatusUnprocessableEntity, "ErrEmptyResult"},
		{"bad schema", `{"tools":[{"name":"a","config":{"schema":"nope"}}],"transcript":[{"role":"user","content":"hi"}]}`, http.StatusInternalServerError, "ErrInternal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			body := decodeBody(t, rec)
			assert.Equal(t, tt.category, body["category"])
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, rec.Header().Get(TraceHeader), body["trace_id"])
		})
	}
}

func TestHandleConvert_BodyLimit(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{MaxBodyBytes: 16}).Handler()

	rec := post(t, h, `{"tools":[{"name":"search"}],"transcript":[]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleConvert_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/convert", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTraceHeaderIsEchoed(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", bytes.NewBufferString(`{`))
	req.Header.Set(TraceHeader, "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get(TraceHeader))
	assert.Equal(t, "trace-123", decodeBody(t, rec)["trace_id"])
}

func TestServer_StartHealthStop(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{Port: 0})
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))

	_, port, err := net.SplitHostPort(s.Addr())
	require.NoError(t, err)

	resp, err := http.Get("http://127.0.0.1:" + port + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestNew_RejectsBadTimeout(t *testing.T) {
	_, err := New(config.ServerConfig{ReadTimeout: "soon"}, convert.DefaultParams(), render.NewFormatterFactory(render.Options{}))
	assert.Error(t, err)
}
