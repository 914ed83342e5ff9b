package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Totarae/MCPBuilder/internal/auth"
	"github.com/Totarae/MCPBuilder/internal/config"
	"github.com/Totarae/MCPBuilder/internal/handlers"
	"github.com/Totarae/MCPBuilder/internal/model"
	"github.com/Totarae/MCPBuilder/internal/router"
	"github.com/Totarae/MCPBuilder/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeGenerator имитирует сервис генерации
type fakeGenerator struct {
	*httptest.Server
	calls atomic.Int32
}

func newFakeGenerator(t testing.TB) *fakeGenerator {
	t.Helper()
	fg := &fakeGenerator{}
	fg.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/generate":
			fg.calls.Add(1)
			spec := r.URL.Query().Get("openapi_url")
			switch {
			case strings.Contains(spec, "bad"):
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"detail":"bad spec"}`))
			case strings.Contains(spec, "broken"):
				_, _ = w.Write([]byte(`{"server_id":"srv-0"}`))
			default:
				_, _ = w.Write([]byte(`{"server_id":"srv-1","mcp_url":"http://x/y"}`))
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fg.Close)
	return fg
}

func newTestServer(t testing.TB, generatorURL string) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		ServerAddress:  "localhost:8080",
		GeneratorURL:   generatorURL,
		RequestTimeout: 5 * time.Second,
		CopyAckDelay:   1200 * time.Millisecond,
		SessionIdle:    time.Minute,
	}
	h := handlers.NewHandler(cfg, session.NewStore(), auth.New("test-secret"), zap.NewNop())
	srv := httptest.NewServer(router.NewRouter(h, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestShowForm(t *testing.T) {
	gen := newFakeGenerator(t)
	srv := newTestServer(t, gen.URL)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="openapi_url"`)
	assert.Contains(t, body, `<section id="result" hidden>`)
	assert.NotEmpty(t, resp.Cookies())
	assert.Equal(t, auth.CookieName(), resp.Cookies()[0].Name)
}

func TestSubmitForm_Success(t *testing.T) {
	gen := newFakeGenerator(t)
	srv := newTestServer(t, gen.URL)

	resp, err := http.PostForm(srv.URL+"/", url.Values{"openapi_url": {"https://example.com/openapi.json"}})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<a id="result-link" href="http://x/y"`)
	assert.Contains(t, body, `>http://x/y</a>`)
	assert.Contains(t, body, `class="status status-success"`)
	assert.NotContains(t, body, `<section id="result" hidden>`)
	assert.NotContains(t, body, `aria-busy="true"`)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestSubmitForm_InvalidInputNoRequest(t *testing.T) {
	gen := newFakeGenerator(t)
	srv := newTestServer(t, gen.URL)

	for _, input := range []string{"", "example.com/openapi.json", "ftp://example.com/spec"} {
		resp, err := http.PostForm(srv.URL+"/", url.Values{"openapi_url": {input}})
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Contains(t, body, `class="status status-error"`)
		assert.Contains(t, body, `<section id="result" hidden>`)
	}
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestSubmitForm_GeneratorError(t *testing.T) {
	gen := newFakeGenerator(t)
	srv := newTestServer(t, gen.URL)

	resp, err := http.PostForm(srv.URL+"/", url.Values{"openapi_url": {"https://example.com/bad.json"}})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Contains(t, body, `class="status status-error"`)
	assert.Contains(t, body, "bad spec")
	assert.NotContains(t, body, "disabled>Generate")
}

func TestSubmitForm_SessionKeepsState(t *testing.T) {
	gen := newFakeGenerator(t)
	srv := newTestServer(t, gen.URL)

	resp, err := http.PostForm(srv.URL+"/", url.Values{"openapi_url": {"https://example.com/openapi.json"}})
	require.NoError(t, err)
	readBody(t, resp)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(cookies[0])
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Contains(t, body, `href="http://x/y"`)
}

func TestGenerateAPI(t *testing.T) {
	gen := newFakeGenerator(t)
	srv := newTestServer(t, gen.URL)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantResult string
		wantDetail string
	}{
		{name: "success", body: `{"url":"https://example.com/openapi.json"}`, wantStatus: http.StatusCreated, wantResult: "http://x/y"},
		{name: "empty", body: `{"url":""}`, wantStatus: http.StatusBadRequest, wantDetail: "Please enter an OpenAPI URL."},
		{name: "invalid", body: `{"url":"ftp://example.com"}`, wantStatus: http.StatusBadRequest, wantDetail: "Please enter a valid http(s) URL."},
		{name: "generator detail", body: `{"url":"https://example.com/bad.json"}`, wantStatus: http.StatusBadGateway, wantDetail: "bad spec"},
		{name: "malformed", body: `{"url":"https://example.com/broken.json"}`, wantStatus: http.StatusBadGateway, wantDetail: "Malformed response from server."},
		{name: "not json", body: `url=x`, wantStatus: http.StatusBadRequest, wantDetail: "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantResult != "" {
				var out model.GenerateResult
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
				assert.Equal(t, tt.wantResult, out.Result)
				return
			}
			var out model.APIError
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tt.wantDetail, out.Detail)
		})
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))
}

func TestPing(t *testing.T) {
	gen := newFakeGenerator(t)

	resp, err := http.Get(newTestServer(t, gen.URL).URL + "/ping")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	resp, err = http.Get(newTestServer(t, downURL).URL + "/ping")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGenerateAPI_IgnoresHostHeader(t *testing.T) {
	gen := newFakeGenerator(t)
	other := newFakeGenerator(t)
	srv := newTestServer(t, gen.URL)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/generate", strings.NewReader(`{"url":"https://example.com/openapi.json"}`))
	require.NoError(t, err)
	req.Host = other.Listener.Addr().String()
	req.Header.Set("X-Forwarded-Proto", "http")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, int32(0), other.calls.Load())
}

func TestSubmitForm_IgnoresHostHeader(t *testing.T) {
	other := newFakeGenerator(t)
	srv := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/", strings.NewReader(url.Values{"openapi_url": {"https://example.com/openapi.json"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Host = other.Listener.Addr().String()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Contains(t, body, `class="status status-error"`)
	assert.Equal(t, int32(0), other.calls.Load())
}

func TestGenerateAPI_BodyTooLarge(t *testing.T) {
	gen := newFakeGenerator(t)
	srv := newTestServer(t, gen.URL)

	body := `{"url":"https://example.com/` + strings.Repeat("a", 70<<10) + `"}`
	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out model.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "request body too large", out.Detail)
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestShowForm_NoControllerUntilSubmit(t *testing.T) {
	gen := newFakeGenerator(t)
	cfg := &config.Config{GeneratorURL: gen.URL, RequestTimeout: time.Second, CopyAckDelay: time.Second}
	sessions := session.NewStore()
	h := handlers.NewHandler(cfg, sessions, auth.New("test-secret"), zap.NewNop())

	rec := httptest.NewRecorder()
	h.ShowForm(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, sessions.Len())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("openapi_url=https%3A%2F%2Fexample.com%2Fopenapi.json"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.SubmitForm(httptest.NewRecorder(), req)
	assert.Equal(t, 1, sessions.Len())
}

// failingWriter отклоняет запись тела ответа
type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := &config.Config{RequestTimeout: time.Second, CopyAckDelay: time.Second}
	h := handlers.NewHandler(cfg, session.NewStore(), auth.New("test-secret"), zap.New(core))

	h.Health(failingWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/health", nil))
	h.ShowForm(failingWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, logs.FilterMessage("failed to write JSON response").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to write form page").Len())
}
