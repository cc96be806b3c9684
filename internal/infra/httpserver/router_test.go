package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/app"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/clocktest"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/scans"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/sysconfig"
)

type fakeBackend struct {
	mu        sync.Mutex
	scanList  []scans.ScanResult
	logs      map[scans.ScanID][]scans.ScanLog
	triggers  []scans.TriggerRequest
	configSet []sysconfig.Entry
	healthErr error
}

func (b *fakeBackend) TriggerScan(ctx context.Context, req scans.TriggerRequest) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.triggers = append(b.triggers, req)
	return json.RawMessage(`{"task_id":"t-1","status":"queued"}`), nil
}

func (b *fakeBackend) GetConfig(ctx context.Context) ([]sysconfig.Entry, error) {
	return nil, errors.New("config endpoint down")
}

func (b *fakeBackend) SetConfig(ctx context.Context, key, value string, isSecret bool) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configSet = append(b.configSet, sysconfig.Entry{Key: key, Value: value, IsSecret: isSecret})
	return json.RawMessage(`{"status":"created"}`), nil
}

func (b *fakeBackend) GetScans(ctx context.Context) ([]scans.ScanResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scanList, nil
}

func (b *fakeBackend) GetScanLogs(ctx context.Context, id scans.ScanID) ([]scans.ScanLog, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logs[id], nil
}

func (b *fakeBackend) Health(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.healthErr
}

func (b *fakeBackend) triggerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.triggers)
}

func (b *fakeBackend) recorded() ([]scans.TriggerRequest, []sysconfig.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]scans.TriggerRequest(nil), b.triggers...), append([]sysconfig.Entry(nil), b.configSet...)
}

type harness struct {
	srv     *httptest.Server
	client  *http.Client
	backend *fakeBackend
	router  *Router
}

func newHarness(t *testing.T, b *fakeBackend) *harness {
	t.Helper()
	r := NewRouter(Options{
		Backend:    b,
		Clock:      clocktest.New(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		Location:   time.UTC,
		SessionTTL: time.Hour,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{srv: srv, client: &http.Client{Jar: jar}, backend: b, router: r}
}

func (h *harness) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (h *harness) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := h.client.PostForm(h.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (h *harness) state(t *testing.T) app.View {
	t.Helper()
	code, body := h.get(t, "/api/state")
	require.Equal(t, http.StatusOK, code)
	var v app.View
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestIndexRendersEmptyState(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	code, body := h.get(t, "/")

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Security Guardian Dashboard")
	assert.Contains(t, body, "No scans found")
	assert.Contains(t, body, "Trigger Scan")
	assert.Equal(t, 1, h.router.Sessions().Len())
}

func TestIndexRendersRows(t *testing.T) {
	h := newHarness(t, &fakeBackend{scanList: []scans.ScanResult{
		{ID: 12, Repo: "https://github.com/octocat/Hello-World", Status: "Finished", CreatedAt: "2025-03-04T15:06:07Z", TokensUsed: 4321},
	}})
	_, body := h.get(t, "/")

	assert.NotContains(t, body, "No scans found")
	assert.Contains(t, body, "status-finished")
	assert.Contains(t, body, "3/4/2025, 3:06:07 PM")
	assert.Contains(t, body, "4,321")
	assert.Contains(t, body, `action="/scans/12/tokens"`)
}

func TestSubmitInvalidRepoURLSkipsBackend(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.get(t, "/")

	code, body := h.post(t, "/scan", url.Values{"repo_url": {"ftp://bad"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Invalid GitHub URL. Please use format: https://github.com/username/repo")
	assert.Equal(t, 0, h.backend.triggerCount())
}

func TestSubmitInvalidAppURLSkipsBackend(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.get(t, "/")

	_, body := h.post(t, "/scan", url.Values{
		"repo_url":   {"https://github.com/octocat/Hello-World"},
		"target_url": {"not-a-url"},
	})
	assert.Contains(t, body, "Application URL must start with http:// or https://")
	assert.Equal(t, 0, h.backend.triggerCount())
}

func TestSubmitValidTrimsAndOmitsEmpty(t *testing.T) {
	b := &fakeBackend{}
	h := newHarness(t, b)
	h.get(t, "/")

	_, body := h.post(t, "/scan", url.Values{
		"repo_url":     {"  https://github.com/octocat/Hello-World  "},
		"target_url":   {"   "},
		"github_token": {""},
	})
	assert.Contains(t, body, "Scan Queued")
	assert.Contains(t, body, "t-1")
	triggers, _ := b.recorded()
	require.Len(t, triggers, 1)
	assert.Equal(t, scans.TriggerRequest{RepoURL: "https://github.com/octocat/Hello-World"}, triggers[0])
}

func TestWebhookSecretSaveAndToggle(t *testing.T) {
	b := &fakeBackend{}
	h := newHarness(t, b)
	h.get(t, "/")

	assert.False(t, h.state(t).Form.ShowSettings)
	_, body := h.post(t, "/settings/toggle", nil)
	assert.Contains(t, body, "Webhook Secret")
	assert.True(t, h.state(t).Form.ShowSettings)

	_, body = h.post(t, "/settings/webhook-secret", url.Values{"webhook_secret": {"hook-secret"}})
	assert.Contains(t, body, "✓ Saved")
	_, saved := b.recorded()
	require.Len(t, saved, 1)
	assert.Equal(t, sysconfig.Entry{Key: sysconfig.KeyGithubWebhookSecret, Value: "hook-secret", IsSecret: true}, saved[0])
}

func TestTokenModalOpenAndClose(t *testing.T) {
	b := &fakeBackend{
		scanList: []scans.ScanResult{{ID: 3, Status: "finished", CreatedAt: "2025-01-01T00:00:00Z"}},
		logs: map[scans.ScanID][]scans.ScanLog{
			3: {{Step: "Ecosystem Detection", Model: "gpt-4o-mini"}},
		},
	}
	h := newHarness(t, b)
	h.get(t, "/")

	_, body := h.post(t, "/scans/3/tokens", nil)
	assert.Contains(t, body, "Token Usage — Scan #3")
	assert.Contains(t, body, "~150")
	assert.Contains(t, body, "~350")

	v := h.state(t)
	require.NotNil(t, v.Dashboard.Modal)
	assert.Equal(t, "~350", v.Dashboard.Modal.Footer.Total)

	_, body = h.post(t, "/scans/tokens/close", nil)
	assert.NotContains(t, body, "Token Usage")
	assert.Nil(t, h.state(t).Dashboard.Modal)
}

func TestOpenTokensRejectsBadID(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.get(t, "/")

	code, _ := h.post(t, "/scans/abc/tokens", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRefreshPicksUpNewScans(t *testing.T) {
	b := &fakeBackend{}
	h := newHarness(t, b)
	h.get(t, "/")
	assert.True(t, h.state(t).Dashboard.Empty)

	b.mu.Lock()
	b.scanList = []scans.ScanResult{{ID: 1, Status: "pending", CreatedAt: "2025-01-01T00:00:00Z"}}
	b.mu.Unlock()

	_, body := h.post(t, "/scans/refresh", nil)
	assert.NotContains(t, body, "No scans found")
	assert.Len(t, h.state(t).Dashboard.Rows, 1)
}

func TestActionWithoutSessionStartsFresh(t *testing.T) {
	h := newHarness(t, &fakeBackend{})

	code, body := h.post(t, "/scans/refresh", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "No scans found")
	assert.Equal(t, 1, h.router.Sessions().Len())
}

func TestReloadReplacesSession(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.get(t, "/")
	h.post(t, "/scan", url.Values{"repo_url": {"bad"}})
	require.NotEmpty(t, h.state(t).Form.Error)

	h.get(t, "/")
	assert.Empty(t, h.state(t).Form.Error)
	assert.Equal(t, 1, h.router.Sessions().Len())
}

func TestStateWithoutSession(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	code, _ := h.get(t, "/api/state")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOpsEndpoints(t *testing.T) {
	b := &fakeBackend{}
	h := newHarness(t, b)

	code, body := h.get(t, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, _ = h.get(t, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	b.mu.Lock()
	b.healthErr = errors.New("down")
	b.mu.Unlock()
	code, _ = h.get(t, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, body = h.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "requests_total")
}

func TestCORSDoesNotAllowCredentials(t *testing.T) {
	h := newHarness(t, &fakeBackend{})

	req, err := http.NewRequest(http.MethodGet, h.srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://elsewhere.example")
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
}
