package webserver

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lachlan2k/shiptrack/internal/config"
	"github.com/lachlan2k/shiptrack/internal/logging"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("unable to start test server: %v", err)
	}

	server := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	server.Start()
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	conf := config.Default()
	conf.Server.PrefsFile = filepath.Join(t.TempDir(), "prefs.json")
	conf.Server.Session.Cookie.Secret = "test-secret-0123456789"
	conf.Server.Roles["auditor"] = config.Role{Label: "Auditor", Permissions: []string{"notifications"}}
	return conf
}

// browser is a cookie-keeping client pointed at a running stub server.
type browser struct {
	t       *testing.T
	baseURL string
	client  *http.Client
}

func newBrowser(t *testing.T) *browser {
	t.Helper()

	w, err := New(testConfig(t), logging.Discard())
	require.NoError(t, err)

	server := newTestServer(t, w)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{t: t, baseURL: server.URL + "/api", client: &http.Client{Jar: jar}}
}

// do sends body (if not empty) as JSON and decodes the answer into a generic map.
func (b *browser) do(method string, path string, body string) (int, map[string]any) {
	b.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, b.baseURL+path, reader)
	require.NoError(b.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	if len(raw) > 0 {
		require.NoError(b.t, json.Unmarshal(raw, &out), "body: %s", raw)
	}

	return resp.StatusCode, out
}

func (b *browser) login(email string, role string) {
	b.t.Helper()

	status, _ := b.do(http.MethodPost, "/login", `{"email":"`+email+`","password":"demo","role":"`+role+`"}`)
	require.Equal(b.t, http.StatusOK, status)
}
