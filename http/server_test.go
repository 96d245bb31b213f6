package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/carnet-server/auth"
	"github.com/ViniZap4/carnet-server/settings"
)

type fixture struct {
	t    *testing.T
	root string
	app  *fiber.App
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	srv, err := NewServer(Options{
		Root:   root,
		Token:  token,
		Logger: zerolog.Nop(),
		Roots:  settings.NewFileRootStore(afero.NewMemMapFs(), "/state"),
	})
	require.NoError(t, err)
	return &fixture{t: t, root: root, app: srv.App()}
}

func (f *fixture) do(method, target, body string, headers ...string) (int, []byte) {
	f.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(f.t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp.StatusCode, data
}

func (f *fixture) write(rel, content string) {
	f.t.Helper()
	path := filepath.Join(f.root, rel)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0644))
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, "")
	status, body := f.do("GET", "/healthz", "")
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestTreeUsesDefaultRoot(t *testing.T) {
	f := newFixture(t, "")
	f.write("b.md", "")
	f.write("skip.txt", "")
	f.write("dir/a.md", "")

	status, body := f.do("GET", "/api/tree", "")
	require.Equal(t, 200, status)

	nodes := decode[[]map[string]any](t, body)
	require.Len(t, nodes, 2)
	assert.Equal(t, "dir", nodes[0]["name"])
	assert.Equal(t, true, nodes[0]["is_dir"])
	assert.Equal(t, "b.md", nodes[1]["name"])
}

func TestTreeEmptyRootIsArray(t *testing.T) {
	f := newFixture(t, "")
	status, body := f.do("GET", "/api/tree?root="+f.root, "")
	require.Equal(t, 200, status)
	assert.Equal(t, "[]", string(body))
}

func TestTreeMissingRoot(t *testing.T) {
	f := newFixture(t, "")
	status, body := f.do("GET", "/api/tree?root="+filepath.Join(f.root, "nope"), "")
	assert.Equal(t, 404, status)
	assert.Equal(t, "root_not_found", decode[errorBody](t, body).Kind)
}

func TestNoteLifecycle(t *testing.T) {
	f := newFixture(t, "")

	status, body := f.do("POST", "/api/folders", `{"parent":"","name":"journal"}`)
	require.Equal(t, 201, status, string(body))
	assert.Equal(t, filepath.Join(f.root, "journal"), decode[map[string]string](t, body)["path"])

	status, body = f.do("POST", "/api/notes", `{"dir":"journal","name":"today.txt"}`)
	require.Equal(t, 201, status, string(body))
	notePath := decode[map[string]string](t, body)["path"]
	assert.Equal(t, filepath.Join(f.root, "journal", "today.md"), notePath)

	status, _ = f.do("PUT", "/api/note", `{"path":"journal/today.md","content":"# Today\n"}`)
	require.Equal(t, 204, status)

	status, body = f.do("GET", "/api/note?path=journal/today.md", "")
	require.Equal(t, 200, status)
	assert.Equal(t, "# Today\n", decode[map[string]string](t, body)["content"])

	status, body = f.do("POST", "/api/rename", `{"path":"journal/today.md","new_name":"yesterday"}`)
	require.Equal(t, 200, status, string(body))
	assert.Equal(t, filepath.Join(f.root, "journal", "yesterday.md"), decode[map[string]string](t, body)["path"])

	status, _ = f.do("DELETE", "/api/path?path=journal", "")
	require.Equal(t, 204, status)
	assert.NoDirExists(t, filepath.Join(f.root, "journal"))

	status, _ = f.do("DELETE", "/api/path?path=journal", "")
	assert.Equal(t, 204, status)
}

func TestStatusMapping(t *testing.T) {
	f := newFixture(t, "")
	f.write("a.md", "")
	outside := t.TempDir()

	cases := []struct {
		method, target, body string
		status               int
		kind                 string
	}{
		{"POST", "/api/notes", `{"dir":"","name":"a"}`, 409, "already_exists"},
		{"POST", "/api/folders", `{"parent":"","name":".."}`, 400, "invalid_name"},
		{"GET", "/api/note?path=../secret.md", "", 400, "invalid_path"},
		{"GET", "/api/note?path=" + filepath.Join(outside, "x.md"), "", 403, "path_escapes_root"},
		{"GET", "/api/note?root=" + filepath.Join(f.root, "nope") + "&path=a.md", "", 400, "invalid_root"},
		{"GET", "/api/note?path=missing.md", "", 500, "open_failed"},
		{"DELETE", "/api/path?path=", "", 400, "invalid_path"},
	}
	for _, tc := range cases {
		status, body := f.do(tc.method, tc.target, tc.body)
		assert.Equal(t, tc.status, status, "%s %s", tc.method, tc.target)
		got := decode[errorBody](t, body)
		assert.Equal(t, tc.kind, got.Kind, "%s %s", tc.method, tc.target)
		assert.NotEmpty(t, got.Error)
	}
}

func TestBadBody(t *testing.T) {
	f := newFixture(t, "")
	status, body := f.do("PUT", "/api/note", `{not json`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "request", decode[errorBody](t, body).Kind)
}

func TestSearchEndpoint(t *testing.T) {
	f := newFixture(t, "")
	f.write("recipes/bread.md", "flour")
	f.write("shopping.md", "buy recipes")

	status, body := f.do("GET", "/api/search?q=recipes", "")
	require.Equal(t, 200, status)
	results := decode[[]map[string]any](t, body)
	require.Len(t, results, 2)
	assert.Equal(t, "foldername", results[0]["matchType"])
	assert.Equal(t, "content", results[1]["matchType"])

	status, body = f.do("GET", "/api/search?q=", "")
	require.Equal(t, 200, status)
	assert.Equal(t, "[]", string(body))
}

func TestDiffEndpoint(t *testing.T) {
	f := newFixture(t, "")

	status, body := f.do("POST", "/api/diff", `{"original":"a\nb\n","current":"a\nc\nd\n","unified":true}`)
	require.Equal(t, 200, status)
	res := decode[map[string]any](t, body)
	assert.Equal(t, 1.0, res["linesModified"])
	assert.Equal(t, 1.0, res["linesAdded"])
	assert.Contains(t, res["diffContent"], "+c")

	status, body = f.do("POST", "/api/diff", `{"original":"x","current":"x"}`)
	require.Equal(t, 200, status)
	assert.NotContains(t, string(body), "diffContent")
}

func TestSettingsEndpoints(t *testing.T) {
	f := newFixture(t, "")

	status, body := f.do("GET", "/api/settings", "")
	require.Equal(t, 200, status)
	got := decode[map[string]any](t, body)
	assert.Equal(t, "edit", got["viewMode"])
	assert.Equal(t, true, got["showLineNumbers"])
	assert.Nil(t, got["lastNotePath"])

	status, _ = f.do("PUT", "/api/settings", `{"viewMode":"stack","lastNotePath":"a.md"}`)
	require.Equal(t, 204, status)
	assert.FileExists(t, filepath.Join(f.root, settings.FileName))

	status, body = f.do("GET", "/api/settings?root="+f.root, "")
	require.Equal(t, 200, status)
	got = decode[map[string]any](t, body)
	assert.Equal(t, "stack", got["viewMode"])
	assert.Equal(t, true, got["showLineNumbers"])
	assert.Equal(t, "a.md", got["lastNotePath"])

	status, _ = f.do("GET", "/api/settings?root="+filepath.Join(f.root, "nope"), "")
	assert.Equal(t, 400, status)
}

func TestLastRootEndpoints(t *testing.T) {
	f := newFixture(t, "")

	status, body := f.do("GET", "/api/last-root", "")
	require.Equal(t, 200, status)
	assert.JSONEq(t, `{"root":null}`, string(body))

	status, _ = f.do("PUT", "/api/last-root", `{"root":"/home/me/notes"}`)
	require.Equal(t, 204, status)
	_, body = f.do("GET", "/api/last-root", "")
	assert.JSONEq(t, `{"root":"/home/me/notes"}`, string(body))

	status, _ = f.do("PUT", "/api/last-root", `{"root":null}`)
	require.Equal(t, 204, status)
	_, body = f.do("GET", "/api/last-root", "")
	assert.JSONEq(t, `{"root":null}`, string(body))
}

func TestTokenRequired(t *testing.T) {
	f := newFixture(t, "s3cret")

	status, _ := f.do("GET", "/api/tree", "")
	assert.Equal(t, 401, status)

	status, _ = f.do("GET", "/api/tree", "", auth.Header, "s3cret")
	assert.Equal(t, 200, status)

	status, _ = f.do("GET", "/healthz", "")
	assert.Equal(t, 200, status)
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t, "")
	resp, err := f.app.Test(httptest.NewRequest("GET", "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(fiber.HeaderXRequestID), 36)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, "")
	f.do("GET", "/api/tree", "")

	status, body := f.do("GET", "/metrics", "")
	require.Equal(t, 200, status)
	assert.Contains(t, string(body), `carnet_operations_total{op="list_tree",result="ok"} 1`)
	assert.Contains(t, string(body), "carnet_http_requests_total")
}

func TestNewServerRequiresRootStore(t *testing.T) {
	_, err := NewServer(Options{Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestNoRootConfigured(t *testing.T) {
	srv, err := NewServer(Options{
		Logger: zerolog.Nop(),
		Roots:  settings.NewFileRootStore(afero.NewMemMapFs(), "/state"),
	})
	require.NoError(t, err)
	f := &fixture{t: t, app: srv.App()}

	status, body := f.do("GET", "/api/tree", "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_root", decode[errorBody](t, body).Kind)
}
