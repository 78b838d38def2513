package api

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/moyoez/friendlyshare-go/cinema"
	"github.com/moyoez/friendlyshare-go/metrics"
	"github.com/moyoez/friendlyshare-go/servepoint"
	"github.com/moyoez/friendlyshare-go/types"
	"github.com/moyoez/friendlyshare-go/users"
)

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

type testEnv struct {
	ts       *httptest.Server
	registry *cinema.Registry
	root     string
}

// newTestEnv builds a full server over a temp share tree with three users:
// reader/uploader/admin, all with password "pw".
func newTestEnv(t *testing.T, grace time.Duration) *testEnv {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "movies"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "movies", "x.mp4"), []byte("not really a movie"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sp, err := servepoint.New(root)
	if err != nil {
		t.Fatalf("servepoint.New: %v", err)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	dir, err := users.FromCredentials(map[string]users.Credential{
		"reader":   {Bcrypt: string(hash), Role: "readonly"},
		"uploader": {Bcrypt: string(hash), Role: "uploader"},
		"admin":    {Bcrypt: string(hash), Role: "admin"},
	})
	if err != nil {
		t.Fatalf("FromCredentials: %v", err)
	}

	registry := cinema.NewRegistry(grace)
	cfg := types.AppConfig{
		ShareDir:    root,
		Fingerprint: "test-fingerprint",
	}
	server := NewServer(cfg, sp, dir, registry, metrics.New())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, registry: registry, root: root}
}

func (e *testEnv) get(t *testing.T, path, auth string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.ts.URL+path, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	resp := env.get(t, "/healthz", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp := env.get(t, "/browse/", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no credentials: status = %d, want 401", resp.StatusCode)
	}
	if got := resp.Header.Get("WWW-Authenticate"); !strings.Contains(got, "Basic") {
		t.Errorf("WWW-Authenticate = %q, want a Basic challenge", got)
	}

	bad := env.get(t, "/browse/", basicAuth("reader", "wrong"))
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", bad.StatusCode)
	}
}

func TestRoleFloor(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	deep := base64.StdEncoding.EncodeToString([]byte("/watch/movies/x.mp4"))
	resp := env.get(t, "/api/room/create?url="+deep, basicAuth("reader", "pw"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("readonly create-room: status = %d, want 403", resp.StatusCode)
	}

	ok := env.get(t, "/api/room/create?url="+deep, basicAuth("uploader", "pw"))
	defer ok.Body.Close()
	if ok.StatusCode != http.StatusOK {
		t.Errorf("uploader create-room: status = %d, want 200", ok.StatusCode)
	}

	m := env.get(t, "/metrics", basicAuth("uploader", "pw"))
	defer m.Body.Close()
	if m.StatusCode != http.StatusForbidden {
		t.Errorf("uploader metrics: status = %d, want 403", m.StatusCode)
	}
}

func TestBrowseListing(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp := env.get(t, "/browse/", basicAuth("reader", "pw"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("browse root: status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "movies/") || !strings.Contains(page, "notes.txt") {
		t.Errorf("listing page missing entries:\n%s", page)
	}

	file := env.get(t, "/browse/notes.txt", basicAuth("reader", "pw"))
	defer file.Body.Close()
	if file.StatusCode != http.StatusNotFound {
		t.Errorf("browse of a file: status = %d, want 404", file.StatusCode)
	}

	missing := env.get(t, "/browse/no-such-dir", basicAuth("reader", "pw"))
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("browse of missing dir: status = %d, want 404", missing.StatusCode)
	}
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp := env.get(t, "/files/notes.txt", basicAuth("reader", "pw"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download: status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hello" {
		t.Errorf("body = %q, want hello", body)
	}

	dir := env.get(t, "/files/movies", basicAuth("reader", "pw"))
	defer dir.Body.Close()
	if dir.StatusCode != http.StatusNotFound {
		t.Errorf("download of a directory: status = %d, want 404", dir.StatusCode)
	}
}

func TestWatchPage(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp := env.get(t, "/watch/movies/x.mp4", basicAuth("reader", "pw"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("watch page: status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/files/movies/x.mp4") {
		t.Errorf("watch page missing file reference:\n%s", body)
	}

	notFile := env.get(t, "/watch/movies", basicAuth("reader", "pw"))
	defer notFile.Body.Close()
	if notFile.StatusCode != http.StatusNotFound {
		t.Errorf("watch of a directory: status = %d, want 404", notFile.StatusCode)
	}
}

func createRoom(t *testing.T, env *testEnv, deepLink string) string {
	t.Helper()
	b64 := base64.StdEncoding.EncodeToString([]byte(deepLink))
	resp := env.get(t, "/api/room/create?url="+b64, basicAuth("uploader", "pw"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create room: status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Room string `json:"room"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if len(body.Room) != 4 {
		t.Fatalf("room code %q is not 4 characters", body.Room)
	}
	return body.Room
}

func checkRoom(t *testing.T, env *testEnv, code string) bool {
	t.Helper()
	resp := env.get(t, "/api/room/check?room="+code, basicAuth("reader", "pw"))
	defer resp.Body.Close()
	var body struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode check response: %v", err)
	}
	return body.Exists
}

func TestCreateAndExpireRoom(t *testing.T) {
	env := newTestEnv(t, 80*time.Millisecond)

	code := createRoom(t, env, "/watch/movies/x.mp4")
	if !checkRoom(t, env, code) {
		t.Error("room should exist immediately after creation")
	}

	time.Sleep(400 * time.Millisecond)
	if checkRoom(t, env, code) {
		t.Error("room should expire when nobody joins within the grace period")
	}
}

func TestShortLinkRedirect(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	code := createRoom(t, env, "/watch/movies/x.mp4")

	resp := env.get(t, "/wwf/"+code, basicAuth("reader", "pw"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("short link: status = %d, want 302", resp.StatusCode)
	}
	want := "/watch/movies/x.mp4?cinema=1&room=" + code
	if got := resp.Header.Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	missing := env.get(t, "/wwf/ZZZZ", basicAuth("reader", "pw"))
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown short link: status = %d, want 404", missing.StatusCode)
	}
}

func TestRoomQR(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	code := createRoom(t, env, "/watch/movies/x.mp4")

	resp := env.get(t, "/api/room/qr?room="+code, basicAuth("reader", "pw"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qr: status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}

	missing := env.get(t, "/api/room/qr?room=ZZZZ", basicAuth("reader", "pw"))
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("qr for unknown room: status = %d, want 404", missing.StatusCode)
	}
}

func TestMetricsExposition(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp := env.get(t, "/metrics", basicAuth("admin", "pw"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "friendlyshare_live_rooms") {
		t.Errorf("metrics exposition missing gauges:\n%s", body)
	}
}
