package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"habitsync/internal/db"
	"habitsync/internal/services"
)

const (
	testSecret   = "test-session-secret"
	testEncKey   = "0123456789abcdef0123456789abcdef"
	testPassword = "correct horse battery staple"
)

type testEnv struct {
	db  *sqlx.DB
	srv *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if err := db.RunMigrations(conn); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	encSvc, err := services.NewEncryptionService([]byte(testEncKey))
	if err != nil {
		t.Fatalf("failed to create encryption service: %v", err)
	}
	srv := httptest.NewServer(NewRouter(conn, []byte(testSecret), encSvc))
	t.Cleanup(func() {
		srv.Close()
		conn.Close()
	})
	return &testEnv{db: conn, srv: srv}
}

// testClient is an HTTP client with its own cookie jar, so two clients on the
// same server act as two independent users.
type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func (e *testEnv) client(t *testing.T) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &testClient{t: t, base: e.srv.URL, http: &http.Client{Jar: jar}}
}

// signup registers and logs in a fresh user, returning a session-bearing client.
func (e *testEnv) signup(t *testing.T, username string) *testClient {
	t.Helper()
	c := e.client(t)
	resp := c.do(http.MethodPost, "/api/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: got status %d, want %d", username, resp.StatusCode, http.StatusCreated)
	}
	resp.Body.Close()
	resp = c.do(http.MethodPost, "/api/login", map[string]any{
		"username": username,
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: got status %d, want %d", username, resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()
	return c
}

func (c *testClient) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("failed to marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(b)
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("got status %d, want %d: %s", resp.StatusCode, want, readBody(t, resp))
	}
}
