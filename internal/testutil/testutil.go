// Package testutil provides testing utilities for the slideshow server.
package testutil

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestServer wraps httptest.Server with convenience methods
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	t       *testing.T
}

// ProjectRoot returns the root directory of the project.
// It works by finding the go.mod file.
func ProjectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("could not get caller info")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// TestDataDir returns the path to the testdata directory
func TestDataDir() string {
	return filepath.Join(ProjectRoot(), "testdata")
}

// CopyTestData copies the sample sales export into a fresh temp directory
// laid out like a data directory (CSV files under uploads/) and returns it
func CopyTestData(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	if err := os.MkdirAll(uploads, 0755); err != nil {
		t.Fatalf("Failed to create uploads dir: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(TestDataDir(), "*.csv"))
	if err != nil {
		t.Fatalf("Failed to list test data: %v", err)
	}
	for _, src := range matches {
		data, err := os.ReadFile(src)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", src, err)
		}
		if err := os.WriteFile(filepath.Join(uploads, filepath.Base(src)), data, 0644); err != nil {
			t.Fatalf("Failed to copy %s: %v", src, err)
		}
	}
	return dir
}

// TestConfig returns SLIDES_* variables suitable for testing
func TestConfig() map[string]string {
	root := ProjectRoot()
	return map[string]string{
		"SLIDES_DATA_DIR":      filepath.Join(root, "testdata"),
		"SLIDES_UPLOADS_DIR":   filepath.Join(root, "testdata"),
		"SLIDES_TEMPLATES_DIR": filepath.Join(root, "web", "templates"),
		"SLIDES_STATIC_DIR":    filepath.Join(root, "web", "static"),
		"SLIDES_DEBUG":         "true",
		"SLIDES_LISTEN_ADDR":   ":0",
	}
}

// SetTestEnv sets the test configuration for the duration of the test
func SetTestEnv(t *testing.T) {
	t.Helper()
	for k, v := range TestConfig() {
		t.Setenv(k, v)
	}
}

// NewTestServer creates a new test server using the application's router.
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		t:       t,
	}
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()

	resp, err := http.Get(ts.BaseURL + path)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// POST performs a POST request to the given path
func (ts *TestServer) POST(path string, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()

	resp, err := http.Post(ts.BaseURL+path, contentType, body)
	if err != nil {
		ts.t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// PostForm performs a form-encoded POST
func (ts *TestServer) PostForm(path string, values url.Values) *http.Response {
	ts.t.Helper()

	return ts.POST(path, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
}

// Upload posts content as the multipart file field "file"
func (ts *TestServer) Upload(path, filename string, content []byte) *http.Response {
	ts.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		ts.t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write(content)
	mw.Close()

	return ts.POST(path, mw.FormDataContentType(), &body)
}

// DELETE performs a DELETE request to the given path
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()

	req, err := http.NewRequest(http.MethodDelete, ts.BaseURL+path, nil)
	if err != nil {
		ts.t.Fatalf("Failed to build DELETE %s: %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("DELETE %s failed: %v", path, err)
	}
	return resp
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// ReadBody reads and returns the response body as a string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}
