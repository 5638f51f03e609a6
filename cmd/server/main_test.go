package main

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeeslides/internal/config"
	"coffeeslides/internal/services/storage"
	"coffeeslides/internal/testutil"
	"coffeeslides/internal/tooltip"
)

// setupTestServer initializes dependencies over a copy of the sample data
// and returns a test server
func setupTestServer(t *testing.T) *testutil.TestServer {
	t.Helper()
	return setupTestServerIn(t, testutil.CopyTestData(t))
}

func setupTestServerIn(t *testing.T, dataDir string) *testutil.TestServer {
	t.Helper()

	root := testutil.ProjectRoot()
	c := &config.Config{
		ListenAddr:         ":0",
		DataDirectory:      dataDir,
		UploadsDirectory:   filepath.Join(dataDir, "uploads"),
		TemplatesDirectory: filepath.Join(root, "web", "templates"),
		StaticDirectory:    filepath.Join(root, "web", "static"),
		LogLevel:           "info",
		LogFormat:          "console",
		PaymentCaptionLift: 40,
	}
	require.NoError(t, os.MkdirAll(c.UploadsDirectory, 0755))

	var err error
	store, err = storage.New(c.DataDirectory)
	require.NoError(t, err)

	require.NoError(t, SetupDependencies(c))

	ts := testutil.NewTestServer(t, SetupRouter())
	t.Cleanup(ts.Close)
	return ts
}

func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// renderOf fetches the current slide and returns its render id
func renderOf(t *testing.T, ts *testutil.TestServer) string {
	t.Helper()
	resp := ts.GET("/slides/current")
	testutil.AssertResponse(t, resp).StatusOK()
	return resp.Header.Get("X-Render-ID")
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.GET("/api/health")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(`"status":"ok"`, `"data":"ready"`)
}

func TestVersionEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.GET("/api/version")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"version":"dev"`)
}

func TestRootRedirect(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := noRedirect().Get(ts.BaseURL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/slides", resp.Header.Get("Location"))
}

func TestSlidesPage(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.GET("/slides")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeHTML().
		HasElement("visualization").
		HasElement("prev").
		HasElement("next").
		HasElement("tooltip").
		HasClass("bar").
		ContainsAll("Total Amount Spent", "Coffee Type", "Transactions", "$424.10", "Latte").
		ContainsAll("Largest ticket", "$40.00", "Latte ($117.40, 27.7% of sales, 3 sold)")
}

func TestCurrentSlide(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.GET("/slides/current")
	testutil.AssertResponse(t, resp).
		StatusOK().
		Slide(0, 4).
		ClassCount("bar", 8).
		Contains(`data-render="` + resp.Header.Get("X-Render-ID") + `"`)
}

func TestNavigationCycle(t *testing.T) {
	ts := setupTestServer(t)

	wantClass := []string{"dot", "line", "bar", "bar"}
	for i, class := range wantClass {
		resp := ts.POST("/slides/next", "", nil)
		testutil.AssertResponse(t, resp).
			StatusOK().
			Slide((i+1)%4, 4).
			HasClass(class)
	}

	resp := ts.POST("/slides/prev", "", nil)
	testutil.AssertResponse(t, resp).
		StatusOK().
		Header("X-Slide-Index", "3").
		Contains("Cash Type")
}

func TestShowSlide(t *testing.T) {
	ts := setupTestServer(t)

	testutil.AssertResponse(t, ts.POST("/slides/2", "", nil)).
		StatusOK().
		Slide(2, 4).
		HasClass("line")

	testutil.AssertResponse(t, ts.POST("/slides/9", "", nil)).Status(http.StatusBadRequest)
	testutil.AssertResponse(t, ts.POST("/slides/abc", "", nil)).Status(http.StatusBadRequest)
}

func TestHoverShowsAndHidesTooltip(t *testing.T) {
	ts := setupTestServer(t)
	render := renderOf(t, ts)

	var shown tooltip.State
	testutil.AssertResponse(t, ts.PostForm("/slides/hover/enter", url.Values{
		"render": {render},
		"mark":   {"mark-0"},
		"x":      {"300"},
		"y":      {"200"},
	})).StatusOK().ContentTypeJSON().JSON(&shown)

	assert.Equal(t, "Coffee: Latte\nTotal: $117.40", shown.Content)
	assert.Equal(t, 260.0, shown.Left)
	assert.Equal(t, 140.0, shown.Top)
	assert.Equal(t, 1.0, shown.Opacity)
	assert.Equal(t, int64(200), shown.DurationMS)

	var hidden tooltip.State
	testutil.AssertResponse(t, ts.PostForm("/slides/hover/leave", url.Values{
		"render": {render},
		"mark":   {"mark-0"},
	})).StatusOK().JSON(&hidden)

	assert.Equal(t, 0.0, hidden.Opacity)
	assert.Equal(t, int64(500), hidden.DurationMS)
	assert.Equal(t, shown.Content, hidden.Content)

	var polled tooltip.State
	testutil.AssertResponse(t, ts.GET("/slides/tooltip")).StatusOK().JSON(&polled)
	assert.Equal(t, hidden, polled)
}

func TestHoverPaymentSlide(t *testing.T) {
	ts := setupTestServer(t)
	testutil.AssertResponse(t, ts.POST("/slides/3", "", nil)).StatusOK()
	render := renderOf(t, ts)

	var shown tooltip.State
	testutil.AssertResponse(t, ts.PostForm("/slides/hover/enter", url.Values{
		"render": {render},
		"mark":   {"mark-1"},
		"x":      {"100"},
		"y":      {"100"},
	})).StatusOK().JSON(&shown)

	assert.Equal(t, "Cash Type: cash\nTotal: $115.00", shown.Content)
}

func TestHoverErrors(t *testing.T) {
	ts := setupTestServer(t)
	stale := renderOf(t, ts)
	testutil.AssertResponse(t, ts.POST("/slides/next", "", nil)).StatusOK()
	fresh := renderOf(t, ts)

	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"stale render", url.Values{"render": {stale}, "mark": {"mark-0"}, "x": {"1"}, "y": {"1"}}, http.StatusConflict},
		{"unknown mark", url.Values{"render": {fresh}, "mark": {"mark-999"}, "x": {"1"}, "y": {"1"}}, http.StatusNotFound},
		{"missing mark", url.Values{"render": {fresh}, "x": {"1"}, "y": {"1"}}, http.StatusBadRequest},
		{"bad position", url.Values{"render": {fresh}, "mark": {"mark-0"}, "x": {"left"}, "y": {"1"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertResponse(t, ts.PostForm("/slides/hover/enter", tt.form)).Status(tt.status)
		})
	}
}

func TestSlideExports(t *testing.T) {
	ts := setupTestServer(t)

	for i := 0; i < 4; i++ {
		path := "/slides/" + strconv.Itoa(i)

		body := testutil.AssertResponse(t, ts.GET(path+"/png")).StatusOK().ContentType("image/png").Body()
		assert.True(t, strings.HasPrefix(body, "\x89PNG"), "slide %d png signature", i)

		testutil.AssertResponse(t, ts.GET(path+"/echarts")).
			StatusOK().
			ContentTypeHTML().
			Contains("echarts")
	}

	testutil.AssertResponse(t, ts.GET("/slides/4/png")).Status(http.StatusBadRequest)
}

func TestDataUnavailable(t *testing.T) {
	dir := t.TempDir()
	ts := setupTestServerIn(t, dir)

	testutil.AssertResponse(t, ts.GET("/slides")).
		Status(http.StatusServiceUnavailable).
		HasElement("visualization").
		Contains("Data unavailable").
		NotContains(`class="bar"`)

	testutil.AssertResponse(t, ts.POST("/slides/next", "", nil)).Status(http.StatusServiceUnavailable)
	testutil.AssertResponse(t, ts.GET("/api/health")).StatusOK().Contains(`"data":"unavailable"`)

	// the page recovers once a file arrives and the operator reloads
	testutil.AssertResponse(t, ts.POST("/dataset/sample", "", nil)).StatusOK()
	testutil.AssertResponse(t, ts.GET("/slides/current")).StatusOK().Header("X-Slide-Index", "0")
}

func TestFileManagement(t *testing.T) {
	ts := setupTestServer(t)

	testutil.AssertResponse(t, ts.GET("/dataset/files")).
		StatusOK().
		ContentTypeHTML().
		Contains("coffee_sales.csv")

	extra := "coffee_name,cash_type,money\nFlat White,card,31.5\n"
	testutil.AssertResponse(t, ts.Upload("/dataset/upload", "april.csv", []byte(extra))).
		StatusOK().
		ContainsAll("april.csv", "coffee_sales.csv")

	testutil.AssertResponse(t, ts.GET("/slides/current")).StatusOK().ClassCount("bar", 9)

	testutil.AssertResponse(t, ts.Upload("/dataset/upload", "notes.txt", []byte("hi"))).Status(http.StatusBadRequest)

	testutil.AssertResponse(t, ts.PostForm("/dataset/files/toggle", url.Values{
		"file":    {"coffee_sales.csv"},
		"enabled": {"false"},
	})).StatusOK()
	testutil.AssertResponse(t, ts.GET("/slides/current")).StatusOK().ClassCount("bar", 1)

	testutil.AssertResponse(t, ts.PostForm("/dataset/files/toggle", url.Values{
		"file":    {"april.csv"},
		"enabled": {"false"},
	})).Status(http.StatusBadRequest)

	testutil.AssertResponse(t, ts.DELETE("/dataset/files/april.csv")).StatusOK().NotContains("april.csv")
	testutil.AssertResponse(t, ts.DELETE("/dataset/files/april.csv")).Status(http.StatusNotFound)
	testutil.AssertResponse(t, ts.DELETE("/dataset/files/..%2Fsecret.csv")).Status(http.StatusBadRequest)
}

func TestBackupRestore(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.GET("/dataset/backup")
	backup := testutil.AssertResponse(t, resp).StatusOK().ContentType("application/zip").Body()
	assert.True(t, strings.HasPrefix(backup, "PK"))

	testutil.AssertResponse(t, ts.DELETE("/dataset/files/coffee_sales.csv")).StatusOK()
	testutil.AssertResponse(t, ts.GET("/slides/current")).Status(http.StatusServiceUnavailable)

	testutil.AssertResponse(t, ts.Upload("/dataset/restore", "backup.zip", []byte(backup))).
		StatusOK().
		Contains("coffee_sales.csv")
	testutil.AssertResponse(t, ts.GET("/slides/current")).StatusOK()
}

func TestLockedDataDirectory(t *testing.T) {
	ts := setupTestServer(t)
	pass := url.Values{"passphrase": {"correct horse"}}

	backup := testutil.AssertResponse(t, ts.GET("/dataset/backup")).StatusOK().Body()

	testutil.AssertResponse(t, ts.PostForm("/dataset/encryption/enable", pass)).
		StatusOK().
		HasElement("lock")
	testutil.AssertResponse(t, ts.POST("/dataset/lock", "", nil)).
		StatusOK().
		ContainsAll("coffee_sales.csv", "encrypted and locked").
		NotContains(`id="lock"`)

	extra := "coffee_name,cash_type,money\nFlat White,card,31.5\n"
	testutil.AssertResponse(t, ts.Upload("/dataset/upload", "april.csv", []byte(extra))).Status(http.StatusLocked)
	testutil.AssertResponse(t, ts.GET("/dataset/backup")).Status(http.StatusLocked)
	testutil.AssertResponse(t, ts.Upload("/dataset/restore", "backup.zip", []byte(backup))).
		Status(http.StatusLocked).
		Contains("Data directory is locked")

	testutil.AssertResponse(t, ts.PostForm("/dataset/unlock", pass)).StatusOK()
	testutil.AssertResponse(t, ts.Upload("/dataset/restore", "backup.zip", []byte(backup))).StatusOK()
}
