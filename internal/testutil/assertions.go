package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ResponseAssertion chains checks over one HTTP response. The body is read
// once, on first use.
type ResponseAssertion struct {
	t    *testing.T
	resp *http.Response
	body *string
}

// AssertResponse starts a chain of assertions on resp
func AssertResponse(t *testing.T, resp *http.Response) *ResponseAssertion {
	t.Helper()
	return &ResponseAssertion{t: t, resp: resp}
}

func (ra *ResponseAssertion) readBody() string {
	ra.t.Helper()
	if ra.body == nil {
		defer ra.resp.Body.Close()
		b, err := io.ReadAll(ra.resp.Body)
		require.NoError(ra.t, err, "read response body")
		s := string(b)
		ra.body = &s
	}
	return *ra.body
}

// Status asserts the status code
func (ra *ResponseAssertion) Status(code int) *ResponseAssertion {
	ra.t.Helper()
	assert.Equal(ra.t, code, ra.resp.StatusCode, "status for %s %s", ra.resp.Request.Method, ra.resp.Request.URL.Path)
	return ra
}

// StatusOK asserts status 200
func (ra *ResponseAssertion) StatusOK() *ResponseAssertion {
	ra.t.Helper()
	return ra.Status(http.StatusOK)
}

// ContentType asserts the Content-Type header contains expected
func (ra *ResponseAssertion) ContentType(expected string) *ResponseAssertion {
	ra.t.Helper()
	assert.Contains(ra.t, ra.resp.Header.Get("Content-Type"), expected)
	return ra
}

// ContentTypeHTML asserts an HTML response
func (ra *ResponseAssertion) ContentTypeHTML() *ResponseAssertion {
	ra.t.Helper()
	return ra.ContentType("text/html")
}

// ContentTypeJSON asserts a JSON response
func (ra *ResponseAssertion) ContentTypeJSON() *ResponseAssertion {
	ra.t.Helper()
	return ra.ContentType("application/json")
}

// Contains asserts the body contains substr
func (ra *ResponseAssertion) Contains(substr string) *ResponseAssertion {
	ra.t.Helper()
	body := ra.readBody()
	if !strings.Contains(body, substr) {
		assert.Failf(ra.t, "body is missing content", "want %q in:\n%s", substr, truncate(body, 500))
	}
	return ra
}

// ContainsAll asserts the body contains every substring
func (ra *ResponseAssertion) ContainsAll(substrs ...string) *ResponseAssertion {
	ra.t.Helper()
	for _, s := range substrs {
		ra.Contains(s)
	}
	return ra
}

// NotContains asserts the body does not contain substr
func (ra *ResponseAssertion) NotContains(substr string) *ResponseAssertion {
	ra.t.Helper()
	assert.NotContains(ra.t, ra.readBody(), substr)
	return ra
}

// HasElement asserts an element with the given id is present
func (ra *ResponseAssertion) HasElement(id string) *ResponseAssertion {
	ra.t.Helper()
	pattern := regexp.MustCompile(`id=["']` + regexp.QuoteMeta(id) + `["']`)
	assert.True(ra.t, pattern.MatchString(ra.readBody()), "no element with id=%q", id)
	return ra
}

// HasClass asserts some element carries class
func (ra *ResponseAssertion) HasClass(class string) *ResponseAssertion {
	ra.t.Helper()
	assert.Positive(ra.t, countClass(ra.readBody(), class), "no element with class=%q", class)
	return ra
}

// ClassCount asserts exactly n elements carry class, e.g. the bars of a chart
func (ra *ResponseAssertion) ClassCount(class string, n int) *ResponseAssertion {
	ra.t.Helper()
	assert.Equal(ra.t, n, countClass(ra.readBody(), class), "elements with class=%q", class)
	return ra
}

func countClass(body, class string) int {
	pattern := regexp.MustCompile(`class=["']([^"']*)["']`)
	n := 0
	for _, m := range pattern.FindAllStringSubmatch(body, -1) {
		for _, c := range strings.Fields(m[1]) {
			if c == class {
				n++
				break
			}
		}
	}
	return n
}

// Header asserts header name equals expected
func (ra *ResponseAssertion) Header(name, expected string) *ResponseAssertion {
	ra.t.Helper()
	assert.Equal(ra.t, expected, ra.resp.Header.Get(name), "header %s", name)
	return ra
}

// HasHeader asserts header name is set
func (ra *ResponseAssertion) HasHeader(name string) *ResponseAssertion {
	ra.t.Helper()
	assert.NotEmpty(ra.t, ra.resp.Header.Get(name), "header %s", name)
	return ra
}

// Slide asserts the slide headers of an SVG slide response
func (ra *ResponseAssertion) Slide(index, count int) *ResponseAssertion {
	ra.t.Helper()
	return ra.ContentType("image/svg+xml").
		Header("X-Slide-Index", strconv.Itoa(index)).
		Header("X-Slide-Count", strconv.Itoa(count)).
		HasHeader("X-Render-ID")
}

// JSON decodes the body into v
func (ra *ResponseAssertion) JSON(v interface{}) *ResponseAssertion {
	ra.t.Helper()
	body := ra.readBody()
	require.NoError(ra.t, json.Unmarshal([]byte(body), v), "decode JSON body:\n%s", truncate(body, 500))
	return ra
}

// Body returns the response body
func (ra *ResponseAssertion) Body() string {
	ra.t.Helper()
	return ra.readBody()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
