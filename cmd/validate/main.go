// Package main provides a CLI tool for validating slideshow server endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	subtle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 2)
)

type endpoint struct {
	path        string
	method      string
	contentType string
	contains    []string
	status      int
}

var endpoints = []endpoint{
	// Host page
	{path: "/slides", method: "GET", contentType: "text/html", contains: []string{`id="visualization"`, `id="next"`, `id="prev"`}},

	// Navigation: a full cycle returns to the first slide
	{path: "/slides/current", method: "GET", contentType: "image/svg+xml", contains: []string{`class="bar"`, "Coffee Type"}},
	{path: "/slides/next", method: "POST", contentType: "image/svg+xml", contains: []string{`class="dot"`, `class="legend"`}},
	{path: "/slides/next", method: "POST", contentType: "image/svg+xml", contains: []string{`class="line"`}},
	{path: "/slides/next", method: "POST", contentType: "image/svg+xml", contains: []string{"Cash Type"}},
	{path: "/slides/next", method: "POST", contentType: "image/svg+xml", contains: []string{"Coffee Type"}},
	{path: "/slides/prev", method: "POST", contentType: "image/svg+xml", contains: []string{"Cash Type"}},
	{path: "/slides/0", method: "POST", contentType: "image/svg+xml", contains: nil},
	{path: "/slides/tooltip", method: "GET", contentType: "application/json", contains: []string{`"opacity"`}},

	// Exports
	{path: "/slides/0/png", method: "GET", contentType: "image/png", contains: []string{"PNG"}},
	{path: "/slides/1/echarts", method: "GET", contentType: "text/html", contains: []string{"echarts"}},

	// Dataset
	{path: "/dataset/files", method: "GET", contentType: "text/html", contains: []string{".csv"}},

	// API
	{path: "/api/health", method: "GET", contentType: "application/json", contains: []string{`"status":"ok"`, `"data":"ready"`}},
	{path: "/api/version", method: "GET", contentType: "application/json", contains: []string{`"version"`}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	flag.Parse()

	client := resty.New().
		SetBaseURL(strings.TrimRight(*url, "/")).
		SetTimeout(time.Duration(*timeout) * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	fmt.Println(titleStyle.Render("Validating server at " + *url))
	fmt.Println(subtle.Render(fmt.Sprintf("Testing %d endpoints...", len(endpoints))))
	fmt.Println()

	var passed, failed int
	for _, ep := range endpoints {
		r := validateEndpoint(client, ep)
		label := fmt.Sprintf("%s %s", ep.method, ep.path)

		if r.err != nil {
			failed++
			fmt.Println(failStyle.Render("✗ FAIL ") + label)
			fmt.Println(subtle.Render(fmt.Sprintf("     %v", r.err)))
			continue
		}
		passed++
		if *verbose {
			fmt.Println(passStyle.Render("✓ PASS ") + label + subtle.Render(fmt.Sprintf(" (%v)", r.duration.Round(time.Millisecond))))
		}
	}

	summary := fmt.Sprintf("Results: %d passed, %d failed", passed, failed)
	if failed > 0 {
		fmt.Println(boxStyle.Render(failStyle.Render(summary)))
		os.Exit(1)
	}
	fmt.Println(boxStyle.Render(passStyle.Render(summary)))
}

func validateEndpoint(client *resty.Client, ep endpoint) result {
	resp, err := client.R().Execute(ep.method, ep.path)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}

	r := result{
		endpoint: ep,
		status:   resp.StatusCode(),
		duration: resp.Time(),
	}

	want := ep.status
	if want == 0 {
		want = http.StatusOK
	}
	if r.status != want {
		r.err = fmt.Errorf("status %d (expected %d)", r.status, want)
		return r
	}

	ct := resp.Header().Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	body := resp.Body()
	if ep.contentType == "application/json" {
		var js interface{}
		if err := json.Unmarshal(body, &js); err != nil {
			r.err = fmt.Errorf("invalid JSON: %w", err)
			return r
		}
	}

	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
