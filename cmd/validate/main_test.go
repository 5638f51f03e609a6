package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
)

func TestValidateEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok","data":"ready"}`))
		case "/broken":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":`))
		case "/slides/current":
			w.Header().Set("Content-Type", "image/svg+xml")
			w.Write([]byte(`<svg><rect class="bar"/></svg>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := resty.New().SetBaseURL(srv.URL)

	tests := []struct {
		name    string
		ep      endpoint
		wantErr string
	}{
		{"pass", endpoint{path: "/api/health", method: "GET", contentType: "application/json", contains: []string{`"status":"ok"`}}, ""},
		{"missing content", endpoint{path: "/slides/current", method: "GET", contentType: "image/svg+xml", contains: []string{`class="dot"`}}, "missing expected content"},
		{"wrong type", endpoint{path: "/slides/current", method: "GET", contentType: "text/html"}, "wrong content type"},
		{"invalid json", endpoint{path: "/broken", method: "GET", contentType: "application/json"}, "invalid JSON"},
		{"not found", endpoint{path: "/nope", method: "GET", contentType: "text/html"}, "status 404"},
		{"expected status", endpoint{path: "/nope", method: "GET", contentType: "text/plain", status: http.StatusNotFound}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validateEndpoint(client, tt.ep)
			if tt.wantErr == "" {
				assert.NoError(t, r.err)
				return
			}
			assert.ErrorContains(t, r.err, tt.wantErr)
		})
	}
}
