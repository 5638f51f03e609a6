package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"coffeeslides/internal/templates"
)

// RenderTemplate renders a full page template with data
func RenderTemplate(w http.ResponseWriter, renderer *templates.Renderer, templateName string, data map[string]interface{}) {
	if renderer != nil {
		renderer.Render(w, templateName, data)
	} else {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><h1>" + templateName + "</h1><p>Templates not loaded. Check configuration.</p></body></html>"))
	}
}

// RenderPartial renders a partial template with data and status. Without
// templates the data goes out as JSON, so scripted clients still get an answer.
func RenderPartial(w http.ResponseWriter, renderer *templates.Renderer, partialName string, data map[string]interface{}, statusCode int) {
	if renderer == nil {
		JSONResponse(w, data, statusCode)
		return
	}
	if statusCode != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
	}
	renderer.RenderPartial(w, partialName, data)
}

// ErrorResponse sends an error response
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	zap.L().Warn("request failed", zap.String("error", message), zap.Int("status", statusCode))
	http.Error(w, message, statusCode)
}

// JSONResponse writes v as JSON with the given status
func JSONResponse(w http.ResponseWriter, v interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// RequestLogger logs one line per request once it completes
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("Request completed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.Int("body_size", ww.BytesWritten()),
			)
		})
	}
}
