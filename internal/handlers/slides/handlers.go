// Package slides serves the slideshow page, its navigation and hover
// events, and the static exports of each slide.
package slides

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"coffeeslides/internal/charts"
	"coffeeslides/internal/config"
	apphttp "coffeeslides/internal/http"
	"coffeeslides/internal/models"
	"coffeeslides/internal/services/dataloader"
	"coffeeslides/internal/services/metrics"
	"coffeeslides/internal/slides"
	"coffeeslides/internal/surface"
	"coffeeslides/internal/templates"
	"coffeeslides/internal/tooltip"
)

// ErrUnavailable is returned while no dataset has been loaded
var ErrUnavailable = errors.New("data unavailable")

var (
	loader   *dataloader.DataLoader
	renderer *templates.Renderer
	cfg      *config.Config
	summary  *metrics.Service
	log      *zap.Logger

	mu      sync.RWMutex
	deck    *slides.Deck
	book    *charts.Book
	stats   *models.DatasetSummary
	loadErr error
)

// Initialize sets up the slides package with required dependencies
func Initialize(l *dataloader.DataLoader, r *templates.Renderer, c *config.Config, m *metrics.Service) {
	loader = l
	renderer = r
	cfg = c
	summary = m
	log = zap.L().Named("slides")
}

// RegisterRoutes registers all slideshow routes
func RegisterRoutes(r chi.Router) {
	r.Get("/slides", handleSlides)
	r.Get("/slides/current", handleCurrent)
	r.Get("/slides/tooltip", handleTooltip)
	r.Post("/slides/next", handleNext)
	r.Post("/slides/prev", handlePrev)
	r.Post("/slides/hover/enter", handleHoverEnter)
	r.Post("/slides/hover/leave", handleHoverLeave)
	r.Post("/slides/{index}", handleShow)
	r.Get("/slides/{index}/png", handlePNG)
	r.Get("/slides/{index}/echarts", handleECharts)
}

// Reload loads the dataset again and rebuilds the deck on a fresh surface.
// On failure the previous deck is dropped and every slide route answers
// 503 until the next successful reload.
func Reload() error {
	set, err := loader.LoadData()

	mu.Lock()
	defer mu.Unlock()

	if err != nil {
		log.Error("Failed to load data", zap.Error(err))
		deck, book, stats, loadErr = nil, nil, nil, err
		return err
	}

	tip := tooltip.New()
	b := charts.NewBook(set, tip, charts.Options{PaymentCaptionLift: cfg.PaymentCaptionLift})
	d, err := slides.New(b.Views(), surface.New(), tip,
		slides.WithEmptyData(b.Empty()),
		slides.WithLogger(log))
	if err != nil {
		deck, book, stats, loadErr = nil, nil, nil, err
		return err
	}

	st := d.Start()
	sum := summary.Summarize(set)
	sum.SkippedRows = loader.SkippedRows()
	deck, book, stats, loadErr = d, b, sum, nil
	log.Info("Slideshow ready",
		zap.Int("transactions", set.Len()),
		zap.Int("skipped_rows", sum.SkippedRows),
		zap.Int("slides", st.Count),
		zap.String("render_id", st.RenderID))
	return nil
}

// Status reports the current slide, or an error when no data is loaded
func Status() (slides.Status, error) {
	d, _, err := current()
	if err != nil {
		return slides.Status{}, err
	}
	return d.Current(), nil
}

func current() (*slides.Deck, *charts.Book, error) {
	mu.RLock()
	defer mu.RUnlock()
	if deck == nil {
		if loadErr != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, loadErr)
		}
		return nil, nil, ErrUnavailable
	}
	return deck, book, nil
}

func handleSlides(w http.ResponseWriter, r *http.Request) {
	pageData := map[string]interface{}{
		"Title":     "Coffee Sales",
		"ActiveTab": "slides",
	}

	d, _, err := current()
	if err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		pageData["Unavailable"] = true
		pageData["Error"] = "Data unavailable"
		apphttp.RenderTemplate(w, renderer, "slides", pageData)
		return
	}

	f, err := d.CurrentFrame()
	if err != nil {
		apphttp.ErrorResponse(w, "Error drawing slide", http.StatusInternalServerError)
		return
	}

	mu.RLock()
	pageData["Summary"] = stats
	mu.RUnlock()
	pageData["Status"] = f.Status
	pageData["Names"] = d.Names()
	pageData["SVG"] = template.HTML(f.SVG)
	pageData["Tooltip"] = d.Tooltip()
	apphttp.RenderTemplate(w, renderer, "slides", pageData)
}

func handleCurrent(w http.ResponseWriter, r *http.Request) {
	d, _, err := current()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	f, err := d.CurrentFrame()
	writeSlide(w, f, err)
}

func handleNext(w http.ResponseWriter, r *http.Request) {
	d, _, err := current()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	f, err := d.NextFrame()
	writeSlide(w, f, err)
}

func handlePrev(w http.ResponseWriter, r *http.Request) {
	d, _, err := current()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	f, err := d.PrevFrame()
	writeSlide(w, f, err)
}

func handleShow(w http.ResponseWriter, r *http.Request) {
	d, _, err := current()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		apphttp.ErrorResponse(w, "Invalid slide index", http.StatusBadRequest)
		return
	}
	f, err := d.ShowFrame(i)
	if errors.Is(err, slides.ErrOutOfRange) {
		apphttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeSlide(w, f, err)
}

// writeSlide answers a navigation event with the freshly drawn SVG; the
// slide position travels in headers so the page can update its controls
func writeSlide(w http.ResponseWriter, f slides.Frame, err error) {
	if err != nil {
		apphttp.ErrorResponse(w, "Error drawing slide", http.StatusInternalServerError)
		return
	}
	st := f.Status
	h := w.Header()
	h.Set("Content-Type", "image/svg+xml")
	h.Set("Cache-Control", "no-store")
	h.Set("X-Slide-Index", strconv.Itoa(st.Index))
	h.Set("X-Slide-Count", strconv.Itoa(st.Count))
	h.Set("X-Slide-Name", st.Name)
	h.Set("X-Render-ID", st.RenderID)
	w.Write(f.SVG)
}

func handleTooltip(w http.ResponseWriter, r *http.Request) {
	d, _, err := current()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	apphttp.JSONResponse(w, d.Tooltip(), http.StatusOK)
}

// hoverForm is the payload the page posts for pointer events on a mark
type hoverForm struct {
	render string
	mark   string
	x, y   float64
}

func parseHover(r *http.Request, needPosition bool) (hoverForm, error) {
	if err := r.ParseForm(); err != nil {
		return hoverForm{}, err
	}
	f := hoverForm{
		render: r.FormValue("render"),
		mark:   r.FormValue("mark"),
	}
	if f.render == "" || f.mark == "" {
		return f, errors.New("render and mark are required")
	}
	if !needPosition {
		return f, nil
	}
	var err error
	if f.x, err = strconv.ParseFloat(r.FormValue("x"), 64); err != nil {
		return f, fmt.Errorf("invalid x: %w", err)
	}
	if f.y, err = strconv.ParseFloat(r.FormValue("y"), 64); err != nil {
		return f, fmt.Errorf("invalid y: %w", err)
	}
	return f, nil
}

func handleHoverEnter(w http.ResponseWriter, r *http.Request) {
	d, _, err := current()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	f, err := parseHover(r, true)
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := d.Enter(f.render, f.mark, f.x, f.y)
	writeHover(w, st, err)
}

func handleHoverLeave(w http.ResponseWriter, r *http.Request) {
	d, _, err := current()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	f, err := parseHover(r, false)
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := d.Leave(f.render, f.mark)
	writeHover(w, st, err)
}

func writeHover(w http.ResponseWriter, st tooltip.State, err error) {
	switch {
	case err == nil:
		apphttp.JSONResponse(w, st, http.StatusOK)
	case errors.Is(err, slides.ErrStaleRender):
		apphttp.ErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, surface.ErrUnknownMark):
		apphttp.ErrorResponse(w, err.Error(), http.StatusNotFound)
	default:
		apphttp.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func slideIndex(w http.ResponseWriter, r *http.Request) (*charts.Book, int, bool) {
	_, b, err := current()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return nil, 0, false
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 || i >= charts.SlideCount {
		apphttp.ErrorResponse(w, "Invalid slide index", http.StatusBadRequest)
		return nil, 0, false
	}
	return b, i, true
}

func handlePNG(w http.ResponseWriter, r *http.Request) {
	b, i, ok := slideIndex(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := b.WritePNG(i, &buf); err != nil {
		log.Error("PNG export failed", zap.Int("slide", i), zap.Error(err))
		apphttp.ErrorResponse(w, "Error rendering image", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"slide-%d.png\"", i+1))
	w.Write(buf.Bytes())
}

func handleECharts(w http.ResponseWriter, r *http.Request) {
	b, i, ok := slideIndex(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := b.WriteECharts(i, &buf); err != nil {
		log.Error("ECharts export failed", zap.Int("slide", i), zap.Error(err))
		apphttp.ErrorResponse(w, "Error rendering chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
