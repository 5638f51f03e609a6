package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"coffeeslides/internal/charts"
	"coffeeslides/internal/config"
	"coffeeslides/internal/services/dataloader"
	"coffeeslides/internal/services/storage"
	"coffeeslides/internal/slides"
	"coffeeslides/internal/surface"
	"coffeeslides/internal/tooltip"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatHTML = "html"
)

// Progress is advanced once per file written.
type Progress interface {
	Add(n int) error
	Finish() error
}

// Options control one export run.
type Options struct {
	OutDir     string
	Formats    []string
	Passphrase string
	// Progress builds a progress reporter for total files; nil disables it.
	Progress func(total int) Progress
}

// Export loads the dataset configured by c and writes every slide in each
// requested format. It returns the paths written, in slide order.
func Export(ctx context.Context, c *config.Config, opts Options) ([]string, error) {
	formats, err := normalizeFormats(opts.Formats)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(c.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	if store.IsEncrypted() {
		if opts.Passphrase == "" {
			return nil, errors.New("data directory is encrypted: pass --passphrase or set SLIDES_PASSPHRASE")
		}
		if err := store.Unlock(opts.Passphrase); err != nil {
			return nil, err
		}
	}

	set, err := dataloader.New(c.UploadsDirectory, store).LoadData()
	if err != nil {
		return nil, err
	}

	tip := tooltip.New()
	book := charts.NewBook(set, tip, charts.Options{PaymentCaptionLift: c.PaymentCaptionLift})
	deck, err := slides.New(book.Views(), surface.New(), tip,
		slides.WithEmptyData(book.Empty()),
		slides.WithLogger(zap.L().Named("export")))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var bar Progress
	if opts.Progress != nil {
		bar = opts.Progress(deck.Len() * len(formats))
	}

	var written []string
	for i, name := range deck.Names() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		frame, err := deck.ShowFrame(i)
		if err != nil {
			return written, err
		}

		for _, format := range formats {
			path := filepath.Join(opts.OutDir, fileName(i, name, format))
			err := writeFile(path, func(w io.Writer) error {
				switch format {
				case FormatSVG:
					_, err := w.Write(frame.SVG)
					return err
				case FormatPNG:
					return book.WritePNG(i, w)
				default:
					return book.WriteECharts(i, w)
				}
			})
			if err != nil {
				return written, fmt.Errorf("slide %d %s: %w", i, format, err)
			}
			written = append(written, path)
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return written, nil
}

func normalizeFormats(in []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case FormatSVG, FormatPNG, FormatHTML:
		default:
			return nil, fmt.Errorf("unknown format %q: want svg, png or html", f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no output formats requested")
	}
	return out, nil
}

// fileName is "<position>-<slug>.<format>", e.g. "01-total-spent-per-coffee.svg".
func fileName(i int, name, format string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	return fmt.Sprintf("%02d-%s.%s", i+1, slug, format)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
