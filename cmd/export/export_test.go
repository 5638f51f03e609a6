package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeeslides/internal/config"
	"coffeeslides/internal/services/storage"
	"coffeeslides/internal/testutil"
)

type countingProgress struct {
	total, added int
	finished     bool
}

func (p *countingProgress) Add(n int) error { p.added += n; return nil }
func (p *countingProgress) Finish() error   { p.finished = true; return nil }

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		DataDirectory:      dataDir,
		UploadsDirectory:   filepath.Join(dataDir, "uploads"),
		PaymentCaptionLift: 40,
	}
}

func TestExportAllFormats(t *testing.T) {
	c := testConfig(testutil.CopyTestData(t))
	out := filepath.Join(t.TempDir(), "slides")

	progress := &countingProgress{}
	written, err := Export(context.Background(), c, Options{
		OutDir:  out,
		Formats: []string{"svg", "png", "html"},
		Progress: func(total int) Progress {
			progress.total = total
			return progress
		},
	})
	require.NoError(t, err)

	require.Len(t, written, 12)
	assert.Equal(t, 12, progress.total)
	assert.Equal(t, 12, progress.added)
	assert.True(t, progress.finished)

	assert.Equal(t, filepath.Join(out, "01-total-spent-per-coffee.svg"), written[0])
	assert.Equal(t, filepath.Join(out, "04-total-spent-per-payment-type.html"), written[11])

	svg, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, 8, strings.Count(string(svg), `class="bar"`))

	scatter, err := os.ReadFile(filepath.Join(out, "02-every-transaction-by-coffee.svg"))
	require.NoError(t, err)
	assert.Equal(t, 12, strings.Count(string(scatter), `class="dot"`))

	png, err := os.ReadFile(filepath.Join(out, "03-coffee-totals.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestExportFormatSelection(t *testing.T) {
	c := testConfig(testutil.CopyTestData(t))

	written, err := Export(context.Background(), c, Options{
		OutDir:  t.TempDir(),
		Formats: []string{"SVG", " svg "},
	})
	require.NoError(t, err)
	assert.Len(t, written, 4)
	for _, path := range written {
		assert.Equal(t, ".svg", filepath.Ext(path))
	}

	_, err = Export(context.Background(), c, Options{OutDir: t.TempDir(), Formats: []string{"gif"}})
	assert.ErrorContains(t, err, `unknown format "gif"`)

	_, err = Export(context.Background(), c, Options{OutDir: t.TempDir()})
	assert.Error(t, err)
}

func TestExportNoData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "uploads"), 0755))

	_, err := Export(context.Background(), testConfig(dir), Options{
		OutDir:  t.TempDir(),
		Formats: []string{"svg"},
	})
	assert.Error(t, err)
}

func TestExportEncrypted(t *testing.T) {
	dir := testutil.CopyTestData(t)
	store, err := storage.New(dir)
	require.NoError(t, err)
	require.NoError(t, store.EnableEncryption("correct horse"))

	opts := Options{OutDir: t.TempDir(), Formats: []string{"svg"}}

	_, err = Export(context.Background(), testConfig(dir), opts)
	assert.ErrorContains(t, err, "encrypted")

	opts.Passphrase = "wrong passphrase"
	_, err = Export(context.Background(), testConfig(dir), opts)
	assert.ErrorIs(t, err, storage.ErrIncorrectPassphrase)

	opts.Passphrase = "correct horse"
	written, err := Export(context.Background(), testConfig(dir), opts)
	require.NoError(t, err)
	assert.Len(t, written, 4)
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Export(ctx, testConfig(testutil.CopyTestData(t)), Options{
		OutDir:  t.TempDir(),
		Formats: []string{"svg"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "01-total-spent-per-coffee.svg", fileName(0, "Total spent per coffee", "svg"))
	assert.Equal(t, "10-a-b.png", fileName(9, "  A   b ", "png"))
}
