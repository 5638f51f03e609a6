// Package main provides a CLI that renders every slide to static files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coffeeslides/internal/config"
	"coffeeslides/internal/logger"
	"coffeeslides/internal/version"
)

var (
	outDir     string
	formats    []string
	passphrase string
	quiet      bool

	rootCmd = &cobra.Command{
		Use:   "export",
		Short: "Render the coffee sales slides to files",
		Long: `export loads the configured sales CSVs the same way the server does and
writes each slide as SVG, PNG and a standalone ECharts page.

Configuration comes from the same SLIDES_* environment variables as the server.`,
		Version:      version.Get().String(),
		SilenceUsage: true,
		RunE:         runExport,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&outDir, "out", "o", "export", "directory to write slides into")
	rootCmd.Flags().StringSliceVarP(&formats, "format", "f", []string{FormatSVG, FormatPNG, FormatHTML}, "formats to write (svg, png, html)")
	rootCmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase for an encrypted data directory (default: $SLIDES_PASSPHRASE)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, FormatError(err.Error()))
		os.Exit(1)
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := config.Load(ctx)
	if err != nil {
		return err
	}

	l, err := logger.New(c.LogLevel, c.LogFormat)
	if err != nil {
		return err
	}
	restore := logger.Install(l)
	defer restore()
	defer func() { _ = l.Sync() }()

	if passphrase == "" {
		passphrase = c.Passphrase
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("Exporting slides"))

	written, err := Export(ctx, c, Options{
		OutDir:     outDir,
		Formats:    formats,
		Passphrase: passphrase,
		Progress:   progressWriter(cmd),
	})
	if err != nil {
		return err
	}

	zap.L().Info("Export finished", zap.Int("files", len(written)), zap.String("dir", outDir))
	for _, path := range written {
		fmt.Fprintln(out, SubtleStyle.Render("  "+path))
	}
	fmt.Fprintln(out, FormatSuccess(fmt.Sprintf("Wrote %d files to %s", len(written), outDir)))
	return nil
}
