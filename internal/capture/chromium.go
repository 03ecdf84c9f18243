// Package capture turns rendered SVG charts into PNGs by screenshotting
// them in headless Chromium.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"calgroup/internal/model"
)

const defaultTimeout = 30 * time.Second

// Options define a single chart capture.
type Options struct {
	// OutputPath is where the PNG screenshot is written.
	OutputPath string

	// Timeout bounds the whole capture. Zero means defaultTimeout.
	Timeout time.Duration
}

// ChartPNG wraps the chart's SVG in a minimal HTML page in a temp
// directory, navigates headless Chromium to it over file://, waits for the
// page to signal readiness, and screenshots it at the chart's own size.
func ChartPNG(parentCtx context.Context, ch model.Chart, opts Options) error {
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	dir, err := os.MkdirTemp("", "calgroup-capture-*")
	if err != nil {
		return fmt.Errorf("capture: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	page := filepath.Join(dir, "chart.html")
	if err := os.WriteFile(page, wrapHTML(ch), 0o644); err != nil {
		return fmt.Errorf("capture: write page: %w", err)
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(ch.Spec.Width), int64(ch.Spec.Height)),
		chromedp.Navigate("file://" + page),
		// The page marks itself ready once the SVG is in the DOM.
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	return nil
}

func wrapHTML(ch model.Chart) []byte {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>html,body{margin:0;padding:0}</style></head>
<body data-ready="true">
%s
</body>
</html>
`, ch.SVG)
	return []byte(page)
}
