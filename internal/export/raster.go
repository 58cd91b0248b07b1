package export

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// pixelDensity is the capture scale for raster exports.
const pixelDensity = 2.0

// Rasterizer captures rendered HTML with headless Chrome. It is the only
// asynchronous collaborator in the system: fire one capture, await it, no
// retries — a failure surfaces once and the operation aborts with no state
// change.
type Rasterizer struct {
	chromePath string
	timeout    time.Duration
}

// NewRasterizer builds a rasterizer. chromePath may be empty, in which case
// well-known Chromium binaries are looked up on PATH.
func NewRasterizer(chromePath string, timeout time.Duration) *Rasterizer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Rasterizer{chromePath: chromePath, timeout: timeout}
}

// percentEncodeForDataURL encodes a string for use in a data URL
// Unlike url.QueryEscape, this properly encodes spaces as %20 for data URLs
func percentEncodeForDataURL(s string) string {
	var result strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == '~':
			// Unreserved characters per RFC 3986
			result.WriteRune(r)
		case r == ' ':
			// Space must be encoded as %20 in data URLs, not +
			result.WriteString("%20")
		default:
			for _, b := range string(r) {
				result.WriteString(fmt.Sprintf("%%%02X", b))
			}
		}
	}
	return result.String()
}

func (r *Rasterizer) resolveChrome() (string, error) {
	if r.chromePath != "" {
		if _, err := exec.LookPath(r.chromePath); err != nil {
			return "", fmt.Errorf("%w: %s not found", ErrRasterDependencyMissing, r.chromePath)
		}
		return r.chromePath, nil
	}
	for _, candidate := range []string{"chromium-browser", "chromium", "google-chrome"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: chromium not installed", ErrRasterDependencyMissing)
}

// run navigates a fresh headless browser to the HTML and executes actions.
func (r *Rasterizer) run(parent context.Context, html string, actions ...chromedp.Action) error {
	chromePath, err := r.resolveChrome()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(parent, r.timeout)
	defer cancel()

	// Chrome options for headless mode in container
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	dataURL := "data:text/html;charset=utf-8," + percentEncodeForDataURL(html)

	run := append([]chromedp.Action{
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
	}, actions...)
	return chromedp.Run(taskCtx, run...)
}

// contentSize reads the rendered page's content box in CSS pixels.
func contentSize(ctx context.Context) (width, height float64, err error) {
	_, _, content, _, _, cssContent, err := page.GetLayoutMetrics().Do(ctx)
	if err != nil {
		return 0, 0, err
	}
	box := cssContent
	if box == nil {
		box = content
	}
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return 1280, 800, nil
	}
	return box.Width, box.Height, nil
}

// PNG captures the full rendered page as a PNG at 2x pixel density.
func (r *Rasterizer) PNG(ctx context.Context, html string) ([]byte, error) {
	var data []byte
	err := r.run(ctx, html, chromedp.ActionFunc(func(ctx context.Context) error {
		width, height, err := contentSize(ctx)
		if err != nil {
			return err
		}
		if err := emulation.SetDeviceMetricsOverride(int64(width), int64(height), pixelDensity, false).Do(ctx); err != nil {
			return err
		}
		data, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithCaptureBeyondViewport(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("chrome png capture failed: %w", err)
	}
	return data, nil
}

// PDF prints the rendered page onto a single landscape sheet whose aspect
// ratio follows the rendered grid, scaled to fit with centering margins.
func (r *Rasterizer) PDF(ctx context.Context, html string) ([]byte, error) {
	var data []byte
	err := r.run(ctx, html, chromedp.ActionFunc(func(ctx context.Context) error {
		width, height, err := contentSize(ctx)
		if err != nil {
			return err
		}
		const paperWidth = 14.0 // inches, landscape long edge
		const margin = 0.4
		paperHeight := paperWidth * height / width
		if paperHeight > paperWidth {
			paperHeight = paperWidth
		}
		data, _, err = page.PrintToPDF().
			WithLandscape(true).
			WithPrintBackground(true).
			WithPaperWidth(paperWidth).
			WithPaperHeight(paperHeight).
			WithMarginTop(margin).
			WithMarginBottom(margin).
			WithMarginLeft(margin).
			WithMarginRight(margin).
			WithScale(1).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("chrome pdf generation failed: %w", err)
	}
	return data, nil
}
