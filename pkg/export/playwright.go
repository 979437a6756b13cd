package export

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
)

// PlaywrightRasterizer prints documents to PDF with headless Chromium.
type PlaywrightRasterizer struct {
	// Format is the paper format passed to Chromium.
	Format string
}

// NewPlaywrightRasterizer creates a rasterizer printing on Letter paper.
func NewPlaywrightRasterizer() (r *PlaywrightRasterizer) {
	r = &PlaywrightRasterizer{
		Format: "Letter",
	}
	return r
}

// PDF renders doc in a fresh browser page and prints it.
func (r *PlaywrightRasterizer) PDF(ctx context.Context, doc []byte, opts Options) (pdf []byte, err error) {
	err = ctx.Err()
	if err != nil {
		return pdf, err
	}

	var pw *playwright.Playwright
	pw, err = playwright.Run()
	if err != nil {
		err = errors.Wrap(err, "could not start playwright (install the driver with 'go run github.com/playwright-community/playwright-go/cmd/playwright install chromium')")
		return pdf, err
	}
	defer func() {
		_ = pw.Stop()
	}()

	var browser playwright.Browser
	browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		err = errors.Wrap(err, "could not launch chromium browser")
		return pdf, err
	}
	defer func() {
		_ = browser.Close()
	}()

	var browserCtx playwright.BrowserContext
	browserCtx, err = browser.NewContext(playwright.BrowserNewContextOptions{
		DeviceScaleFactor: playwright.Float(opts.Scale),
	})
	if err != nil {
		err = errors.Wrap(err, "could not create browser context")
		return pdf, err
	}
	defer func() {
		_ = browserCtx.Close()
	}()

	var page playwright.Page
	page, err = browserCtx.NewPage()
	if err != nil {
		err = errors.Wrap(err, "could not create new page")
		return pdf, err
	}

	// Bound browser operations by the caller's deadline
	if deadline, ok := ctx.Deadline(); ok {
		page.SetDefaultTimeout(float64(time.Until(deadline).Milliseconds()))
	}

	err = page.SetContent(string(doc), playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		err = errors.Wrap(err, "could not set page content")
		return pdf, err
	}

	margin := fmt.Sprintf("%gin", opts.MarginInches)
	pdf, err = page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String(r.Format),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String(margin),
			Bottom: playwright.String(margin),
			Left:   playwright.String(margin),
			Right:  playwright.String(margin),
		},
	})
	if err != nil {
		err = errors.Wrap(err, "could not generate PDF")
		return pdf, err
	}

	return pdf, err
}
