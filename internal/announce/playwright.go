package announce

import (
	"context"
	"fmt"
	"strings"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// hideAutomation removes the navigator.webdriver flag that portals use to
// refuse scripted sessions.
const hideAutomation = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// PlaywrightOptions configures NewPlaywrightBrowser.
type PlaywrightOptions struct {
	Headless bool
	// ExecutablePath selects a system Chromium instead of the bundled one.
	ExecutablePath string
	UserAgent      string
	// Install downloads the driver before starting. Browsers are not installed.
	Install bool
	// DefaultTimeout bounds each page action.
	DefaultTimeout time.Duration
}

type playwrightBrowser struct {
	pw      *pw.Playwright
	browser pw.Browser
	ctx     pw.BrowserContext
	timeout time.Duration
}

// NewPlaywrightBrowser starts the Playwright driver and launches Chromium.
func NewPlaywrightBrowser(opts PlaywrightOptions) (Browser, error) {
	if opts.Install {
		if err := pw.Install(&pw.RunOptions{SkipInstallBrowsers: true}); err != nil {
			return nil, fmt.Errorf("install playwright driver: %w", err)
		}
	}
	inst, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	launch := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled", "--disable-extensions"},
	}
	if opts.ExecutablePath != "" {
		launch.ExecutablePath = pw.String(opts.ExecutablePath)
	}
	browser, err := inst.Chromium.Launch(launch)
	if err != nil {
		_ = inst.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	ctxOpts := pw.BrowserNewContextOptions{AcceptDownloads: pw.Bool(true)}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = pw.String(opts.UserAgent)
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		_ = browser.Close()
		_ = inst.Stop()
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	if err := bctx.AddInitScript(pw.Script{Content: pw.String(hideAutomation)}); err != nil {
		_ = browser.Close()
		_ = inst.Stop()
		return nil, fmt.Errorf("add init script: %w", err)
	}
	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &playwrightBrowser{pw: inst, browser: browser, ctx: bctx, timeout: timeout}, nil
}

func (b *playwrightBrowser) Open(ctx context.Context, url string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := b.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))
	if _, err := page.Goto(url, pw.PageGotoOptions{WaitUntil: pw.WaitUntilStateDomcontentloaded}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}
	return &playwrightPage{page: page}, nil
}

func (b *playwrightBrowser) Close() error {
	var firstErr error
	for _, closeFn := range []func() error{
		func() error { return b.ctx.Close() },
		func() error { return b.browser.Close() },
		b.pw.Stop,
	} {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type playwrightPage struct {
	page pw.Page
}

func (p *playwrightPage) WaitFor(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateAttached,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Options(selector string) ([]string, error) {
	texts, err := p.page.Locator(selector + " option").AllInnerTexts()
	if err != nil {
		return nil, err
	}
	for i := range texts {
		texts[i] = strings.TrimSpace(texts[i])
	}
	return texts, nil
}

func (p *playwrightPage) SelectOption(selector, label string) error {
	_, err := p.page.Locator(selector).SelectOption(pw.SelectOptionValues{Labels: &[]string{label}})
	return err
}

func (p *playwrightPage) Eval(script string, arg any) (any, error) {
	return p.page.Evaluate(script, arg)
}

func (p *playwrightPage) Fill(selector, value string) error {
	return p.page.Locator(selector).Fill(value)
}

func (p *playwrightPage) Press(selector, key string) error {
	return p.page.Locator(selector).Press(key)
}

func (p *playwrightPage) Click(selector string) error {
	return p.page.Locator(selector).Click()
}

func (p *playwrightPage) Count(selector string) (int, error) {
	return p.page.Locator(selector).Count()
}

func (p *playwrightPage) Content() (string, error) { return p.page.Content() }

func (p *playwrightPage) URL() string { return p.page.URL() }

func (p *playwrightPage) Close() error { return p.page.Close() }
