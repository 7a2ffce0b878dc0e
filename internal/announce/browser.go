package announce

import (
	"context"
	"time"
)

// Browser opens pages. Implementations own the underlying browser process.
type Browser interface {
	Open(ctx context.Context, url string) (Page, error)
	Close() error
}

// Page is the subset of page automation the announcement search needs.
// Selectors are CSS selectors.
type Page interface {
	WaitFor(selector string, timeout time.Duration) error
	// Options returns the visible texts of a <select>'s options, trimmed.
	Options(selector string) ([]string, error)
	// SelectOption picks the option whose visible text equals label.
	SelectOption(selector, label string) error
	// Eval runs a JavaScript function expression with arg and returns its result.
	Eval(script string, arg any) (any, error)
	Fill(selector, value string) error
	Press(selector, key string) error
	Click(selector string) error
	Count(selector string) (int, error)
	Content() (string, error)
	URL() string
	Close() error
}
