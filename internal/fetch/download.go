package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTooSmall is returned by Download when the body is not larger than the
// requested minimum. Portals answer missing files with short HTML stubs.
var ErrTooSmall = errors.New("downloaded file too small")

// Download streams rawURL into dir/name and returns the written path. Any
// content type is accepted. A body of minBytes or fewer is discarded with
// ErrTooSmall. Header entries on the client are sent as given, so callers set
// Accept and Referer there.
func (c *Client) Download(ctx context.Context, rawURL, dir, name string, minBytes int64) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	dest := filepath.Join(dir, name)

	err := c.retry(ctx, func() error {
		return c.downloadOnce(ctx, rawURL, dest, minBytes)
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}

func (c *Client) downloadOnce(ctx context.Context, rawURL, dest string, minBytes int64) error {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if n <= minBytes {
		return fmt.Errorf("%s: %d bytes: %w", rawURL, n, ErrTooSmall)
	}
	return os.Rename(tmp.Name(), dest)
}
