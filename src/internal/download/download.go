// Package download fetches and unpacks package archives
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/shellpm/spm/src/internal/ui"
)

// Client downloads files over HTTP
type Client struct {
	HTTP *http.Client
	// Progress draws a byte progress bar on stderr while downloading
	Progress bool
}

// NewClient returns a client using the default HTTP client with a progress bar
func NewClient() *Client {
	return &Client{HTTP: http.DefaultClient, Progress: true}
}

// File downloads url to destPath. When expectedSHA256 is set the content is verified
// and a mismatching file is removed.
func (c *Client) File(ctx context.Context, url, destPath, expectedSHA256 string) error {
	ui.Debug("Starting download: %s", url)
	ui.Debug("Destination: %s", destPath)

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid download url %s: %w", url, err)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		ui.Debug("HTTP request failed: %v", err)
		return fmt.Errorf("failed to connect: %w (URL: %s)", err, url)
	}
	defer func() { _ = resp.Body.Close() }()

	ui.Debug("HTTP response: %s", resp.Status)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed (HTTP %s): %s", resp.Status, url)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	hasher := sha256.New()
	writers := []io.Writer{out, hasher}
	if c.Progress {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Downloading"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		writers = append(writers, bar)
	}

	if _, err := io.Copy(io.MultiWriter(writers...), resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("download interrupted: %w", err)
	}

	if expectedSHA256 == "" {
		ui.Debug("Download complete: %s", destPath)
		return nil
	}

	if err := compare(expectedSHA256, hex.EncodeToString(hasher.Sum(nil))); err != nil {
		ui.Debug("Checksum mismatch, removing %s", destPath)
		_ = out.Close()
		_ = os.Remove(destPath)
		return err
	}
	ui.Debug("Checksum verified: %s", destPath)
	return nil
}
