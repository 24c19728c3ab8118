package device

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/indeses-deepak/explore/cmd/internal/waclient"
)

const (
	defaultMediaTimeout = 30 * time.Second
	maxMediaBytes       = 32 << 20
	fallbackMediaType   = "image/jpeg"
	attachmentFilename  = "media_file"
)

// MediaFetcher retrieves attachments from caller-supplied URLs.
type MediaFetcher struct {
	client *http.Client
}

// NewMediaFetcher constructs a MediaFetcher with a bounded request timeout.
func NewMediaFetcher(timeout time.Duration) *MediaFetcher {
	if timeout <= 0 {
		timeout = defaultMediaTimeout
	}
	return &MediaFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads url, base64-encodes the body, and tags it with the served
// content type (fallbackMediaType when absent). Every failure wraps
// ErrMediaFetch.
func (f *MediaFetcher) Fetch(ctx context.Context, url string) (*waclient.Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrMediaFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaFetch, err)
	}
	if len(data) > maxMediaBytes {
		return nil, fmt.Errorf("%w: attachment exceeds %d bytes", ErrMediaFetch, maxMediaBytes)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = fallbackMediaType
	}

	return &waclient.Media{
		MimeType: mime,
		Data:     base64.StdEncoding.EncodeToString(data),
		Filename: attachmentFilename,
	}, nil
}
