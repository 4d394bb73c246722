package transcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPTranscoder asks an external transcoding server to start transcoding.
type HTTPTranscoder struct {
	Address     string
	ReadTimeout time.Duration

	client *http.Client
}

// Initialize initializes HTTPTranscoder.
func (t *HTTPTranscoder) Initialize() {
	t.client = &http.Client{Timeout: t.ReadTimeout}
}

// Close closes HTTPTranscoder.
func (t *HTTPTranscoder) Close() {
	t.client.CloseIdleConnections()
}

// Transcode implements Transcoder.
func (t *HTTPTranscoder) Transcode(ctx context.Context, name string) (int, error) {
	err := checkStreamName(name)
	if err != nil {
		return 0, err
	}

	u := strings.TrimSuffix(t.Address, "/") + "/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if resBody, err2 := io.ReadAll(res.Body); err2 == nil && len(resBody) != 0 {
			return 0, fmt.Errorf("server replied with code %d: %s", res.StatusCode, string(resBody))
		}

		return 0, fmt.Errorf("server replied with code %d", res.StatusCode)
	}

	var pid int
	err = json.NewDecoder(res.Body).Decode(&pid)
	if err != nil {
		return 0, fmt.Errorf("invalid response: %w", err)
	}

	return pid, nil
}
