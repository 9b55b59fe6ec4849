package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HTTPRetriever fetches dataset candidates over HTTP(S).
type HTTPRetriever struct {
	Client *http.Client
}

func NewHTTPRetriever() *HTTPRetriever {
	return &HTTPRetriever{
		Client: &http.Client{
			Timeout: 25 * time.Second,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (f *HTTPRetriever) Retrieve(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "veille-aap-ami-bot/1.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// FileRetriever resolves dataset candidates on the local filesystem,
// relative to Base when the location is not absolute.
type FileRetriever struct {
	Base string
}

func (f *FileRetriever) Retrieve(_ context.Context, location string) ([]byte, error) {
	path := location
	if f.Base != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Base, path)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return body, nil
}

// AutoRetriever dispatches on the location scheme: URLs go over HTTP,
// everything else is treated as a filesystem path. Candidate lists mix both.
type AutoRetriever struct {
	HTTP *HTTPRetriever
	File *FileRetriever
}

func NewAutoRetriever(baseDir string) *AutoRetriever {
	return &AutoRetriever{
		HTTP: NewHTTPRetriever(),
		File: &FileRetriever{Base: baseDir},
	}
}

func (f *AutoRetriever) Retrieve(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return f.HTTP.Retrieve(ctx, location)
	}
	return f.File.Retrieve(ctx, location)
}
