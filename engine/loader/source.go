package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-bim/common"
)

// Source is where a geometry feed comes from.
type Source interface {
	// Name identifies the source. It is the cache key and appears in errors.
	Name() string

	// Open starts reading the feed. The caller closes the reader.
	//
	// Parameters:
	//   - ctx: cancels a network fetch
	//
	// Returns:
	//   - io.ReadCloser: the feed stream
	//   - error: wraps common.ErrLoad if the source is unreachable
	Open(ctx context.Context) (io.ReadCloser, error)
}

type fileSource struct {
	path string
}

// FileSource reads a feed from the local file system.
func FileSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Name() string {
	return s.path
}

func (s *fileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v: %w", s.path, err, common.ErrLoad)
	}
	return f, nil
}

type urlSource struct {
	url    string
	client *http.Client
}

// URLSource fetches a feed over HTTP(S). A nil client uses http.DefaultClient.
func URLSource(url string, client *http.Client) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &urlSource{url: url, client: client}
}

func (s *urlSource) Name() string {
	return s.url
}

func (s *urlSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %v: %w", s.url, err, common.ErrLoad)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %v: %w", s.url, err, common.ErrLoad)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: %s: %w", s.url, resp.Status, common.ErrLoad)
	}
	return resp.Body, nil
}

type bytesSource struct {
	name string
	data []byte
}

// BytesSource serves a feed that is already in memory.
func BytesSource(name string, data []byte) Source {
	return &bytesSource{name: name, data: data}
}

func (s *bytesSource) Name() string {
	return s.name
}

func (s *bytesSource) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// ParseSource returns a URLSource for http and https locations and a FileSource otherwise.
func ParseSource(location string) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return URLSource(location, nil)
	}
	return FileSource(location)
}
