package crawler

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/xerrors"

	"github.com/ethics/patch-finder/utils"
)

const defaultRetry = 5

type fetcherOptions struct {
	retry int
}

type FetcherOption func(*fetcherOptions)

func WithRetry(retry int) FetcherOption {
	return func(opts *fetcherOptions) {
		opts.retry = retry
	}
}

// HTTPFetcher is the default Fetcher. HTTP(S) locators go through the
// retrying client; locators ending in .gz are decompressed transparently;
// anything else (file::, archive subpaths) is handed to go-getter.
type HTTPFetcher struct {
	fetcherOptions
}

func NewFetcher(opts ...FetcherOption) *HTTPFetcher {
	o := fetcherOptions{
		retry: defaultRetry,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &HTTPFetcher{fetcherOptions: o}
}

func (f *HTTPFetcher) Fetch(rawURL string) ([]byte, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return fetchViaGetter(rawURL)
	}

	body, err := utils.FetchURL(rawURL, "", f.retry)
	if err != nil {
		return nil, xerrors.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	if isGzip(rawURL) {
		return gunzip(rawURL, body)
	}
	return body, nil
}

func fetchViaGetter(src string) ([]byte, error) {
	path, err := utils.DownloadToTempFile(context.Background(), src)
	if err != nil {
		return nil, xerrors.Errorf("failed to fetch %s: %w", src, err)
	}
	defer os.Remove(path)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", src, err)
	}
	return b, nil
}

func isGzip(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(rawURL, ".gz")
	}
	return strings.HasSuffix(u.Path, ".gz")
}

func gunzip(rawURL string, body []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, xerrors.Errorf("failed to decompress %s: %w", rawURL, err)
	}
	defer gr.Close()

	b, err := io.ReadAll(gr)
	if err != nil {
		return nil, xerrors.Errorf("failed to decompress %s: %w", rawURL, err)
	}
	return b, nil
}
