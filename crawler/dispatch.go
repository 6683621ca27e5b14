package crawler

import (
	"fmt"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"regexp"

	"golang.org/x/xerrors"

	"github.com/ethics/patch-finder/utils"
	"github.com/ethics/patch-finder/vuln"
)

const (
	defaultConcurrency = 3
	defaultWait        = 0
	dispatchRetry      = 3
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type dispatcherOptions struct {
	apiKey      string
	concurrency int
	wait        int
	retry       int
	overwrite   bool
}

type DispatcherOption func(*dispatcherOptions)

func WithConcurrency(n int) DispatcherOption {
	return func(opts *dispatcherOptions) {
		opts.concurrency = n
	}
}

func WithWait(wait int) DispatcherOption {
	return func(opts *dispatcherOptions) {
		opts.wait = wait
	}
}

// WithDispatchAPIKey attaches an api-key header to entrypoint fetches.
// NVD throttles unauthenticated requests.
func WithDispatchAPIKey(apiKey string) DispatcherOption {
	return func(opts *dispatcherOptions) {
		opts.apiKey = apiKey
	}
}

func WithOverwrite(overwrite bool) DispatcherOption {
	return func(opts *dispatcherOptions) {
		opts.overwrite = overwrite
	}
}

func WithDispatchRetry(retry int) DispatcherOption {
	return func(opts *dispatcherOptions) {
		opts.retry = retry
	}
}

// CrawlDispatcher is the default Dispatcher: it fetches every entrypoint of a
// runnable vulnerability through a bounded worker pool and persists each body
// under dir/<vuln-id>/. Entrypoints of one vulnerability are independent, so
// fetch order is whatever the pool produces.
type CrawlDispatcher struct {
	dispatcherOptions
	fs  utils.Fs
	dir string
}

func NewCrawlDispatcher(fs utils.Fs, dir string, opts ...DispatcherOption) *CrawlDispatcher {
	o := dispatcherOptions{
		concurrency: defaultConcurrency,
		wait:        defaultWait,
		retry:       dispatchRetry,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &CrawlDispatcher{
		dispatcherOptions: o,
		fs:                fs,
		dir:               dir,
	}
}

func (d *CrawlDispatcher) Dispatch(v *vuln.Direct) error {
	entrypoints := v.Entrypoints()
	log.Printf("Crawling %d entrypoints for %s", len(entrypoints), v.ID())

	bodies, err := utils.FetchConcurrently(entrypoints, d.apiKey, d.concurrency, d.wait, d.retry)
	if err != nil {
		return xerrors.Errorf("failed to crawl %s: %w", v.ID(), err)
	}

	for i, body := range bodies {
		filePath := filepath.Join(d.dir, v.ID(), entrypointFileName(i, entrypoints[i]))
		if err := d.fs.WriteRaw(filePath, body, d.overwrite); err != nil {
			return xerrors.Errorf("failed to save %s: %w", entrypoints[i], err)
		}
	}
	return nil
}

// entrypointFileName derives a stable file name from an entrypoint URL,
// prefixed with its position so distinct sources never collide.
func entrypointFileName(i int, rawURL string) string {
	base := "source"
	if u, err := url.Parse(rawURL); err == nil {
		if b := path.Base(u.Path); b != "" && b != "/" && b != "." {
			base = b
		} else if u.Host != "" {
			base = u.Host
		}
	}
	return fmt.Sprintf("%02d_%s", i, unsafeChars.ReplaceAllString(base, "_"))
}
