package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/popdyn/pkg/buildinfo"
	"github.com/matzehuels/popdyn/pkg/cache"
	"github.com/matzehuels/popdyn/pkg/errors"
	popio "github.com/matzehuels/popdyn/pkg/io"
)

// DefaultTTL is how long a fetched dataset is served from the cache.
const DefaultTTL = 5 * time.Minute

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 10 * time.Second

// maxBody caps the size of a remote dataset.
const maxBody = 32 << 20

// Option configures a [Loader].
type Option func(*Loader)

// WithTTL sets the cache lifetime of fetched datasets. Zero disables caching
// of remote bodies.
func WithTTL(d time.Duration) Option {
	return func(l *Loader) { l.ttl = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.http = c
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(l *Loader) { l.headers[key] = value }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader reads datasets from files and URLs.
type Loader struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
	logger  *log.Logger
}

// NewLoader creates a loader backed by c. A nil cache disables caching.
func NewLoader(c cache.Cache, opts ...Option) *Loader {
	if c == nil {
		c = cache.NewNullCache()
	}
	l := &Loader{
		http:    &http.Client{Timeout: DefaultTimeout},
		cache:   c,
		ttl:     DefaultTTL,
		headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load reads the dataset at location. With refresh set, a cached remote
// body is ignored and replaced.
func (l *Loader) Load(ctx context.Context, location string, refresh bool) (popio.Dataset, error) {
	if !IsRemote(location) {
		return popio.ImportFile(location)
	}

	key := "source:" + location
	if !refresh {
		if data, hit, err := l.cache.Get(ctx, key); err == nil && hit {
			var e entry
			if err := json.Unmarshal(data, &e); err == nil {
				l.logger.Debug("dataset from cache", "url", location)
				return decode(location, e.Format, e.Body)
			}
		}
	}

	var (
		body   []byte
		format popio.Format
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		body, format, err = l.fetch(ctx, location)
		return err
	})
	if err != nil {
		return popio.Dataset{}, err
	}

	ds, err := decode(location, format, body)
	if err != nil {
		return popio.Dataset{}, err
	}

	if l.ttl > 0 {
		if data, err := json.Marshal(entry{Format: format, Body: body}); err == nil {
			if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
				l.logger.Warn("cache dataset", "url", location, "err", err)
			}
		}
	}
	return ds, nil
}

// entry is the cached form of a fetched dataset.
type entry struct {
	Format popio.Format `json:"format"`
	Body   []byte       `json:"body"`
}

func decode(location string, format popio.Format, body []byte) (popio.Dataset, error) {
	ds, err := popio.ReadDataset(bytes.NewReader(body), format)
	if err != nil {
		return popio.Dataset{}, fmt.Errorf("%s: %w", location, err)
	}
	return ds, nil
}

// fetch performs one GET. Network failures and 5xx responses are retryable.
func (l *Loader) fetch(ctx context.Context, location string) ([]byte, popio.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "bad dataset URL")
	}
	for k, v := range l.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json, application/toml, application/yaml;q=0.9, */*;q=0.1")

	l.logger.Debug("fetching dataset", "url", location)
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, "", cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(location, resp.StatusCode); err != nil {
		return nil, "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", cache.Retryable(fmt.Errorf("%w: read body: %v", cache.ErrNetwork, err))
	}
	return body, formatOf(location, resp.Header.Get("Content-Type")), nil
}

func checkStatus(location string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "dataset %s not found", location)
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: %s: status %d", cache.ErrNetwork, location, code))
	default:
		return errors.New(errors.ErrCodeStorage, "fetch %s: status %d", location, code)
	}
}

// formatOf picks the dataset format from the URL path, then the content type.
func formatOf(location, contentType string) popio.Format {
	if u, err := url.Parse(location); err == nil {
		if f, err := popio.FormatFromPath(path.Base(u.Path)); err == nil {
			return f
		}
	}
	mt, _, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.Contains(mt, "toml"):
		return popio.FormatTOML
	case strings.Contains(mt, "yaml"):
		return popio.FormatYAML
	}
	return popio.FormatJSON
}
