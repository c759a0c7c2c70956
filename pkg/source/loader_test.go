package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/popdyn/pkg/cache"
	"github.com/matzehuels/popdyn/pkg/errors"
)

const datasetJSON = `{"items":[{"id":"births","name":"Births","weight":3,"sector":"Health"}],"metrics":{"open_claims":2}}`

const datasetYAML = `
items:
  - id: births
    name: Births
    weight: 3
    sector: Health
  - id: migration
    name: Migration
    weight: 1
    sector: Mobility
`

func TestIsRemote(t *testing.T) {
	tests := []struct {
		location string
		want     bool
	}{
		{"https://example.org/data.json", true},
		{"http://localhost:8080/api", true},
		{"data/indicators.json", false},
		{"/abs/path.yaml", false},
		{"file:///tmp/x.json", false},
		{"https://", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.location); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}

func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(datasetJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := NewLoader(nil).Load(context.Background(), path, false)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(ds.Items) != 1 || ds.Metrics.OpenClaims != 2 {
		t.Errorf("dataset = %+v", ds)
	}
}

func TestLoadRemoteFormats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(datasetJSON))
	})
	mux.HandleFunc("/api/indicators", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write([]byte(datasetYAML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	loader := NewLoader(nil)
	ctx := context.Background()

	ds, err := loader.Load(ctx, srv.URL+"/data.json", false)
	if err != nil {
		t.Fatalf("Load(json) error: %v", err)
	}
	if len(ds.Items) != 1 {
		t.Errorf("json items = %d, want 1", len(ds.Items))
	}

	ds, err = loader.Load(ctx, srv.URL+"/api/indicators", false)
	if err != nil {
		t.Fatalf("Load(yaml) error: %v", err)
	}
	if len(ds.Items) != 2 {
		t.Errorf("yaml items = %d, want 2", len(ds.Items))
	}
}

func TestLoadRemoteCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") == "" {
			t.Error("request without User-Agent")
		}
		w.Write([]byte(datasetJSON))
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	loader := NewLoader(fc)
	ctx := context.Background()
	url := srv.URL + "/data.json"

	for range 2 {
		if _, err := loader.Load(ctx, url, false); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (second load from cache)", got)
	}

	if _, err := loader.Load(ctx, url, true); err != nil {
		t.Fatalf("Load(refresh) error: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits after refresh = %d, want 2", got)
	}
}

func TestLoadRemoteRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(datasetJSON))
	}))
	defer srv.Close()

	ds, err := NewLoader(nil).Load(context.Background(), srv.URL+"/data.json", false)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(ds.Items) != 1 {
		t.Errorf("items = %d, want 1", len(ds.Items))
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2", got)
	}
}

func TestLoadRemoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forbidden.json":
			w.WriteHeader(http.StatusForbidden)
		case "/broken.json":
			w.Write([]byte(`{"items": [`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader := NewLoader(nil)
	ctx := context.Background()

	tests := []struct {
		path string
		code errors.Code
	}{
		{"/missing.json", errors.ErrCodeNotFound},
		{"/forbidden.json", errors.ErrCodeStorage},
		{"/broken.json", errors.ErrCodeInvalidDataset},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := loader.Load(ctx, srv.URL+tt.path, false)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		url, contentType string
		want             string
	}{
		{"https://x.org/a.toml", "", "toml"},
		{"https://x.org/a.yml?v=2", "application/json", "yaml"},
		{"https://x.org/api", "application/toml; charset=utf-8", "toml"},
		{"https://x.org/api", "text/yaml", "yaml"},
		{"https://x.org/api", "", "json"},
	}
	for _, tt := range tests {
		if got := formatOf(tt.url, tt.contentType); string(got) != tt.want {
			t.Errorf("formatOf(%q, %q) = %q, want %q", tt.url, tt.contentType, got, tt.want)
		}
	}
}
