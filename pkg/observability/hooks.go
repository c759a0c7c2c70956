// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout runs, cache operations, panel rotation and
// served HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so there are no import
// cycles and the core packages stay free of any metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetPanelHooks(&myPanelHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLayoutStart(ctx, groupBy, itemCount)
//	// ... compute layout ...
//	observability.Pipeline().OnLayoutComplete(ctx, groupBy, tileCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the treemap pipeline.
type PipelineHooks interface {
	// Filter events
	OnFilter(ctx context.Context, before, after int)

	// Layout events
	OnLayoutStart(ctx context.Context, groupBy string, itemCount int)
	OnLayoutComplete(ctx context.Context, groupBy string, tileCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Panel Hooks
// =============================================================================

// PanelHooks receives events from the panel controller.
type PanelHooks interface {
	// OnRecompute records a scheduled recompute. skipped is true when
	// rotation was frozen by a hover or pin.
	OnRecompute(ctx context.Context, hero string, skipped bool, err error)

	// OnOverride records a manual override being set (panel non-empty) or
	// reset (panel empty).
	OnOverride(ctx context.Context, panel string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFilter(context.Context, int, int)                                  {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopPanelHooks is a no-op implementation of PanelHooks.
type NoopPanelHooks struct{}

func (NoopPanelHooks) OnRecompute(context.Context, string, bool, error) {}
func (NoopPanelHooks) OnOverride(context.Context, string)               {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	panelHooks    PanelHooks    = NoopPanelHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetPanelHooks registers custom panel hooks.
func SetPanelHooks(h PanelHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		panelHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Panels returns the registered panel hooks.
func Panels() PanelHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return panelHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	panelHooks = NoopPanelHooks{}
	httpHooks = NoopHTTPHooks{}
}
