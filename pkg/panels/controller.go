package panels

import (
	"context"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/popdyn/pkg/errors"
	"github.com/matzehuels/popdyn/pkg/observability"
)

// DefaultInterval is the automatic recompute period.
const DefaultInterval = 12 * time.Second

// DefaultViewport is the viewport width assumed until one is reported.
const DefaultViewport = 1440

// MetricsSource supplies the counters panel scores are computed from.
type MetricsSource interface {
	Metrics(ctx context.Context) (Metrics, error)
}

// MetricsFunc adapts a function to [MetricsSource].
type MetricsFunc func(ctx context.Context) (Metrics, error)

func (f MetricsFunc) Metrics(ctx context.Context) (Metrics, error) { return f(ctx) }

// StaticMetrics is a [MetricsSource] that always returns the same counters.
type StaticMetrics Metrics

func (s StaticMetrics) Metrics(context.Context) (Metrics, error) { return Metrics(s), nil }

// ControllerOption configures a [Controller].
type ControllerOption func(*Controller)

// WithInterval sets the recompute period. Non-positive values keep the default.
func WithInterval(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger used for recompute failures and state changes.
func WithLogger(l *log.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithViewport sets the initial viewport width.
func WithViewport(px int) ControllerOption {
	return func(c *Controller) { c.viewport = px }
}

// WithVariant sets the initial width table.
func WithVariant(v Variant) ControllerOption {
	return func(c *Controller) { c.variant = v }
}

// Controller owns the live panel allocation of one dashboard.
//
// The hero is recomputed from the metrics source on every tick unless a
// panel is hovered or pinned. A manual override replaces the computed hero
// until it is reset, regardless of hover, pin or new metrics. All methods are
// safe for concurrent use. Subscribers see allocations in version order and
// must not change the controller from inside the callback.
type Controller struct {
	source   MetricsSource
	interval time.Duration
	logger   *log.Logger

	mu       sync.Mutex
	ranking  Ranking
	viewport int
	variant  Variant
	hovered  PanelID
	pinned   PanelID
	override PanelID
	current  Allocation
	subs     map[int]func(Allocation)
	nextSub  int

	// deliverMu serializes subscriber calls; delivered is the newest
	// version handed to subscribers.
	deliverMu sync.Mutex
	delivered uint64
}

// NewController creates a controller reading from src. The initial
// allocation ranks every panel at zero, which makes the first declared panel
// the hero until the first [Controller.Tick].
func NewController(src MetricsSource, opts ...ControllerOption) *Controller {
	c := &Controller{
		source:   src,
		interval: DefaultInterval,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		viewport: DefaultViewport,
		variant:  Asymmetric,
		subs:     make(map[int]func(Allocation)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ranking = Ranking{Scores: make(map[PanelID]float64, len(All)), Hero: All[0]}
	for _, id := range All {
		c.ranking.Scores[id] = 0
	}
	c.current = c.allocateLocked()
	return c
}

// Interval returns the recompute period.
func (c *Controller) Interval() time.Duration { return c.interval }

// Current returns the live allocation.
func (c *Controller) Current() Allocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAllocation(c.current)
}

// View returns the allocation for another viewport and variant under the
// current ranking, override and freeze state. The controller's own
// viewport and variant are not changed.
func (c *Controller) View(viewport int, v Variant) Allocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAllocation(c.allocateForLocked(viewport, v))
}

// Frozen reports whether automatic rotation is paused by a hover or pin.
func (c *Controller) Frozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozenLocked()
}

// Tick performs one scheduled recompute. While rotation is frozen the
// metrics source is not consulted and the allocation is left unchanged.
func (c *Controller) Tick(ctx context.Context) error {
	if c.Frozen() {
		c.logger.Debug("panel rotation frozen, skipping recompute")
		observability.Panels().OnRecompute(ctx, c.Current().Hero.String(), true, nil)
		return nil
	}
	m, err := c.source.Metrics(ctx)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeStorage, err, "load panel metrics")
		observability.Panels().OnRecompute(ctx, "", false, err)
		return err
	}
	return c.Update(ctx, m)
}

// Update ranks m and applies the result, as a tick would, but without
// consulting the metrics source. Hover and pin still hold the current hero.
func (c *Controller) Update(ctx context.Context, m Metrics) error {
	r := Rank(m)
	c.mu.Lock()
	if c.frozenLocked() {
		c.mu.Unlock()
		observability.Panels().OnRecompute(ctx, c.Current().Hero.String(), true, nil)
		return nil
	}
	prev := c.ranking.Hero
	c.ranking = r
	alloc, changed := c.applyLocked()
	c.mu.Unlock()

	if r.Hero != prev {
		c.logger.Info("hero panel changed", "from", prev, "to", r.Hero, "scores", r.String())
	}
	observability.Panels().OnRecompute(ctx, alloc.Hero.String(), false, nil)
	c.notify(alloc, changed)
	return nil
}

// Run recomputes immediately and then on every interval until ctx is done.
// Failed recomputes are logged and keep the previous allocation.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Tick(ctx); err != nil {
		c.logger.Warn("panel recompute failed", "err", err)
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Tick(ctx); err != nil {
				c.logger.Warn("panel recompute failed", "err", err)
			}
		}
	}
}

// Hover marks id as hovered, freezing rotation until [Controller.Unhover].
func (c *Controller) Hover(id PanelID) error {
	return c.mutate(id, func() { c.hovered = id })
}

// Unhover clears the hovered panel.
func (c *Controller) Unhover() {
	_ = c.mutate("", func() { c.hovered = "" })
}

// Pin pins id, freezing rotation until [Controller.Unpin].
func (c *Controller) Pin(id PanelID) error {
	return c.mutate(id, func() { c.pinned = id })
}

// Unpin clears the pinned panel.
func (c *Controller) Unpin() {
	_ = c.mutate("", func() { c.pinned = "" })
}

// Override makes id the hero until [Controller.ResetOverride].
func (c *Controller) Override(ctx context.Context, id PanelID) error {
	if err := c.mutate(id, func() { c.override = id }); err != nil {
		return err
	}
	c.logger.Info("panel override set", "panel", id)
	observability.Panels().OnOverride(ctx, id.String())
	return nil
}

// ResetOverride returns control to the computed ranking.
func (c *Controller) ResetOverride(ctx context.Context) {
	_ = c.mutate("", func() { c.override = "" })
	c.logger.Info("panel override reset")
	observability.Panels().OnOverride(ctx, "")
}

// Viewport returns the last reported viewport width.
func (c *Controller) Viewport() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// Variant returns the active width table.
func (c *Controller) Variant() Variant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.variant
}

// SetViewport reports a new viewport width.
func (c *Controller) SetViewport(px int) {
	_ = c.mutate("", func() { c.viewport = px })
}

// SetVariant switches the width table.
func (c *Controller) SetVariant(v Variant) {
	_ = c.mutate("", func() { c.variant = v })
}

// Subscribe registers fn to be called with every changed allocation. The
// returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Allocation)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// mutate validates id (when non-empty), applies fn under the lock and
// publishes the resulting allocation.
func (c *Controller) mutate(id PanelID, fn func()) error {
	if id != "" && !id.Valid() {
		return errors.New(errors.ErrCodeInvalidPanel, "unknown panel %q", id)
	}
	c.mu.Lock()
	fn()
	alloc, changed := c.applyLocked()
	c.mu.Unlock()
	c.notify(alloc, changed)
	return nil
}

func (c *Controller) frozenLocked() bool {
	return c.hovered != "" || c.pinned != ""
}

func (c *Controller) allocateLocked() Allocation {
	return c.allocateForLocked(c.viewport, c.variant)
}

func (c *Controller) allocateForLocked(viewport int, v Variant) Allocation {
	r := c.ranking
	if c.override != "" {
		r.Hero = c.override
	}
	a := Allocate(r, viewport, v)
	a.Overridden = c.override != ""
	a.Frozen = c.frozenLocked()
	return a
}

func (c *Controller) applyLocked() (Allocation, bool) {
	next := c.allocateLocked()
	if sameAllocation(c.current, next) {
		return cloneAllocation(c.current), false
	}
	next.Version = c.current.Version + 1
	c.current = next
	return cloneAllocation(next), true
}

// notify hands a to the subscribers unless a newer version already went out.
// Mutations publish after releasing c.mu, so two of them can arrive here in
// either order.
func (c *Controller) notify(a Allocation, changed bool) {
	if !changed {
		return
	}
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	if a.Version <= c.delivered {
		return
	}
	c.delivered = a.Version

	c.mu.Lock()
	fns := make([]func(Allocation), 0, len(c.subs))
	for _, k := range slices.Sorted(maps.Keys(c.subs)) {
		fns = append(fns, c.subs[k])
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(cloneAllocation(a))
	}
}

func sameAllocation(a, b Allocation) bool {
	return a.Hero == b.Hero &&
		a.Breakpoint == b.Breakpoint &&
		a.Variant == b.Variant &&
		a.Stacked == b.Stacked &&
		a.Overridden == b.Overridden &&
		a.Frozen == b.Frozen &&
		slices.Equal(a.Order, b.Order) &&
		maps.Equal(a.Widths, b.Widths) &&
		maps.Equal(a.Scores, b.Scores)
}

func cloneAllocation(a Allocation) Allocation {
	a.Order = slices.Clone(a.Order)
	a.Widths = maps.Clone(a.Widths)
	a.Scores = maps.Clone(a.Scores)
	return a
}
