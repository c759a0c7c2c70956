package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/popdyn/pkg/cache"
	"github.com/matzehuels/popdyn/pkg/errors"
	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultColumns and DefaultRows size the text rendering grid.
	DefaultColumns = 100
	DefaultRows    = 30

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// DefaultGroupBy is the default grouping mode.
const DefaultGroupBy = treemap.GroupBySector

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatText = "txt"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatText: true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Filter options
	Query      string   `json:"q,omitempty"`
	Categories []string `json:"categories,omitempty"`

	// Layout options
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	GroupBy    string   `json:"group_by,omitempty"`
	Padding    *float64 `json:"padding,omitempty"` // nil means treemap.DefaultPadding
	MaxRowSize int      `json:"max_row_size,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"` // bypass cache reads

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Popups   bool     `json:"popups,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // DOT labels with weight and value
	Scale    float64  `json:"scale,omitempty"`    // PNG only
	Columns  int      `json:"columns,omitempty"`  // txt only
	Rows     int      `json:"rows,omitempty"`     // txt only

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Items are the items that passed the filter, in input order.
	Items []treemap.Item

	// Layout is the computed treemap.
	Layout treemap.Result

	// LayoutHash is the content hash of the serialized layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount     int // items before filtering
	FilteredCount int // items after filtering
	GroupCount    int
	TileCount     int
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, png, pdf, txt, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults validates and applies defaults for the full pipeline.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	return o.ValidateForRender()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.GroupBy == "" {
		o.GroupBy = string(DefaultGroupBy)
	}
	if o.MaxRowSize == 0 {
		o.MaxRowSize = treemap.DefaultMaxRowSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
// GroupBy is normalized to its canonical spelling.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateDimension("width", o.Width); err != nil {
		return err
	}
	if err := errors.ValidateDimension("height", o.Height); err != nil {
		return err
	}
	by, err := treemap.ParseGroupBy(o.GroupBy)
	if err != nil {
		return err
	}
	o.GroupBy = string(by)
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Columns <= 0 {
		o.Columns = DefaultColumns
	}
	if o.Rows <= 0 {
		o.Rows = DefaultRows
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Criteria returns the filter stage configuration.
func (o *Options) Criteria() filter.Criteria {
	return filter.Criteria{Query: o.Query, Categories: o.Categories}
}

// PaddingValue returns the effective group padding.
func (o *Options) PaddingValue() float64 {
	if o.Padding == nil {
		return treemap.DefaultPadding
	}
	return max(0, *o.Padding)
}

// WithPadding returns a copy of o with an explicit padding.
func (o Options) WithPadding(p float64) Options {
	o.Padding = &p
	return o
}

// LayoutOptions returns the treemap options for o.
func (o *Options) LayoutOptions() []treemap.Option {
	opts := []treemap.Option{treemap.WithPadding(o.PaddingValue())}
	if o.MaxRowSize > 0 {
		opts = append(opts, treemap.WithMaxRowSize(o.MaxRowSize))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		GroupBy:    o.GroupBy,
		Padding:    o.PaddingValue(),
		MaxRowSize: o.MaxRowSize,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. Options
// that do not affect the given format are left zero so they do not split
// the cache.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		k.Popups = o.Popups && format == FormatSVG
		k.Labels = !o.NoLabels
		if format == FormatPNG {
			k.Scale = o.Scale
		}
	case FormatText:
		k.Columns, k.Rows = o.Columns, o.Rows
	case FormatDOT:
		k.Detailed = o.Detailed
	}
	return k
}
