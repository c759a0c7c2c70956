package cache

import "fmt"

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a treemap layout of the item set with the given hash.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a layout.
type LayoutKeyOpts struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	GroupBy    string  `json:"group_by"`
	Padding    float64 `json:"padding"`
	MaxRowSize int     `json:"max_row_size"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Popups   bool    `json:"popups"`
	Labels   bool    `json:"labels"`
	Detailed bool    `json:"detailed,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Columns  int     `json:"columns,omitempty"`
	Rows     int     `json:"rows,omitempty"`
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns layout:<sha256 of hash and options>.
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey returns artifact:<format>:<sha256 of hash and options>.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), layoutHash, opts)
}
