package treemap

// Item is a weighted dashboard indicator, the unit a treemap tiles.
//
// Weight drives the tile area. Value and Target only matter for
// [GroupByPerformance]; Sector and Type are categorical attributes used for
// grouping and filtering.
type Item struct {
	ID     string         `json:"id" bson:"_id" toml:"id" yaml:"id"`
	Name   string         `json:"name" bson:"name" toml:"name" yaml:"name"`
	Value  float64        `json:"value" bson:"value" toml:"value" yaml:"value"`
	Target float64        `json:"target,omitempty" bson:"target,omitempty" toml:"target" yaml:"target,omitempty"`
	Weight float64        `json:"weight" bson:"weight" toml:"weight" yaml:"weight"`
	Sector string         `json:"sector,omitempty" bson:"sector,omitempty" toml:"sector" yaml:"sector,omitempty"`
	Type   string         `json:"type,omitempty" bson:"type,omitempty" toml:"type" yaml:"type,omitempty"`
	// Meta is free-form detail data. Layouts from the pipeline carry it in
	// JSON-decoded form.
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty" toml:"meta" yaml:"meta,omitempty"`
}

// DisplayName returns Name, falling back to ID.
func (it Item) DisplayName() string {
	if it.Name != "" {
		return it.Name
	}
	return it.ID
}

// Ratio returns Value/Target, or 0 when no positive target is set.
func (it Item) Ratio() float64 {
	if it.Target <= 0 {
		return 0
	}
	return it.Value / it.Target
}

// Tile is a laid-out item: the source item plus its rectangle and the key of
// the group it was placed in.
type Tile struct {
	Item
	Rect
	Group string `json:"group"`
}

// GroupTile is the container rectangle of one group. Outer is the rectangle
// the group received from the frame; Inner is Outer minus padding, the area
// its items were squarified into.
type GroupTile struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
	Count  int     `json:"count"`
	Outer  Rect    `json:"outer"`
	Inner  Rect    `json:"inner"`
}

// Result is a complete two-level layout.
type Result struct {
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	GroupBy GroupBy     `json:"group_by"`
	Padding float64     `json:"padding"`
	Groups  []GroupTile `json:"groups"`
	Tiles   []Tile      `json:"tiles"`
}

// Frame returns the root rectangle of the layout.
func (r Result) Frame() Rect {
	return Rect{Width: r.Width, Height: r.Height}
}

// Tile returns the tile for the item with the given id.
func (r Result) Tile(id string) (Tile, bool) {
	for _, t := range r.Tiles {
		if t.ID == id {
			return t, true
		}
	}
	return Tile{}, false
}

// Group returns the container for the given group key.
func (r Result) Group(key string) (GroupTile, bool) {
	for _, g := range r.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return GroupTile{}, false
}
