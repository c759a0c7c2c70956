package panels

import (
	"strings"

	"github.com/matzehuels/popdyn/pkg/errors"
)

// Breakpoint is a viewport width class.
type Breakpoint string

// Viewport classes, from narrowest to widest.
const (
	Mobile  Breakpoint = "mobile"
	Tablet  Breakpoint = "tablet"
	Desktop Breakpoint = "desktop"
	Wide    Breakpoint = "wide"
)

// Upper bounds (exclusive) of the viewport classes in pixels.
const (
	TabletMin  = 768
	DesktopMin = 1280
	WideMin    = 1920
)

// BreakpointFor classifies a viewport width.
func BreakpointFor(viewport int) Breakpoint {
	switch {
	case viewport < TabletMin:
		return Mobile
	case viewport < DesktopMin:
		return Tablet
	case viewport < WideMin:
		return Desktop
	default:
		return Wide
	}
}

// Variant selects one of the width tables.
type Variant string

// Width table variants. Asymmetric gives the hero a moderate lead; Focal
// gives it a dominant column.
const (
	Asymmetric Variant = "asymmetric"
	Focal      Variant = "focal"
)

// ParseVariant parses a variant name. The empty string selects [Asymmetric].
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "":
		return Asymmetric, nil
	case Asymmetric, Focal:
		return v, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"invalid variant: %q (must be one of: asymmetric, focal)", s)
}

// heroWidths is the hero column share in percent per variant and breakpoint.
// Mobile is absent: panels stack at full width.
var heroWidths = map[Variant]map[Breakpoint]float64{
	Asymmetric: {Tablet: 50, Desktop: 50, Wide: 40},
	Focal:      {Tablet: 60, Desktop: 60, Wide: 50},
}

// Allocation is a layout decision: the panel order and each panel's width in
// percent of the container.
type Allocation struct {
	Hero       PanelID             `json:"hero"`
	Order      []PanelID           `json:"order"`
	Widths     map[PanelID]float64 `json:"widths"`
	Scores     map[PanelID]float64 `json:"scores"`
	Breakpoint Breakpoint          `json:"breakpoint"`
	Variant    Variant             `json:"variant"`
	Stacked    bool                `json:"stacked"`
	Overridden bool                `json:"overridden"`
	Frozen     bool                `json:"frozen"`

	// Version increases with every change a Controller publishes. It is zero
	// for allocations computed directly with Allocate.
	Version uint64 `json:"version,omitempty"`
}

// Allocate maps a ranking onto the width table for a viewport. Non-hero
// panels split the remaining width equally. On mobile every panel takes the
// full width and the hero is stacked first.
func Allocate(r Ranking, viewport int, v Variant) Allocation {
	bp := BreakpointFor(viewport)
	if _, ok := heroWidths[v]; !ok {
		v = Asymmetric
	}
	a := Allocation{
		Hero:       r.Hero,
		Order:      r.Ordered(),
		Widths:     make(map[PanelID]float64, len(All)),
		Scores:     r.Scores,
		Breakpoint: bp,
		Variant:    v,
	}

	hero, ok := heroWidths[v][bp]
	if !ok {
		a.Stacked = true
		for _, id := range All {
			a.Widths[id] = 100
		}
		return a
	}

	rest := (100 - hero) / float64(len(All)-1)
	for _, id := range All {
		if id == r.Hero {
			a.Widths[id] = hero
		} else {
			a.Widths[id] = rest
		}
	}
	return a
}
