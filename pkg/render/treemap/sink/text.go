package sink

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/popdyn/pkg/treemap"
)

// TextOption configures [RenderText].
type TextOption func(*textRenderer)

type textRenderer struct {
	legend    bool
	highlight string
}

// WithLegend appends one line per group with its color and item count.
func WithLegend() TextOption { return func(r *textRenderer) { r.legend = true } }

// WithHighlight draws the tile with the given item ID in reverse video.
func WithHighlight(id string) TextOption { return func(r *textRenderer) { r.highlight = id } }

const (
	cellEmpty = -1
	cellGroup = -2
)

// RenderText rasterizes res onto a cols x rows character grid. Each tile is
// a block of its group color with the item name written from its top-left
// cell; cells that fall into group padding are drawn as dots. Colors are
// emitted as ANSI sequences by lipgloss and degrade to plain text when the
// output is not a terminal.
func RenderText(res treemap.Result, cols, rows int, opts ...TextOption) string {
	var r textRenderer
	for _, opt := range opts {
		opt(&r)
	}
	if cols <= 0 || rows <= 0 || res.Width <= 0 || res.Height <= 0 {
		return ""
	}

	colors := Colors(res)
	grid, glyphs := rasterize(res, cols, rows)

	styles := make([]lipgloss.Style, len(res.Tiles))
	for i, t := range res.Tiles {
		fill := colors[t.Group]
		st := lipgloss.NewStyle().
			Background(lipgloss.Color(fill)).
			Foreground(lipgloss.Color(textColor(fill)))
		if t.ID == r.highlight {
			st = st.Reverse(true).Bold(true)
		}
		styles[i] = st
	}
	groupStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var b strings.Builder
	for y := range rows {
		for x := 0; x < cols; {
			idx := grid[y][x]
			end := x
			for end < cols && grid[y][end] == idx {
				end++
			}
			run := string(glyphs[y][x:end])
			switch idx {
			case cellEmpty:
				b.WriteString(run)
			case cellGroup:
				b.WriteString(groupStyle.Render(run))
			default:
				b.WriteString(styles[idx].Render(run))
			}
			x = end
		}
		b.WriteByte('\n')
	}

	if r.legend {
		for _, g := range res.Groups {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[g.Key])).Render("██")
			fmt.Fprintf(&b, "%s %s (%d)\n", swatch, g.Key, g.Count)
		}
	}
	return b.String()
}

// rasterize assigns every cell to the tile whose rectangle contains the
// cell center and writes tile labels into their cells.
func rasterize(res treemap.Result, cols, rows int) ([][]int, [][]rune) {
	sx := res.Width / float64(cols)
	sy := res.Height / float64(rows)

	grid := make([][]int, rows)
	glyphs := make([][]rune, rows)
	for y := range rows {
		grid[y] = make([]int, cols)
		glyphs[y] = make([]rune, cols)
		for x := range cols {
			grid[y][x] = cellEmpty
			glyphs[y][x] = ' '
		}
	}

	inside := func(r treemap.Rect, x, y int) bool {
		cx, cy := (float64(x)+0.5)*sx, (float64(y)+0.5)*sy
		return cx >= r.X && cx < r.Right() && cy >= r.Y && cy < r.Bottom()
	}

	for _, g := range res.Groups {
		for y := range rows {
			for x := range cols {
				if inside(g.Outer, x, y) {
					grid[y][x] = cellGroup
					glyphs[y][x] = '·'
				}
			}
		}
	}

	origin := make([][2]int, len(res.Tiles))
	for i, t := range res.Tiles {
		origin[i] = [2]int{-1, -1}
		for y := range rows {
			for x := range cols {
				if !inside(t.Rect, x, y) {
					continue
				}
				grid[y][x] = i
				glyphs[y][x] = ' '
				if origin[i][0] < 0 {
					origin[i] = [2]int{x, y}
				}
			}
		}
	}

	for i, t := range res.Tiles {
		x, y := origin[i][0], origin[i][1]
		if x < 0 {
			continue
		}
		for _, ch := range t.DisplayName() {
			if x >= cols || grid[y][x] != i {
				break
			}
			glyphs[y][x] = ch
			x++
		}
	}
	return grid, glyphs
}
