package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	popio "github.com/matzehuels/popdyn/pkg/io"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/render/treemap/sink"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// Dashboard styles
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	heroPanelStyle     = panelStyle.BorderForeground(colorCyan)
	selectedPanelStyle = panelStyle.BorderForeground(colorYellow)
	helpStyle          = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle         = lipgloss.NewStyle().Foreground(colorRed)
)

// chromeHeight is the number of lines around the treemap: title, panel
// strip, spacing and footer.
const chromeHeight = 8

// =============================================================================
// Messages
// =============================================================================

// tickMsg triggers a panel recompute.
type tickMsg time.Time

// layoutMsg carries a freshly computed treemap.
type layoutMsg struct {
	result treemap.Result
	cached bool
	err    error
}

// reloadMsg carries a dataset re-read after the file changed.
type reloadMsg struct {
	dataset popio.Dataset
	err     error
}

// =============================================================================
// DashboardModel - live treemap and panel allocation
// =============================================================================

// dashboardModel is the bubbletea model for the watch command.
type dashboardModel struct {
	ctx     context.Context
	ctrl    *panels.Controller
	runner  *pipeline.Runner
	source  *datasetSource
	reloads <-chan reloadMsg

	opts   pipeline.Options
	layout treemap.Result
	alloc  panels.Allocation
	cached bool

	cursor  int
	hovered bool
	pinned  bool

	cols int
	rows int

	status string
	err    error
}

// newDashboardModel creates the dashboard. reloads may be nil when the
// dataset file is not watched.
func newDashboardModel(ctx context.Context, ctrl *panels.Controller, runner *pipeline.Runner,
	source *datasetSource, opts pipeline.Options, reloads <-chan reloadMsg) dashboardModel {
	return dashboardModel{
		ctx:     ctx,
		ctrl:    ctrl,
		runner:  runner,
		source:  source,
		reloads: reloads,
		opts:    opts,
		alloc:   ctrl.Current(),
		cols:    pipeline.DefaultColumns,
		rows:    pipeline.DefaultRows,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.recompute(), m.tick(), m.computeLayout(), waitForReload(m.reloads))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 10)
		m.rows = max(msg.Height-chromeHeight, 4)
		return m, m.computeLayout()

	case tickMsg:
		return m, tea.Batch(m.recompute(), m.tick())

	case allocationMsg:
		m.alloc = panels.Allocation(msg)
		return m, nil

	case layoutMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.layout = msg.result
		m.cached = msg.cached
		return m, nil

	case reloadMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("reload dataset: %w", msg.err)
			return m, waitForReload(m.reloads)
		}
		m.source.set(msg.dataset)
		m.status = fmt.Sprintf("reloaded %d items at %s", len(msg.dataset.Items), time.Now().Format("15:04:05"))
		return m, tea.Batch(m.recompute(), m.computeLayout(), waitForReload(m.reloads))
	}
	return m, nil
}

// handleKey applies a key binding.
func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected := panels.All[m.cursor]

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "right", "l":
		m.cursor = (m.cursor + 1) % len(panels.All)
		if m.hovered {
			_ = m.ctrl.Hover(panels.All[m.cursor])
		}
	case "shift+tab", "left":
		m.cursor = (m.cursor + len(panels.All) - 1) % len(panels.All)
		if m.hovered {
			_ = m.ctrl.Hover(panels.All[m.cursor])
		}
	case "h":
		if m.hovered {
			m.ctrl.Unhover()
		} else {
			_ = m.ctrl.Hover(selected)
		}
		m.hovered = !m.hovered
	case "p":
		if m.pinned {
			m.ctrl.Unpin()
		} else {
			_ = m.ctrl.Pin(selected)
		}
		m.pinned = !m.pinned
	case "o":
		if err := m.ctrl.Override(m.ctx, selected); err != nil {
			m.err = err
		}
	case "r":
		m.ctrl.ResetOverride(m.ctx)
	case "v":
		if m.ctrl.Variant() == panels.Focal {
			m.ctrl.SetVariant(panels.Asymmetric)
		} else {
			m.ctrl.SetVariant(panels.Focal)
		}
	case "g":
		m.opts.GroupBy = string(nextGroupBy(treemap.GroupBy(m.opts.GroupBy)))
		return m, m.computeLayout()
	default:
		return m, nil
	}
	m.alloc = m.ctrl.Current()
	return m, nil
}

// allocationMsg carries the allocation after a recompute.
type allocationMsg panels.Allocation

// recompute runs one controller tick off the UI goroutine.
func (m dashboardModel) recompute() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		if err := ctrl.Tick(ctx); err != nil {
			return layoutMsg{err: fmt.Errorf("rank panels: %w", err)}
		}
		return allocationMsg(ctrl.Current())
	}
}

// tick schedules the next recompute.
func (m dashboardModel) tick() tea.Cmd {
	return tea.Tick(m.ctrl.Interval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// computeLayout lays out the current items for the terminal size. Terminal
// cells are about twice as tall as wide, so the frame is twice the row count.
func (m dashboardModel) computeLayout() tea.Cmd {
	ctx, runner := m.ctx, m.runner
	items := m.source.items()
	opts := m.opts
	opts.Width = float64(m.cols)
	opts.Height = float64(m.rows * 2)
	return func() tea.Msg {
		res, cached, err := runner.LayoutWithCacheInfo(ctx, pipeline.Filter(items, opts), opts)
		return layoutMsg{result: res, cached: cached, err: err}
	}
}

// waitForReload blocks on the next dataset reload.
func waitForReload(ch <-chan reloadMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Population Dynamics"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  group by %s · %d tiles · %s",
		m.opts.GroupBy, len(m.layout.Tiles), m.state())))
	b.WriteString("\n")

	b.WriteString(m.panelStrip())
	b.WriteString("\n")

	b.WriteString(sink.RenderText(m.layout, m.cols, m.rows))

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab select · h hover · p pin · o override · r reset · v variant · g group · q quit"))

	return b.String()
}

// state describes what currently decides the hero.
func (m dashboardModel) state() string {
	switch {
	case m.alloc.Overridden:
		return "override"
	case m.pinned:
		return "pinned"
	case m.hovered:
		return "hovered"
	}
	return "auto"
}

// panelStrip draws the panels side by side with their allocated widths.
func (m dashboardModel) panelStrip() string {
	boxes := make([]string, 0, len(m.alloc.Order))
	for _, id := range m.alloc.Order {
		style := panelStyle
		switch {
		case id == panels.All[m.cursor]:
			style = selectedPanelStyle
		case id == m.alloc.Hero:
			style = heroPanelStyle
		}

		width := int(float64(m.cols)*m.alloc.Widths[id]/100) - style.GetHorizontalBorderSize()
		title := panelTitle(id)
		if id == m.alloc.Hero {
			title = "★ " + title
		}
		body := fmt.Sprintf("%s\n%s", title,
			StyleDim.Render(fmt.Sprintf("score %g · %.0f%%", m.alloc.Scores[id], m.alloc.Widths[id])))
		boxes = append(boxes, style.Width(max(width, 1)).Render(body))
	}
	if m.alloc.Stacked {
		return lipgloss.JoinVertical(lipgloss.Left, boxes...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// nextGroupBy cycles through the grouping modes.
func nextGroupBy(g treemap.GroupBy) treemap.GroupBy {
	for i, mode := range treemap.GroupModes {
		if mode == g {
			return treemap.GroupModes[(i+1)%len(treemap.GroupModes)]
		}
	}
	return treemap.GroupModes[0]
}
