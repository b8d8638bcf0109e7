package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/panel"
	"github.com/matzehuels/cardmap/pkg/pipeline"
)

// A terminal cell stands for this many layout pixels.
const (
	pixelsPerCol = 8.0
	pixelsPerRow = 16.0

	// chromeRows is the space taken by the title, status and help lines.
	chromeRows = 3
)

// Panel styles
var (
	panelCardStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	panelCenterStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	panelFocusStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	panelDegradedStyle = lipgloss.NewStyle().Foreground(colorYellow)
	panelErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Key bindings
// =============================================================================

type panelKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Table  key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newPanelKeyMap() panelKeyMap {
	return panelKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next card")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab", "previous card")),
		Table:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle table")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-layout")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k panelKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Table, k.Help, k.Quit}
}

func (k panelKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Table, k.Reload},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// PanelModel - Interactive card panel
// =============================================================================

// panelLoadedMsg carries an opened view back to the model.
type panelLoadedMsg struct {
	view   panel.View
	layout layout.Layout
	err    error
}

// PanelModel is the bubbletea model for the interactive card panel. The
// panel is opened once the terminal size is known and re-opened on resize.
type PanelModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	src    panel.ItemSource
	opts   pipeline.Options

	view    panel.View
	layout  layout.Layout
	loading bool
	stale   bool // resized while loading
	err     error

	cols, rows int
	focus      int
	showTable  bool

	keys  panelKeyMap
	help  help.Model
	table table.Model
}

// NewPanelModel creates a panel model. Items are listed and placed by a
// command once the first window size arrives.
func NewPanelModel(ctx context.Context, runner *pipeline.Runner, src panel.ItemSource, opts pipeline.Options) PanelModel {
	return PanelModel{
		ctx:    ctx,
		runner: runner,
		src:    src,
		opts:   opts,
		keys:   newPanelKeyMap(),
		help:   help.New(),
		table: table.New(
			table.WithColumns(panelColumns()),
			table.WithFocused(true),
		),
	}
}

func (m PanelModel) Init() tea.Cmd {
	return nil
}

// load opens the panel for the current terminal size.
func (m PanelModel) load() tea.Cmd {
	opts := m.opts
	opts.Width, opts.Height = m.canvasBounds()
	ctx, runner, src := m.ctx, m.runner, m.src
	return func() tea.Msg {
		v, l, err := runner.OpenPanel(ctx, src, opts)
		return panelLoadedMsg{view: v, layout: l, err: err}
	}
}

// canvasBounds converts the canvas area to layout pixels.
func (m PanelModel) canvasBounds() (float64, float64) {
	rows := max(m.rows-chromeRows, 1)
	return float64(m.cols) * pixelsPerCol, float64(rows) * pixelsPerRow
}

// release closes the open view, if any.
func (m *PanelModel) release() {
	if m.view == nil {
		return
	}
	if err := m.runner.Release(m.ctx, m.view); err != nil {
		m.runner.Logger.Warn("close panel", "error", err)
	}
	m.view = nil
}

// PanelView returns the open panel view, or nil.
func (m PanelModel) PanelView() panel.View {
	return m.view
}

func (m PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		resized := msg.Width != m.cols || msg.Height != m.rows
		m.cols, m.rows = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(m.rows-chromeRows-1, 1))
		if !resized {
			break
		}
		if m.loading {
			m.stale = true
			break
		}
		m.loading = true
		return m, m.load()

	case panelLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.release()
			m.view, m.layout, m.err = msg.view, msg.layout, nil
			m.focus = min(m.focus, max(len(m.layout.Cards)-1, 0))
			m.table.SetRows(panelRows(m.layout))
			m.table.SetCursor(m.focus)
		}
		if m.stale {
			m.stale = false
			m.loading = true
			return m, m.load()
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.release()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Table):
			m.showTable = !m.showTable
		case key.Matches(msg, m.keys.Reload):
			if !m.loading && m.cols > 0 {
				m.loading = true
				return m, m.load()
			}
		case m.showTable:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			m.focus = m.table.Cursor()
			return m, cmd
		case key.Matches(msg, m.keys.Next):
			m.moveFocus(1)
		case key.Matches(msg, m.keys.Prev):
			m.moveFocus(-1)
		}
	}
	return m, nil
}

func (m *PanelModel) moveFocus(delta int) {
	n := len(m.layout.Cards)
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
	m.table.SetCursor(m.focus)
}

func (m PanelModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(panel.NavigationViewText))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(panelErrorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	case m.view == nil:
		b.WriteString(StyleDim.Render("Placing cards..."))
		b.WriteString("\n")
	case m.showTable:
		b.WriteString(m.table.View())
		b.WriteString("\n")
	default:
		c := newCanvas(m.cols, max(m.rows-chromeRows, 1), m.focusID())
		if err := m.view.Render(c); err != nil {
			b.WriteString(panelErrorStyle.Render("render: " + err.Error()))
			b.WriteString("\n")
		} else {
			b.WriteString(c.String())
		}
	}

	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m PanelModel) focusID() string {
	if m.focus < len(m.layout.Cards) {
		return m.layout.Cards[m.focus].ID
	}
	return ""
}

func (m PanelModel) status() string {
	if m.view == nil {
		return ""
	}
	parts := []string{
		fmt.Sprintf("%d cards", len(m.layout.Cards)),
		fmt.Sprintf("%g×%g", m.layout.Width, m.layout.Height),
	}
	if n := m.layout.DegradedCount(); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d overlapping", n)))
	}
	if m.focus < len(m.layout.Cards) {
		parts = append(parts, panelFocusStyle.Render(m.layout.Cards[m.focus].Label))
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

func panelColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Label", Width: 24},
		{Title: "X", Width: 7},
		{Title: "Y", Width: 7},
		{Title: "Tries", Width: 5},
		{Title: "Status", Width: 11},
	}
}

func panelRows(l layout.Layout) []table.Row {
	rows := make([]table.Row, 0, len(l.Cards))
	for i, c := range l.Cards {
		status := "placed"
		if c.Degraded {
			status = "overlapping"
		}
		rows = append(rows, table.Row{
			fmt.Sprint(i + 1),
			c.Label,
			fmt.Sprintf("%.0f", c.X),
			fmt.Sprintf("%.0f", c.Y),
			fmt.Sprint(c.Attempts),
			status,
		})
	}
	return rows
}

// =============================================================================
// Canvas - terminal renderer for panel views
// =============================================================================

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellCard
	cellCenter
	cellDegraded
	cellFocus
)

// canvas draws cards as boxes on a grid of terminal cells.
type canvas struct {
	cols, rows int
	cells      [][]rune
	kinds      [][]cellKind
	focusID    string
}

func newCanvas(cols, rows int, focusID string) *canvas {
	c := &canvas{cols: cols, rows: rows, focusID: focusID}
	c.cells = make([][]rune, rows)
	c.kinds = make([][]cellKind, rows)
	for y := range rows {
		c.cells[y] = []rune(strings.Repeat(" ", cols))
		c.kinds[y] = make([]cellKind, cols)
	}
	return c
}

func (c *canvas) RenderCenter(card layout.Card) error {
	c.drawCard(card, cellCenter)
	return nil
}

func (c *canvas) RenderCard(card layout.Card) error {
	kind := cellCard
	switch {
	case card.ID == c.focusID:
		kind = cellFocus
	case card.Degraded:
		kind = cellDegraded
	}
	c.drawCard(card, kind)
	return nil
}

// cellRect maps a card to inclusive cell coordinates.
func cellRect(card layout.Card) (x0, y0, x1, y1 int) {
	x0 = int(math.Round((card.X - card.Width/2) / pixelsPerCol))
	x1 = int(math.Round((card.X+card.Width/2)/pixelsPerCol)) - 1
	y0 = int(math.Round((card.Y - card.Height/2) / pixelsPerRow))
	y1 = int(math.Round((card.Y+card.Height/2)/pixelsPerRow)) - 1
	return x0, y0, x1, y1
}

func (c *canvas) drawCard(card layout.Card, kind cellKind) {
	x0, y0, x1, y1 := cellRect(card)
	if x1 <= x0 || y1 <= y0 {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r := ' '
			switch {
			case y == y0 && x == x0:
				r = '╭'
			case y == y0 && x == x1:
				r = '╮'
			case y == y1 && x == x0:
				r = '╰'
			case y == y1 && x == x1:
				r = '╯'
			case y == y0 || y == y1:
				r = '─'
			case x == x0 || x == x1:
				r = '│'
			}
			c.set(x, y, r, kind)
		}
	}

	inner := x1 - x0 - 1
	label := []rune(card.Label)
	if len(label) > inner {
		label = append(label[:max(inner-1, 0)], '…')
	}
	if inner <= 0 {
		return
	}
	mid := (y0 + y1) / 2
	start := x0 + 1 + (inner-len(label))/2
	for i, r := range label {
		c.set(start+i, mid, r, kind)
	}
}

func (c *canvas) set(x, y int, r rune, kind cellKind) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y][x] = r
	c.kinds[y][x] = kind
}

func (k cellKind) style() lipgloss.Style {
	switch k {
	case cellCenter:
		return panelCenterStyle
	case cellDegraded:
		return panelDegradedStyle
	case cellFocus:
		return panelFocusStyle
	}
	return panelCardStyle
}

// String renders the grid, styling runs of cells of the same kind.
func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.rows {
		x := 0
		for x < c.cols {
			kind := c.kinds[y][x]
			end := x
			for end < c.cols && c.kinds[y][end] == kind {
				end++
			}
			run := string(c.cells[y][x:end])
			if kind == cellEmpty {
				b.WriteString(run)
			} else {
				b.WriteString(kind.style().Render(run))
			}
			x = end
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Plain returns the grid without styling.
func (c *canvas) Plain() string {
	var b strings.Builder
	for y := range c.rows {
		b.WriteString(strings.TrimRight(string(c.cells[y]), " "))
		b.WriteString("\n")
	}
	return b.String()
}
