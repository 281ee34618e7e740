package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/pipeline"
	"github.com/matzehuels/genetrack/pkg/track/drag"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// browseCommand creates the browse command, an interactive track viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var flags trackFlags

	cmd := &cobra.Command{
		Use:   "browse [track.bed]",
		Short: "Pan and zoom through a track in the terminal",
		Long: `Pan and zoom through a track in the terminal.

Drag with the left mouse button to pan; the view follows the pointer while
dragging and the rows are repacked when the button is released. Scroll to
zoom. Keys: ←/→ or h/l pan, +/- zoom, r resets the view, q quits.

One terminal column is one pixel, so --width and --label-char-width are
ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return c.runBrowse(cmd.Context(), opts, flags.noCache)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// The whole chromosome is loaded once; panning only re-runs the layout.
	view := opts.Region
	opts.Region = genome.Region{}
	features, _, err := loadTrack(ctx, runner, &opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.Input, err)
	}
	if view.Empty() {
		view = opts.Region
	}
	opts.Region = view
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	m := newBrowseModel(features, view, *opts.MaxRows)
	m.reducer.MinDistance = c.Config.Drag.MinDistance
	m.segments = segmentStyles(c.Config.Render.SegmentColorMap())
	m.title = opts.Input

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(browseModel); ok {
		loggerFromContext(ctx).Debug("browse finished", "region", fm.region, "layout_passes", fm.passes, "skipped", fm.memo.Hits())
	}
	return nil
}

// =============================================================================
// browseModel - Interactive track view
// =============================================================================

// browseModel is the bubbletea model behind the browse command. Pointer
// events go through the drag reducer; the layout only changes when the
// region or the terminal width does, which the memo checks.
type browseModel struct {
	features []genome.Feature
	home     genome.Region
	region   genome.Region
	maxRows  int
	width    int
	title    string
	segments map[genome.SegmentClass]lipgloss.Style

	reducer drag.Reducer
	state   drag.State
	memo    *layout.Memo
	layout  layout.Layout
	passes  int
}

// browseDefaultWidth is used until the first WindowSizeMsg arrives.
const browseDefaultWidth = 80

func newBrowseModel(features []genome.Feature, region genome.Region, maxRows int) browseModel {
	m := browseModel{
		features: features,
		home:     region,
		region:   region,
		maxRows:  maxRows,
		width:    browseDefaultWidth,
		segments: segmentStyles(nil),
		reducer:  drag.New(browseDefaultWidth),
		state:    drag.Initial(region),
		memo:     &layout.Memo{},
	}
	m.relayout()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.setRegion(m.region.Shift(-m.region.Width() / 4))
		case "right", "l":
			m.setRegion(m.region.Shift(m.region.Width() / 4))
		case "+", "=":
			m.setRegion(m.region.Zoom(2))
		case "-":
			m.setRegion(m.region.Zoom(0.5))
		case "r":
			m.setRegion(m.home)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 1)
		m.reducer.Width = float64(m.width)
		m.relayout()
	}
	return m, nil
}

// handleMouse translates terminal mouse events into drag events.
func (m *browseModel) handleMouse(msg tea.MouseMsg) {
	x := float64(msg.X)
	var ev drag.Event
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.setRegion(m.region.Zoom(2))
			return
		case tea.MouseButtonWheelDown:
			m.setRegion(m.region.Zoom(0.5))
			return
		case tea.MouseButtonLeft:
			ev = drag.Press{X: x, Button: drag.ButtonPrimary}
		case tea.MouseButtonMiddle:
			ev = drag.Press{X: x, Button: drag.ButtonMiddle}
		default:
			ev = drag.Press{X: x, Button: drag.ButtonSecondary}
		}
	case tea.MouseActionMotion:
		ev = drag.Move{X: x}
	case tea.MouseActionRelease:
		ev = drag.Release{X: x}
	default:
		return
	}

	var out drag.Output
	m.state, out = m.reducer.Step(m.state, ev)
	if out.NewRegion != nil {
		m.setRegion(*out.NewRegion)
	}
}

// setRegion moves the view, keeping it on the positive axis, re-runs the
// layout and tells the reducer the new region is in place.
func (m *browseModel) setRegion(r genome.Region) {
	if r.Start < 0 {
		r = r.Shift(-r.Start)
	}
	m.region = r
	m.relayout()
	m.state, _ = m.reducer.Step(m.state, drag.RegionChanged{Region: r})
}

func (m *browseModel) relayout() {
	key := layout.Key{Region: m.region, Width: float64(m.width), MaxRows: m.maxRows}
	m.layout = m.memo.Do(key, func() layout.Layout {
		m.passes++
		scale := layout.LinearScale{Region: m.region, Width: float64(m.width)}
		return layout.Build(m.features, m.region, scale,
			layout.WithMaxRows(m.maxRows),
			layout.WithMeasurer(cellMeasurer{}))
	})
}

// cellMeasurer measures labels in terminal cells plus one cell of gap.
type cellMeasurer struct{}

func (cellMeasurer) Measure(label string) float64 {
	return float64(lipgloss.Width(label) + 1)
}

// =============================================================================
// Drawing
// =============================================================================

var (
	browseLabelStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	browseGeneStyle     = lipgloss.NewStyle().Foreground(colorCyan)
	browseFeatureStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	browseOverflowStyle = lipgloss.NewStyle().Foreground(colorDim)
	browseMarkerStyle   = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
)

// segmentStyles returns the terminal style of each segment class. Hex
// colours from the config replace the defaults; CSS colour names have no
// terminal equivalent and are ignored.
func segmentStyles(colors map[genome.SegmentClass]string) map[genome.SegmentClass]lipgloss.Style {
	out := map[genome.SegmentClass]lipgloss.Style{
		genome.SegmentDeletion:  lipgloss.NewStyle().Foreground(colorGray),
		genome.SegmentInsertion: lipgloss.NewStyle().Foreground(colorPink),
		genome.SegmentMismatch:  lipgloss.NewStyle().Foreground(colorOrange),
	}
	for class, c := range colors {
		if strings.HasPrefix(c, "#") {
			out[class] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
		}
	}
	return out
}

type cell struct {
	ch    rune
	style *lipgloss.Style
}

// rowLine draws the placements of one row into a line of width cells,
// shifted by offset cells.
func rowLine(placements []layout.Placement, width, offset int, overflow bool, segments map[genome.SegmentClass]lipgloss.Style) string {
	cells := make([]cell, width)
	for i := range cells {
		cells[i].ch = ' '
	}
	put := func(x int, ch rune, st *lipgloss.Style) {
		if x >= 0 && x < width {
			cells[x] = cell{ch: ch, style: st}
		}
	}

	for _, p := range placements {
		xs, xe := p.XStart+float64(offset), p.XEnd+float64(offset)
		if math.IsNaN(xs) || math.IsNaN(xe) {
			continue
		}
		// Cells outside [0, width) are never drawn, so coordinates are
		// clamped just past the edges before the fill.
		xs = min(max(xs, -1), float64(width)+p.LabelWidth)
		xe = min(max(xe, -1), float64(width))
		start := int(math.Round(xs))
		end := max(int(math.Round(xe)), start+1)

		ch, st := glyph(*p.Feature, overflow, segments)
		for x := max(start, 0); x < min(end, width); x++ {
			put(x, ch, st)
		}
		if p.Labeled {
			x := start - int(p.LabelWidth)
			for _, r := range p.Feature.Name {
				put(x, r, &browseLabelStyle)
				x++
			}
		}
	}

	var b strings.Builder
	for i := 0; i < width; {
		j := i
		for j < width && cells[j].style == cells[i].style {
			j++
		}
		var run strings.Builder
		for _, c := range cells[i:j] {
			run.WriteRune(c.ch)
		}
		if cells[i].style != nil {
			b.WriteString(cells[i].style.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		i = j
	}
	return b.String()
}

// glyph picks the fill character and style of a feature.
func glyph(f genome.Feature, overflow bool, segments map[genome.SegmentClass]lipgloss.Style) (rune, *lipgloss.Style) {
	if overflow {
		return '·', &browseOverflowStyle
	}
	if f.IsSegment() {
		st, ok := segments[f.Class]
		if !ok {
			return '█', &browseFeatureStyle
		}
		return '█', &st
	}
	if f.IsGene() {
		switch f.Strand {
		case genome.StrandForward:
			return '>', &browseGeneStyle
		case genome.StrandReverse:
			return '<', &browseGeneStyle
		}
		return '=', &browseGeneStyle
	}
	return '▬', &browseFeatureStyle
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(StyleValue.Render(m.region.String()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("drag pan  scroll/+/- zoom  r reset  q quit"))
	b.WriteString("\n\n")

	offset := int(math.Round(m.state.Offset))
	for r := 0; r <= m.layout.MaxRows; r++ {
		b.WriteString(rowLine(m.layout.Row(r), m.width, offset, r == m.layout.MaxRows, m.segments))
		b.WriteString("\n")
	}
	if marker, ok := m.layout.Overflow(); ok {
		b.WriteString(browseMarkerStyle.Render(marker.Text))
	}
	b.WriteString("\n\n")

	status := fmt.Sprintf("%d visible · %d rows · %s", len(m.layout.Placements), m.layout.RowsUsed(), m.state.Phase)
	if m.state.Phase == drag.Dragging {
		status += fmt.Sprintf(" %+d", offset)
	}
	b.WriteString(StyleDim.Render(status))
	return b.String()
}
