package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/shelfspace/pkg/shelf"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// canvas is a grid of runes, each painted with one of a small set of
// styles. Runs of equal style are rendered together.
type canvas struct {
	cols, rows int
	runes      [][]rune
	paint      [][]int
	styles     []lipgloss.Style
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, styles: []lipgloss.Style{lipgloss.NewStyle()}}
	c.runes = make([][]rune, rows)
	c.paint = make([][]int, rows)
	for r := range c.runes {
		c.runes[r] = []rune(strings.Repeat(" ", cols))
		c.paint[r] = make([]int, cols)
	}
	return c
}

// style registers s and returns its index.
func (c *canvas) style(s lipgloss.Style) int {
	c.styles = append(c.styles, s)
	return len(c.styles) - 1
}

func (c *canvas) set(col, row int, r rune, style int) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return
	}
	c.runes[row][col] = r
	c.paint[row][col] = style
}

func (c *canvas) fill(col0, row0, col1, row1 int, r rune, style int) {
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			c.set(col, row, r, style)
		}
	}
}

func (c *canvas) text(col, row int, s string, style int) {
	for i, r := range []rune(s) {
		c.set(col+i, row, r, style)
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for col := 1; col <= c.cols; col++ {
			if col < c.cols && c.paint[row][col] == c.paint[row][start] {
				continue
			}
			run := string(c.runes[row][start:col])
			if p := c.paint[row][start]; p == 0 {
				b.WriteString(run)
			} else {
				b.WriteString(c.styles[p].Render(run))
			}
			start = col
		}
	}
	return b.String()
}

// renderShelves draws the visible part of the live frame into cols columns.
func (m shelfModel) renderShelves(cols int) string {
	g := m.sess.Geometry()
	st, frame := m.sess.Snapshot()

	c := newCanvas(cols, m.shelfRows())
	plank := c.style(stylePlank)
	ghost := c.style(styleGhost)
	ornament := c.style(styleOrnament)

	// row converts a container y into a canvas row.
	row := func(y float64) int { return m.vp.canvasRow(y) - m.vp.scroll }

	for i := 0; i < shelf.VisibleShelves(st); i++ {
		floor := row(g.ShelfTop(i) + g.ShelfHeight - 1)
		if i == st.ShelfCount {
			c.fill(0, floor, cols-1, floor, '╌', ghost)
			c.text(2, floor-1, "+ create new shelf", ghost)
			continue
		}
		c.fill(0, floor, cols-1, floor, '━', plank)
	}

	if zone := g.ArchiveZone; zone != nil {
		m.drawArchiveZone(c, *zone, st.Drag)
	}

	dragged := ""
	if st.Drag != nil {
		dragged = st.Drag.ItemID
	}
	for _, e := range frame.Layout {
		col0 := m.vp.canvasCol(e.X)
		col1 := max(col0, m.vp.canvasCol(e.Right()-1))
		floor := row(g.ShelfTop(e.Shelf)+g.ShelfHeight-1) - 1
		band := max(1, int(g.ShelfHeight/m.vp.cellH)-2)

		if e.Kind == shelf.KindOrnament {
			style := ornament
			if e.ID == dragged {
				style = c.style(styleOrnament.Inherit(styleDragged))
			}
			drawOrnament(c, e, col0, col1, floor, band, m.sess.Playing(), style)
			continue
		}

		book, _ := m.lib.Book(e.ID)
		spine := spineStyle(book)
		if e.ID == dragged {
			spine = spine.Inherit(styleDragged)
		}
		drawSpine(c, book, col0, col1, floor, band, c.style(spine))
	}
	return c.String()
}

func (m shelfModel) drawArchiveZone(c *canvas, zone shelf.Rect, drag *shelf.DragSession) {
	style := styleArchive
	if drag != nil && zone.Contains(drag.CurrentX, drag.CurrentY) {
		style = styleArchiveOn
	}
	s := c.style(style)
	col0 := m.vp.canvasCol(zone.X)
	col1 := m.vp.canvasCol(zone.X + zone.Width - 1)
	row0 := m.vp.canvasRow(zone.Y) - m.vp.scroll
	row1 := m.vp.canvasRow(zone.Y+zone.Height-1) - m.vp.scroll

	c.fill(col0, row0, col1, row0, '┄', s)
	c.fill(col0, row1, col1, row1, '┄', s)
	c.fill(col0, row0, col0, row1, '┆', s)
	c.fill(col1, row0, col1, row1, '┆', s)
	c.text(col0+2, (row0+row1)/2, "archive", s)
}

// drawSpine draws a book standing on floor with its title running down the
// spine.
func drawSpine(c *canvas, b store.Book, col0, col1, floor, band, style int) {
	height := band
	if b.Height > 0 {
		height = max(2, int(math.Round(float64(band)*b.Height/100)))
	}
	top := floor - height + 1
	c.fill(col0, top, col1, floor, ' ', style)

	title := []rune(strings.ToUpper(b.Title))
	if b.IsWebsite() {
		title = append([]rune{'@'}, title...)
	}
	mid := (col0 + col1) / 2
	for i := 0; i < height && i < len(title); i++ {
		c.set(mid, top+i, title[i], style)
	}
}

func drawOrnament(c *canvas, e shelf.Entry, col0, col1, floor, band int, playing bool, style int) {
	height := max(3, band/2)
	top := floor - height + 1
	c.fill(col0, top, col1, top, '─', style)
	c.fill(col0, floor, col1, floor, '─', style)
	c.fill(col0, top, col0, floor, '│', style)
	c.fill(col1, top, col1, floor, '│', style)
	c.set(col0, top, '╭', style)
	c.set(col1, top, '╮', style)
	c.set(col0, floor, '╰', style)
	c.set(col1, floor, '╯', style)

	label := e.ID
	if e.Variant == shelf.VariantMusicPlayer {
		label = iconMusic + " radio"
		if playing {
			label = iconMusic + " playing"
		}
	}
	c.text(col0+2, (top+floor)/2, label, style)
}

func spineStyle(b store.Book) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(colorInk)
	if b.Color != "" {
		s = s.Background(lipgloss.Color(b.Color))
	} else {
		s = s.Background(colorGray)
	}
	return s
}

// renderDetail renders the panel shown for an opened book.
func renderDetail(b store.Book) string {
	var lines []string
	lines = append(lines, StyleTitle.Render(b.Title))
	if b.Author != "" {
		lines = append(lines, StyleDim.Render("by "+b.Author))
	}
	if b.IsWebsite() {
		lines = append(lines, StyleLink.Render(b.URL))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("%s %s", StyleDim.Render("rating"), StyleNumber.Render(stars(b.Rating))))
	if b.Genre != "" {
		lines = append(lines, fmt.Sprintf("%s  %s", StyleDim.Render("genre"), StyleValue.Render(b.Genre)))
	}
	lines = append(lines, fmt.Sprintf("%s %s", StyleDim.Render("impact"), StyleValue.Render(fmt.Sprintf("%d%%", b.EmotionalImpact))))
	if b.Summary != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(36).Render(b.Summary))
	}
	if b.PersonalNote != "" {
		lines = append(lines, "", StyleHighlight.Width(36).Render("“"+b.PersonalNote+"”"))
	}
	return stylePanel.Render(strings.Join(lines, "\n"))
}

// stars renders a 0-5 rating with half steps.
func stars(rating float64) string {
	full := int(rating)
	half := rating-float64(full) >= 0.5
	s := strings.Repeat("★", full)
	if half {
		s += "½"
	}
	return s + fmt.Sprintf(" %.1f", rating)
}

// floorDiv returns floor(v / step) as an int.
func floorDiv(v, step float64) int {
	return int(math.Floor(v / step))
}
