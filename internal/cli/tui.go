package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shelfspace/pkg/config"
	"github.com/matzehuels/shelfspace/pkg/errors"
	"github.com/matzehuels/shelfspace/pkg/session"
	"github.com/matzehuels/shelfspace/pkg/shelf"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// tuiCommand creates the interactive shelf command.
func (c *CLI) tuiCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Arrange the shelf interactively in the terminal",
		Long: `Open the bookshelf in the terminal.

Drag books and ornaments with the mouse. Items dropped near others snap next
to them; items dropped below the last shelf create a new one; items dropped
on the archive zone (bottom left) are archived. Click a book to read its
details, click the music player to toggle it.

With --watch, changes made to the library file by other processes are
picked up while the shelf is open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), watch, cmd.Flags().Changed("watch"))
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the library file changes (file backend)")
	return cmd
}

func (c *CLI) runTUI(ctx context.Context, watch, watchSet bool) error {
	sess, cfg, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if !watchSet {
		watch = cfg.TUI.Watch
	}

	m := newShelfModel(ctx, sess, cfg)
	if watch {
		w, err := watchLibrary(cfg.Store)
		if err != nil {
			return err
		}
		defer w.Close()
		m.watcher = w
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

// watchLibrary watches the directory of the file store's library. The
// store replaces the file by rename, so the directory is watched rather
// than the file.
func watchLibrary(cfg store.Config) (*libraryWatcher, error) {
	if cfg.Backend != store.BackendFile {
		return nil, errors.New(errors.ErrCodeUnsupported, "--watch needs the file backend, not %s", cfg.Backend)
	}
	path := cfg.Path
	if path == "" {
		p, err := store.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &libraryWatcher{Watcher: w, name: filepath.Base(path)}, nil
}

type libraryWatcher struct {
	*fsnotify.Watcher
	name string
}

// =============================================================================
// Messages
// =============================================================================

// libraryChangedMsg reports a write to the library file.
type libraryChangedMsg struct{}

// reloadMsg fires once a burst of file events has settled.
type reloadMsg struct{}

// =============================================================================
// Keys
// =============================================================================

type shelfKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Close  key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k shelfKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

func (k shelfKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Close, k.Reload},
		{k.Help, k.Quit},
	}
}

var shelfKeys = shelfKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc", "enter"),
		key.WithHelp("esc", "close details"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload library"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// =============================================================================
// Viewport
// =============================================================================

// viewport maps terminal cells to container pixels. Row originRow is the
// first terminal row of the shelf area; scroll is how many container rows
// are scrolled out of view above it.
type viewport struct {
	cellW, cellH float64
	originRow    int
	scroll       int
}

// toContainer returns the container point at the centre of cell (col, row).
func (v viewport) toContainer(col, row int) (float64, float64) {
	x := (float64(col) + 0.5) * v.cellW
	y := (float64(row-v.originRow+v.scroll) + 0.5) * v.cellH
	return x, y
}

// canvasRow returns the container row holding container y.
func (v viewport) canvasRow(y float64) int {
	return floorDiv(y, v.cellH)
}

// canvasCol returns the column holding container x.
func (v viewport) canvasCol(x float64) int {
	return floorDiv(x, v.cellW)
}

// =============================================================================
// Model
// =============================================================================

// headerRows is the title line plus a blank line above the shelves.
const headerRows = 2

type shelfModel struct {
	ctx     context.Context
	sess    *session.Session
	lib     *store.Library
	watcher *libraryWatcher

	// zoneFixed is set when the archive zone comes from configuration.
	zoneFixed bool

	vp     viewport
	width  int
	height int

	help   help.Model
	opened *store.Book
	status string
	err    error
}

func newShelfModel(ctx context.Context, sess *session.Session, cfg config.Config) shelfModel {
	return shelfModel{
		ctx:       ctx,
		sess:      sess,
		lib:       sess.Library(),
		zoneFixed: cfg.Geometry.ArchiveZone != nil,
		vp: viewport{
			cellW:     cfg.TUI.CellWidth,
			cellH:     cfg.TUI.CellHeight,
			originRow: headerRows,
		},
		help: help.New(),
	}
}

func (m shelfModel) Init() tea.Cmd {
	return m.waitForFsEvent()
}

// waitForFsEvent returns a command that waits for the next write to the
// library file, draining any burst that follows it.
func (m shelfModel) waitForFsEvent() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Base(ev.Name) != w.name {
					continue
				}
				for {
					select {
					case _, ok := <-w.Events:
						if !ok {
							return libraryChangedMsg{}
						}
					default:
						return libraryChangedMsg{}
					}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (m shelfModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.placeArchiveZone()
		return m, nil

	case libraryChangedMsg:
		return m, tea.Batch(
			tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return reloadMsg{} }),
			m.waitForFsEvent(),
		)

	case reloadMsg:
		m.reload()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}
	return m, nil
}

func (m shelfModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, shelfKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, shelfKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.placeArchiveZone()
	case key.Matches(msg, shelfKeys.Close):
		m.opened = nil
	case key.Matches(msg, shelfKeys.Reload):
		m.reload()
	case key.Matches(msg, shelfKeys.Up):
		m.scrollBy(-1)
	case key.Matches(msg, shelfKeys.Down):
		m.scrollBy(1)
	}
	return m, nil
}

func (m shelfModel) handleMouse(msg tea.MouseMsg) shelfModel {
	if msg.Y < m.vp.originRow || msg.Y >= m.vp.originRow+m.shelfRows() {
		if msg.Action == tea.MouseActionRelease && m.sess.Dragging() {
			// Released over the header or footer: clamp into the shelf area.
			msg.Y = max(m.vp.originRow, min(msg.Y, m.vp.originRow+m.shelfRows()-1))
		} else {
			return m
		}
	}
	x, y := m.vp.toContainer(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			_, _, err := m.sess.Grab(m.ctx, x, y)
			m.err = err
		case tea.MouseButtonWheelUp:
			m.scrollBy(-1)
		case tea.MouseButtonWheelDown:
			m.scrollBy(1)
		}

	case tea.MouseActionMotion:
		if m.sess.Dragging() {
			_, err := m.sess.PointerMove(m.ctx, x, y)
			m.err = err
		}

	case tea.MouseActionRelease:
		if !m.sess.Dragging() {
			return m
		}
		res, err := m.sess.PointerUp(m.ctx, x, y)
		m.err = err
		m.applyResult(res)
	}
	return m
}

func (m *shelfModel) applyResult(res session.Result) {
	for _, eff := range res.Effects {
		if a, ok := eff.(shelf.Archive); ok {
			m.status = fmt.Sprintf("archived %s", m.itemName(a.ID, a.Kind))
		}
	}
	if res.Saved {
		m.lib = m.sess.Library()
	}
	if res.Opened != nil {
		m.opened = res.Opened
	}
	if res.Toggled {
		if m.sess.Playing() {
			m.status = iconMusic + " playing"
		} else {
			m.status = "music paused"
		}
	}
	m.placeArchiveZone()
}

func (m *shelfModel) reload() {
	ok, err := m.sess.Reload(m.ctx)
	m.err = err
	if ok {
		m.lib = m.sess.Library()
		m.placeArchiveZone()
	}
}

func (m *shelfModel) scrollBy(delta int) {
	if m.sess.Dragging() {
		return
	}
	g := m.sess.Geometry()
	total := m.vp.canvasRow(g.Height(shelf.VisibleShelves(m.sess.State()))) + 1
	maxScroll := max(0, total-m.shelfRows())
	m.vp.scroll = max(0, min(m.vp.scroll+delta, maxScroll))
	m.placeArchiveZone()
}

// placeArchiveZone pins the archive zone to the bottom-left 200x200 pixels
// of the visible shelf area unless configuration fixed it.
func (m *shelfModel) placeArchiveZone() {
	if m.zoneFixed || m.height == 0 {
		return
	}
	const size = 200
	bottom := float64(m.vp.scroll+m.shelfRows()) * m.vp.cellH
	m.sess.SetArchiveZone(&shelf.Rect{X: 0, Y: bottom - size, Width: size, Height: size})
}

// shelfRows is the number of terminal rows available to the shelves.
func (m shelfModel) shelfRows() int {
	return max(1, m.height-headerRows-m.footerRows())
}

func (m shelfModel) footerRows() int {
	return 1 + lipgloss.Height(m.help.View(shelfKeys))
}

func (m shelfModel) itemName(id string, kind shelf.Kind) string {
	if kind == shelf.KindBook {
		if b, ok := m.lib.Book(id); ok {
			return b.Title
		}
		for _, b := range m.lib.ArchivedBooks {
			if b.ID == id {
				return b.Title
			}
		}
	}
	return id
}

func (m shelfModel) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.lib.Title))
	if m.lib.Subtitle != "" {
		b.WriteString("  " + StyleDim.Render(m.lib.Subtitle))
	}
	b.WriteString("\n\n")

	if m.opened != nil {
		panel := renderDetail(*m.opened)
		cols := max(1, m.width-lipgloss.Width(panel)-1)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderShelves(cols), " ", panel))
	} else {
		b.WriteString(m.renderShelves(m.width))
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(shelfKeys))
	return b.String()
}

func (m shelfModel) statusLine() string {
	if m.err != nil {
		return StyleError.Render(iconError + " " + errors.UserMessage(m.err))
	}
	st := m.sess.State()
	parts := []string{fmt.Sprintf("%d shelves", st.ShelfCount), fmt.Sprintf("%d items", len(st.Settled))}
	if st.Drag != nil {
		parts = append(parts, "dragging "+m.itemName(st.Drag.ItemID, shelf.KindBook))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.sess.Playing() && !strings.Contains(m.status, iconMusic) {
		parts = append(parts, iconMusic)
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}
