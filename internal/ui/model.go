package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"

	"github.com/five82/marquee/internal/artwork"
	"github.com/five82/marquee/internal/logtail"
	"github.com/five82/marquee/internal/state"
	"github.com/five82/marquee/internal/tmdb"
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Store       *state.Store
	Pool        *artwork.Pool
	Posters     *PosterFeed // must be the pool's OnSettle target
	FetchQuery  string
	Debounce    time.Duration
	ThumbWidth  int
	ThumbHeight int
	LogFile     string
	ThemeName   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx     context.Context
	store   *state.Store
	pool    *artwork.Pool
	posters *PosterFeed
	snapCh  <-chan state.Snapshot
	unsub   func()

	// Configuration
	fetchQuery string
	debounce   time.Duration
	thumbW     int
	thumbH     int
	logFile    string

	// UI state
	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	showHelp bool
	showLogs bool
	input    textinput.Model
	spinner  spinner.Model

	// Data state
	snapshot  state.Snapshot
	selected  int
	offset    int // first visible grid row
	filterGen uint64

	art      map[int]posterArt
	logLines []string
	logErr   error
}

// posterArt is a rendered poster and the inputs it was rendered for.
type posterArt struct {
	url      string
	width    int
	height   int
	bg       string
	rendered string
}

// New creates a new Bubble Tea model and subscribes it to the store.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Filter titles..."
	ti.CharLimit = 120

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	posters := opts.Posters
	if posters == nil {
		posters = NewPosterFeed(ctx)
	}

	m := Model{
		ctx:        ctx,
		store:      opts.Store,
		pool:       opts.Pool,
		posters:    posters,
		unsub:      func() {},
		fetchQuery: opts.FetchQuery,
		debounce:   opts.Debounce,
		thumbW:     opts.ThumbWidth,
		thumbH:     opts.ThumbHeight,
		logFile:    opts.LogFile,
		theme:      GetTheme(themeName),
		keys:       DefaultKeyMap(),
		input:      ti,
		spinner:    sp,
		art:        make(map[int]posterArt),
	}
	if m.store != nil {
		m.snapCh, m.unsub = m.store.Subscribe()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		m.spinner.Tick,
		m.posters.wait(),
	}
	if m.snapCh != nil {
		cmds = append(cmds, waitSnapshot(m.snapCh))
	}
	if m.store != nil {
		cmds = append(cmds, fetchCmd(m.ctx, m.store, m.fetchQuery))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.Width = maxInt(10, m.width-6)
		m.syncPosters()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.selected = move(m.selected, 0, len(m.snapshot.Filtered))
		m.syncPosters()
		return m, waitSnapshot(m.snapCh)

	case posterMsg:
		if msg.state.Phase == artwork.PhaseLoaded {
			m.refreshArt()
		}
		return m, m.posters.wait()

	case fetchDoneMsg:
		if msg.err == nil {
			// A successful fetch clears the store's filter; follow it.
			m.input.SetValue("")
			m.filterGen++
			m.selected = 0
			m.offset = 0
			m.syncPosters()
		}
		return m, nil

	case filterMsg:
		if msg.gen != m.filterGen || m.store == nil {
			return m, nil
		}
		m.store.SetQuery(msg.query)
		m.selected = 0
		m.offset = 0
		return m, nil

	case logTickMsg:
		if !m.showLogs {
			return m, nil
		}
		return m, readLogsCmd(m.logFile)

	case logLinesMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		if !m.showLogs {
			return m, nil
		}
		return m, logTickCmd()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.input.Focused() {
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Confirm) {
			m.input.Blur()
			return m, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != before {
			filter := m.scheduleFilter(value)
			return m, tea.Batch(cmd, filter)
		}
		return m, cmd
	}

	g := m.grid()
	total := len(m.snapshot.Filtered)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.showLogs {
			m.showLogs = false
			return m, nil
		}
		if m.input.Value() != "" {
			m.input.SetValue("")
			filter := m.scheduleFilter("")
			return m, filter
		}
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		focus := m.input.Focus()
		return m, focus

	case key.Matches(msg, m.keys.Refresh):
		if m.store == nil {
			return m, nil
		}
		query := m.snapshot.FetchQuery
		if query == "" {
			query = m.fetchQuery
		}
		return m, fetchCmd(m.ctx, m.store, query)

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, readLogsCmd(m.logFile)
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.refreshArt()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selected = move(m.selected, -g.cols, total)
	case key.Matches(msg, m.keys.Down):
		m.selected = move(m.selected, g.cols, total)
	case key.Matches(msg, m.keys.Left):
		m.selected = move(m.selected, -1, total)
	case key.Matches(msg, m.keys.Right):
		m.selected = move(m.selected, 1, total)
	case key.Matches(msg, m.keys.Top):
		m.selected = move(0, 0, total)
	case key.Matches(msg, m.keys.Bottom):
		m.selected = move(total-1, 0, total)
	case key.Matches(msg, m.keys.PageUp):
		m.selected = move(m.selected, -g.pageSize(), total)
	case key.Matches(msg, m.keys.PageDown):
		m.selected = move(m.selected, g.pageSize(), total)
	default:
		return m, nil
	}

	m.syncPosters()
	return m, nil
}

// scheduleFilter arms a debounced SetQuery. Only the most recent schedule
// is applied; earlier ones are dropped when their filterMsg arrives.
func (m *Model) scheduleFilter(query string) tea.Cmd {
	m.filterGen++
	msg := filterMsg{gen: m.filterGen, query: query}
	if m.debounce <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(m.debounce, func(time.Time) tea.Msg { return msg })
}

func (m Model) grid() gridLayout {
	return computeGrid(m.width, m.height, m.thumbW, m.thumbH)
}

// visible returns the movies currently on screen and updates the scroll
// offset to keep the selection in view.
func (m *Model) visible() []tmdb.Movie {
	items := m.snapshot.Filtered
	offset, start, end := m.grid().window(len(items), m.selected, m.offset)
	m.offset = offset
	return items[start:end]
}

// syncPosters starts loaders for on-screen movies and cancels the rest.
func (m *Model) syncPosters() {
	if m.pool == nil || !m.ready {
		return
	}
	shown := m.visible()
	ids := make([]int, 0, len(shown))
	for _, movie := range shown {
		m.pool.Acquire(movie)
		ids = append(ids, movie.ID)
	}
	m.pool.Retain(ids)
	m.refreshArt()
}

// refreshArt renders loaded posters that are on screen and not yet cached
// for the current size and theme.
func (m *Model) refreshArt() {
	if m.pool == nil || !m.ready {
		return
	}
	g := m.grid()
	shown := m.visible()
	keep := make(map[int]struct{}, len(shown))
	for _, movie := range shown {
		keep[movie.ID] = struct{}{}
		loader, ok := m.pool.Lookup(movie.ID)
		if !ok {
			continue
		}
		st := loader.State()
		if st.Phase != artwork.PhaseLoaded {
			continue
		}
		want := posterArt{url: loader.URL(), width: g.thumbW, height: g.thumbH, bg: m.theme.SurfaceAlt}
		if cached, ok := m.art[movie.ID]; ok && cached.sameInputs(want) {
			continue
		}
		want.rendered = renderPoster(st.Image, want.width, want.height, want.bg)
		m.art[movie.ID] = want
	}
	for id := range m.art {
		if _, ok := keep[id]; !ok {
			delete(m.art, id)
		}
	}
}

func (a posterArt) sameInputs(b posterArt) bool {
	return a.url == b.url && a.width == b.width && a.height == b.height && a.bg == b.bg
}

// Messages

type snapshotMsg state.Snapshot

type posterMsg struct {
	id    int
	state artwork.State
}

type fetchDoneMsg struct {
	err error
}

type filterMsg struct {
	gen   uint64
	query string
}

type logTickMsg time.Time

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func fetchCmd(ctx context.Context, store *state.Store, query string) tea.Cmd {
	return func() tea.Msg {
		err := store.FetchCatalog(ctx, query)
		if errors.Is(err, state.ErrStale) {
			// A newer fetch already won; nothing to reset.
			return nil
		}
		return fetchDoneMsg{err: err}
	}
}

func logTickCmd() tea.Cmd {
	return tea.Tick(LogRefreshInterval, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	defer m.unsub()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
