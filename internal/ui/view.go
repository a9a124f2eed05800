package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/marquee/internal/artwork"
	"github.com/five82/marquee/internal/catalog"
	"github.com/five82/marquee/internal/logtail"
	"github.com/five82/marquee/internal/tmdb"
)

// renderMain stacks header, filter bar, body, detail line and command bar.
func (m Model) renderMain() string {
	styles := m.theme.Styles()
	bodyHeight := maxInt(1, m.height-chromeRows)

	var body string
	if m.showLogs {
		body = m.renderLogs(styles, bodyHeight)
	} else {
		body = m.renderBody(styles, bodyHeight)
	}
	body = lipgloss.NewStyle().
		Width(m.width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(styles),
		m.input.View(),
		body,
		m.renderDetail(styles),
		m.renderCommandBar(styles),
	)
}

func (m Model) renderHeader(styles Styles) string {
	snap := m.snapshot
	parts := []string{styles.Logo.Render("marquee")}

	if q := snap.FetchQuery; q != "" {
		parts = append(parts, styles.AccentText.Render(fmt.Sprintf("%q", q)))
	}
	if snap.HasCatalog {
		count := fmt.Sprintf("%d titles", len(snap.Catalog))
		if snap.Query != "" {
			count = fmt.Sprintf("%d of %d titles", len(snap.Filtered), len(snap.Catalog))
		}
		parts = append(parts, styles.Text.Render(count))
	}

	switch {
	case snap.Fetching:
		parts = append(parts, styles.InfoText.Render(m.spinner.View()+" fetching"))
	case snap.LastError != nil:
		msg := "fetch failed: " + oneLine(snap.LastError.Error())
		if snap.ConsecutiveFailures > 1 {
			msg = fmt.Sprintf("%s (x%d)", msg, snap.ConsecutiveFailures)
		}
		parts = append(parts, styles.DangerText.Render(truncate(msg, maxInt(10, m.width/2))))
	case !snap.LastUpdated.IsZero():
		parts = append(parts, styles.MutedText.Render("updated "+snap.LastUpdated.Format("15:04:05")))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderBody(styles Styles, height int) string {
	snap := m.snapshot
	switch {
	case !snap.HasCatalog && snap.Fetching:
		return m.centered(styles.MutedText.Render(m.spinner.View()+" Fetching catalog..."), height)
	case !snap.HasCatalog && snap.LastError != nil:
		return m.centered(styles.DangerText.Render("No catalog yet. Press r to retry."), height)
	case !snap.HasCatalog:
		return ""
	case snap.IsEmpty() && catalog.Normalize(snap.Query) != "":
		msg := fmt.Sprintf("No titles match %q", catalog.Normalize(snap.Query))
		return m.centered(styles.MutedText.Render(msg), height)
	case snap.IsEmpty():
		return m.centered(styles.MutedText.Render("The search returned no titles"), height)
	}
	return m.renderGrid(styles)
}

func (m Model) centered(content string, height int) string {
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderGrid(styles Styles) string {
	g := m.grid()
	items := m.snapshot.Filtered
	_, start, end := g.window(len(items), m.selected, m.offset)

	card := lipgloss.NewStyle().PaddingRight(cardPadX).PaddingBottom(cardPadY - 1)
	rows := make([]string, 0, g.rows)
	for rowStart := start; rowStart < end; rowStart += g.cols {
		rowEnd := minInt(end, rowStart+g.cols)
		cards := make([]string, 0, g.cols)
		for i := rowStart; i < rowEnd; i++ {
			cards = append(cards, card.Render(m.renderCard(styles, g, items[i], i == m.selected)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderCard(styles Styles, g gridLayout, movie tmdb.Movie, selected bool) string {
	titleStyle := styles.Text
	if selected {
		titleStyle = styles.Selected
	}
	title := titleStyle.Width(g.thumbW).Render(truncate(movie.Title, g.thumbW))
	return lipgloss.JoinVertical(lipgloss.Left, m.renderArtwork(styles, g, movie.ID), title)
}

// renderArtwork returns the poster for id, or a placeholder describing the
// loader's phase.
func (m Model) renderArtwork(styles Styles, g gridLayout, id int) string {
	placeholder := styles.Placeholder
	if m.pool == nil {
		return renderPlaceholder("", g.thumbW, g.thumbH, placeholder)
	}
	loader, ok := m.pool.Lookup(id)
	if !ok {
		return renderPlaceholder(m.spinner.View(), g.thumbW, g.thumbH, placeholder)
	}
	st := loader.State()
	if st.Phase == artwork.PhaseLoaded {
		want := posterArt{url: loader.URL(), width: g.thumbW, height: g.thumbH, bg: m.theme.SurfaceAlt}
		if cached, ok := m.art[id]; ok && cached.sameInputs(want) {
			return cached.rendered
		}
		return renderPoster(st.Image, want.width, want.height, want.bg)
	}
	if st.Phase.Normalize() == artwork.PhaseFailed && !st.Missing() {
		placeholder = placeholder.Foreground(lipgloss.Color(m.theme.Danger))
	}
	return renderPlaceholder(placeholderLabel(st, m.spinner.View()), g.thumbW, g.thumbH, placeholder)
}

func (m Model) renderDetail(styles Styles) string {
	items := m.snapshot.Filtered
	if len(items) == 0 || m.selected >= len(items) {
		return ""
	}
	movie := items[m.selected]
	title := styles.AccentText.Bold(true).Render(truncate(movie.Title, maxInt(10, m.width/3)))
	room := m.width - lipgloss.Width(title) - 3
	overview := styles.MutedText.Render(clip(oneLine(movie.Overview), room))
	return " " + title + "  " + overview
}

func (m Model) renderCommandBar(styles Styles) string {
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning))
	parts := make([]string, 0, 6)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+h.Desc)
	}
	return styles.Footer.Width(m.width).Render(strings.Join(parts, "  "))
}

// renderLogs shows the tail of the log file, newest at the bottom.
func (m Model) renderLogs(styles Styles, height int) string {
	if m.logFile == "" {
		return styles.MutedText.Render("Logging to a file is disabled.")
	}
	if m.logErr != nil {
		return styles.DangerText.Render("read log: " + oneLine(m.logErr.Error()))
	}
	lines := m.logLines
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, formatLogLine(styles, logtail.Parse(line), m.width))
	}
	return strings.Join(out, "\n")
}

func formatLogLine(styles Styles, e logtail.Entry, width int) string {
	if e.Level == "" {
		return styles.Text.Render(clip(e.Message, width))
	}
	stamp := e.Time
	if i := strings.IndexByte(stamp, 'T'); i >= 0 && len(stamp) >= i+9 {
		stamp = stamp[i+1 : i+9]
	}
	level := strings.ToUpper(e.Level)
	if len(level) > 4 {
		level = level[:4]
	}

	fields := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		fields = append(fields, f.Key+"="+f.Value)
	}
	used := len(stamp) + 1 + 4 + 1
	msg := clip(e.Message, width-used)
	rest := clip(strings.Join(fields, " "), width-used-len([]rune(msg))-1)

	return styles.FaintText.Render(stamp) + " " +
		styles.LevelStyle(e.Level).Render(fmt.Sprintf("%-4s", level)) + " " +
		styles.Text.Render(msg) + " " +
		styles.MutedText.Render(rest)
}
