package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/bombarena/internal/registry"
	"github.com/vovakirdan/bombarena/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 80
	sidebarWidth       = 22
	maxScores          = 100
	maxMatches         = 50
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextPage, k.PrevPage, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev page"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// scoreboardPage is one table: the top scores of a game, the match
// history or the per-strategy results.
type scoreboardPage struct {
	title   string
	columns []table.Column
	rows    []table.Row
	empty   string
}

// loadPages reads every page from store. A nil store yields empty pages.
func loadPages(ctx context.Context, store *storage.Store) []scoreboardPage {
	var pages []scoreboardPage

	for _, g := range registry.List() {
		page := scoreboardPage{
			title: g.Title,
			columns: []table.Column{
				{Title: "Rank", Width: 6},
				{Title: "Score", Width: 10},
				{Title: "Date", Width: 16},
			},
			empty: "No scores recorded yet.\nPlay a match to set a high score!",
		}
		if store != nil {
			scores, err := store.TopScores(g.ID, maxScores)
			if err == nil {
				for i, s := range scores {
					page.rows = append(page.rows, table.Row{
						fmt.Sprintf("#%d", i+1),
						fmt.Sprintf("%d", s.Score),
						s.CreatedAt.Format("Jan 02 15:04"),
					})
				}
			}
		}
		pages = append(pages, page)
	}

	matches := scoreboardPage{
		title: "Recent Matches",
		columns: []table.Column{
			{Title: "Date", Width: 12},
			{Title: "Rounds", Width: 7},
			{Title: "Winner", Width: 12},
			{Title: "End", Width: 13},
			{Title: "Seats", Width: 30},
		},
		empty: "No matches recorded yet.",
	}
	strategies := scoreboardPage{
		title: "Strategies",
		columns: []table.Column{
			{Title: "Strategy", Width: 12},
			{Title: "Games", Width: 7},
			{Title: "Wins", Width: 6},
			{Title: "Win %", Width: 7},
			{Title: "Avg score", Width: 10},
		},
		empty: "No matches recorded yet.",
	}
	if store != nil {
		if recent, err := store.RecentMatches(ctx, maxMatches); err == nil {
			for _, m := range recent {
				matches.rows = append(matches.rows, matchRow(m))
			}
		}
		if stats, err := store.StrategyStats(ctx); err == nil {
			for _, st := range stats {
				strategies.rows = append(strategies.rows, table.Row{
					st.Strategy,
					fmt.Sprintf("%d", st.Games),
					fmt.Sprintf("%d", st.Wins),
					fmt.Sprintf("%.0f%%", st.WinRate()*100),
					fmt.Sprintf("%.1f", st.AvgScore),
				})
			}
		}
	}

	return append(pages, matches, strategies)
}

// matchRow formats a match for the history table.
func matchRow(m storage.MatchRecord) table.Row {
	winner := "Draw"
	seats := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		seats = append(seats, p.Strategy)
		if p.Seat == m.WinnerSeat {
			winner = fmt.Sprintf("P%d %s", p.Seat, p.Strategy)
		}
	}
	return table.Row{
		m.CreatedAt.Format("Jan 02 15:04"),
		fmt.Sprintf("%d", m.Rounds),
		winner,
		m.EndReason,
		strings.Join(seats, ", "),
	}
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	pages       []scoreboardPage
	page        int
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		pages:       loadPages(context.Background(), store),
		keys:        DefaultScoreboardKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	return m
}

// createTable builds the table for the current page.
func (m *ScoreboardModel) createTable() table.Model {
	var (
		columns []table.Column
		rows    []table.Row
	)
	if m.page < len(m.pages) {
		columns = m.pages[m.page].columns
		rows = m.pages[m.page].rows
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *ScoreboardModel) turnPage(delta int) {
	if len(m.pages) == 0 {
		return
	}
	m.page = (m.page + delta + len(m.pages)) % len(m.pages)
	m.table = m.createTable()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextPage):
			m.turnPage(1)
			return m, nil

		case key.Matches(msg, m.keys.PrevPage):
			m.turnPage(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "SCOREBOARD"
	if m.page < len(m.pages) {
		title = "SCOREBOARD - " + m.pages[m.page].title
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if m.showSidebar {
		sidebar := boxStyle.Width(sidebarWidth).Render(m.renderPageList())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", boxStyle.Render(m.renderTableContent())))
	} else {
		b.WriteString(centerText(m.renderPageTabs(), m.width))
		b.WriteString("\n\n")
		b.WriteString(boxStyle.Render(m.renderTableContent()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderPageList lists the pages for the sidebar.
func (m ScoreboardModel) renderPageList() string {
	var sb strings.Builder
	sb.WriteString("Pages\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")

	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	for i, p := range m.pages {
		name := p.title
		if limit := sidebarWidth - 6; len(name) > limit {
			name = name[:limit-1] + "."
		}
		if i == m.page {
			sb.WriteString(active.Render("> " + name))
		} else {
			sb.WriteString("  " + name)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderPageTabs shows the current page between arrows on narrow screens.
func (m ScoreboardModel) renderPageTabs() string {
	if len(m.pages) == 0 {
		return ""
	}
	return fmt.Sprintf("< %s (%d/%d) >", m.pages[m.page].title, m.page+1, len(m.pages))
}

// renderTableContent renders the table or the page's empty message.
func (m ScoreboardModel) renderTableContent() string {
	if m.page >= len(m.pages) || len(m.pages[m.page].rows) == 0 {
		empty := "Nothing here yet."
		if m.page < len(m.pages) {
			empty = m.pages[m.page].empty
		}
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render(empty)
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
