package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ytlink/internal/linkdb"
)

type historyPage struct {
	width  int
	height int
	load   func() ([]linkdb.Link, error)
	items  []linkdb.Link
	cursor int
	err    error
}

func (m historyPage) Init() tea.Cmd {
	return nil
}

func (m historyPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "1":
			return m, func() tea.Msg { return goToRecognizeMsg{} }
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "j", "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "g":
			m.cursor = 0
		case "G":
			m.cursor = max(0, len(m.items)-1)
		case "enter":
			if m.cursor < len(m.items) {
				url := m.items[m.cursor].SourceURL
				return m, func() tea.Msg { return goToRecognizeMsg{url: url} }
			}
		}
	case goToHistoryMsg:
		m.reload()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m *historyPage) reload() {
	if m.load == nil {
		m.items, m.err = nil, fmt.Errorf("history is not available")
		return
	}
	m.items, m.err = m.load()
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m historyPage) View() string {
	var body string
	switch {
	case m.err != nil:
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(fmt.Sprintf("Error while loading history: %v", m.err))
	case len(m.items) == 0:
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("No links saved yet")
	default:
		body = m.renderTable()
	}

	helpInfo := helpBar([]string{
		"j/k: move",
		"Enter: open in recognizer",
		"Tab: recognizer",
		"Esc: quit",
	})

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		renderMenu(1, m.width),
		lipgloss.NewStyle().MarginTop(1).Render(body),
		lipgloss.NewStyle().MarginTop(2).Render(helpInfo),
	)
	return pageLayout(content)
}

func (m historyPage) renderTable() string {
	urlWidth := max(20, m.width-60)
	rows := make([][]string, 0, len(m.items))
	for _, it := range m.items {
		title := ""
		if it.Title.Valid {
			title = it.Title.String
		}
		rows = append(rows, []string{
			it.VideoID,
			truncateString(it.Origin, 12),
			strconv.FormatInt(it.SeenCount, 10),
			truncateString(title, 24),
			truncateString(it.SourceURL, urlWidth),
		})
	}

	cursor := m.cursor
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("Video", "Origin", "Seen", "Title", "URL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(darkBlue())
			}
			if row == cursor {
				return style.Foreground(lightBlue()).Bold(true)
			}
			return style
		}).
		Render()
}
