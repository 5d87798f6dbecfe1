package tui

import (
	"fmt"
	"strings"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ytlink/internal/youtube"
)

type recognizePage struct {
	width   int
	height  int
	input   textinput.Model
	opts    youtube.Options
	variant youtube.Variant
	save    func(r youtube.Recognized, url string) error
	status  string
	err     error
}

func newRecognizePage(opts youtube.Options, variant youtube.Variant, save func(youtube.Recognized, string) error) recognizePage {
	return recognizePage{
		input:   initializeInput(),
		opts:    opts,
		variant: variant,
		save:    save,
	}
}

func initializeInput() textinput.Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	input.PlaceholderStyle.Width(40)
	input.Width = 60
	input.CharLimit = 2048
	input.Focus()

	return input
}

func (m recognizePage) Init() tea.Cmd {
	return textinput.Blink
}

func (m recognizePage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyTab:
			return m, func() tea.Msg { return goToHistoryMsg{} }
		case tea.KeyEnter:
			m.saveCurrent()
			return m, nil
		case tea.KeyCtrlS:
			m.opts.Secure = !m.opts.Secure
			return m, nil
		case tea.KeyCtrlR:
			m.opts.DisableSuggestions = !m.opts.DisableSuggestions
			return m, nil
		}
		m.status = ""
		m.err = nil
		updated, cmd := m.input.Update(msg)
		m.input = updated
		return m, cmd
	case goToRecognizeMsg:
		if msg.url != "" {
			m.input.SetValue(msg.url)
			m.input.CursorEnd()
		}
		m.input.Focus()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *recognizePage) saveCurrent() {
	value := m.input.Value()
	r, ok := youtube.Recognize(value)
	if !ok {
		m.status = ""
		m.err = fmt.Errorf("nothing to save, the link was not recognized")
		return
	}
	if m.save == nil {
		m.err = fmt.Errorf("history is not available")
		return
	}
	if err := m.save(r, value); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = fmt.Sprintf("Saved %s to history", r.ID)
}

func (m recognizePage) result() string {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Paste a link to see its video ID")
	}
	if youtube.HasInvalidCharacters(value) {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("The input contains characters that cannot appear in a URL")
	}
	ls, ok := youtube.Links(value, m.opts)
	if !ok {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("Not a recognized YouTube link")
	}

	label := lipgloss.NewStyle().Foreground(darkBlue()).Width(11)
	row := func(name, value string) string {
		return label.Render(name) + " " + value
	}
	id := lipgloss.NewStyle().Bold(true).Foreground(lightBlue()).Render(string(ls.ID))
	return lipgloss.JoinVertical(
		lipgloss.Left,
		row("Video ID", id),
		row("Domain", ls.Domain),
		row("Watch", ls.Watch),
		row("Short", ls.Short),
		row("Embed", ls.Embed),
		row("Thumbnail", ls.Thumbnails[string(m.variant)]),
	)
}

func (m recognizePage) View() string {
	instructions := lipgloss.NewStyle().
		MarginTop(min(m.height/4, 6)).
		MarginBottom(1).
		Render("Enter a YouTube link below")

	input := lipgloss.NewStyle().
		Width(62).
		AlignHorizontal(lipgloss.Left).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("15")).
		Render(m.input.View())

	scheme := "http"
	if m.opts.Secure {
		scheme = "https"
	}
	suggestions := "on"
	if m.opts.DisableSuggestions {
		suggestions = "off"
	}
	settings := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(fmt.Sprintf("scheme: %s • suggestions: %s", scheme, suggestions))

	var message string
	if m.err != nil {
		message = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Render(fmt.Sprintf("Error: %v", m.err))
	} else if m.status != "" {
		message = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Render(m.status)
	}

	helpInfo := helpBar([]string{
		"Enter: save to history",
		"Ctrl+S: toggle https",
		"Ctrl+R: toggle suggestions",
		"Tab: history",
		"Esc: quit",
	})

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		renderMenu(0, m.width),
		instructions,
		input,
		settings,
		lipgloss.NewStyle().MarginTop(1).Render(m.result()),
		message,
		lipgloss.NewStyle().MarginTop(2).Render(helpInfo),
	)

	return pageLayout(content)
}
