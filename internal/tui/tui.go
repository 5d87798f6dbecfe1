package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ytlink/internal/config"
	"ytlink/internal/linkdb"
	"ytlink/internal/youtube"
)

type viewMode int

const (
	recognizeView viewMode = iota
	historyView
)

// Navigation messages
type goToHistoryMsg struct{}
type goToRecognizeMsg struct {
	url string
}

type rootPage struct {
	viewMode      viewMode
	recognizePage recognizePage
	historyPage   historyPage
	width         int
	height        int
	err           error
}

// store is the persistence used by the pages; nil funcs disable the feature.
type store struct {
	save func(r youtube.Recognized, url string) error
	load func() ([]linkdb.Link, error)
}

func newStore(dbPath string) store {
	return store{
		save: func(r youtube.Recognized, url string) error {
			db, err := linkdb.OpenAndInit(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return linkdb.UpsertLink(ctx, db, linkdb.LinkInsert{Recognized: r, SourceURL: strings.TrimSpace(url), Origin: "tui"})
		},
		load: func() ([]linkdb.Link, error) {
			db, err := linkdb.OpenAndInit(dbPath)
			if err != nil {
				return nil, err
			}
			defer db.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return linkdb.GetSince(ctx, db, time.Time{}, "", 200)
		},
	}
}

func newRootPage(cfg config.AppConfig, st store) rootPage {
	return rootPage{
		recognizePage: newRecognizePage(cfg.BuildOptions(), cfg.ThumbnailVariant(), st.save),
		historyPage:   historyPage{load: st.load},
	}
}

func Run(ctx context.Context, cfg config.AppConfig) error {
	m := newRootPage(cfg, newStore(cfg.Database.Path))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	return nil
}

func (m rootPage) Init() tea.Cmd {
	return m.recognizePage.Init()
}

func (m rootPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case goToHistoryMsg:
		m.viewMode = historyView
		m.historyPage, cmd = update[historyPage](m.historyPage, msg)
		return m, cmd
	case goToRecognizeMsg:
		m.viewMode = recognizeView
		m.recognizePage, cmd = update[recognizePage](m.recognizePage, msg)
		return m, cmd
	case tea.WindowSizeMsg:
		var cmds []tea.Cmd

		m.recognizePage, cmd = update[recognizePage](m.recognizePage, msg)
		cmds = append(cmds, cmd)

		m.historyPage, cmd = update[historyPage](m.historyPage, msg)
		cmds = append(cmds, cmd)

		m.width = msg.Width - 4
		m.height = msg.Height - 4

		return m, tea.Batch(cmds...)
	}

	switch m.viewMode {
	case recognizeView:
		m.recognizePage, cmd = update[recognizePage](m.recognizePage, msg)
	case historyView:
		m.historyPage, cmd = update[historyPage](m.historyPage, msg)
	}
	return m, cmd
}

func (m rootPage) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v", m.err)
	}

	switch m.viewMode {
	case historyView:
		return m.historyPage.View()
	case recognizeView:
		return m.recognizePage.View()
	default:
		return "Unknown View"
	}
}

func update[T any](model tea.Model, msg tea.Msg) (T, tea.Cmd) {
	newModel, cmd := model.Update(msg)
	return newModel.(T), cmd
}
