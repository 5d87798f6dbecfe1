package tui

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"ytlink/internal/config"
	"ytlink/internal/linkdb"
	"ytlink/internal/youtube"
)

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestRecognizePage(t *testing.T) {
	t.Run("ShowsDerivedLinks", func(t *testing.T) {
		var m tea.Model = newRecognizePage(youtube.Options{Secure: true}, youtube.VariantHigh, nil)
		m = typeText(m, "youtu.be/cD4TAgdS_Xw")

		view := m.View()
		for _, want := range []string{
			"cD4TAgdS_Xw",
			"https://www.youtube.com/watch?v=cD4TAgdS_Xw",
			"https://i.ytimg.com/vi/cD4TAgdS_Xw/hqdefault.jpg",
		} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
	})

	t.Run("ReportsInvalidCharacters", func(t *testing.T) {
		var m tea.Model = newRecognizePage(youtube.Options{}, youtube.VariantDefault, nil)
		m = typeText(m, "youtu.be/x<b>")
		if !strings.Contains(m.View(), "cannot appear in a URL") {
			t.Error("expected invalid character message")
		}
	})

	t.Run("ToggleSecure", func(t *testing.T) {
		var m tea.Model = newRecognizePage(youtube.Options{}, youtube.VariantDefault, nil)
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		if !m.(recognizePage).opts.Secure {
			t.Error("expected secure to be toggled on")
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
		if !m.(recognizePage).opts.DisableSuggestions {
			t.Error("expected suggestions to be toggled off")
		}
	})

	t.Run("EnterSaves", func(t *testing.T) {
		var saved youtube.Recognized
		save := func(r youtube.Recognized, url string) error {
			saved = r
			return nil
		}
		var m tea.Model = newRecognizePage(youtube.Options{}, youtube.VariantDefault, save)
		m = typeText(m, "https://www.youtube.com/shorts/abcdefghijk")
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if saved.ID != "abcdefghijk" || saved.Domain != youtube.CanonicalDomain {
			t.Errorf("unexpected saved value: %+v", saved)
		}
		if !strings.Contains(m.(recognizePage).status, "Saved abcdefghijk") {
			t.Errorf("unexpected status: %q", m.(recognizePage).status)
		}
	})

	t.Run("EnterWithoutMatch", func(t *testing.T) {
		called := false
		save := func(youtube.Recognized, string) error {
			called = true
			return errors.New("should not be called")
		}
		var m tea.Model = newRecognizePage(youtube.Options{}, youtube.VariantDefault, save)
		m = typeText(m, "example.com")
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if called {
			t.Error("save should not run for unrecognized input")
		}
		if m.(recognizePage).err == nil {
			t.Error("expected an error")
		}
	})
}

func TestRecognizePageForwardsCursorBlink(t *testing.T) {
	m := newRecognizePage(youtube.Options{}, youtube.VariantDefault, nil)
	blink := m.Init()
	if blink == nil {
		t.Fatal("expected a blink command from Init")
	}
	if _, cmd := m.Update(blink()); cmd == nil {
		t.Error("expected the input to schedule the next blink")
	}
}

func TestRootPageNavigation(t *testing.T) {
	items := []linkdb.Link{
		{VideoID: "aaaaaaaaaaa", Origin: "cli", SourceURL: "youtu.be/aaaaaaaaaaa", SeenCount: 1, Title: sql.NullString{String: "First", Valid: true}},
		{VideoID: "bbbbbbbbbbb", Origin: "tui", SourceURL: "youtube.com/embed/bbbbbbbbbbb", SeenCount: 3},
	}
	st := store{load: func() ([]linkdb.Link, error) { return items, nil }}
	var m tea.Model = newRootPage(config.Default(), st)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Fatal("expected navigation command")
	}
	m, _ = m.Update(cmd())
	if m.(rootPage).viewMode != historyView {
		t.Fatalf("expected history view")
	}
	view := m.View()
	if !strings.Contains(view, "aaaaaaaaaaa") || !strings.Contains(view, "bbbbbbbbbbb") {
		t.Errorf("expected history rows in view:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected navigation command")
	}
	m, _ = m.Update(cmd())
	root := m.(rootPage)
	if root.viewMode != recognizeView {
		t.Fatalf("expected recognize view")
	}
	if got := root.recognizePage.input.Value(); got != "youtube.com/embed/bbbbbbbbbbb" {
		t.Errorf("input = %q", got)
	}
}

func TestHistoryPageLoadError(t *testing.T) {
	var m tea.Model = historyPage{load: func() ([]linkdb.Link, error) { return nil, errors.New("boom") }}
	m, _ = m.Update(goToHistoryMsg{})
	if !strings.Contains(m.View(), "boom") {
		t.Error("expected load error in view")
	}
}
