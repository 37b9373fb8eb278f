package picker

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/pixmark/internal/gallery"
)

var records = []gallery.ImageRecord{
	{ID: 1, FullURL: "https://cdn/1.jpg", User: "ann", Tags: "fox", Width: 100, Height: 50},
	{ID: 2, FullURL: "https://cdn/2.jpg", User: "bob", Tags: "owl", Width: 200, Height: 80},
	{ID: 3, WebformatURL: "https://cdn/3w.jpg", User: "cy", Tags: "cat", Width: 300, Height: 90},
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestChooseWithKeys(t *testing.T) {
	m, cmd := press(New(records), "down", "j", "k", "down", "down", "enter")
	if cmd == nil {
		t.Fatal("enter should quit")
	}
	got, err := m.Chosen()
	if err != nil {
		t.Fatalf("Chosen: %v", err)
	}
	if got.ID != 3 {
		t.Errorf("chose %d, want 3", got.ID)
	}
}

func TestCursorBounds(t *testing.T) {
	m, _ := press(New(records), "up", "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d", m.cursor)
	}
	m, _ = press(m, "down", "down", "down", "down")
	if m.cursor != 2 {
		t.Errorf("cursor = %d", m.cursor)
	}
}

func TestCancel(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m, cmd := press(New(records), k)
		if cmd == nil {
			t.Errorf("%s should quit", k)
		}
		if _, err := m.Chosen(); !errors.Is(err, ErrCancelled) {
			t.Errorf("%s: expected ErrCancelled, got %v", k, err)
		}
	}
}

func TestEnterOnEmptyList(t *testing.T) {
	m, cmd := press(New(nil), "enter")
	if cmd != nil {
		t.Error("enter on empty list should not quit")
	}
	if !strings.Contains(m.View(), "no results") {
		t.Error("expected empty message")
	}
}

func TestCopyURL(t *testing.T) {
	var copied string
	m := New(records, WithCopy(func(s string) error { copied = s; return nil }))
	m, _ = press(m, "down", "down", "y")
	if copied != "https://cdn/3w.jpg" {
		t.Errorf("copied %q", copied)
	}
	if !strings.Contains(m.View(), "copied https://cdn/3w.jpg") {
		t.Error("expected status line")
	}

	m = New(records, WithCopy(func(string) error { return errors.New("no clipboard") }))
	m, _ = press(m, "y")
	if !strings.Contains(m.View(), "copy failed") {
		t.Error("expected failure status")
	}
}

func TestScrolling(t *testing.T) {
	m := New(records)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 5})
	m = next.(Model)
	m, _ = press(m, "down", "down")
	if m.offset != 2 {
		t.Errorf("offset = %d", m.offset)
	}
	view := m.View()
	if strings.Contains(view, "ann") || !strings.Contains(view, "cy") {
		t.Errorf("unexpected window:\n%s", view)
	}
}

func TestRow(t *testing.T) {
	row := Row(records[1])
	for _, want := range []string{"2", "200x80", "bob", "owl"} {
		if !strings.Contains(row, want) {
			t.Errorf("row %q missing %q", row, want)
		}
	}
}
