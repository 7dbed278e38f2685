package viz

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(t *testing.T, m tea.Model, keys ...string) tea.Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestInteractivePickPreset(t *testing.T) {
	app := NewInteractiveApp(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !strings.Contains(app.View(), "dense") {
		t.Fatal("menu does not list presets")
	}

	// Presets are sorted: default, dense, ...
	m := press(t, app, "j", "enter").(model)
	if m.state != stateConfig || m.selected != "dense" {
		t.Fatalf("state = %d selected = %q, want config for dense", m.state, m.selected)
	}
	count := m.cfg.Field.Count

	m = press(t, m, "l", "l").(model)
	if got := m.cfg.Field.Count; got != count+10 {
		t.Errorf("count after two steps = %d, want %d", got, count+10)
	}

	m = press(t, m, "enter", "backspace", "4", "2", "enter").(model)
	if m.editing {
		t.Error("still editing after enter")
	}

	m = press(t, m, "s").(model)
	if m.state != stateSim {
		t.Fatalf("state = %d after start, want sim", m.state)
	}
	if !strings.Contains(m.View(), "DENSE") {
		t.Error("live view header missing")
	}
}

func TestInteractiveEditValue(t *testing.T) {
	app := NewInteractiveApp(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := press(t, app, "enter").(model)

	m.editing, m.editBuf = true, ""
	m = press(t, m, "4", "2", "x", "enter").(model)
	if got := m.cfg.Field.Count; got != 42 {
		t.Errorf("count = %d, want 42", got)
	}

	m = press(t, m, "esc").(model)
	if m.state != stateMenu {
		t.Errorf("esc left state %d, want menu", m.state)
	}
}
