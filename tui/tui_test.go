package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []Item {
	return []Item{
		{Path: "in/a.jpg", Kind: "portrait", Temperature: "warm", Brightness: "mid", Mean: "#c8a082"},
		{Path: "in/b.jpg", Kind: "landscape", Temperature: "neutral", Brightness: "mid", Mean: "#3c9646"},
		{Path: "in/c.png", Kind: "night", Temperature: "cool", Brightness: "dark", Mean: "#0a145a"},
	}
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestToggleAndConfirm(t *testing.T) {
	m := press(t, New("Review", sampleItems()), space, down, down, space, enter)
	assert.True(t, m.Confirmed())
	assert.Equal(t, []string{"in/a.jpg", "in/c.png"}, m.Selected())
	assert.Contains(t, m.View(), "Enhancing 2 images")
}

func TestToggleAll(t *testing.T) {
	m := press(t, New("Review", sampleItems()), runeKey('a'))
	assert.Len(t, m.Selected(), 3)
	m = press(t, m, runeKey('a'))
	assert.Empty(t, m.Selected())
}

func TestFilterByKind(t *testing.T) {
	m := New("Review", sampleItems())
	// all -> portrait -> landscape
	m = press(t, m, runeKey('f'), runeKey('f'))
	require.Equal(t, []int{1}, m.visible())

	m = press(t, m, runeKey('a'))
	assert.Equal(t, []string{"in/b.jpg"}, m.Selected())
	assert.Contains(t, m.View(), "Showing: landscape")

	// Cursor cannot leave a one-item list.
	m = press(t, m, down, down)
	assert.Equal(t, 0, m.cursor)
}

func TestQuitSelectsNothing(t *testing.T) {
	m := press(t, New("Review", sampleItems()), space, esc)
	assert.False(t, m.Confirmed())
	assert.Nil(t, m.Selected())
	assert.Equal(t, "Goodbye!\n", m.View())
}

func TestViewDetails(t *testing.T) {
	items := sampleItems()
	items[0].Recipe = "portrait: saturation 1.10, contrast 1.05"
	items[0].Size = 2048
	v := New("Review", items).View()
	assert.Contains(t, v, "a.jpg")
	assert.Contains(t, v, "2.0 KB")
	assert.Contains(t, v, "recipe:")

	assert.Equal(t, "No images found!\n", New("Review", nil).View())
}

func TestContrastColor(t *testing.T) {
	tests := []struct {
		bg, want string
	}{
		{"#c8a082", "#000000"},
		{"#ffffff", "#000000"},
		{"#0a145a", "#ffffff"},
		{"#000000", "#ffffff"},
		{"", ""},
		{"teal", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, contrastColor(tt.bg), tt.bg)
	}

	assert.Contains(t, renderDetails(sampleItems()[2]), "#0a145a")
	assert.Equal(t, "teal", hexSwatch("teal"))
}
