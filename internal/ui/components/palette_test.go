package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(cmds []Command) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Name)
	}
	return out
}

func TestMatchingByVerbPrefix(t *testing.T) {
	t.Parallel()
	assert.Len(t, matching(""), len(Commands))
	assert.Equal(t, []string{"pause", "progress", "presence"}, names(matching("p")))
	assert.Equal(t, []string{"progress"}, names(matching("pro")))
	assert.Equal(t, []string{"progress"}, names(matching("progress 12")))
	assert.Empty(t, matching("pro 12"))
}

func TestUsage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "usage: progress <chars>", Usage("progress"))
	assert.Equal(t, "usage: finish", Usage("finish"))
	assert.Equal(t, "unknown command: shelve", Usage("shelve"))
}

func TestPaletteTabCompletesAndSubmits(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	require.True(t, p.Visible())

	for _, r := range "fin" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "finish ", p.input.Value())

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, p.Visible())
	assert.Equal(t, PaletteSubmitMsg{Input: "finish"}, cmd())
}

func TestPaletteEscCancels(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.False(t, p.Visible())
	assert.Equal(t, PaletteCancelMsg{}, cmd())
}
