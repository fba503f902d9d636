package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderThenParseKeepsMetaAndBody(t *testing.T) {
	t.Parallel()
	note := Note{
		Meta: map[string]any{"id": "s-1", "total_reading_time": 100},
		Body: "# Reading session\n\n- Book: Dune\n",
	}
	rendered, err := note.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, "total_reading_time: 100\n")

	parsed, err := Parse(rendered)
	require.NoError(t, err)
	assert.Equal(t, "s-1", parsed.Meta["id"])
	assert.Equal(t, 100, parsed.Meta["total_reading_time"])
	assert.Equal(t, note.Body, parsed.Body)
}

func TestParseWithoutFrontmatter(t *testing.T) {
	t.Parallel()
	parsed, err := Parse("plain text")
	require.NoError(t, err)
	assert.Empty(t, parsed.Meta)
	assert.Equal(t, "plain text", parsed.Body)
}

func TestParseRejectsUnterminatedFrontmatter(t *testing.T) {
	t.Parallel()
	_, err := Parse("---\nid: x\nbody")
	require.Error(t, err)
}
