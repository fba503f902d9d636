package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "the-left-hand-of-darkness", Make("  The Left Hand of Darkness! "))
	assert.Equal(t, "untitled", Make("???"))
	long := Make(strings.Repeat("chapter ", 20))
	assert.LessOrEqual(t, len(long), 48)
	assert.False(t, strings.HasSuffix(long, "-"))
}
