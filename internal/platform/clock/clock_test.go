package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lectern/internal/platform/clock"
)

func TestSecondsTruncatesAndNormalizesToUTC(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("CET", 3600)
	c := clock.Func(func() time.Time {
		return time.Date(2026, 3, 1, 10, 0, 5, 900_000_000, loc)
	})
	got := clock.Seconds(c)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 5, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}
