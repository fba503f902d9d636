package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lectern/internal/modules/library/domain"
)

func TestBookValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, domain.Book{SourceID: "b1", CurrChars: 10, TotalChars: 100}.Validate())
	assert.Error(t, domain.Book{SourceID: "  "}.Validate())
	assert.Error(t, domain.Book{SourceID: "b1", CurrChars: -1}.Validate())
	assert.Error(t, domain.Book{SourceID: "b1", TotalChars: -5}.Validate())
}

func TestBookPercentClampsAndHandlesUnknownLength(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, domain.Book{SourceID: "b1", CurrChars: 40}.Percent())
	assert.InDelta(t, 25.0, domain.Book{SourceID: "b1", CurrChars: 25, TotalChars: 100}.Percent(), 0.001)
	assert.Equal(t, 100.0, domain.Book{SourceID: "b1", CurrChars: 150, TotalChars: 100}.Percent())
}
