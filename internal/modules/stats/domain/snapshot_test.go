package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAggregatesPerBook(t *testing.T) {
	t.Parallel()
	sessions := []SessionFact{
		{ID: "a", SourceID: "dune", CharsRead: 300, TotalReadingTime: 100, State: "finished"},
		{ID: "b", SourceID: "dune", CharsRead: 200, TotalReadingTime: 50, State: "reading"},
		{ID: "c", SourceID: "emma", CharsRead: 10, TotalReadingTime: 400, State: "finished"},
		{ID: "d", SourceID: "orphan", CharsRead: 5, TotalReadingTime: 1, State: "finished"},
	}
	books := []BookFact{
		{SourceID: "dune", Title: "Dune", CurrChars: 500, TotalChars: 1000, Percent: 50},
		{SourceID: "emma", Title: "Emma"},
		{SourceID: "unread", Title: "Unread"},
	}
	active := sessions[1]

	snap := Build(sessions, books, &active)

	assert.Equal(t, 4, snap.Sessions)
	assert.Equal(t, int64(551), snap.TotalReadingTime)
	assert.Equal(t, int64(515), snap.CharsRead)
	require.Len(t, snap.Books, 4)
	assert.Equal(t, "Emma", snap.Books[0].Title)
	assert.Equal(t, int64(400), snap.Books[0].ReadingTime)
	assert.Equal(t, "Dune", snap.Books[1].Title)
	assert.Equal(t, 2, snap.Books[1].Sessions)
	assert.Equal(t, "orphan", snap.Books[2].Title)
	assert.Equal(t, "Unread", snap.Books[3].Title)
	assert.Zero(t, snap.Books[3].Sessions)

	require.NotNil(t, snap.Active)
	assert.Equal(t, "Dune", snap.Active.Title)
	assert.Equal(t, "b", snap.Active.ID)
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()
	snap := Build(nil, nil, nil)
	assert.Zero(t, snap.Sessions)
	assert.Empty(t, snap.Books)
	assert.Nil(t, snap.Active)
}
