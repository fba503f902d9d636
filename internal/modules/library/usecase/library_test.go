package usecase_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libraryout "lectern/internal/modules/library/adapter/out"
	"lectern/internal/modules/library/dto"
	libraryin "lectern/internal/modules/library/port/in"
	"lectern/internal/modules/library/service"
	"lectern/internal/modules/library/usecase"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/sqlitedb"
)

func newLibrary(t *testing.T, now *time.Time) libraryin.Usecase {
	t.Helper()
	ctx := context.Background()
	db, err := sqlitedb.Open(ctx, filepath.Join(t.TempDir(), "lectern.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := libraryout.NewSQLiteBookStore(ctx, db, nil)
	require.NoError(t, err)
	clk := clock.Func(func() time.Time { return *now })
	return usecase.NewInteractor(service.NewBookService(clk, store))
}

func TestAddBookKeepsPositionOnMetadataRefresh(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 0, 0, 250, time.UTC)
	uc := newLibrary(t, &now)
	ctx := context.Background()

	added, err := uc.AddBook(ctx, dto.AddBookInput{SourceID: "dune", Title: "Dune", CurrChars: 1200, TotalChars: 4800})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, added.Percent, 0.001)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), added.UpdatedAt)

	now = now.Add(time.Minute)
	refreshed, err := uc.AddBook(ctx, dto.AddBookInput{SourceID: "dune", Title: "Dune (2nd ed.)"})
	require.NoError(t, err)
	assert.Equal(t, "Dune (2nd ed.)", refreshed.Title)
	assert.Equal(t, int64(1200), refreshed.CurrChars)
	assert.Equal(t, int64(4800), refreshed.TotalChars)

	books, err := uc.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
}

func TestUpdatePositionAndLookupErrors(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	uc := newLibrary(t, &now)
	ctx := context.Background()

	_, err := uc.GetBook(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = uc.UpdatePosition(ctx, dto.UpdatePositionInput{SourceID: "missing", CurrChars: 3})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = uc.AddBook(ctx, dto.AddBookInput{SourceID: " "})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = uc.AddBook(ctx, dto.AddBookInput{SourceID: "emma"})
	require.NoError(t, err)
	_, err = uc.UpdatePosition(ctx, dto.UpdatePositionInput{SourceID: "emma", CurrChars: -1})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	moved, err := uc.UpdatePosition(ctx, dto.UpdatePositionInput{SourceID: "emma", CurrChars: 640})
	require.NoError(t, err)
	assert.Equal(t, int64(640), moved.CurrChars)
	assert.Equal(t, "emma", moved.Title)
}
