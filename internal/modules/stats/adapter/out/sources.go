package out

import (
	"context"
	"errors"

	connin "lectern/internal/modules/connectivity/port/in"
	libraryin "lectern/internal/modules/library/port/in"
	sessiondto "lectern/internal/modules/session/dto"
	sessionin "lectern/internal/modules/session/port/in"
	"lectern/internal/modules/stats/domain"
	statsout "lectern/internal/modules/stats/port/out"
	syncin "lectern/internal/modules/sync/port/in"
	apperrors "lectern/internal/platform/errors"
)

type SessionSource struct {
	sessions sessionin.Usecase
}

func NewSessionSource(sessions sessionin.Usecase) statsout.SessionSource {
	return SessionSource{sessions: sessions}
}

func (s SessionSource) All(ctx context.Context) ([]domain.SessionFact, error) {
	sessions, err := s.sessions.List(ctx, sessiondto.ListInput{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.SessionFact, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, sessionFact(session))
	}
	return out, nil
}

func (s SessionSource) Active(ctx context.Context) (*domain.SessionFact, error) {
	session, err := s.sessions.Current(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fact := sessionFact(session)
	return &fact, nil
}

func sessionFact(session sessiondto.SessionOutput) domain.SessionFact {
	return domain.SessionFact{
		ID:               session.ID,
		SourceID:         session.SourceID,
		CharsRead:        session.CharsRead,
		TotalReadingTime: session.TotalReadingTime,
		State:            session.State,
	}
}

type BookSource struct {
	library libraryin.Usecase
}

func NewBookSource(library libraryin.Usecase) statsout.BookSource {
	return BookSource{library: library}
}

func (b BookSource) All(ctx context.Context) ([]domain.BookFact, error) {
	books, err := b.library.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BookFact, 0, len(books))
	for _, book := range books {
		out = append(out, domain.BookFact{
			SourceID:   book.SourceID,
			Title:      book.Title,
			CurrChars:  book.CurrChars,
			TotalChars: book.TotalChars,
			Percent:    book.Percent,
		})
	}
	return out, nil
}

type SyncSource struct {
	sync syncin.Usecase
}

func NewSyncSource(sync syncin.Usecase) statsout.SyncSource {
	return SyncSource{sync: sync}
}

func (s SyncSource) Current(ctx context.Context) (domain.SyncLine, error) {
	status, err := s.sync.Status(ctx)
	if err != nil {
		return domain.SyncLine{}, err
	}
	return domain.SyncLine{
		IsSyncing:  status.IsSyncing,
		Error:      status.Error,
		LastSyncAt: status.LastSyncAt,
		Pending:    status.Pending,
	}, nil
}

type ConnectivitySource struct {
	connectivity connin.Usecase
}

func NewConnectivitySource(connectivity connin.Usecase) statsout.ConnectivitySource {
	return ConnectivitySource{connectivity: connectivity}
}

func (c ConnectivitySource) State() string {
	return c.connectivity.Status().State
}
