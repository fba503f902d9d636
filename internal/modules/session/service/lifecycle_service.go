package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lectern/internal/modules/session/domain"
	sessionout "lectern/internal/modules/session/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/id"
	"lectern/internal/platform/logger"
	"lectern/internal/platform/reactive"
	"lectern/internal/platform/tx"
)

type Options struct {
	// MaxDelta caps the time credited for a single interval. Zero disables the cap.
	MaxDelta time.Duration
	Journal  sessionout.Journal
	Logger   *logger.Logger
}

type FinishResult struct {
	Session     domain.ReadingSession
	Applied     bool
	Discarded   bool
	JournalPath string
}

type RestoreResult struct {
	Active  *domain.ReadingSession
	Orphans int
}

// LifecycleService owns the active-session slot. Transitions are serialized,
// start from the stored record and compute the next state on a copy; the slot
// only moves after the store has acknowledged a write conditional on the
// record it started from.
type LifecycleService struct {
	mu     sync.Mutex
	active *domain.ReadingSession

	clock    clock.Clock
	ids      id.Generator
	store    sessionout.SessionStore
	books    sessionout.BookLedger
	tx       tx.Manager
	journal  sessionout.Journal
	log      *logger.Logger
	maxDelta time.Duration
	current  *reactive.Value[*domain.ReadingSession]
}

func NewLifecycleService(
	clock clock.Clock,
	ids id.Generator,
	store sessionout.SessionStore,
	books sessionout.BookLedger,
	txm tx.Manager,
	hub *reactive.Hub,
	opts Options,
) *LifecycleService {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &LifecycleService{
		clock:    clock,
		ids:      ids,
		store:    store,
		books:    books,
		tx:       txm,
		journal:  opts.Journal,
		log:      log,
		maxDelta: opts.MaxDelta,
		current:  reactive.NewValue[*domain.ReadingSession](hub, nil),
	}
}

// Start opens a session for sourceID. With a session already active it
// returns that session and false.
func (s *LifecycleService) Start(ctx context.Context, sourceID string) (domain.ReadingSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return domain.ReadingSession{}, false, err
	}
	if s.active != nil {
		return *s.active, false, nil
	}
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return domain.ReadingSession{}, false, fmt.Errorf("%w: source id is required", apperrors.ErrInvalidInput)
	}
	book, _, err := s.books.Lookup(ctx, sourceID)
	if err != nil {
		return domain.ReadingSession{}, false, err
	}
	session, err := domain.NewSession(s.ids.New(), sourceID, book.CurrChars, clock.Seconds(s.clock))
	if err != nil {
		return domain.ReadingSession{}, false, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	opened, err := s.store.Open(ctx, session)
	if err != nil {
		return domain.ReadingSession{}, false, err
	}
	if !opened {
		if err := s.reload(ctx); err != nil {
			return domain.ReadingSession{}, false, err
		}
		if s.active == nil {
			return domain.ReadingSession{}, false, errors.New("start session: active session changed concurrently, retry")
		}
		s.log.Debug("session: start lost to another runtime", "id", s.active.ID)
		return *s.active, false, nil
	}
	s.setActive(&session)
	s.log.Info("session: started", "id", session.ID, "source_id", sourceID, "initial_chars", session.InitialChars)
	return session, true, nil
}

func (s *LifecycleService) Pause(ctx context.Context) (domain.ReadingSession, bool, error) {
	return s.transition(ctx, "paused", func(session domain.ReadingSession, acc domain.Accounting) (domain.ReadingSession, bool) {
		return session.Pause(acc)
	})
}

func (s *LifecycleService) Resume(ctx context.Context) (domain.ReadingSession, bool, error) {
	return s.transition(ctx, "resumed", func(session domain.ReadingSession, acc domain.Accounting) (domain.ReadingSession, bool) {
		return session.Resume(acc.Now)
	})
}

func (s *LifecycleService) UpdateProgress(ctx context.Context, currChars int64) (domain.ReadingSession, bool, error) {
	if currChars < 0 {
		return domain.ReadingSession{}, false, fmt.Errorf("%w: character offset must be non-negative", apperrors.ErrInvalidInput)
	}
	return s.transition(ctx, "progress", func(session domain.ReadingSession, acc domain.Accounting) (domain.ReadingSession, bool) {
		return session.Progress(currChars, acc)
	})
}

func (s *LifecycleService) transition(
	ctx context.Context,
	event string,
	step func(domain.ReadingSession, domain.Accounting) (domain.ReadingSession, bool),
) (domain.ReadingSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return domain.ReadingSession{}, false, err
	}
	if s.active == nil {
		return domain.ReadingSession{}, false, nil
	}
	prev := *s.active
	next, changed := step(prev, s.accounting())
	if !changed {
		return prev, false, nil
	}
	written, err := s.store.Replace(ctx, prev, next)
	if err != nil {
		return prev, false, err
	}
	if !written {
		return s.lostRace(ctx, event, prev.ID)
	}
	s.setActive(&next)
	s.log.Debug("session: "+event, "id", next.ID, "curr_chars", next.CurrChars, "total_reading_time", next.TotalReadingTime)
	return next, true, nil
}

// lostRace reloads after a conditional write found the record changed by
// another runtime. The call becomes a no-op on the fresh state.
func (s *LifecycleService) lostRace(ctx context.Context, event, sessionID string) (domain.ReadingSession, bool, error) {
	s.log.Debug("session: "+event+" lost to another runtime", "id", sessionID)
	if err := s.reload(ctx); err != nil {
		return domain.ReadingSession{}, false, err
	}
	if s.active == nil {
		return domain.ReadingSession{}, false, nil
	}
	return *s.active, false, nil
}

// Finish closes the active session. A session without progress is deleted;
// otherwise its final interval is credited, the end time stamped and the
// book's position advanced in one transaction.
func (s *LifecycleService) Finish(ctx context.Context) (FinishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return FinishResult{}, err
	}
	if s.active == nil {
		return FinishResult{}, nil
	}
	session := *s.active
	if !session.HasProgress() {
		deleted, err := s.store.DeleteIf(ctx, session)
		if err != nil {
			return FinishResult{}, err
		}
		if !deleted {
			_, _, err := s.lostRace(ctx, "discard", session.ID)
			return FinishResult{}, err
		}
		s.setActive(nil)
		s.log.Info("session: discarded", "id", session.ID, "source_id", session.SourceID)
		return FinishResult{Session: session, Applied: true, Discarded: true}, nil
	}

	finished, _ := session.Finish(s.accounting())
	err := s.closeWithProgress(ctx, session, finished)
	if errors.Is(err, errChanged) {
		_, _, err := s.lostRace(ctx, "finish", session.ID)
		return FinishResult{}, err
	}
	if err != nil {
		return FinishResult{}, err
	}
	s.setActive(nil)
	s.log.Info("session: finished", "id", finished.ID, "source_id", finished.SourceID,
		"total_reading_time", finished.TotalReadingTime, "chars_read", finished.CharsRead())

	return FinishResult{Session: finished, Applied: true, JournalPath: s.writeJournal(ctx, finished)}, nil
}

// Current returns the active session as stored.
func (s *LifecycleService) Current(ctx context.Context) (domain.ReadingSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return domain.ReadingSession{}, false, err
	}
	if s.active == nil {
		return domain.ReadingSession{}, false, nil
	}
	return *s.active, true, nil
}

// Subscribe delivers the active session (nil when idle) on every delivery
// round of the hub.
func (s *LifecycleService) Subscribe(fn func(*domain.ReadingSession)) (cancel func()) {
	return s.current.Subscribe(fn)
}

func (s *LifecycleService) Get(ctx context.Context, sessionID string) (domain.ReadingSession, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *LifecycleService) List(ctx context.Context, filter sessionout.ListFilter) ([]domain.ReadingSession, error) {
	return s.store.List(ctx, filter)
}

// Restore rehydrates the slot from the store after a restart. The most recent
// open session created on this client becomes active; older ones are closed
// as orphans without crediting time past their last update.
func (s *LifecycleService) Restore(ctx context.Context) (RestoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open, err := s.store.List(ctx, sessionout.ListFilter{OpenOnly: true, LocalOnly: true})
	if err != nil {
		return RestoreResult{}, err
	}
	if len(open) == 0 {
		s.setActive(nil)
		return RestoreResult{}, nil
	}
	result := RestoreResult{}
	for _, orphan := range open[1:] {
		closed, err := s.closeOrphan(ctx, orphan)
		if err != nil {
			return result, err
		}
		if closed {
			result.Orphans++
		}
	}
	active := open[0]
	s.setActive(&active)
	result.Active = &active
	s.log.Info("session: restored", "id", active.ID, "orphans", result.Orphans)
	return result, nil
}

// reload replaces the slot with the durable state. Other runtimes sharing the
// database may have started, advanced or closed the session since it was
// cached; the newest open session created on this client is the active one.
func (s *LifecycleService) reload(ctx context.Context) error {
	open, err := s.store.List(ctx, sessionout.ListFilter{OpenOnly: true, LocalOnly: true, Limit: 1})
	if err != nil {
		return err
	}
	switch {
	case len(open) == 0:
		if s.active != nil {
			s.setActive(nil)
		}
	case s.active == nil || !s.active.Equal(open[0]):
		durable := open[0]
		s.setActive(&durable)
	}
	return nil
}

func (s *LifecycleService) closeOrphan(ctx context.Context, orphan domain.ReadingSession) (bool, error) {
	if !orphan.HasProgress() {
		deleted, err := s.store.DeleteIf(ctx, orphan)
		if err != nil || !deleted {
			return false, err
		}
		s.log.Warn("session: dropped orphan without progress", "id", orphan.ID)
		return true, nil
	}
	closed := orphan.CloseOrphan()
	err := s.closeWithProgress(ctx, orphan, closed)
	if errors.Is(err, errChanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.log.Warn("session: closed orphan", "id", closed.ID, "total_reading_time", closed.TotalReadingTime)
	return true, nil
}

var errChanged = errors.New("session changed concurrently")

func (s *LifecycleService) closeWithProgress(ctx context.Context, prev, session domain.ReadingSession) error {
	return s.tx.Within(ctx, func(ctx context.Context) error {
		written, err := s.store.Replace(ctx, prev, session)
		if err != nil {
			return err
		}
		if !written {
			return errChanged
		}
		return s.books.Advance(ctx, session.SourceID, session.CurrChars)
	})
}

func (s *LifecycleService) writeJournal(ctx context.Context, session domain.ReadingSession) string {
	if s.journal == nil {
		return ""
	}
	title := session.SourceID
	if book, ok, err := s.books.Lookup(ctx, session.SourceID); err == nil && ok && book.Title != "" {
		title = book.Title
	}
	path, err := s.journal.Write(ctx, session, title)
	if err != nil {
		s.log.Warn("session: journal write failed", "id", session.ID, "err", err)
		return ""
	}
	return path
}

func (s *LifecycleService) accounting() domain.Accounting {
	return domain.Accounting{Now: clock.Seconds(s.clock), MaxDelta: s.maxDelta}
}

func (s *LifecycleService) setActive(session *domain.ReadingSession) {
	s.active = session
	if session == nil {
		s.current.Set(nil)
		return
	}
	snapshot := *session
	s.current.Set(&snapshot)
}
