package service

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"lectern/internal/modules/sync/domain"
	syncout "lectern/internal/modules/sync/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logger"
	"lectern/internal/platform/reactive"
)

// Reconciler brings the local store and the hub to the same state. Only one
// run is in flight at a time; all network round trips finish before anything
// local is written.
type Reconciler struct {
	clock    clock.Clock
	remote   syncout.Remote
	local    syncout.LocalStore
	active   syncout.ActiveSession
	gate     syncout.Gate
	activity syncout.ActivityStore
	log      *logger.Logger

	syncing atomic.Bool
	status  *reactive.Value[domain.Status]
}

func NewReconciler(
	clock clock.Clock,
	remote syncout.Remote,
	local syncout.LocalStore,
	active syncout.ActiveSession,
	gate syncout.Gate,
	activity syncout.ActivityStore,
	hub *reactive.Hub,
	log *logger.Logger,
) *Reconciler {
	if log == nil {
		log = logger.Discard()
	}
	return &Reconciler{
		clock:    clock,
		remote:   remote,
		local:    local,
		active:   active,
		gate:     gate,
		activity: activity,
		log:      log,
		status:   reactive.NewValue(hub, domain.Status{}),
	}
}

func (r *Reconciler) Status() domain.Status {
	return r.status.Get()
}

func (r *Reconciler) Subscribe(fn func(domain.Status)) (cancel func()) {
	return r.status.Subscribe(fn)
}

func (r *Reconciler) Pending(ctx context.Context) (int, error) {
	return r.local.Pending(ctx)
}

func (r *Reconciler) Activity(ctx context.Context, limit int) ([]domain.Activity, error) {
	return r.activity.Tail(ctx, syncout.ActivityQuery{Limit: limit})
}

// Sync runs one reconciliation. A call while another run is in flight fails
// with apperrors.ErrSyncInProgress and leaves the status untouched.
func (r *Reconciler) Sync(ctx context.Context) (domain.Result, error) {
	if !r.syncing.CompareAndSwap(false, true) {
		return domain.Result{}, apperrors.ErrSyncInProgress
	}
	defer r.syncing.Store(false)

	if err := r.gate.Check(); err != nil {
		r.finish(ctx, domain.Result{}, err, domain.ActivitySyncSkipped)
		return domain.Result{}, err
	}

	r.update(func(s *domain.Status) {
		s.IsSyncing = true
		s.Error = ""
	})
	result, err := r.run(ctx)
	if err != nil {
		r.finish(ctx, result, err, domain.ActivitySyncFailed)
		return result, err
	}
	r.finish(ctx, result, nil, domain.ActivitySyncApplied)
	return result, nil
}

func (r *Reconciler) run(ctx context.Context) (domain.Result, error) {
	exclude, err := r.active.ActiveID(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("read active session: %w", err)
	}

	localSessions, err := r.local.Sessions(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	localProgress, err := r.local.Progress(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	remoteSessions, err := r.remote.FetchSessions(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("fetch sessions: %w", err)
	}
	remoteProgress, err := r.remote.FetchProgress(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("fetch progress: %w", err)
	}

	sessionPlan := domain.PlanSessions(localSessions, remoteSessions, exclude)
	progressPlan := domain.PlanProgress(localProgress, remoteProgress)

	changes := domain.Changes{
		SessionPulls:  sessionPlan.Pull,
		SessionClean:  sessionPlan.Clean,
		ProgressPulls: progressPlan.Pull,
		ProgressClean: progressPlan.Clean,
	}
	if len(sessionPlan.Push) > 0 {
		canonical, err := r.remote.PushSessions(ctx, sessionPlan.Push)
		if err != nil {
			return domain.Result{}, fmt.Errorf("push sessions: %w", err)
		}
		clean, pull := domain.ResolvePushedSessions(sessionPlan.Push, canonical)
		changes.SessionClean = append(changes.SessionClean, clean...)
		changes.SessionPulls = append(changes.SessionPulls, pull...)
	}
	if len(progressPlan.Push) > 0 {
		canonical, err := r.remote.PushProgress(ctx, progressPlan.Push)
		if err != nil {
			return domain.Result{}, fmt.Errorf("push progress: %w", err)
		}
		clean, pull := domain.ResolvePushedProgress(progressPlan.Push, canonical)
		changes.ProgressClean = append(changes.ProgressClean, clean...)
		changes.ProgressPulls = append(changes.ProgressPulls, pull...)
	}

	changes.SyncedAt = clock.Seconds(r.clock)
	applied, err := r.local.Apply(ctx, changes)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{
		PushedSessions: len(sessionPlan.Push),
		PulledSessions: applied.Sessions,
		PushedProgress: len(progressPlan.Push),
		PulledProgress: applied.Progress,
		Excluded:       sessionPlan.Excluded,
		Stale:          applied.Stale,
	}, nil
}

func (r *Reconciler) finish(ctx context.Context, result domain.Result, runErr error, activityType string) {
	now := clock.Seconds(r.clock)
	r.update(func(s *domain.Status) {
		s.IsSyncing = false
		if runErr != nil {
			s.Error = runErr.Error()
			return
		}
		s.Error = ""
		s.LastSyncAt = now
		s.LastResult = result
	})

	activity := domain.Activity{OccurredAt: now, Type: activityType}
	if runErr != nil {
		activity.Message = runErr.Error()
		r.log.Warn("sync: run failed", "type", activityType, "err", runErr)
	} else {
		activity.Message = "sync completed"
		activity.Fields = map[string]string{
			"pushed_sessions": strconv.Itoa(result.PushedSessions),
			"pulled_sessions": strconv.Itoa(result.PulledSessions),
			"pushed_progress": strconv.Itoa(result.PushedProgress),
			"pulled_progress": strconv.Itoa(result.PulledProgress),
			"stale":           strconv.Itoa(result.Stale),
		}
		r.log.Info("sync: run completed",
			"pushed_sessions", result.PushedSessions,
			"pulled_sessions", result.PulledSessions,
			"pushed_progress", result.PushedProgress,
			"pulled_progress", result.PulledProgress,
			"excluded", result.Excluded,
			"stale", result.Stale,
		)
	}
	if r.activity == nil {
		return
	}
	if err := r.activity.Append(ctx, activity); err != nil {
		r.log.Warn("sync: append activity failed", "err", err)
	}
}

func (r *Reconciler) update(fn func(*domain.Status)) {
	next := r.status.Get()
	fn(&next)
	r.status.Set(next)
}
