package habit

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler periodically rebuilds every streak and the recent rollups from
// check-in history. Recomputation is idempotent, so the job runs without any
// coordination with live traffic; it exists to repair streak rows left stale
// by recompute failures on the write path.
type Reconciler struct {
	svc  *Service
	cron *cron.Cron
	log  *zap.SugaredLogger
}

// NewReconciler schedules RunOnce according to spec (standard 5-field cron).
func NewReconciler(svc *Service, spec string, logger *zap.SugaredLogger) (*Reconciler, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	r := &Reconciler{
		svc:  svc,
		cron: cron.New(),
		log:  logger,
	}
	if _, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		r.RunOnce(ctx)
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins the schedule in its own goroutine.
func (r *Reconciler) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running pass to finish.
func (r *Reconciler) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce recomputes every (user, category) streak and refreshes the last
// seven days of rollups for each affected user. Failures are logged per pair
// and never abort the pass.
func (r *Reconciler) RunOnce(ctx context.Context) {
	start := time.Now()
	pairs, err := r.svc.checkins.DistinctPairs(ctx)
	if err != nil {
		r.log.Errorw("reconciliation: listing pairs failed", "err", err)
		return
	}

	users := map[uint]struct{}{}
	failed := 0
	for _, p := range pairs {
		if _, err := r.svc.RecomputeStreak(ctx, p.UserID, p.CategoryID); err != nil {
			failed++
			r.log.Errorw("reconciliation: streak recompute failed",
				"user_id", p.UserID, "category_id", p.CategoryID, "err", err)
			continue
		}
		users[p.UserID] = struct{}{}
	}

	today := r.svc.now()
	for uid := range users {
		for i := 0; i < 7; i++ {
			day := today.AddDate(0, 0, -i)
			if err := r.svc.refreshRollup(ctx, uid, day); err != nil {
				r.log.Warnw("reconciliation: rollup refresh failed",
					"user_id", uid, "day", day.Format("2006-01-02"), "err", err)
			}
		}
	}

	r.log.Infow("reconciliation pass finished",
		"pairs", len(pairs), "failed", failed, "took", time.Since(start))
}
