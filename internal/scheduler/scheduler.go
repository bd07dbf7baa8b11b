package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/config"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	"github.com/smallbiznis/gymdesk/internal/metricspush"
	obsmetrics "github.com/smallbiznis/gymdesk/internal/observability/metrics"
	"github.com/smallbiznis/gymdesk/internal/providers/email"
	"github.com/smallbiznis/gymdesk/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Members    memberdomain.Service
	Email      email.Provider
	Membership *config.MembershipConfigHolder `optional:"true"`
	Pusher     metricspush.Pusher             `optional:"true"`
	Gatherer   prometheus.Gatherer            `optional:"true"`
	Locker     *ratelimit.Locker              `optional:"true"`
	Metrics    *obsmetrics.Metrics            `optional:"true"`
	Config     Config                         `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	members    memberdomain.Service
	email      email.Provider
	membership *config.MembershipConfigHolder
	pusher     metricspush.Pusher
	gatherer   prometheus.Gatherer
	locker     *ratelimit.Locker
	metrics    *obsmetrics.Metrics

	mu            sync.Mutex
	lastExpiryRun time.Time
	lastPush      time.Time
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.Members == nil {
		return nil, ErrInvalidConfig
	}
	mailer := p.Email
	if mailer == nil {
		mailer = &email.NoOpProvider{}
	}
	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		genID:      p.GenID,
		clock:      p.Clock,
		members:    p.Members,
		email:      mailer,
		membership: p.Membership,
		pusher:     p.Pusher,
		gatherer:   gatherer,
		locker:     p.Locker,
		metrics:    p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name, batchSize)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	// A deadline is a soft timeout; the next due run picks up the rest.
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce runs every job that is due at the current clock time.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	now := s.clock.Now()

	if s.cfg.isJobEnabled(JobMembershipExpiry) && s.expiryDue(now) {
		settings := s.membership.Get()
		jobErr := s.runJob(parent, JobMembershipExpiry, settings.ExpiryBatchSize, s.cfg.ExpiryTimeout, s.MembershipExpiryJob)
		s.mu.Lock()
		s.lastExpiryRun = now
		s.mu.Unlock()
		err = errors.Join(err, jobErr)
	}

	if s.pusher != nil && s.cfg.isJobEnabled(JobMetricsPush) && s.pushDue(now) {
		jobErr := s.runJob(parent, JobMetricsPush, 0, s.cfg.PushTimeout, s.MetricsPushJob)
		s.mu.Lock()
		s.lastPush = now
		s.mu.Unlock()
		err = errors.Join(err, jobErr)
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := time.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		runLag := time.Since(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// expiryDue reports whether today's sweep slot, at the configured hour in
// the clock's location, has passed without a run. A process started after
// the slot catches up on its first tick.
func (s *Scheduler) expiryDue(now time.Time) bool {
	slot := clock.StartOfDay(now).Add(time.Duration(s.membership.Get().ExpiryRunHour) * time.Hour)
	if now.Before(slot) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastExpiryRun.Before(slot)
}

func (s *Scheduler) pushDue(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPush.IsZero() || !now.Before(s.lastPush.Add(s.cfg.PushInterval))
}

func (s *Scheduler) MetricsPushJob(ctx context.Context) error {
	return s.pusher.Push(ctx, s.gatherer)
}
