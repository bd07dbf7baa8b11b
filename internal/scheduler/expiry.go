package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/gymdesk/internal/config"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	obsmetrics "github.com/smallbiznis/gymdesk/internal/observability/metrics"
	"github.com/smallbiznis/gymdesk/internal/providers/email"
	"go.uber.org/zap"
)

const expiryLockKey = "gymdesk:scheduler:membership_expiry:%s"

// MembershipExpiryJob moves Active members whose due date has passed to
// PendingPayment and emails a reminder. Reminder failures never fail the
// job; status failures are collected and the sweep continues.
func (s *Scheduler) MembershipExpiryJob(ctx context.Context) error {
	now := s.clock.Now()
	settings := s.membership.Get()
	run := jobRunFromContext(ctx)
	log := s.logger(ctx)

	release, ok, err := s.acquireExpiryLock(ctx, now.Format("2006-01-02"))
	if err != nil {
		return err
	}
	if !ok {
		log.Info("membership expiry already claimed by another instance")
		return nil
	}
	defer release()

	schedMetrics := obsmetrics.Scheduler()
	var (
		after *memberdomain.OverdueCursor
		errs  error
	)

	// Members whose update fails stay Active; the cursor moves past them.
	for {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}
		batch, err := s.members.ListOverdueActive(ctx, now, after, settings.ExpiryBatchSize)
		if err != nil {
			return errors.Join(errs, err)
		}
		if len(batch) == 0 {
			return errs
		}
		after = batch[len(batch)-1].CursorAfter()

		for _, member := range batch {
			if err := s.members.SetStatus(ctx, member.ID, memberdomain.StatusPendingPayment); err != nil {
				run.IncError()
				log.Error("membership expiry status update failed",
					zap.String("member_id", member.ID.String()),
					zap.Error(err),
				)
				errs = errors.Join(errs, fmt.Errorf("member %s: %w", member.ID, err))
				continue
			}
			run.AddProcessed(1)
			schedMetrics.IncMemberStatusTransition(string(memberdomain.StatusActive), string(memberdomain.StatusPendingPayment))
			log.Info("membership expired",
				zap.String("member_id", member.ID.String()),
				zap.Timep("due_date", member.DueDate),
			)

			s.sendReminder(ctx, settings.Reminder, member)
		}
		schedMetrics.AddBatchProcessed(JobMembershipExpiry, "members", len(batch))

		if after == nil || len(batch) < settings.ExpiryBatchSize {
			return errs
		}
	}
}

func (s *Scheduler) sendReminder(ctx context.Context, cfg config.ReminderConfig, member memberdomain.Member) {
	if !cfg.Enabled || member.Email == nil || *member.Email == "" {
		return
	}
	log := s.logger(ctx).With(zap.String("member_id", member.ID.String()))

	dueDate := ""
	if member.DueDate != nil {
		dueDate = member.DueDate.In(s.clock.Now().Location()).Format("2006-01-02")
	}
	body, err := email.RenderReminder(cfg.Body, email.ReminderData{Name: member.Name, DueDate: dueDate})
	if err != nil {
		s.metrics.RecordReminderEmail(ctx, "error")
		log.Warn("reminder email render failed", zap.Error(err))
		return
	}

	err = s.email.Send(ctx, email.Message{To: *member.Email, Subject: cfg.Subject, Body: body})
	if err != nil {
		s.metrics.RecordReminderEmail(ctx, "error")
		obsmetrics.Scheduler().IncJobError(JobMembershipExpiry, fmt.Errorf("%w: %v", obsmetrics.ErrNotification, err))
		log.Warn("reminder email failed", zap.Error(err))
		return
	}
	s.metrics.RecordReminderEmail(ctx, "sent")
}

// acquireExpiryLock claims the day's sweep when a shared locker is
// configured. A finished sweep keeps the claim until it expires so other
// replicas skip the day; a sweep cut short by its deadline releases it.
func (s *Scheduler) acquireExpiryLock(ctx context.Context, day string) (func(), bool, error) {
	noop := func() {}
	if s.locker == nil {
		return noop, true, nil
	}
	key := fmt.Sprintf(expiryLockKey, day)
	token, ok, err := s.locker.TryLock(ctx, key, s.cfg.ExpiryLockTTL)
	if err != nil {
		s.logger(ctx).Warn("membership expiry lock unavailable, running unguarded", zap.Error(err))
		return noop, true, nil
	}
	if !ok {
		return noop, false, nil
	}
	release := func() {
		if ctx.Err() == nil {
			return
		}
		if err := s.locker.Release(context.Background(), key, token); err != nil {
			s.logger(ctx).Warn("membership expiry lock release failed", zap.Error(err))
		}
	}
	return release, true, nil
}
