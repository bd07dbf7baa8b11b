package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifySchedulerJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: SchedulerJobReasonDeadlineExceeded},
		{name: "notification", err: fmt.Errorf("send reminder: %w", ErrNotification), want: SchedulerJobReasonNotification},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: SchedulerJobReasonDBLockTimeout},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: SchedulerJobReasonSerializationFailure},
		{name: "unique_violation", err: gorm.ErrDuplicatedKey, want: SchedulerJobReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: SchedulerJobReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifySchedulerJobReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSchedulerCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSchedulerMetricsForRegistry(registry, Config{ServiceName: "gymdesk", Environment: "test"})

	m.AddBatchProcessed("expire_memberships", "members", 3)
	m.AddBatchProcessed("expire_memberships", "members", 0)
	m.IncMemberStatusTransition("Active", "PendingPayment")
	m.IncJobRun("expire_memberships")
	m.ObserveJobDuration("expire_memberships", 150*time.Millisecond)
	m.IncJobError("expire_memberships", context.DeadlineExceeded)

	if got := testutil.ToFloat64(m.batchProcessed.WithLabelValues("expire_memberships", "members")); got != 3 {
		t.Fatalf("expected processed count 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.memberStatus.WithLabelValues("Active", "PendingPayment")); got != 1 {
		t.Fatalf("expected one transition, got %v", got)
	}
	if got := testutil.ToFloat64(m.jobErrors.WithLabelValues("expire_memberships", SchedulerJobReasonDeadlineExceeded)); got != 1 {
		t.Fatalf("expected one error, got %v", got)
	}
}
