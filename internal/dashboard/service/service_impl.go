package service

import (
	"context"
	"time"

	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/config"
	dashboarddomain "github.com/smallbiznis/gymdesk/internal/dashboard/domain"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	paymentdomain "github.com/smallbiznis/gymdesk/internal/payment/domain"
	trainerdomain "github.com/smallbiznis/gymdesk/internal/trainer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Members  memberdomain.Service
	Trainers trainerdomain.Service
	Payments paymentdomain.Service

	Membership *config.MembershipConfigHolder `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	members  memberdomain.Service
	trainers trainerdomain.Service
	payments paymentdomain.Service
	settings *config.MembershipConfigHolder
}

func NewService(p Params) dashboarddomain.Service {
	return &Service{
		log:      p.Log.Named("dashboard.service"),
		clock:    p.Clock,
		members:  p.Members,
		trainers: p.Trainers,
		payments: p.Payments,
		settings: p.Membership,
	}
}

type monthKey struct {
	year  int
	month time.Month
}

// ComputeStats is recomputed on every call. Months are bucketed in the
// clock's location.
func (s *Service) ComputeStats(ctx context.Context, monthsWindow int) (dashboarddomain.Stats, error) {
	window := s.settings.Get().DashboardMonths
	months, err := dashboarddomain.NormalizeWindow(monthsWindow, window.Default, window.Max)
	if err != nil {
		return dashboarddomain.Stats{}, err
	}
	now := s.clock.Now()
	loc := now.Location()

	totalMembers, err := s.members.CountAll(ctx)
	if err != nil {
		return dashboarddomain.Stats{}, err
	}
	activeMembers, err := s.members.CountByStatus(ctx, memberdomain.StatusActive)
	if err != nil {
		return dashboarddomain.Stats{}, err
	}
	activeTrainers, err := s.trainers.CountActive(ctx)
	if err != nil {
		return dashboarddomain.Stats{}, err
	}

	currentMonth := clock.StartOfMonth(now)
	windowStart := currentMonth.AddDate(0, -(months - 1), 0)

	entries, err := s.payments.RevenueSince(ctx, windowStart)
	if err != nil {
		return dashboarddomain.Stats{}, err
	}

	buckets := make(map[monthKey]float64, months)
	for _, entry := range entries {
		at := entry.CreatedAt.In(loc)
		buckets[monthKey{year: at.Year(), month: at.Month()}] += entry.PaidAmount
	}

	chart := make([]dashboarddomain.ChartPoint, 0, months)
	for i := 0; i < months; i++ {
		start := windowStart.AddDate(0, i, 0)
		key := monthKey{year: start.Year(), month: start.Month()}
		chart = append(chart, dashboarddomain.ChartPoint{
			Name:    start.Format("Jan"),
			Revenue: paymentdomain.RoundMinor(buckets[key]),
		})
	}
	current := buckets[monthKey{year: currentMonth.Year(), month: currentMonth.Month()}]

	s.log.Debug("dashboard stats computed",
		zap.Int("months", months),
		zap.Int("payments", len(entries)),
	)

	return dashboarddomain.Stats{
		TotalMembers:        totalMembers,
		ActiveMembers:       activeMembers,
		TotalTrainers:       activeTrainers,
		CurrentMonthRevenue: paymentdomain.RoundMinor(current),
		ChartData:           chart,
	}, nil
}
