package domain

import (
	"context"
	"errors"
)

const (
	DefaultMonthsWindow = 6
	MaxMonthsWindow     = 24
)

type ChartPoint struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

type Stats struct {
	TotalMembers        int64        `json:"totalMembers"`
	ActiveMembers       int64        `json:"activeMembers"`
	TotalTrainers       int64        `json:"totalTrainers"`
	CurrentMonthRevenue float64      `json:"currentMonthRevenue"`
	ChartData           []ChartPoint `json:"chartData"`
}

type Service interface {
	ComputeStats(ctx context.Context, monthsWindow int) (Stats, error)
}

var ErrWindowTooLarge = errors.New("months_out_of_range")

// NormalizeWindow applies def for values below one and rejects windows
// longer than max, so every accepted window yields exactly that many months.
// Non-positive bounds fall back to the package defaults.
func NormalizeWindow(months, def, max int) (int, error) {
	if def < 1 {
		def = DefaultMonthsWindow
	}
	if max < def {
		max = MaxMonthsWindow
	}
	if months < 1 {
		return def, nil
	}
	if months > max {
		return 0, ErrWindowTooLarge
	}
	return months, nil
}
