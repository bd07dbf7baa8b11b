package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Plan is a membership plan sold to members.
type Plan struct {
	ID             snowflake.ID `json:"id"`
	Code           string       `json:"code"`
	Name           string       `json:"name"`
	DurationMonths int          `json:"durationMonths"`
	Price          float64      `json:"price"`
	Features       []string     `json:"features"`
	IsActive       bool         `json:"isActive"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type CreatePlanRequest struct {
	Name           string
	DurationMonths int
	Price          float64
	// Features is either a JSON array of strings or a comma separated string.
	Features json.RawMessage
	IsActive *bool
}

type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (Plan, error)
	List(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id string) (Plan, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Plan, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plan, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Plan, error)
	List(ctx context.Context, db *gorm.DB) ([]Plan, error)
}

var (
	ErrInvalidID       = errors.New("invalid_plan_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidDuration = errors.New("invalid_duration")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidFeatures = errors.New("invalid_features")
	ErrCodeTaken       = errors.New("plan_code_taken")
	ErrNotFound        = errors.New("plan_not_found")
)

// NormalizeFeatures accepts a JSON array of strings or a single comma
// separated string and returns the trimmed, non-empty entries.
func NormalizeFeatures(raw json.RawMessage) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []string{}, nil
	}

	var items []string
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, ErrInvalidFeatures
		}
	case '"':
		var joined string
		if err := json.Unmarshal([]byte(trimmed), &joined); err != nil {
			return nil, ErrInvalidFeatures
		}
		items = strings.Split(joined, ",")
	default:
		return nil, ErrInvalidFeatures
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}
