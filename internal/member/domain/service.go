package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/pkg/db/pagination"
)

type CreateMemberRequest struct {
	Name      string
	Email     string
	Phone     string
	PlanID    string
	TrainerID string
	DueDate   *time.Time
}

type ListMemberRequest struct {
	Status    string
	PageToken string
	PageSize  int32
}

type ListMemberResponse struct {
	pagination.PageInfo
	Members []MemberView `json:"members"`
}

// Actor identifies the authenticated user editing a member's plans.
type Actor struct {
	Role  string
	Email string
}

func (a Actor) IsTrainer() bool {
	return normalizeStatus(a.Role) == "trainer"
}

type Service interface {
	Create(ctx context.Context, req CreateMemberRequest) (Member, error)
	List(ctx context.Context, req ListMemberRequest) (ListMemberResponse, error)
	Get(ctx context.Context, id string) (MemberView, error)
	AssignPlan(ctx context.Context, memberID, planID string) (Member, error)
	AssignTrainer(ctx context.Context, memberID, trainerID string) (Member, error)
	Delete(ctx context.Context, id string) error

	GetWorkoutPlan(ctx context.Context, memberID string) (WorkoutPlan, error)
	UpdateWorkoutPlan(ctx context.Context, actor Actor, memberID string, plan WorkoutPlan) (WorkoutPlan, error)
	GetDietPlan(ctx context.Context, memberID string) (DietPlan, error)
	UpdateDietPlan(ctx context.Context, actor Actor, memberID string, plan DietPlan) (DietPlan, error)

	GetByID(ctx context.Context, id snowflake.ID) (*Member, error)
	SetStatus(ctx context.Context, id snowflake.ID, status Status) error
	ListOverdueActive(ctx context.Context, now time.Time, after *OverdueCursor, limit int) ([]Member, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}

var (
	ErrInvalidID      = errors.New("invalid_member_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPhone   = errors.New("invalid_phone")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidPlan    = errors.New("invalid_plan_id")
	ErrInvalidTrainer = errors.New("invalid_trainer_id")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrEmailTaken     = errors.New("email_already_registered")
	ErrNotFound       = errors.New("member_not_found")
	ErrNotAssigned    = errors.New("member_not_assigned_to_trainer")
)
