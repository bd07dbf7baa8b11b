package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Exercise struct {
	Day          string `json:"day"`
	ExerciseName string `json:"exerciseName"`
	Sets         int    `json:"sets"`
	Reps         int    `json:"reps"`
	Notes        string `json:"notes,omitempty"`
}

// Routine is a weekly workout routine prepared for a member.
type Routine struct {
	ID          snowflake.ID  `json:"id"`
	MemberID    snowflake.ID  `json:"memberId"`
	MemberName  string        `json:"memberName,omitempty"`
	TrainerID   *snowflake.ID `json:"trainerId,omitempty"`
	TrainerName *string       `json:"trainerName,omitempty"`
	Name        string        `json:"name"`
	Exercises   []Exercise    `json:"exercises"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type CreateRoutineRequest struct {
	MemberID  string
	TrainerID string
	Name      string
	Exercises []Exercise
}

type Service interface {
	Create(ctx context.Context, req CreateRoutineRequest) (Routine, error)
	List(ctx context.Context, memberID string) ([]Routine, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, routine *Routine) error
	List(ctx context.Context, db *gorm.DB, memberID *snowflake.ID) ([]Routine, error)
}

var (
	ErrInvalidMember   = errors.New("invalid_member_id")
	ErrInvalidTrainer  = errors.New("invalid_trainer_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidExercise = errors.New("invalid_exercise")
)
