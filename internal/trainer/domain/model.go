package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Trainer struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	Name           string       `json:"name"`
	Phone          string       `json:"phone"`
	Email          *string      `json:"email,omitempty"`
	Specialization string       `json:"specialization,omitempty"`
	Experience     int          `json:"experience"`
	Salary         float64      `json:"salary"`
	IsActive       bool         `json:"isActive"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func (Trainer) TableName() string { return "trainers" }

type CreateTrainerRequest struct {
	Name           string
	Phone          string
	Email          string
	Specialization string
	Experience     int
	Salary         float64
	IsActive       *bool
}

type Service interface {
	Create(ctx context.Context, req CreateTrainerRequest) (Trainer, error)
	List(ctx context.Context) ([]Trainer, error)
	Get(ctx context.Context, id string) (Trainer, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id snowflake.ID) (*Trainer, error)
	FindByEmail(ctx context.Context, email string) (*Trainer, error)
	CountActive(ctx context.Context) (int64, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, trainer *Trainer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Trainer, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Trainer, error)
	List(ctx context.Context, db *gorm.DB) ([]Trainer, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	CountActive(ctx context.Context, db *gorm.DB) (int64, error)
}

var (
	ErrInvalidID         = errors.New("invalid_trainer_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidExperience = errors.New("invalid_experience")
	ErrInvalidSalary     = errors.New("invalid_salary")
	ErrNotFound          = errors.New("trainer_not_found")
)
