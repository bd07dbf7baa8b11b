package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	FindViewByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MemberView, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Member, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*MemberView, error)
	UpdatePlan(ctx context.Context, db *gorm.DB, id snowflake.ID, planID snowflake.ID, dueDate time.Time, updatedAt time.Time) error
	UpdateTrainer(ctx context.Context, db *gorm.DB, id snowflake.ID, trainerID snowflake.ID, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, updatedAt time.Time) error
	UpdateWorkoutPlan(ctx context.Context, db *gorm.DB, id snowflake.ID, plan []byte, updatedAt time.Time) error
	UpdateDietPlan(ctx context.Context, db *gorm.DB, id snowflake.ID, plan []byte, updatedAt time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	ListOverdueActive(ctx context.Context, db *gorm.DB, now time.Time, after *OverdueCursor, limit int) ([]Member, error)
	Count(ctx context.Context, db *gorm.DB, status *Status) (int64, error)
}
