package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/routine/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type routineRow struct {
	ID          snowflake.ID
	MemberID    snowflake.ID
	MemberName  *string
	TrainerID   *snowflake.ID
	TrainerName *string
	Name        string
	Exercises   datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, routine *domain.Routine) error {
	exercises := routine.Exercises
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	encoded, err := json.Marshal(exercises)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO routines (id, member_id, trainer_id, name, exercises, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		routine.ID,
		routine.MemberID,
		routine.TrainerID,
		routine.Name,
		datatypes.JSON(encoded),
		routine.CreatedAt.UTC(),
		routine.UpdatedAt.UTC(),
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, memberID *snowflake.ID) ([]domain.Routine, error) {
	stmt := db.WithContext(ctx).
		Table("routines AS r").
		Select(`r.id, r.member_id, m.name AS member_name, r.trainer_id, t.name AS trainer_name,
			r.name, r.exercises, r.created_at, r.updated_at`).
		Joins("LEFT JOIN members m ON m.id = r.member_id").
		Joins("LEFT JOIN trainers t ON t.id = r.trainer_id")
	if memberID != nil {
		stmt = stmt.Where("r.member_id = ?", *memberID)
	}

	var rows []routineRow
	if err := stmt.Order("r.created_at DESC, r.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	routines := make([]domain.Routine, 0, len(rows))
	for _, row := range rows {
		exercises := []domain.Exercise{}
		if len(row.Exercises) > 0 {
			if err := json.Unmarshal(row.Exercises, &exercises); err != nil {
				return nil, err
			}
		}
		routine := domain.Routine{
			ID:          row.ID,
			MemberID:    row.MemberID,
			TrainerID:   row.TrainerID,
			TrainerName: row.TrainerName,
			Name:        row.Name,
			Exercises:   exercises,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}
		if row.MemberName != nil {
			routine.MemberName = *row.MemberName
		}
		routines = append(routines, routine)
	}
	return routines, nil
}
