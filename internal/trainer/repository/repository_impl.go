package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/trainer/domain"
	"gorm.io/gorm"
)

const trainerColumns = `id, name, phone, email, specialization, experience, salary, is_active, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, trainer *domain.Trainer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO trainers (`+trainerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trainer.ID,
		trainer.Name,
		trainer.Phone,
		trainer.Email,
		trainer.Specialization,
		trainer.Experience,
		trainer.Salary,
		trainer.IsActive,
		trainer.CreatedAt.UTC(),
		trainer.UpdatedAt.UTC(),
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Trainer, error) {
	var trainer domain.Trainer
	err := db.WithContext(ctx).Raw(
		`SELECT `+trainerColumns+` FROM trainers WHERE id = ? LIMIT 1`,
		id,
	).Scan(&trainer).Error
	if err != nil {
		return nil, err
	}
	if trainer.ID == 0 {
		return nil, nil
	}
	return &trainer, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Trainer, error) {
	var trainer domain.Trainer
	err := db.WithContext(ctx).Raw(
		`SELECT `+trainerColumns+` FROM trainers WHERE LOWER(email) = LOWER(?) LIMIT 1`,
		email,
	).Scan(&trainer).Error
	if err != nil {
		return nil, err
	}
	if trainer.ID == 0 {
		return nil, nil
	}
	return &trainer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Trainer, error) {
	var trainers []domain.Trainer
	err := db.WithContext(ctx).Raw(
		`SELECT ` + trainerColumns + ` FROM trainers ORDER BY created_at DESC, id DESC`,
	).Scan(&trainers).Error
	if err != nil {
		return nil, err
	}
	return trainers, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM trainers WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM trainers WHERE is_active = ?`,
		true,
	).Scan(&count).Error
	return count, err
}
