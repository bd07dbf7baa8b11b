package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/plan/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const planColumns = `id, code, name, duration_months, price, features, is_active, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type planRow struct {
	ID             snowflake.ID
	Code           string
	Name           string
	DurationMonths int
	Price          float64
	Features       datatypes.JSON
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (row planRow) plan() domain.Plan {
	features := []string{}
	if len(row.Features) > 0 {
		_ = json.Unmarshal(row.Features, &features)
	}
	return domain.Plan{
		ID:             row.ID,
		Code:           row.Code,
		Name:           row.Name,
		DurationMonths: row.DurationMonths,
		Price:          row.Price,
		Features:       features,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	features := plan.Features
	if features == nil {
		features = []string{}
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans (`+planColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.Code,
		plan.Name,
		plan.DurationMonths,
		plan.Price,
		datatypes.JSON(encoded),
		plan.IsActive,
		plan.CreatedAt.UTC(),
		plan.UpdatedAt.UTC(),
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Plan, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Plan, error) {
	return r.findOne(ctx, db, "code = ?", code)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, cond string, arg any) (*domain.Plan, error) {
	var row planRow
	err := db.WithContext(ctx).Raw(
		`SELECT `+planColumns+` FROM plans WHERE `+cond+` LIMIT 1`,
		arg,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	plan := row.plan()
	return &plan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Plan, error) {
	var rows []planRow
	err := db.WithContext(ctx).Raw(
		`SELECT ` + planColumns + `
		 FROM plans
		 ORDER BY CASE WHEN is_active THEN 0 ELSE 1 END, price ASC, id ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	plans := make([]domain.Plan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, row.plan())
	}
	return plans, nil
}
