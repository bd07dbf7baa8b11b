package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/member/domain"
	"github.com/smallbiznis/gymdesk/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const memberColumns = `m.id, m.name, m.email, m.phone, m.status, m.join_date, m.due_date,
	m.trainer_id, m.plan_id, m.workout_plan, m.diet_plan, m.created_at, m.updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type memberRow struct {
	ID          snowflake.ID
	Name        string
	Email       *string
	Phone       string
	Status      string
	JoinDate    time.Time
	DueDate     *time.Time
	TrainerID   *snowflake.ID
	PlanID      *snowflake.ID
	WorkoutPlan datatypes.JSON
	DietPlan    datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PlanName    *string
	TrainerName *string
}

func (row memberRow) member() domain.Member {
	return domain.Member{
		ID:          row.ID,
		Name:        row.Name,
		Email:       row.Email,
		Phone:       row.Phone,
		Status:      domain.Status(row.Status),
		JoinDate:    row.JoinDate,
		DueDate:     row.DueDate,
		TrainerID:   row.TrainerID,
		PlanID:      row.PlanID,
		WorkoutPlan: row.WorkoutPlan,
		DietPlan:    row.DietPlan,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (row memberRow) view() domain.MemberView {
	return domain.MemberView{
		Member:      row.member(),
		PlanName:    row.PlanName,
		TrainerName: row.TrainerName,
	}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *domain.Member) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO members (id, name, email, phone, status, join_date, due_date,
			trainer_id, plan_id, workout_plan, diet_plan, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		member.ID,
		member.Name,
		member.Email,
		member.Phone,
		string(member.Status),
		member.JoinDate.UTC(),
		utcPtr(member.DueDate),
		member.TrainerID,
		member.PlanID,
		jsonOrEmpty(member.WorkoutPlan),
		jsonOrEmpty(member.DietPlan),
		member.CreatedAt.UTC(),
		member.UpdatedAt.UTC(),
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Member, error) {
	row, err := r.findOne(ctx, db, "m.id = ?", id)
	if err != nil || row == nil {
		return nil, err
	}
	member := row.member()
	return &member, nil
}

func (r *repo) FindViewByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MemberView, error) {
	row, err := r.findOne(ctx, db, "m.id = ?", id)
	if err != nil || row == nil {
		return nil, err
	}
	view := row.view()
	return &view, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Member, error) {
	row, err := r.findOne(ctx, db, "LOWER(m.email) = LOWER(?)", email)
	if err != nil || row == nil {
		return nil, err
	}
	member := row.member()
	return &member, nil
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, cond string, arg any) (*memberRow, error) {
	var row memberRow
	err := db.WithContext(ctx).Raw(
		`SELECT `+memberColumns+`, p.name AS plan_name, t.name AS trainer_name
		 FROM members m
		 LEFT JOIN plans p ON p.id = m.plan_id
		 LEFT JOIN trainers t ON t.id = m.trainer_id
		 WHERE `+cond+`
		 LIMIT 1`,
		arg,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.MemberView, error) {
	stmt := db.WithContext(ctx).
		Table("members AS m").
		Select(memberColumns + `, p.name AS plan_name, t.name AS trainer_name`).
		Joins("LEFT JOIN plans p ON p.id = m.plan_id").
		Joins("LEFT JOIN trainers t ON t.id = m.trainer_id")
	if filter.Status != "" {
		stmt = stmt.Where("m.status = ?", string(filter.Status))
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("m.created_at >= ?", filter.CreatedFrom.UTC())
	}
	stmt, err := pagination.Apply(stmt, page, "m.")
	if err != nil {
		return nil, err
	}

	var rows []memberRow
	if err := stmt.Order("m.created_at desc, m.id desc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]*domain.MemberView, 0, len(rows))
	for _, row := range rows {
		view := row.view()
		views = append(views, &view)
	}
	return views, nil
}

func (r *repo) UpdatePlan(ctx context.Context, db *gorm.DB, id snowflake.ID, planID snowflake.ID, dueDate time.Time, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members
		 SET plan_id = ?, status = ?, due_date = ?, updated_at = ?
		 WHERE id = ?`,
		planID,
		string(domain.StatusActive),
		dueDate.UTC(),
		updatedAt.UTC(),
		id,
	).Error
}

func (r *repo) UpdateTrainer(ctx context.Context, db *gorm.DB, id snowflake.ID, trainerID snowflake.ID, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members SET trainer_id = ?, updated_at = ? WHERE id = ?`,
		trainerID,
		updatedAt.UTC(),
		id,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members SET status = ?, updated_at = ? WHERE id = ?`,
		string(status),
		updatedAt.UTC(),
		id,
	).Error
}

func (r *repo) UpdateWorkoutPlan(ctx context.Context, db *gorm.DB, id snowflake.ID, plan []byte, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members SET workout_plan = ?, updated_at = ? WHERE id = ?`,
		datatypes.JSON(plan),
		updatedAt.UTC(),
		id,
	).Error
}

func (r *repo) UpdateDietPlan(ctx context.Context, db *gorm.DB, id snowflake.ID, plan []byte, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members SET diet_plan = ?, updated_at = ? WHERE id = ?`,
		datatypes.JSON(plan),
		updatedAt.UTC(),
		id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM members WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ListOverdueActive(ctx context.Context, db *gorm.DB, now time.Time, after *domain.OverdueCursor, limit int) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + `
		 FROM members m
		 WHERE m.status = ? AND m.due_date IS NOT NULL AND m.due_date < ?`
	args := []any{string(domain.StatusActive), now.UTC()}
	if after != nil {
		query += ` AND (m.due_date > ? OR (m.due_date = ? AND m.id > ?))`
		args = append(args, after.DueDate.UTC(), after.DueDate.UTC(), after.ID)
	}
	query += ` ORDER BY m.due_date ASC, m.id ASC LIMIT ?`
	args = append(args, limit)

	var rows []memberRow
	err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	members := make([]domain.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.member())
	}
	return members, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, status *domain.Status) (int64, error) {
	var count int64
	stmt := db.WithContext(ctx).Table("members")
	if status != nil {
		stmt = stmt.Where("status = ?", string(*status))
	}
	if err := stmt.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func jsonOrEmpty(v datatypes.JSON) datatypes.JSON {
	if len(v) == 0 {
		return datatypes.JSON("{}")
	}
	return v
}
