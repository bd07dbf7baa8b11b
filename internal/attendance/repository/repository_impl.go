package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/attendance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.Attendance) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO attendance (id, member_id, status, checked_in_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.MemberID,
		record.Status,
		record.CheckedInAt.UTC(),
		record.CreatedAt.UTC(),
	).Error
}

func (r *repo) ExistsSince(ctx context.Context, db *gorm.DB, memberID snowflake.ID, since time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM attendance WHERE member_id = ? AND checked_in_at >= ?`,
		memberID,
		since.UTC(),
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.Attendance, error) {
	var rows []struct {
		ID          snowflake.ID
		MemberID    snowflake.ID
		MemberName  *string
		Status      string
		CheckedInAt time.Time
		CreatedAt   time.Time
	}
	err := db.WithContext(ctx).Raw(
		`SELECT a.id, a.member_id, m.name AS member_name, a.status, a.checked_in_at, a.created_at
		 FROM attendance a
		 LEFT JOIN members m ON m.id = a.member_id
		 WHERE a.checked_in_at >= ?
		 ORDER BY a.checked_in_at DESC, a.id DESC`,
		since.UTC(),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.Attendance, 0, len(rows))
	for _, row := range rows {
		record := domain.Attendance{
			ID:          row.ID,
			MemberID:    row.MemberID,
			Status:      row.Status,
			CheckedInAt: row.CheckedInAt,
			CreatedAt:   row.CreatedAt,
		}
		if row.MemberName != nil {
			record.MemberName = *row.MemberName
		}
		records = append(records, record)
	}
	return records, nil
}
