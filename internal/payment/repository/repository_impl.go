package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const paymentColumns = `p.id, p.member_id, p.total_amount, p.paid_amount, p.remaining_amount,
	p.method, p.status, p.transaction_id, p.gateway_order_id, p.notes, p.created_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type paymentRow struct {
	ID              snowflake.ID
	MemberID        snowflake.ID
	TotalAmount     float64
	PaidAmount      float64
	RemainingAmount float64
	Method          string
	Status          string
	TransactionID   *string
	GatewayOrderID  *string
	Notes           *string
	CreatedAt       time.Time
	MemberName      *string
	MemberPhone     *string
	MemberEmail     *string
}

func (row paymentRow) payment() domain.Payment {
	return domain.Payment{
		ID:              row.ID,
		MemberID:        row.MemberID,
		TotalAmount:     row.TotalAmount,
		PaidAmount:      row.PaidAmount,
		RemainingAmount: row.RemainingAmount,
		Method:          domain.Method(row.Method),
		Status:          domain.Status(row.Status),
		TransactionID:   row.TransactionID,
		GatewayOrderID:  row.GatewayOrderID,
		Notes:           row.Notes,
		CreatedAt:       row.CreatedAt,
	}
}

// Insert appends a payment. A transaction id collision leaves the table
// untouched and reports false.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(payment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByTransactionID(ctx context.Context, db *gorm.DB, transactionID string) (*domain.Payment, error) {
	var row paymentRow
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+`
		 FROM payments p
		 WHERE p.transaction_id = ?
		 LIMIT 1`,
		transactionID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	payment := row.payment()
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status *domain.Status) ([]domain.PaymentView, error) {
	stmt := db.WithContext(ctx).
		Table("payments AS p").
		Select(paymentColumns + `, m.name AS member_name, m.phone AS member_phone, m.email AS member_email`).
		Joins("LEFT JOIN members m ON m.id = p.member_id")
	if status != nil {
		stmt = stmt.Where("p.status = ?", string(*status))
	}

	var rows []paymentRow
	if err := stmt.Order("p.created_at DESC, p.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]domain.PaymentView, 0, len(rows))
	for _, row := range rows {
		view := domain.PaymentView{Payment: row.payment()}
		if row.MemberName != nil {
			view.Member = &domain.MemberSummary{
				Name:  *row.MemberName,
				Email: row.MemberEmail,
			}
			if row.MemberPhone != nil {
				view.Member.Phone = *row.MemberPhone
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (r *repo) ListPendingDues(ctx context.Context, db *gorm.DB) ([]domain.PendingDue, error) {
	var rows []struct {
		MemberID     snowflake.ID
		TotalPending float64
		Name         string
		Phone        string
		Email        *string
	}
	err := db.WithContext(ctx).Raw(
		`SELECT p.member_id, SUM(p.remaining_amount) AS total_pending,
			m.name, m.phone, m.email
		 FROM payments p
		 JOIN members m ON m.id = p.member_id
		 WHERE p.status = ?
		 GROUP BY p.member_id, m.name, m.phone, m.email
		 ORDER BY total_pending DESC, p.member_id ASC`,
		string(domain.StatusPending),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dues := make([]domain.PendingDue, 0, len(rows))
	for _, row := range rows {
		dues = append(dues, domain.PendingDue{
			MemberID:     row.MemberID,
			TotalPending: domain.RoundMinor(row.TotalPending),
			Member: domain.MemberSummary{
				Name:  row.Name,
				Phone: row.Phone,
				Email: row.Email,
			},
		})
	}
	return dues, nil
}

func (r *repo) ListRevenueSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.RevenueEntry, error) {
	var entries []domain.RevenueEntry
	err := db.WithContext(ctx).Raw(
		`SELECT paid_amount, created_at
		 FROM payments
		 WHERE created_at >= ?
		 ORDER BY created_at ASC`,
		since.UTC(),
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) FindEvent(ctx context.Context, db *gorm.DB, provider string, providerEventID string) (*domain.EventRecord, error) {
	var item domain.EventRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, provider_event_id, event_type, payload, received_at, processed_at
		 FROM payment_events
		 WHERE provider = ? AND provider_event_id = ?
		 LIMIT 1`,
		provider,
		providerEventID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.EventRecord) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_events
		 SET processed_at = ?
		 WHERE id = ?`,
		processedAt.UTC(),
		id,
	).Error
}
