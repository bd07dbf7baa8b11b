package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RecordPaymentRequest struct {
	MemberID    string
	TotalAmount *float64
	PaidAmount  *float64
	Method      string
	Notes       string
}

type CheckoutRequest struct {
	Amount   float64
	MemberID string
}

type VerifyRequest struct {
	OrderID     string
	PaymentID   string
	Signature   string
	TotalAmount *float64
	PaidAmount  *float64
}

type VerifyResult struct {
	Payment         Payment
	AlreadyRecorded bool
}

type WebhookOutcome string

const (
	WebhookProcessed        WebhookOutcome = "processed"
	WebhookAlreadyProcessed WebhookOutcome = "already_processed"
	WebhookIgnored          WebhookOutcome = "ignored"
)

type Service interface {
	RecordManualPayment(ctx context.Context, req RecordPaymentRequest) (*Payment, error)
	InitiateGatewayOrder(ctx context.Context, req CheckoutRequest) (*Order, error)
	VerifyAndRecordGatewayPayment(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
	HandleGatewayWebhook(ctx context.Context, rawBody []byte, signature string) (WebhookOutcome, error)
	List(ctx context.Context, status string) ([]PaymentView, error)
	ListPendingDues(ctx context.Context) ([]PendingDue, error)
	RevenueSince(ctx context.Context, since time.Time) ([]RevenueEntry, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) (bool, error)
	FindByTransactionID(ctx context.Context, db *gorm.DB, transactionID string) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, status *Status) ([]PaymentView, error)
	ListPendingDues(ctx context.Context, db *gorm.DB) ([]PendingDue, error)
	ListRevenueSince(ctx context.Context, db *gorm.DB, since time.Time) ([]RevenueEntry, error)

	FindEvent(ctx context.Context, db *gorm.DB, provider string, providerEventID string) (*EventRecord, error)
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) (bool, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
}

//go:generate mockgen -source=service.go -destination=../mocks/mock_gateway.go -package=mocks GatewayClient

// GatewayClient talks to the hosted payment gateway.
type GatewayClient interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}

var (
	ErrInvalidMember        = errors.New("invalid_member_id")
	ErrInvalidTotalAmount   = errors.New("invalid_total_amount")
	ErrInvalidPaidAmount    = errors.New("invalid_paid_amount")
	ErrPaidExceedsTotal     = errors.New("paid_amount_exceeds_total")
	ErrPaidExceedsOrder     = errors.New("paid_amount_exceeds_order")
	ErrInvalidMethod        = errors.New("invalid_method")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidOrderID       = errors.New("invalid_order_id")
	ErrInvalidPaymentID     = errors.New("invalid_payment_id")
	ErrInvalidPayload       = errors.New("invalid_payload")
	ErrOrderMemberMissing   = errors.New("invalid_order_member")
	ErrSignatureMismatch    = errors.New("invalid_signature")
	ErrGateway              = errors.New("gateway_error")
	ErrGatewayNotConfigured = errors.New("gateway_not_configured")
)
