package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/config"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	"github.com/smallbiznis/gymdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/gymdesk/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/gymdesk/internal/payment/domain"
	"github.com/smallbiznis/gymdesk/internal/payment/signature"
	"github.com/smallbiznis/gymdesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	providerGateway      = "razorpay"
	eventPaymentCaptured = "payment.captured"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Config     config.Config
	Repo       paymentdomain.Repository
	MemberRepo memberdomain.Repository
	Gateway    paymentdomain.GatewayClient
	Verifier   *signature.Verifier
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	currency   string
	repo       paymentdomain.Repository
	memberRepo memberdomain.Repository
	gateway    paymentdomain.GatewayClient
	verifier   *signature.Verifier
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) paymentdomain.Service {
	currency := strings.ToUpper(strings.TrimSpace(p.Config.Gateway.Currency))
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		currency:   currency,
		repo:       p.Repo,
		memberRepo: p.MemberRepo,
		gateway:    p.Gateway,
		verifier:   p.Verifier,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) RecordManualPayment(ctx context.Context, req paymentdomain.RecordPaymentRequest) (*paymentdomain.Payment, error) {
	memberID, err := parseMemberID(req.MemberID)
	if err != nil {
		return nil, err
	}
	total, paid, err := validateAmounts(req.TotalAmount, req.PaidAmount)
	if err != nil {
		return nil, err
	}
	method, ok := paymentdomain.ParseMethod(req.Method)
	if !ok {
		return nil, paymentdomain.ErrInvalidMethod
	}

	payment := s.newPayment(memberID, total, paid, method)
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		payment.Notes = &notes
	}

	if _, _, err := s.persist(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// InitiateGatewayOrder opens a remote order tagged with the member id. No
// local state is written.
func (s *Service) InitiateGatewayOrder(ctx context.Context, req paymentdomain.CheckoutRequest) (*paymentdomain.Order, error) {
	if req.Amount <= 0 {
		return nil, paymentdomain.ErrInvalidAmount
	}
	memberID, err := parseMemberID(req.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureMember(ctx, s.db, memberID); err != nil {
		return nil, err
	}

	receipt := "receipt_" + ulid.Make().String()
	order, err := s.gateway.CreateOrder(ctx, paymentdomain.ToMinor(req.Amount), s.currency, receipt, map[string]string{
		paymentdomain.OrderNoteMemberID: memberID.String(),
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("gateway order created",
		zap.String("order_id", order.ID),
		zap.String("member_id", memberID.String()),
		zap.String("receipt", receipt),
	)
	return order, nil
}

func (s *Service) VerifyAndRecordGatewayPayment(ctx context.Context, req paymentdomain.VerifyRequest) (*paymentdomain.VerifyResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, paymentdomain.ErrInvalidOrderID
	}
	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" {
		return nil, paymentdomain.ErrInvalidPaymentID
	}
	if err := s.verifier.VerifyPaymentSignature(orderID, paymentID, req.Signature); err != nil {
		logger.WithContext(ctx, s.log).Warn("payment signature rejected", zap.String("order_id", orderID))
		return nil, err
	}

	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	memberID, err := memberFromNotes(order.Notes)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByTransactionID(ctx, s.db, paymentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &paymentdomain.VerifyResult{Payment: *existing, AlreadyRecorded: true}, nil
	}

	total, paid, err := settleGatewayAmounts(order, req.TotalAmount, req.PaidAmount)
	if err != nil {
		return nil, err
	}

	payment := s.newPayment(memberID, total, paid, paymentdomain.MethodGatewayOnline)
	payment.TransactionID = &paymentID
	payment.GatewayOrderID = &orderID

	stored, inserted, err := s.persist(ctx, payment)
	if err != nil {
		return nil, err
	}
	return &paymentdomain.VerifyResult{Payment: *stored, AlreadyRecorded: !inserted}, nil
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity webhookPayment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type webhookPayment struct {
	ID       string              `json:"id"`
	OrderID  string              `json:"order_id"`
	Amount   int64               `json:"amount"`
	Currency string              `json:"currency"`
	Status   string              `json:"status"`
	Notes    paymentdomain.Notes `json:"notes"`
}

// HandleGatewayWebhook verifies and applies a gateway webhook delivery.
// Only payment.captured changes state; duplicates are detected by the
// stored event and by the payment transaction id.
func (s *Service) HandleGatewayWebhook(ctx context.Context, rawBody []byte, sig string) (outcome paymentdomain.WebhookOutcome, err error) {
	var eventType string
	defer func() {
		result := string(outcome)
		if err != nil {
			result = "error"
		}
		s.obsMetrics.RecordWebhookEvent(ctx, eventType, result)
	}()

	if err := s.verifier.VerifyWebhookSignature(rawBody, sig); err != nil {
		return "", err
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return "", paymentdomain.ErrInvalidPayload
	}
	eventType = strings.TrimSpace(envelope.Event)
	if eventType != eventPaymentCaptured {
		return paymentdomain.WebhookIgnored, nil
	}

	entity := envelope.Payload.Payment.Entity
	entity.ID = strings.TrimSpace(entity.ID)
	if entity.ID == "" || entity.Amount <= 0 {
		return "", paymentdomain.ErrInvalidPayload
	}

	now := s.clock.Now().UTC()
	record := paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        providerGateway,
		ProviderEventID: eventType + ":" + entity.ID,
		EventType:       eventType,
		Payload:         datatypes.JSON(rawBody),
		ReceivedAt:      now,
	}
	inserted, err := s.repo.InsertEvent(ctx, s.db, &record)
	if err != nil {
		return "", err
	}
	stored := &record
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, record.Provider, record.ProviderEventID)
		if err != nil {
			return "", err
		}
		if stored == nil {
			return "", paymentdomain.ErrInvalidPayload
		}
		if stored.ProcessedAt != nil {
			return paymentdomain.WebhookAlreadyProcessed, nil
		}
	}

	memberID, err := s.webhookMember(ctx, entity)
	if err != nil {
		return "", err
	}

	amount := paymentdomain.FromMinor(entity.Amount)
	payment := s.newPayment(memberID, amount, amount, paymentdomain.MethodGatewayOnline)
	payment.TransactionID = &entity.ID
	if orderID := strings.TrimSpace(entity.OrderID); orderID != "" {
		payment.GatewayOrderID = &orderID
	}

	_, created, err := s.persist(ctx, payment)
	if err != nil {
		return "", err
	}
	if err := s.repo.MarkProcessed(ctx, s.db, stored.ID, now); err != nil {
		return "", err
	}
	if !created {
		return paymentdomain.WebhookAlreadyProcessed, nil
	}
	return paymentdomain.WebhookProcessed, nil
}

func (s *Service) List(ctx context.Context, status string) ([]paymentdomain.PaymentView, error) {
	var filter *paymentdomain.Status
	if raw := strings.TrimSpace(status); raw != "" {
		parsed, ok := paymentdomain.ParseStatus(raw)
		if !ok {
			return nil, paymentdomain.ErrInvalidStatus
		}
		filter = &parsed
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) ListPendingDues(ctx context.Context) ([]paymentdomain.PendingDue, error) {
	return s.repo.ListPendingDues(ctx, s.db)
}

func (s *Service) RevenueSince(ctx context.Context, since time.Time) ([]paymentdomain.RevenueEntry, error) {
	return s.repo.ListRevenueSince(ctx, s.db, since)
}

func (s *Service) newPayment(memberID snowflake.ID, total, paid float64, method paymentdomain.Method) *paymentdomain.Payment {
	remaining, status := paymentdomain.Settle(total, paid)
	return &paymentdomain.Payment{
		ID:              s.genID.Generate(),
		MemberID:        memberID,
		TotalAmount:     paymentdomain.RoundMinor(total),
		PaidAmount:      paymentdomain.RoundMinor(paid),
		RemainingAmount: remaining,
		Method:          method,
		Status:          status,
		CreatedAt:       s.clock.Now().UTC(),
	}
}

// persist inserts the payment and moves the member to Active or
// PendingPayment in one transaction. When the transaction id already exists
// the stored payment is returned with inserted=false and nothing is written.
func (s *Service) persist(ctx context.Context, payment *paymentdomain.Payment) (*paymentdomain.Payment, bool, error) {
	stored := payment
	inserted := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureMember(ctx, tx, payment.MemberID); err != nil {
			return err
		}

		ok, err := s.repo.Insert(ctx, tx, payment)
		if err != nil && !db.IsDuplicateKeyErr(err) {
			return err
		}
		if !ok || err != nil {
			if payment.TransactionID == nil {
				return errors.New("payment insert affected no rows")
			}
			existing, findErr := s.repo.FindByTransactionID(ctx, tx, *payment.TransactionID)
			if findErr != nil {
				return findErr
			}
			if existing == nil {
				return errors.New("payment conflict without stored row")
			}
			stored = existing
			return nil
		}

		memberStatus := memberdomain.StatusPendingPayment
		if payment.Status == paymentdomain.StatusCompleted {
			memberStatus = memberdomain.StatusActive
		}
		if err := s.memberRepo.UpdateStatus(ctx, tx, payment.MemberID, memberStatus, payment.CreatedAt); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	log := logger.WithContext(ctx, s.log)
	if !inserted {
		log.Info("payment already recorded",
			zap.String("payment_id", stored.ID.String()),
			zap.String("member_id", stored.MemberID.String()),
		)
		return stored, false, nil
	}

	s.obsMetrics.RecordPayment(ctx, string(payment.Method), string(payment.Status), payment.PaidAmount)
	log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("member_id", payment.MemberID.String()),
		zap.String("method", string(payment.Method)),
		zap.String("status", string(payment.Status)),
		zap.Float64("paid_amount", payment.PaidAmount),
	)
	return payment, true, nil
}

func (s *Service) ensureMember(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	member, err := s.memberRepo.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if member == nil {
		return memberdomain.ErrNotFound
	}
	return nil
}

// webhookMember reads the member id from the payment notes, falling back to
// the notes of the order the payment belongs to.
func (s *Service) webhookMember(ctx context.Context, entity webhookPayment) (snowflake.ID, error) {
	if id, err := memberFromNotes(entity.Notes); err == nil {
		return id, nil
	}
	if strings.TrimSpace(entity.OrderID) == "" {
		return 0, paymentdomain.ErrOrderMemberMissing
	}
	order, err := s.gateway.FetchOrder(ctx, entity.OrderID)
	if err != nil {
		return 0, err
	}
	return memberFromNotes(order.Notes)
}

func memberFromNotes(notes paymentdomain.Notes) (snowflake.ID, error) {
	raw := strings.TrimSpace(notes[paymentdomain.OrderNoteMemberID])
	if raw == "" {
		return 0, paymentdomain.ErrOrderMemberMissing
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, paymentdomain.ErrOrderMemberMissing
	}
	return id, nil
}

func parseMemberID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, paymentdomain.ErrInvalidMember
	}
	return id, nil
}

func validateAmounts(total, paid *float64) (float64, float64, error) {
	if total == nil || *total < 0 {
		return 0, 0, paymentdomain.ErrInvalidTotalAmount
	}
	if paid == nil || *paid < 0 {
		return 0, 0, paymentdomain.ErrInvalidPaidAmount
	}
	if paymentdomain.ToMinor(*paid) > paymentdomain.ToMinor(*total) {
		return 0, 0, paymentdomain.ErrPaidExceedsTotal
	}
	return *total, *paid, nil
}

// settleGatewayAmounts treats the order amount as what was actually
// charged. The client may report a larger total to leave a balance pending,
// but never a paid amount above the order.
func settleGatewayAmounts(order *paymentdomain.Order, total, paid *float64) (float64, float64, error) {
	charged := paymentdomain.FromMinor(order.Amount)
	if order.Amount <= 0 {
		if paid == nil {
			return 0, 0, paymentdomain.ErrInvalidPaidAmount
		}
		charged = *paid
	}
	if paid != nil && paymentdomain.ToMinor(*paid) > paymentdomain.ToMinor(charged) {
		return 0, 0, paymentdomain.ErrPaidExceedsOrder
	}

	settledTotal := charged
	if total != nil {
		settledTotal = *total
	}
	return validateAmounts(&settledTotal, &charged)
}
