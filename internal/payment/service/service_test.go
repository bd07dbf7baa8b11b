package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/gymdesk/internal/config"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	"github.com/smallbiznis/gymdesk/internal/payment/domain"
	"github.com/smallbiznis/gymdesk/internal/payment/mocks"
	"github.com/smallbiznis/gymdesk/internal/payment/repository"
	"github.com/smallbiznis/gymdesk/internal/payment/signature"
	"github.com/smallbiznis/gymdesk/internal/testkit"
	"github.com/smallbiznis/gymdesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keySecret     = "key_secret"
	webhookSecret = "webhook_secret"
)

type fixture struct {
	kit     *testkit.Kit
	gateway *mocks.MockGatewayClient
	svc     domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kit := testkit.New(t, time.Date(2025, time.April, 15, 10, 0, 0, 0, time.UTC))
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGatewayClient(ctrl)

	cfg := config.Config{Gateway: config.GatewayConfig{
		KeySecret:     keySecret,
		WebhookSecret: webhookSecret,
		Currency:      "INR",
	}}
	svc := New(Params{
		DB:         kit.DB,
		Log:        kit.Log,
		GenID:      kit.Node,
		Clock:      kit.Clock,
		Config:     cfg,
		Repo:       repository.Provide(),
		MemberRepo: kit.MemberRepo,
		Gateway:    gateway,
		Verifier:   signature.NewVerifier(cfg.Gateway),
	})
	return &fixture{kit: kit, gateway: gateway, svc: svc}
}

func (f *fixture) member(t *testing.T, name, phone string) memberdomain.Member {
	t.Helper()
	m, err := f.kit.Members.Create(context.Background(), memberdomain.CreateMemberRequest{Name: name, Phone: phone})
	require.NoError(t, err)
	return m
}

func (f *fixture) memberStatus(t *testing.T, m memberdomain.Member) memberdomain.Status {
	t.Helper()
	got, err := f.kit.Members.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	return got.Status
}

func amount(v float64) *float64 { return &v }

func TestRecordManualPaymentCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Ravi", "9000000001")

	payment, err := f.svc.RecordManualPayment(ctx, domain.RecordPaymentRequest{
		MemberID:    m.ID.String(),
		TotalAmount: amount(12000),
		PaidAmount:  amount(12000),
		Method:      "Cash",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, payment.Status)
	assert.Equal(t, 0.0, payment.RemainingAmount)
	assert.Equal(t, domain.MethodCash, payment.Method)
	assert.Equal(t, memberdomain.StatusActive, f.memberStatus(t, m))
}

func TestRecordManualPaymentPartialMarksPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Meera", "9000000002")

	payment, err := f.svc.RecordManualPayment(ctx, domain.RecordPaymentRequest{
		MemberID:    m.ID.String(),
		TotalAmount: amount(12000),
		PaidAmount:  amount(5000),
		Method:      "Bank Transfer",
		Notes:       " first installment ",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, payment.Status)
	assert.Equal(t, 7000.0, payment.RemainingAmount)
	assert.Equal(t, domain.MethodBankTransfer, payment.Method)
	require.NotNil(t, payment.Notes)
	assert.Equal(t, "first installment", *payment.Notes)
	assert.Equal(t, memberdomain.StatusPendingPayment, f.memberStatus(t, m))

	dues, err := f.svc.ListPendingDues(ctx)
	require.NoError(t, err)
	require.Len(t, dues, 1)
	assert.Equal(t, m.ID, dues[0].MemberID)
	assert.Equal(t, 7000.0, dues[0].TotalPending)
	assert.Equal(t, "Meera", dues[0].Member.Name)
}

func TestRecordManualPaymentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Kiran", "9000000003")

	cases := []struct {
		name string
		req  domain.RecordPaymentRequest
		want error
	}{
		{"missing member", domain.RecordPaymentRequest{TotalAmount: amount(1), PaidAmount: amount(1)}, domain.ErrInvalidMember},
		{"missing total", domain.RecordPaymentRequest{MemberID: m.ID.String(), PaidAmount: amount(1)}, domain.ErrInvalidTotalAmount},
		{"negative paid", domain.RecordPaymentRequest{MemberID: m.ID.String(), TotalAmount: amount(1), PaidAmount: amount(-1)}, domain.ErrInvalidPaidAmount},
		{"paid above total", domain.RecordPaymentRequest{MemberID: m.ID.String(), TotalAmount: amount(100), PaidAmount: amount(100.01)}, domain.ErrPaidExceedsTotal},
		{"unknown method", domain.RecordPaymentRequest{MemberID: m.ID.String(), TotalAmount: amount(1), PaidAmount: amount(1), Method: "cheque"}, domain.ErrInvalidMethod},
		{"unknown member", domain.RecordPaymentRequest{MemberID: "42", TotalAmount: amount(1), PaidAmount: amount(1)}, memberdomain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RecordManualPayment(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, int64(0), dbtest.Count(t, f.kit.DB, "SELECT COUNT(*) FROM payments"))
}

func TestInitiateGatewayOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Asha", "9000000004")

	f.gateway.EXPECT().
		CreateOrder(gomock.Any(), int64(150050), "INR", gomock.Any(), map[string]string{"memberId": m.ID.String()}).
		DoAndReturn(func(_ context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*domain.Order, error) {
			assert.Contains(t, receipt, "receipt_")
			return &domain.Order{ID: "order_1", Amount: amountMinor, Currency: currency, Receipt: receipt, Notes: notes}, nil
		})

	order, err := f.svc.InitiateGatewayOrder(ctx, domain.CheckoutRequest{Amount: 1500.5, MemberID: m.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)

	_, err = f.svc.InitiateGatewayOrder(ctx, domain.CheckoutRequest{Amount: 0, MemberID: m.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.svc.InitiateGatewayOrder(ctx, domain.CheckoutRequest{Amount: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidMember)
	_, err = f.svc.InitiateGatewayOrder(ctx, domain.CheckoutRequest{Amount: 10, MemberID: "99"})
	assert.ErrorIs(t, err, memberdomain.ErrNotFound)
}

func TestInitiateGatewayOrderGatewayFailure(t *testing.T) {
	f := newFixture(t)
	m := f.member(t, "Dev", "9000000005")

	f.gateway.EXPECT().
		CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrGateway)

	_, err := f.svc.InitiateGatewayOrder(context.Background(), domain.CheckoutRequest{Amount: 10, MemberID: m.ID.String()})
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestVerifyAndRecordGatewayPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Sana", "9000000006")

	order := &domain.Order{ID: "order_9", Amount: 1200000, Notes: map[string]string{"memberId": m.ID.String()}}
	f.gateway.EXPECT().FetchOrder(gomock.Any(), "order_9").Return(order, nil).Times(2)

	req := domain.VerifyRequest{
		OrderID:     "order_9",
		PaymentID:   "pay_9",
		Signature:   signature.Sign([]byte(keySecret), []byte("order_9|pay_9")),
		TotalAmount: amount(12000),
		PaidAmount:  amount(12000),
	}
	first, err := f.svc.VerifyAndRecordGatewayPayment(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.AlreadyRecorded)
	assert.Equal(t, domain.MethodGatewayOnline, first.Payment.Method)
	assert.Equal(t, domain.StatusCompleted, first.Payment.Status)
	require.NotNil(t, first.Payment.TransactionID)
	assert.Equal(t, "pay_9", *first.Payment.TransactionID)
	assert.Equal(t, memberdomain.StatusActive, f.memberStatus(t, m))

	second, err := f.svc.VerifyAndRecordGatewayPayment(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.AlreadyRecorded)
	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	assert.Equal(t, int64(1), dbtest.Count(t, f.kit.DB, "SELECT COUNT(*) FROM payments"))
}

func TestVerifyRejectsBadSignatureBeforeGatewayCall(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.VerifyAndRecordGatewayPayment(context.Background(), domain.VerifyRequest{
		OrderID:     "order_1",
		PaymentID:   "pay_1",
		Signature:   signature.Sign([]byte("wrong"), []byte("order_1|pay_1")),
		TotalAmount: amount(10),
		PaidAmount:  amount(10),
	})
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
	assert.NotContains(t, err.Error(), signature.Sign([]byte(keySecret), []byte("order_1|pay_1")))
}

func TestVerifyUsesOrderAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Omar", "9000000008")

	f.gateway.EXPECT().FetchOrder(gomock.Any(), gomock.Any()).
		Return(&domain.Order{ID: "order_p", Amount: 500000, Notes: map[string]string{"memberId": m.ID.String()}}, nil).
		AnyTimes()

	sign := func(paymentID string) string {
		return signature.Sign([]byte(keySecret), []byte("order_p|"+paymentID))
	}

	_, err := f.svc.VerifyAndRecordGatewayPayment(ctx, domain.VerifyRequest{
		OrderID: "order_p", PaymentID: "pay_a", Signature: sign("pay_a"),
		TotalAmount: amount(9000), PaidAmount: amount(9000),
	})
	assert.ErrorIs(t, err, domain.ErrPaidExceedsOrder)

	res, err := f.svc.VerifyAndRecordGatewayPayment(ctx, domain.VerifyRequest{
		OrderID: "order_p", PaymentID: "pay_b", Signature: sign("pay_b"),
		TotalAmount: amount(12000),
	})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, res.Payment.PaidAmount)
	assert.Equal(t, 7000.0, res.Payment.RemainingAmount)
	assert.Equal(t, domain.StatusPending, res.Payment.Status)
	assert.Equal(t, memberdomain.StatusPendingPayment, f.memberStatus(t, m))
}

func TestVerifyRequiresMemberOnOrder(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().FetchOrder(gomock.Any(), "order_x").Return(&domain.Order{ID: "order_x", Amount: 100}, nil)

	_, err := f.svc.VerifyAndRecordGatewayPayment(context.Background(), domain.VerifyRequest{
		OrderID: "order_x", PaymentID: "pay_x",
		Signature: signature.Sign([]byte(keySecret), []byte("order_x|pay_x")),
	})
	assert.ErrorIs(t, err, domain.ErrOrderMemberMissing)
}

func webhookBody(event, paymentID, orderID, memberID string, amountMinor int) []byte {
	notes := "{}"
	if memberID != "" {
		notes = `{"memberId":"` + memberID + `"}`
	}
	return webhookBodyWithNotes(event, paymentID, orderID, notes, amountMinor)
}

func webhookBodyWithNotes(event, paymentID, orderID, notes string, amountMinor int) []byte {
	return []byte(`{"event":"` + event + `","payload":{"payment":{"entity":{"id":"` + paymentID +
		`","order_id":"` + orderID + `","amount":` + strconv.Itoa(amountMinor) + `,"currency":"INR","status":"captured","notes":` + notes + `}}}}`)
}

func TestHandleGatewayWebhookCaptured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Lina", "9000000009")

	body := webhookBody("payment.captured", "pay_w1", "order_w1", m.ID.String(), 250000)
	sig := signature.Sign([]byte(webhookSecret), body)

	outcome, err := f.svc.HandleGatewayWebhook(ctx, body, sig)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookProcessed, outcome)
	assert.Equal(t, memberdomain.StatusActive, f.memberStatus(t, m))

	payments, err := f.svc.List(ctx, "completed")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 2500.0, payments[0].TotalAmount)
	assert.Equal(t, 2500.0, payments[0].PaidAmount)
	require.NotNil(t, payments[0].Member)
	assert.Equal(t, "Lina", payments[0].Member.Name)

	outcome, err = f.svc.HandleGatewayWebhook(ctx, body, sig)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookAlreadyProcessed, outcome)
	assert.Equal(t, int64(1), dbtest.Count(t, f.kit.DB, "SELECT COUNT(*) FROM payments"))
}

func TestHandleGatewayWebhookFallsBackToOrderNotes(t *testing.T) {
	f := newFixture(t)
	m := f.member(t, "Noor", "9000000010")
	f.gateway.EXPECT().FetchOrder(gomock.Any(), "order_w2").
		Return(&domain.Order{ID: "order_w2", Notes: map[string]string{"memberId": m.ID.String()}}, nil)

	body := webhookBody("payment.captured", "pay_w2", "order_w2", "", 100)
	outcome, err := f.svc.HandleGatewayWebhook(context.Background(), body, signature.Sign([]byte(webhookSecret), body))
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookProcessed, outcome)
}

func TestHandleGatewayWebhookEmptyNotesArray(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Ravi", "9000000011")
	f.gateway.EXPECT().FetchOrder(gomock.Any(), "order_w5").
		Return(&domain.Order{ID: "order_w5", Notes: domain.Notes{"memberId": m.ID.String()}}, nil)

	body := webhookBodyWithNotes("payment.captured", "pay_w5", "order_w5", "[]", 40000)
	outcome, err := f.svc.HandleGatewayWebhook(ctx, body, signature.Sign([]byte(webhookSecret), body))
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookProcessed, outcome)
	assert.Equal(t, memberdomain.StatusActive, f.memberStatus(t, m))
	assert.Equal(t, int64(1), dbtest.Count(t, f.kit.DB, "SELECT COUNT(*) FROM payments WHERE transaction_id = ?", "pay_w5"))
}

func TestWebhookAfterVerifyDoesNotRecordTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Ivy", "9000000012")
	f.gateway.EXPECT().FetchOrder(gomock.Any(), "order_v1").
		Return(&domain.Order{ID: "order_v1", Amount: 300000, Notes: domain.Notes{"memberId": m.ID.String()}}, nil)

	verified, err := f.svc.VerifyAndRecordGatewayPayment(ctx, domain.VerifyRequest{
		OrderID:   "order_v1",
		PaymentID: "pay_v1",
		Signature: signature.Sign([]byte(keySecret), []byte("order_v1|pay_v1")),
	})
	require.NoError(t, err)
	assert.False(t, verified.AlreadyRecorded)

	body := webhookBody("payment.captured", "pay_v1", "order_v1", m.ID.String(), 300000)
	outcome, err := f.svc.HandleGatewayWebhook(ctx, body, signature.Sign([]byte(webhookSecret), body))
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookAlreadyProcessed, outcome)

	assert.Equal(t, int64(1), dbtest.Count(t, f.kit.DB, "SELECT COUNT(*) FROM payments"))
	assert.Equal(t, int64(1), dbtest.Count(t, f.kit.DB,
		"SELECT COUNT(*) FROM payment_events WHERE provider_event_id = ? AND processed_at IS NOT NULL", "payment.captured:pay_v1"))
}

func TestVerifyAfterWebhookReportsAlreadyRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Joel", "9000000013")

	body := webhookBody("payment.captured", "pay_v2", "order_v2", m.ID.String(), 300000)
	outcome, err := f.svc.HandleGatewayWebhook(ctx, body, signature.Sign([]byte(webhookSecret), body))
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookProcessed, outcome)

	f.gateway.EXPECT().FetchOrder(gomock.Any(), "order_v2").
		Return(&domain.Order{ID: "order_v2", Amount: 300000, Notes: domain.Notes{"memberId": m.ID.String()}}, nil)
	res, err := f.svc.VerifyAndRecordGatewayPayment(ctx, domain.VerifyRequest{
		OrderID:   "order_v2",
		PaymentID: "pay_v2",
		Signature: signature.Sign([]byte(keySecret), []byte("order_v2|pay_v2")),
	})
	require.NoError(t, err)
	assert.True(t, res.AlreadyRecorded)
	require.NotNil(t, res.Payment.TransactionID)
	assert.Equal(t, "pay_v2", *res.Payment.TransactionID)
	assert.Equal(t, int64(1), dbtest.Count(t, f.kit.DB, "SELECT COUNT(*) FROM payments"))
}

func TestHandleGatewayWebhookIgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)
	body := webhookBody("payment.failed", "pay_w3", "order_w3", "1", 100)

	outcome, err := f.svc.HandleGatewayWebhook(context.Background(), body, signature.Sign([]byte(webhookSecret), body))
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookIgnored, outcome)
	assert.Equal(t, int64(0), dbtest.Count(t, f.kit.DB, "SELECT COUNT(*) FROM payment_events"))
}

func TestHandleGatewayWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	body := webhookBody("payment.captured", "pay_w4", "order_w4", "1", 100)

	_, err := f.svc.HandleGatewayWebhook(context.Background(), body, signature.Sign([]byte(keySecret), body))
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)

	_, err = f.svc.HandleGatewayWebhook(context.Background(), []byte("not json"), signature.Sign([]byte(webhookSecret), []byte("not json")))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), "refunded")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRevenueSince(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "Iqbal", "9000000011")

	_, err := f.svc.RecordManualPayment(ctx, domain.RecordPaymentRequest{MemberID: m.ID.String(), TotalAmount: amount(300), PaidAmount: amount(300)})
	require.NoError(t, err)

	entries, err := f.svc.RevenueSince(ctx, f.kit.Clock.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 300.0, entries[0].PaidAmount)

	entries, err = f.svc.RevenueSince(ctx, f.kit.Clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
