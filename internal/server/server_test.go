package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	attendancerepository "github.com/smallbiznis/gymdesk/internal/attendance/repository"
	attendanceservice "github.com/smallbiznis/gymdesk/internal/attendance/service"
	authdomain "github.com/smallbiznis/gymdesk/internal/auth/domain"
	authrepository "github.com/smallbiznis/gymdesk/internal/auth/repository"
	authservice "github.com/smallbiznis/gymdesk/internal/auth/service"
	"github.com/smallbiznis/gymdesk/internal/auth/token"
	"github.com/smallbiznis/gymdesk/internal/authorization"
	"github.com/smallbiznis/gymdesk/internal/config"
	dashboardservice "github.com/smallbiznis/gymdesk/internal/dashboard/service"
	"github.com/smallbiznis/gymdesk/internal/observability"
	paymentdomain "github.com/smallbiznis/gymdesk/internal/payment/domain"
	"github.com/smallbiznis/gymdesk/internal/payment/mocks"
	paymentrepository "github.com/smallbiznis/gymdesk/internal/payment/repository"
	paymentservice "github.com/smallbiznis/gymdesk/internal/payment/service"
	"github.com/smallbiznis/gymdesk/internal/payment/signature"
	"github.com/smallbiznis/gymdesk/internal/ratelimit"
	routinerepository "github.com/smallbiznis/gymdesk/internal/routine/repository"
	routineservice "github.com/smallbiznis/gymdesk/internal/routine/service"
	"github.com/smallbiznis/gymdesk/internal/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testKeySecret     = "key_secret"
	testWebhookSecret = "webhook_secret"
	adminEmail        = "owner@gym.test"
	trainerEmail      = "coach@gym.test"
	testPassword      = "s3cret-pass"
)

type testEnv struct {
	kit          *testkit.Kit
	engine       *gin.Engine
	gateway      *mocks.MockGatewayClient
	adminToken   string
	trainerToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kit := testkit.New(t, time.Date(2025, time.March, 20, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	cfg := config.Config{Gateway: config.GatewayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
		Currency:      "INR",
	}}

	issuer, err := token.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	authSvc := authservice.New(authservice.Params{
		Log:    log,
		Config: cfg,
		Repo:   authrepository.New(kit.DB),
		Tokens: issuer,
		GenID:  kit.Node,
	})

	enforcer, err := authorization.NewEnforcer(kit.DB)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer})

	gateway := mocks.NewMockGatewayClient(gomock.NewController(t))
	paymentSvc := paymentservice.New(paymentservice.Params{
		DB:         kit.DB,
		Log:        log,
		GenID:      kit.Node,
		Clock:      kit.Clock,
		Config:     cfg,
		Repo:       paymentrepository.Provide(),
		MemberRepo: kit.MemberRepo,
		Gateway:    gateway,
		Verifier:   signature.NewVerifier(cfg.Gateway),
	})

	engine := NewEngine(observability.Config{}, nil)
	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		Log:        log,
		Authsvc:    authSvc,
		AuthzSvc:   authzSvc,
		MemberSvc:  kit.Members,
		TrainerSvc: kit.Trainers,
		PlanSvc:    kit.Plans,
		RoutineSvc: routineservice.New(routineservice.Params{
			DB: kit.DB, Log: log, GenID: kit.Node, Repo: routinerepository.Provide(),
			Members: kit.Members, Trainers: kit.Trainers,
		}),
		AttendanceSvc: attendanceservice.New(attendanceservice.Params{
			DB: kit.DB, Log: log, GenID: kit.Node, Clock: kit.Clock,
			Repo: attendancerepository.Provide(), Members: kit.Members,
		}),
		PaymentSvc: paymentSvc,
		DashboardSvc: dashboardservice.NewService(dashboardservice.Params{
			Log: log, Clock: kit.Clock, Members: kit.Members, Trainers: kit.Trainers, Payments: paymentSvc,
		}),
		Limiter: ratelimit.NewEndpointLimiter(nil, log),
	})
	srv.RegisterRoutes()

	env := &testEnv{kit: kit, engine: engine, gateway: gateway}
	env.adminToken = registerAndLogin(t, authSvc, "Owner", adminEmail, authdomain.RoleAdmin)
	env.trainerToken = registerAndLogin(t, authSvc, "Coach", trainerEmail, authdomain.RoleTrainer)
	return env
}

func registerAndLogin(t *testing.T, svc authdomain.Service, name, email, role string) string {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Register(ctx, authdomain.RegisterRequest{Name: name, Email: email, Password: testPassword, Role: role})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, authdomain.LoginRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		payload = v
	default:
		var err error
		payload, err = json.Marshal(v)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Error   *errorPayload   `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) createMember(t *testing.T, body map[string]any) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/members", e.adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var member struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &member))
	return member.ID
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/members", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode(t, rec).Error.Type)

	rec = env.do(t, http.MethodGet, "/api/members", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": adminEmail, "password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login authdomain.LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, authdomain.RoleAdmin, login.Role)

	rec = env.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &me))
	assert.Equal(t, adminEmail, me["email"])
	assert.NotContains(t, me, "passwordHash")

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": adminEmail, "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Walk-in", "email": "walkin@gym.test", "password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", env.trainerToken, map[string]string{
		"name": "Walk-in", "email": "walkin@gym.test", "password": testPassword,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", env.adminToken, map[string]string{
		"name": "Short", "email": "short@gym.test", "password": "123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation_error", body.Error.Type)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "password", body.Error.Errors[0].Field)
	assert.Equal(t, "password_too_short", body.Error.Errors[0].Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", env.adminToken, map[string]string{
		"name": "Again", "email": adminEmail, "password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", env.adminToken, []byte("{"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request", decode(t, rec).Error.Errors[0].Field)
}

func TestMemberEndpoints(t *testing.T) {
	env := newTestEnv(t)

	id := env.createMember(t, map[string]any{"name": "Asha", "phone": "9000000001", "email": "asha@gym.test"})

	rec := env.do(t, http.MethodPost, "/api/members", env.adminToken, map[string]any{"name": "No Phone"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "phone", decode(t, rec).Error.Errors[0].Field)

	rec = env.do(t, http.MethodPost, "/api/members", env.adminToken, map[string]any{
		"name": "Dup", "phone": "9000000002", "email": "asha@gym.test",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/members/"+id, env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var member map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &member))
	assert.Equal(t, "Asha", member["name"])
	assert.Equal(t, "Active", member["status"])

	rec = env.do(t, http.MethodGet, "/api/members/123456789", env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec).Error.Type)

	rec = env.do(t, http.MethodGet, "/api/members/abc", env.adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "memberId", decode(t, rec).Error.Errors[0].Field)

	rec = env.do(t, http.MethodGet, "/api/members", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.Len(t, list, 1)

	rec = env.do(t, http.MethodDelete, "/api/members/"+id, env.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/members/"+id, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrainerRoleRestrictions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/members", env.trainerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/api/payments", "/api/payments/pending", "/api/dashboard"} {
		rec = env.do(t, http.MethodGet, path, env.trainerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "forbidden", decode(t, rec).Error.Type, path)
	}

	rec = env.do(t, http.MethodPost, "/api/members", env.trainerToken, map[string]any{"name": "X", "phone": "1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTrainerUpdatesOnlyAssignedMembers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/trainers", env.adminToken, map[string]any{
		"name": "Coach", "phone": "9000000100", "email": trainerEmail,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var trainer struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &trainer))

	mine := env.createMember(t, map[string]any{"name": "Mine", "phone": "9000000003"})
	other := env.createMember(t, map[string]any{"name": "Other", "phone": "9000000004"})

	rec = env.do(t, http.MethodPut, "/api/members/"+mine+"/assign-trainer", env.adminToken, map[string]string{"trainerId": trainer.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	plan := map[string]any{"title": "Strength", "exercises": []string{"Squat", " ", "Bench"}}
	rec = env.do(t, http.MethodPut, "/api/members/"+mine+"/workout-plan", env.trainerToken, plan)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/members/"+mine+"/workout-plan", env.trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Title     string   `json:"title"`
		Exercises []string `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
	assert.Equal(t, "Strength", got.Title)
	assert.Equal(t, []string{"Squat", "Bench"}, got.Exercises)

	rec = env.do(t, http.MethodPut, "/api/members/"+other+"/diet-plan", env.trainerToken, map[string]any{
		"title": "Cut", "meals": []string{"Oats"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/members/"+other+"/diet-plan", env.adminToken, map[string]any{
		"title": "Cut", "meals": []string{"Oats"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlanEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/membership-plans", env.adminToken, map[string]any{
		"name": "Gold Annual", "durationMonths": 12, "price": 12000, "features": "Pool, Sauna",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/membership-plans", env.adminToken, map[string]any{
		"name": "Gold Annual", "durationMonths": 12, "price": 12000,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/membership-plans", env.adminToken, map[string]any{
		"name": "Broken", "durationMonths": 0, "price": 10,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_duration", decode(t, rec).Error.Errors[0].Code)

	rec = env.do(t, http.MethodGet, "/api/membership-plans", env.trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plans []struct {
		Name     string   `json:"name"`
		Features []string `json:"features"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, []string{"Pool", "Sauna"}, plans[0].Features)
}

func TestAttendanceMarkTwice(t *testing.T) {
	env := newTestEnv(t)
	id := env.createMember(t, map[string]any{"name": "Kiran", "phone": "9000000005"})

	rec := env.do(t, http.MethodPost, "/api/attendance/mark", env.trainerToken, map[string]string{"memberId": id})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/attendance/mark", env.trainerToken, map[string]string{"memberId": id})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Kiran has already checked in today.", body.Error.Message)
	assert.Equal(t, "already_checked_in", body.Error.Errors[0].Code)

	rec = env.do(t, http.MethodGet, "/api/attendance/today", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var today []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &today))
	assert.Len(t, today, 1)
}

func TestRoutineEndpoints(t *testing.T) {
	env := newTestEnv(t)
	id := env.createMember(t, map[string]any{"name": "Meera", "phone": "9000000006"})

	rec := env.do(t, http.MethodPost, "/api/routines", env.trainerToken, map[string]any{
		"memberId": id,
		"name":     "Push day",
		"exercises": []map[string]any{
			{"day": "Monday", "exerciseName": "Bench", "sets": 4, "reps": 8},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/routines", env.trainerToken, map[string]any{"name": "No member"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/routines?memberId="+id, env.trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var routines []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &routines))
	assert.Len(t, routines, 1)
}

func TestManualPaymentAndPendingDues(t *testing.T) {
	env := newTestEnv(t)
	id := env.createMember(t, map[string]any{"name": "Ravi", "phone": "9000000007"})

	rec := env.do(t, http.MethodPost, "/api/payments", env.adminToken, map[string]any{
		"memberId": id, "totalAmount": 12000, "paidAmount": 5000, "method": "Cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var payment paymentdomain.Payment
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &payment))
	assert.Equal(t, paymentdomain.StatusPending, payment.Status)
	assert.Equal(t, 7000.0, payment.RemainingAmount)

	rec = env.do(t, http.MethodPost, "/api/payments", env.adminToken, map[string]any{
		"memberId": id, "totalAmount": 100, "paidAmount": 500, "method": "Cash",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "paid_amount_exceeds_total", decode(t, rec).Error.Errors[0].Code)

	rec = env.do(t, http.MethodGet, "/api/payments/pending", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dues []paymentdomain.PendingDue
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &dues))
	require.Len(t, dues, 1)
	assert.Equal(t, 7000.0, dues[0].TotalPending)
	assert.Equal(t, "Ravi", dues[0].Member.Name)

	rec = env.do(t, http.MethodGet, "/api/payments?status=bogus", env.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutAndVerify(t *testing.T) {
	env := newTestEnv(t)
	id := env.createMember(t, map[string]any{"name": "Sana", "phone": "9000000008"})

	env.gateway.EXPECT().
		CreateOrder(gomock.Any(), int64(150000), "INR", gomock.Any(), map[string]string{"memberId": id}).
		Return(&paymentdomain.Order{ID: "order_1", Amount: 150000, Currency: "INR", Notes: map[string]string{"memberId": id}}, nil)

	rec := env.do(t, http.MethodPost, "/api/payments/checkout", env.adminToken, map[string]any{"amount": 1500, "memberId": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var checkout struct {
		Order paymentdomain.Order `json:"order"`
		KeyID string              `json:"keyId"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &checkout))
	assert.Equal(t, "order_1", checkout.Order.ID)
	assert.Equal(t, "rzp_test_key", checkout.KeyID)

	env.gateway.EXPECT().FetchOrder(gomock.Any(), "order_1").
		Return(&paymentdomain.Order{ID: "order_1", Amount: 150000, Notes: map[string]string{"memberId": id}}, nil).
		Times(2)

	verify := map[string]any{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  signature.Sign([]byte(testKeySecret), []byte("order_1|pay_1")),
		"totalAmount":         1500,
		"paidAmount":          1500,
	}
	rec = env.do(t, http.MethodPost, "/api/payments/verify", env.adminToken, verify)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Payment verified", decode(t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/payments/verify", env.adminToken, verify)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Already recorded", decode(t, rec).Message)

	verify["razorpay_signature"] = "deadbeef"
	rec = env.do(t, http.MethodPost, "/api/payments/verify", env.adminToken, verify)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "invalid_signature", body.Error.Type)
	assert.NotContains(t, rec.Body.String(), signature.Sign([]byte(testKeySecret), []byte("order_1|pay_1")))
}

func TestCheckoutGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	id := env.createMember(t, map[string]any{"name": "Nia", "phone": "9000000009"})

	env.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, paymentdomain.ErrGateway)

	rec := env.do(t, http.MethodPost, "/api/payments/checkout", env.adminToken, map[string]any{"amount": 10, "memberId": id})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "gateway_error", decode(t, rec).Error.Type)
}

func TestWebhookIsPublicAndSigned(t *testing.T) {
	env := newTestEnv(t)
	id := env.createMember(t, map[string]any{"name": "Lina", "phone": "9000000010"})

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_w","order_id":"order_w","amount":250000,"currency":"INR","status":"captured","notes":{"memberId":"` + id + `"}}}}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set(signatureHeader, "bad")
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_signature", decode(t, rec).Error.Type)

	sig := signature.Sign([]byte(testWebhookSecret), body)
	for _, want := range []string{"processed", "already_processed"} {
		req = httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
		req.Header.Set(signatureHeader, sig)
		rec = httptest.NewRecorder()
		env.engine.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, want, decode(t, rec).Status)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createMember(t, map[string]any{"name": "Dev", "phone": "9000000011"})

	rec := env.do(t, http.MethodGet, "/api/dashboard?months=3", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats struct {
		TotalMembers int64 `json:"totalMembers"`
		ChartData    []struct {
			Name string `json:"name"`
		} `json:"chartData"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &stats))
	assert.Equal(t, int64(1), stats.TotalMembers)
	require.Len(t, stats.ChartData, 3)
	assert.Equal(t, []string{"Jan", "Feb", "Mar"}, []string{stats.ChartData[0].Name, stats.ChartData[1].Name, stats.ChartData[2].Name})

	rec = env.do(t, http.MethodGet, "/api/dashboard?months=many", env.adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "months", decode(t, rec).Error.Errors[0].Field)

	rec = env.do(t, http.MethodGet, "/api/dashboard?months=120", env.adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decode(t, rec)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "months", body.Error.Errors[0].Field)
	assert.Equal(t, "months_out_of_range", body.Error.Errors[0].Code)
}
