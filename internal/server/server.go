package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/gymdesk/internal/attendance"
	attendancedomain "github.com/smallbiznis/gymdesk/internal/attendance/domain"
	"github.com/smallbiznis/gymdesk/internal/auth"
	authdomain "github.com/smallbiznis/gymdesk/internal/auth/domain"
	"github.com/smallbiznis/gymdesk/internal/authorization"
	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/smallbiznis/gymdesk/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/gymdesk/internal/dashboard/domain"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
	"github.com/smallbiznis/gymdesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/gymdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/gymdesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/gymdesk/internal/observability/tracing"
	"github.com/smallbiznis/gymdesk/internal/payment"
	paymentdomain "github.com/smallbiznis/gymdesk/internal/payment/domain"
	plandomain "github.com/smallbiznis/gymdesk/internal/plan/domain"
	"github.com/smallbiznis/gymdesk/internal/ratelimit"
	"github.com/smallbiznis/gymdesk/internal/routine"
	routinedomain "github.com/smallbiznis/gymdesk/internal/routine/domain"
	trainerdomain "github.com/smallbiznis/gymdesk/internal/trainer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the HTTP surface and the services only it consumes. Member,
// plan and trainer services are shared with the scheduler and are provided
// by the process entrypoint.
var Module = fx.Module("http.server",
	authorization.Module,
	auth.Module,
	routine.Module,
	attendance.Module,
	payment.Module,
	dashboard.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	authsvc       authdomain.Service
	authzSvc      authorization.Service
	memberSvc     memberdomain.Service
	trainerSvc    trainerdomain.Service
	planSvc       plandomain.Service
	routineSvc    routinedomain.Service
	attendanceSvc attendancedomain.Service
	paymentSvc    paymentdomain.Service
	dashboardSvc  dashboarddomain.Service

	limiter    *ratelimit.EndpointLimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Authsvc       authdomain.Service
	AuthzSvc      authorization.Service
	MemberSvc     memberdomain.Service
	TrainerSvc    trainerdomain.Service
	PlanSvc       plandomain.Service
	RoutineSvc    routinedomain.Service
	AttendanceSvc attendancedomain.Service
	PaymentSvc    paymentdomain.Service
	DashboardSvc  dashboarddomain.Service

	Limiter    *ratelimit.EndpointLimiter `optional:"true"`
	ObsMetrics *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		authsvc:       p.Authsvc,
		authzSvc:      p.AuthzSvc,
		memberSvc:     p.MemberSvc,
		trainerSvc:    p.TrainerSvc,
		planSvc:       p.PlanSvc,
		routineSvc:    p.RoutineSvc,
		attendanceSvc: p.AttendanceSvc,
		paymentSvc:    p.PaymentSvc,
		dashboardSvc:  p.DashboardSvc,
		limiter:       p.Limiter,
		obsMetrics:    p.ObsMetrics,
	}
}

// RegisterRoutes mounts every /api route. Login and the gateway webhook are
// public, register checks its own access, everything else requires a bearer
// token.
func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.RateLimit(ratelimit.EndpointLogin), s.Login)
	authGroup.POST("/register", s.Register)
	authGroup.GET("/me", s.AuthRequired(), s.Me)

	api.POST("/payments/webhook", s.RateLimit(ratelimit.EndpointWebhook), s.HandlePaymentWebhook)

	protected := api.Group("")
	protected.Use(s.AuthRequired())

	members := protected.Group("/members")
	members.GET("", s.authorize(authorization.ObjectMember, authorization.ActionView), s.ListMembers)
	members.POST("", s.authorize(authorization.ObjectMember, authorization.ActionCreate), s.CreateMember)
	members.GET("/:id", s.authorize(authorization.ObjectMember, authorization.ActionView), s.GetMember)
	members.DELETE("/:id", s.authorize(authorization.ObjectMember, authorization.ActionDelete), s.DeleteMember)
	members.PUT("/:id/assign-plan", s.authorize(authorization.ObjectMember, authorization.ActionAssign), s.AssignPlan)
	members.PUT("/:id/assign-trainer", s.authorize(authorization.ObjectMember, authorization.ActionAssign), s.AssignTrainer)
	members.GET("/:id/workout-plan", s.authorize(authorization.ObjectMemberPlan, authorization.ActionView), s.GetWorkoutPlan)
	members.PUT("/:id/workout-plan", s.authorize(authorization.ObjectMemberPlan, authorization.ActionUpdate), s.UpdateWorkoutPlan)
	members.GET("/:id/diet-plan", s.authorize(authorization.ObjectMemberPlan, authorization.ActionView), s.GetDietPlan)
	members.PUT("/:id/diet-plan", s.authorize(authorization.ObjectMemberPlan, authorization.ActionUpdate), s.UpdateDietPlan)

	trainers := protected.Group("/trainers")
	trainers.GET("", s.authorize(authorization.ObjectTrainer, authorization.ActionView), s.ListTrainers)
	trainers.POST("", s.authorize(authorization.ObjectTrainer, authorization.ActionCreate), s.CreateTrainer)
	trainers.GET("/:id", s.authorize(authorization.ObjectTrainer, authorization.ActionView), s.GetTrainer)
	trainers.DELETE("/:id", s.authorize(authorization.ObjectTrainer, authorization.ActionDelete), s.DeleteTrainer)

	plans := protected.Group("/membership-plans")
	plans.GET("", s.authorize(authorization.ObjectPlan, authorization.ActionView), s.ListPlans)
	plans.POST("", s.authorize(authorization.ObjectPlan, authorization.ActionCreate), s.CreatePlan)
	plans.GET("/:id", s.authorize(authorization.ObjectPlan, authorization.ActionView), s.GetPlan)

	routines := protected.Group("/routines")
	routines.GET("", s.authorize(authorization.ObjectRoutine, authorization.ActionView), s.ListRoutines)
	routines.POST("", s.authorize(authorization.ObjectRoutine, authorization.ActionCreate), s.CreateRoutine)

	attendanceGroup := protected.Group("/attendance")
	attendanceGroup.POST("/mark", s.authorize(authorization.ObjectAttendance, authorization.ActionMark), s.MarkAttendance)
	attendanceGroup.GET("/today", s.authorize(authorization.ObjectAttendance, authorization.ActionView), s.ListTodayAttendance)

	payments := protected.Group("/payments")
	payments.GET("", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.ListPayments)
	payments.POST("", s.authorize(authorization.ObjectPayment, authorization.ActionCreate), s.RecordPayment)
	payments.POST("/checkout", s.authorize(authorization.ObjectPayment, authorization.ActionCreate), s.Checkout)
	payments.POST("/verify", s.authorize(authorization.ObjectPayment, authorization.ActionCreate), s.VerifyPayment)
	payments.GET("/pending", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.ListPendingDues)

	protected.GET("/dashboard", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.Dashboard)
}
