package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/clock"
	"github.com/escolaris/finance/internal/config"
	allocationdomain "github.com/escolaris/finance/internal/allocation/domain"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	obsmetrics "github.com/escolaris/finance/internal/observability/metrics"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
	reminderdomain "github.com/escolaris/finance/internal/reminder/domain"
	snapshotdomain "github.com/escolaris/finance/internal/risksnapshot/domain"
	studentdomain "github.com/escolaris/finance/internal/student/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type ServerParams struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Cfg           config.Config
	Clock         clock.Clock
	DebtSvc       debtdomain.Service
	PaymentSvc    paymentdomain.Service
	AllocationSvc allocationdomain.Service
	ReminderSvc   reminderdomain.Service
	SnapshotSvc   snapshotdomain.Service
	StudentRepo   studentdomain.Repository
	DebtRepo      debtdomain.Repository
	PaymentRepo   paymentdomain.Repository
	ReminderRepo  reminderdomain.Repository
	SnapshotRepo  snapshotdomain.Repository
}

type Server struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           config.Config
	clock         clock.Clock
	debtSvc       debtdomain.Service
	paymentSvc    paymentdomain.Service
	allocationSvc allocationdomain.Service
	reminderSvc   reminderdomain.Service
	snapshotSvc   snapshotdomain.Service
	studentRepo   studentdomain.Repository
	debtRepo      debtdomain.Repository
	paymentRepo   paymentdomain.Repository
	reminderRepo  reminderdomain.Repository
	snapshotRepo  snapshotdomain.Repository
}

func NewServer(p ServerParams) *Server {
	return &Server{
		db:            p.DB,
		log:           p.Log.Named("http.server"),
		cfg:           p.Cfg,
		clock:         p.Clock,
		debtSvc:       p.DebtSvc,
		paymentSvc:    p.PaymentSvc,
		allocationSvc: p.AllocationSvc,
		reminderSvc:   p.ReminderSvc,
		snapshotSvc:   p.SnapshotSvc,
		studentRepo:   p.StudentRepo,
		debtRepo:      p.DebtRepo,
		paymentRepo:   p.PaymentRepo,
		reminderRepo:  p.ReminderRepo,
		snapshotRepo:  p.SnapshotRepo,
	}
}

func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api/v1")

	api.POST("/debts", s.CreateDebt)
	api.GET("/debts/:id", s.GetDebt)
	api.DELETE("/debts/:id", s.DeleteDebt)
	api.GET("/debts/:id/notifications", s.ListDebtNotifications)

	api.POST("/payments", s.RegisterPayment)
	api.GET("/payments/:id", s.GetPayment)
	api.POST("/payments/:id/confirm", s.ConfirmPayment)

	api.GET("/students/:id/statement", s.GetStatement)
	api.GET("/students/:id/risk", s.GetRisk)
	api.GET("/students/:id/risk-snapshots", s.ListRiskSnapshots)
	api.POST("/students/:id/allocations", s.RunAllocation)

	api.POST("/risk-snapshots", s.GenerateRiskSnapshots)
	api.POST("/reminders/sweep", s.RunReminderSweep)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
