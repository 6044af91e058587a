package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/aggregate"
	"github.com/terminal-bench/reliefops/internal/anomaly"
	"github.com/terminal-bench/reliefops/internal/cache"
	"github.com/terminal-bench/reliefops/internal/config"
	"github.com/terminal-bench/reliefops/internal/handlers"
	"github.com/terminal-bench/reliefops/internal/logging"
	"github.com/terminal-bench/reliefops/internal/metrics"
	"github.com/terminal-bench/reliefops/internal/middleware"
	"github.com/terminal-bench/reliefops/internal/repository"
	"github.com/terminal-bench/reliefops/internal/services/dashboard"
	"github.com/terminal-bench/reliefops/internal/services/export"
	"github.com/terminal-bench/reliefops/internal/services/notification"
	"github.com/terminal-bench/reliefops/internal/services/resources"
	"github.com/terminal-bench/reliefops/internal/services/tickets"
	"github.com/terminal-bench/reliefops/internal/triage"
	"github.com/terminal-bench/reliefops/pkg/messaging"
)

type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	db        *sql.DB
	redis     *redis.Client
	nats      *messaging.Client
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	tickets   *tickets.Service
	resources *resources.Service
	dashboard *dashboard.Service
	alerts    *notification.Service
	limiter   *middleware.RateLimiter
	ingest    *middleware.SlidingWindowLimiter
	scheduler *export.Scheduler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger := logging.New(cfg)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize")
	}
	defer a.close()

	a.limiter.StartCleanup(ctx, time.Minute)
	a.ingest.StartCleanup(ctx, time.Minute)
	if a.scheduler != nil {
		a.scheduler.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	logger.Info("server exited")
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	db, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	if err := repository.Migrate(ctx, db); err != nil {
		a.close()
		return nil, err
	}

	var viewCache cache.Cache
	if cfg.RedisURL != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.redis = rdb
		viewCache = cache.NewRedis(rdb, "reliefops:")
	} else {
		viewCache = cache.NewLocal(cfg.CacheTTL, 2*cfg.CacheTTL+time.Minute)
	}

	var publisher messaging.Publisher = messaging.Nop{}
	if cfg.NATSURL != "" {
		nc, err := messaging.NewClient(messaging.Config{URL: cfg.NATSURL, Name: "reliefops"})
		if err != nil {
			// Events are best effort; run without them.
			logger.WithError(err).Warn("nats unavailable, events disabled")
		} else {
			a.nats = nc
			publisher = nc
		}
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	recorder := anomaly.Multi(anomaly.NewLogRecorder(logger), a.metrics)
	ticketRepo := repository.NewTicketRepository(db)
	shelterRepo := repository.NewShelterRepository(db)
	hospitalRepo := repository.NewHospitalRepository(db)

	a.dashboard = dashboard.NewService(dashboard.Deps{
		Tickets:   ticketRepo,
		Shelters:  shelterRepo,
		Hospitals: hospitalRepo,
		Engine:    aggregate.NewEngine(recorder),
		Cache:     viewCache,
		TTL:       cfg.CacheTTL,
		Observer:  a.metrics,
		Logger:    logger,
	})
	a.alerts = notification.NewService(a.redis, logger)
	a.tickets = tickets.NewService(tickets.Deps{
		Store:       ticketRepo,
		Classifier:  triage.NewClassifier(triage.WithRecorder(recorder)),
		Publisher:   publisher,
		Alerts:      a.alerts,
		Invalidator: a.dashboard,
		Observer:    a.metrics,
		Logger:      logger,
	})
	a.resources = resources.NewService(shelterRepo, hospitalRepo, a.dashboard, logger)
	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS)
	a.ingest = middleware.NewSlidingWindowLimiter(cfg.IngestWindow, cfg.IngestLimit)

	if cfg.MinioEndpoint != "" && cfg.ExportSchedule != "" {
		if err := a.setupExport(ctx); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) setupExport(ctx context.Context) error {
	client, err := export.NewMinioClient(a.cfg)
	if err != nil {
		return err
	}
	exporter := export.NewExporter(client, a.cfg.MinioBucket, a.dashboard, a.metrics, a.logger)
	if err := exporter.EnsureBucket(ctx); err != nil {
		return err
	}
	a.scheduler = export.NewScheduler(a.logger)
	if _, err := a.scheduler.ScheduleExport(a.cfg.ExportSchedule, exporter); err != nil {
		return err
	}
	a.logger.WithField("schedule", a.cfg.ExportSchedule).Info("snapshot export scheduled")
	return nil
}

func (a *app) close() {
	if a.nats != nil {
		_ = a.nats.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *app) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(a.logger))
	router.Use(a.metrics.Middleware())
	router.Use(middleware.CORS(a.cfg.AllowedOrigins))
	router.Use(a.limiter.Middleware())

	checks := map[string]handlers.Check{"database": a.db.PingContext}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	if a.nats != nil {
		checks["nats"] = a.nats.Check
	}
	router.GET("/health", handlers.NewHealthHandler(checks).Health)
	router.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	sos := handlers.NewSOSHandler(a.tickets, a.dashboard, a.logger)
	res := handlers.NewResourceHandler(a.resources, a.dashboard, a.logger)
	board := handlers.NewDashboardHandler(a.dashboard, a.alerts, a.logger)

	api := router.Group("/api/v1")

	// Ingestion is called by the report pipeline, not by responders.
	api.POST("/sos", middleware.APIKey(a.cfg.IngestAPIKey), a.ingest.Middleware(), sos.Create)

	protected := api.Group("")
	protected.Use(middleware.Auth(a.cfg))
	{
		protected.GET("/sos", sos.List)
		protected.GET("/sos/map", sos.Map)
		protected.GET("/sos/stats/summary", sos.Summary)
		protected.GET("/sos/stats/by-category", sos.ByCategory)
		protected.GET("/sos/stats/by-region", sos.ByRegion)
		protected.GET("/sos/:id", sos.Get)
		protected.PUT("/sos/:id", sos.Update)
		protected.GET("/sos/:id/history", sos.History)

		coordinator := middleware.RequireRole("coordinator", "admin")

		protected.GET("/shelters", res.ListShelters)
		protected.GET("/shelters/nearby", res.NearbyShelters)
		protected.GET("/shelters/stats/overview", res.ShelterOverview)
		protected.GET("/shelters/:id", res.GetShelter)
		protected.POST("/shelters", coordinator, res.CreateShelter)
		protected.PUT("/shelters/:id", coordinator, res.UpdateShelter)
		protected.DELETE("/shelters/:id", coordinator, res.DeleteShelter)

		protected.GET("/hospitals", res.ListHospitals)
		protected.GET("/hospitals/nearby", res.NearbyHospitals)
		protected.GET("/hospitals/stats/overview", res.HospitalOverview)
		protected.GET("/hospitals/:id", res.GetHospital)
		protected.POST("/hospitals", coordinator, res.CreateHospital)
		protected.PUT("/hospitals/:id", coordinator, res.UpdateHospital)
		protected.DELETE("/hospitals/:id", coordinator, res.DeleteHospital)

		protected.GET("/dashboard/stats", board.Stats)
		protected.GET("/dashboard/regions", board.Regions)
		protected.GET("/dashboard/recent-activity", board.RecentActivity)
		protected.GET("/dashboard/critical-alerts", board.CriticalAlerts)
		protected.GET("/dashboard/resource-overview", board.ResourceOverview)
		protected.GET("/dashboard/alert-feed", board.AlertFeed)
	}

	return router
}
