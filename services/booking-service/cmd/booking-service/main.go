package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/libs/grpcx"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/cache"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/reminders"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/reports"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/settings"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/whatsapp"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/migrations"
)

type settingsEnv struct {
	service       string
	port          string
	grpcPort      string
	databaseURL   string
	jwtSecret     string
	jwtTTL        time.Duration
	redisURL      string
	kafkaBrokers  string
	location      *time.Location
	txTimeout     time.Duration
	reqTimeout    time.Duration
	migrate       bool
	corsOrigins   []string
	ratePerMinute int
	gatewayURL    string
	gatewayToken  string
	session       string
	webhookSecret string
	autostart     bool
	reminderCron  string
	statusCron    string
	reminderGap   time.Duration
	adminPhone    string
	adminPassword string
}

func loadSettings() (settingsEnv, error) {
	var s settingsEnv
	var err error
	if err = config.LoadDotEnv(); err != nil {
		return s, err
	}
	s.service = config.String("SERVICE_NAME", "booking-service")
	if s.port, err = config.Port("PORT", "3002"); err != nil {
		return s, err
	}
	if s.grpcPort, err = config.Port("GRPC_PORT", "9092"); err != nil {
		return s, err
	}
	if s.databaseURL, err = config.RequiredString("DATABASE_URL"); err != nil {
		return s, err
	}
	if s.jwtSecret, err = config.RequiredString("JWT_SECRET"); err != nil {
		return s, err
	}
	if s.jwtTTL, err = config.Duration("JWT_EXPIRES_IN", 7*24*time.Hour); err != nil {
		return s, err
	}
	if s.location, err = time.LoadLocation(config.String("BUSINESS_TIMEZONE", "America/Sao_Paulo")); err != nil {
		return s, err
	}
	if s.txTimeout, err = config.Duration("BOOKING_TX_TIMEOUT", 5*time.Second); err != nil {
		return s, err
	}
	if s.reqTimeout, err = config.Duration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return s, err
	}
	if s.ratePerMinute, err = config.Int("RATE_LIMIT_PER_MINUTE", 300); err != nil {
		return s, err
	}
	if s.reminderGap, err = config.Duration("REMINDER_GAP", 2*time.Second); err != nil {
		return s, err
	}
	s.redisURL = config.String("REDIS_URL", "")
	s.kafkaBrokers = config.String("KAFKA_BROKERS", "")
	s.migrate = config.Bool("MIGRATE_ON_START", false)
	s.corsOrigins = config.List("CORS_ORIGINS", nil)
	s.gatewayURL = config.String("WHATSAPP_GATEWAY_URL", "")
	s.gatewayToken = config.String("WHATSAPP_GATEWAY_TOKEN", "")
	s.session = config.String("WHATSAPP_SESSION", "default")
	s.webhookSecret = config.String("WHATSAPP_WEBHOOK_SECRET", "")
	s.autostart = config.Bool("WHATSAPP_AUTOSTART", true)
	s.reminderCron = config.String("REMINDER_CRON", "0 10 * * *")
	s.statusCron = config.String("STATUS_CRON", "0 * * * *")
	s.adminPhone = config.String("ADMIN_PHONE", "")
	s.adminPassword = config.String("ADMIN_PASSWORD", "")
	return s, nil
}

func main() {
	env, err := loadSettings()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(env.service)
	if err := run(env, logger); err != nil {
		logger.Error("booking service stopped", "err", err)
		os.Exit(1)
	}
}

func run(env settingsEnv, logger *slog.Logger) error {
	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(env.service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, env.databaseURL, db.Options{})
	if err != nil {
		return err
	}
	defer pool.Close()

	if env.migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	var rdb redis.UniversalClient
	if env.redisURL != "" {
		opts, err := redis.ParseURL(env.redisURL)
		if err != nil {
			return err
		}
		rdb = redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
	}

	m := metrics.New(env.service)
	runner := db.Runner{DB: pool, Timeout: env.txTimeout}
	c := cache.New(rdb, "booking:", logger)

	settingsSvc := settings.NewService(pool, runner, c, logger)
	specialties := catalog.NewSpecialties(pool, runner, c, logger, env.location)
	users := catalog.NewUsers(pool, runner, logger, env.location)
	if err := seed(ctx, logger, settingsSvc, users, env); err != nil {
		return err
	}

	var gateway whatsapp.Gateway = whatsapp.NewNoopGateway(logger)
	if env.gatewayURL != "" {
		gateway = whatsapp.NewHTTPGateway(env.gatewayURL, env.gatewayToken, env.session)
	}
	messenger := whatsapp.NewMessenger(gateway, whatsapp.NewPGLogStore(pool, env.location), logger, m, env.location)
	if env.autostart {
		go func() {
			if err := messenger.Initialize(ctx); err != nil {
				logger.Warn("whatsapp initialize failed", "err", err)
			}
		}()
	}

	bookings := booking.NewService(booking.NewPGStore(pool, env.txTimeout, env.location), settingsSvc, messenger, logger, booking.Options{
		Location: env.location,
		Metrics:  m,
	})
	defer bookings.Drain()

	scheduler, err := reminders.New(reminders.NewPGSource(pool, env.location), messenger, logger, m, reminders.Config{
		ReminderSpec: env.reminderCron,
		StatusSpec:   env.statusCron,
		Gap:          env.reminderGap,
		Location:     env.location,
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		scheduler.Stop(stopCtx)
	}()

	publisher := outbox.NewPublisher(pool, outbox.NewRepository(), logger, outbox.PublisherConfig{
		Brokers:   env.kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
		Published: m.Published,
	})
	go publisher.Run(ctx)

	grpcSrv := grpcx.NewServer(logger)
	lis, err := net.Listen("tcp", ":"+env.grpcPort)
	if err != nil {
		return err
	}
	grpcSrv.SetServing(env.service, true)
	grpcSrv.Serve(ctx, lis)

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if rdb != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: cache.ReadyCheck(rdb)})
	}
	if publisher.Enabled() {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(env.kafkaBrokers)})
	}

	router := handlers.NewRouter(handlers.Deps{
		Appointments:  bookings,
		Specialties:   specialties,
		Users:         users,
		Settings:      settingsSvc,
		Reports:       reports.NewService(pool, env.location),
		Messenger:     messenger,
		Reminders:     scheduler,
		Signer:        auth.NewSigner(env.jwtSecret, env.jwtTTL),
		WebhookSecret: env.webhookSecret,
		Metrics:       m,
		Logger:        logger,
		Location:      env.location,
	})
	router.Handle("/health", runtime.Health(nil)).Methods(http.MethodGet)
	router.Handle("/healthz", runtime.Liveness()).Methods(http.MethodGet)
	router.Handle("/readyz", runtime.Readiness(checks...)).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	var limiter httpx.Limiter = httpx.NewMemoryLimiter(env.ratePerMinute, time.Minute)
	if rdb != nil {
		limiter = httpx.NewRedisLimiter(rdb, env.ratePerMinute, time.Minute, "booking:ratelimit:")
	}

	handler := httpx.Chain(router,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger, "/healthz", "/readyz", "/metrics"),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(env.corsOrigins)),
		httpx.RateLimit(limiter, logger, true),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(env.reqTimeout),
	)
	srv := &http.Server{
		Addr:              ":" + env.port,
		Handler:           otelhttp.NewHandler(handler, "booking"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := runtime.ServeHTTP(ctx, logger, srv, 10*time.Second); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// seed creates the default scheduling config and the bootstrap admin on first start.
func seed(ctx context.Context, logger *slog.Logger, s *settings.Service, users *catalog.Users, env settingsEnv) error {
	created, err := s.EnsureDefault(ctx)
	if err != nil {
		return err
	}
	if created {
		logger.Info("default config created")
	}
	if env.adminPhone == "" {
		return nil
	}
	_, err = users.EnsureAdmin(ctx, env.adminPhone, env.adminPassword)
	return err
}
