package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/anyulbade/pg-gateway-facade/internal/config"
	"github.com/anyulbade/pg-gateway-facade/internal/database"
	"github.com/anyulbade/pg-gateway-facade/internal/events"
	"github.com/anyulbade/pg-gateway-facade/internal/fee"
	"github.com/anyulbade/pg-gateway-facade/internal/handler"
	"github.com/anyulbade/pg-gateway-facade/internal/middleware"
	"github.com/anyulbade/pg-gateway-facade/internal/model"
	"github.com/anyulbade/pg-gateway-facade/internal/pg"
	"github.com/anyulbade/pg-gateway-facade/internal/pg/mockpg"
	"github.com/anyulbade/pg-gateway-facade/internal/pg/testpg"
	"github.com/anyulbade/pg-gateway-facade/internal/repository"
	"github.com/anyulbade/pg-gateway-facade/internal/service"
	"github.com/anyulbade/pg-gateway-facade/internal/telemetry"
)

const (
	serviceName    = "pg-gateway-facade"
	serviceVersion = "0.1.0"
)

func main() {
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := database.NewPool(connectCtx, cfg.DatabaseURL())
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		if err := database.SeedData(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to seed data")
		}
	}

	var policyCache fee.PolicyCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, fee policy lookups will fall back to the database")
		}
		policyCache = fee.NewRedisPolicyCache(rdb, cfg.FeePolicyCacheTTL)
		log.Info().Dur("ttl", cfg.FeePolicyCacheTTL).Msg("fee policy cache enabled")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaPaymentTopic)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaPaymentTopic).Msg("payment events enabled")
	}

	registry, err := pg.NewRegistry(
		mockpg.NewClient(),
		testpg.NewClient(cfg.TestPGBaseURL, cfg.TestPGTimeout),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build gateway registry")
	}
	warnUnregisteredGateways(ctx, repository.NewPaymentGatewayRepository(pool), registry)

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(telemetry.TracingMiddleware())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(pool)
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAPIRoutes(router, cfg, pool, registry, policyCache, publisher)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server exited")
}

func setupAPIRoutes(router *gin.Engine, cfg *config.Config, pool *pgxpool.Pool, registry *pg.Registry, cache fee.PolicyCache, publisher events.Publisher) {
	partnerRepo := repository.NewPartnerRepository(pool)
	policyRepo := repository.NewFeePolicyRepository(pool)
	gatewayRepo := repository.NewPaymentGatewayRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	policies := fee.NewResolver(policyRepo, cache)
	factory := pg.NewRequestFactory(pg.TestPGExtra{
		APIKey:      cfg.TestPGAPIKey,
		IVBase64URL: cfg.TestPGIV,
	})
	approver := pg.NewApprovalService(
		pg.NewPriorityResolver(gatewayRepo),
		registry,
		factory,
		pg.NewMetrics(prometheus.DefaultRegisterer),
		cfg.PGAttemptTimeout,
	)

	paymentService := service.NewPaymentService(partnerRepo, policies, approver, paymentRepo, publisher)
	queryService := service.NewQueryService(paymentRepo)

	paymentHandler := handler.NewPaymentHandler(paymentService, queryService)
	feePolicyHandler := handler.NewFeePolicyHandler(policies, partnerRepo)

	api := router.Group("/api/v1")
	{
		api.POST("/payments", paymentHandler.Create)
		api.GET("/payments", paymentHandler.List)
		api.POST("/partners/:id/fee-policies", feePolicyHandler.Create)
	}
}

// warnUnregisteredGateways logs active gateways that have no client. Payments
// routed to them fail over to the next gateway.
func warnUnregisteredGateways(ctx context.Context, gateways *repository.PaymentGatewayRepository, registry *pg.Registry) {
	active, err := gateways.ListActive(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not list active payment gateways")
		return
	}
	for _, g := range active {
		if _, ok := registry.Client(g.Code); !ok {
			log.Warn().Str("gateway", string(g.Code)).Msg("active payment gateway has no client, it will be skipped")
		}
	}
	log.Info().Strs("clients", codeStrings(registry.Codes())).Msg("payment gateway clients registered")
}

func codeStrings(codes []model.ProviderCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
