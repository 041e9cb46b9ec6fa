package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"merx/internal/criteria"
	criteriahandler "merx/internal/criteria/handler"
	criteriametrics "merx/internal/criteria/metrics"
	criterionstore "merx/internal/criteria/store/criterion"
	jwttoken "merx/internal/jwt_token"
	"merx/internal/platform/config"
	"merx/internal/platform/httpserver"
	"merx/internal/platform/logger"
	"merx/internal/platform/metrics"
	"merx/internal/platform/middleware"
	"merx/internal/platform/postgres"
	platformredis "merx/internal/platform/redis"
	"merx/internal/storefront/cart"
	"merx/internal/storefront/catalog"
	"merx/internal/storefront/orders"
	"merx/pkg/platform/audit"
	auditkafka "merx/pkg/platform/audit/publishers/kafka"
	"merx/pkg/platform/middleware/requesttime"
)

const cartTTL = 14 * 24 * time.Hour

// main wires high-level dependencies, exposes the HTTP router, and
// keeps the server lifecycle small. Business logic lives in internal
// services packages. Postgres, Redis, and Kafka are all optional;
// without them the process runs on in-memory stores, which is enough
// for local development.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var criterionStore criteria.CriterionStore
	var orderStore criteria.OrderStore
	var catalogStore criteria.CatalogStore
	if db != nil {
		pgCriteria := criterionstore.NewPostgres(db)
		pgOrders := orders.NewPostgres(db)
		pgCatalog := catalog.NewPostgres(db)
		for _, ensure := range []func(context.Context) error{
			pgCriteria.EnsureSchema, pgOrders.EnsureSchema, pgCatalog.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				log.Error("schema setup failed", "error", err)
				os.Exit(1)
			}
		}
		criterionStore = pgCriteria
		orderStore = pgOrders
		catalogStore = pgCatalog
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		criterionStore = criterionstore.NewInMemory()
		orderStore = orders.NewInMemory()
		catalogStore = catalog.NewInMemory()
	}

	var cartStore criteria.CartStore
	if redisClient != nil {
		cartStore = cart.NewRedis(redisClient.Client, cartTTL)
	} else {
		log.Warn("REDIS_URL not set, using in-memory cart store")
		cartStore = cart.NewInMemory()
	}

	var auditPublisher audit.Publisher
	if cfg.KafkaBrokers != "" {
		publisher, err := auditkafka.New(
			strings.Split(cfg.KafkaBrokers, ","),
			cfg.KafkaAuditTopic,
			auditkafka.WithLogger(log),
		)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := publisher.Close(closeCtx); err != nil {
				log.Error("kafka close failed", "error", err)
			}
		}()
		auditPublisher = publisher
	}

	registry := criteria.Defaults()

	serviceOpts := []criteria.Option{
		criteria.WithLogger(log),
		criteria.WithMetrics(criteriametrics.New()),
		criteria.WithEvidenceTimeout(cfg.EvidenceTimeout),
	}
	if auditPublisher != nil {
		serviceOpts = append(serviceOpts, criteria.WithAudit(auditPublisher))
	}
	service, err := criteria.New(registry, criterionStore, cartStore, orderStore, catalogStore, serviceOpts...)
	if err != nil {
		log.Error("criteria service setup failed", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "merx", "merx-api")
	httpMetrics := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requesttime.Middleware)
	router.Use(httpMetrics.Middleware)
	router.Use(middleware.Actor(claimsAdapter{jwtService}, log))

	router.Get("/healthz", healthHandler(db, redisClient))
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	criteriahandler.New(service, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting merx", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("merx stopped")
}

// claimsAdapter narrows the JWT service to the middleware's view of
// token claims.
type claimsAdapter struct {
	service *jwttoken.JWTService
}

func (a claimsAdapter) ValidateToken(tokenString string) (*middleware.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{
		UserID:  claims.UserID,
		Groups:  claims.Groups,
		Country: claims.Country,
	}, nil
}

func healthHandler(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
