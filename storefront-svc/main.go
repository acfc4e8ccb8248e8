package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"street-bites/config"
	httpapi "street-bites/storefront-svc/internal/api/http"
	"street-bites/storefront-svc/internal/ratelimit"
	"street-bites/storefront-svc/internal/service"
	"street-bites/storefront-svc/internal/storage"
)

func main() {
	config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshot, err := storage.LoadSnapshot(os.Getenv("SNAPSHOT_PATH"))
	if err != nil {
		log.Fatal("Failed to load catalog snapshot:", err)
	}

	var primary service.Store
	switch backend := config.GetEnv("STORE_BACKEND", "postgres"); backend {
	case "postgres":
		db := config.MustInitPostgres()
		defer db.Close()
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure schema:", err)
		}
		primary = repo
	case "mongo":
		repo := storage.NewMongoRepository(config.MustInitMongo())
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal("Failed to ensure indexes:", err)
		}
		primary = repo
	default:
		log.Fatalf("Unknown STORE_BACKEND %q", backend)
	}
	store := storage.NewFallbackRepository(primary, snapshot, config.GetEnvBool("SEED_ON_EMPTY", true))

	limits, err := config.LoadRateLimits(os.Getenv("RATE_LIMITS_FILE"))
	if err != nil {
		log.Fatal("Failed to load rate limits:", err)
	}

	var counters ratelimit.CounterStore = ratelimit.NewMemoryStore()
	var tallies service.TallyReader = storage.NopTallyReader{}
	if os.Getenv("REDIS_HOST") != "" {
		rdb := config.MustInitRedis()
		defer rdb.Close()
		counters = storage.NewRedisCounterStore(rdb)
		tallies = storage.NewRedisTallyReader(rdb)
	} else {
		log.Printf("[storefront] REDIS_HOST not set, rate limits are per instance")
	}
	limiters := ratelimit.NewSet(limits, counters)

	var publisher service.EventPublisher = storage.NopPublisher{}
	if os.Getenv("KAFKA_BROKER") != "" {
		writer := config.NewKafkaWriter(config.OrderEventsTopic)
		defer writer.Close()
		publisher = storage.NewKafkaPublisher(writer)
	}

	secret := os.Getenv("SESSION_SECRET")
	passwordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if secret == "" || passwordHash == "" {
		log.Fatal("SESSION_SECRET and ADMIN_PASSWORD_HASH must be set")
	}
	publicURL := config.GetEnv("PUBLIC_URL", "http://localhost:8080")

	orders := service.NewOrderService(store, limiters.Orders, publisher, service.PickupQRGenerator{BaseURL: publicURL})
	catalog := service.NewCatalogService(store, store, store, store, snapshot)
	reports := service.NewReportService(store, time.Local)
	stats := service.NewStatsService(tallies, time.Local)
	sessions := service.NewSessionIssuer([]byte(secret), 24*time.Hour)
	auth := service.NewAuthService(service.AuthConfig{
		PasswordHash:    []byte(passwordHash),
		RequireApproval: config.GetEnvBool("ADMIN_REQUIRE_APPROVAL", false),
		ApprovalTTL:     config.GetEnvDuration("ADMIN_APPROVAL_TTL", 10*time.Minute),
		PublicURL:       publicURL,
	}, store, limiters.Login, sessions, service.LogApprovalNotifier{})

	handler := httpapi.NewHandler(orders, catalog, reports, auth, stats, httpapi.Options{
		Limits:       limiters,
		UploadDir:    config.GetEnv("UPLOAD_DIR", "./uploads"),
		SecureCookie: config.GetEnv("APP_ENV", "development") == "production",
	})
	router := httpapi.NewRouter(handler, config.GetEnvList("CORS_ORIGINS", []string{"http://localhost:8080"}))
	server := httpapi.NewServer(":"+config.GetEnv("PORT", "8081"), router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[storefront] listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("[storefront] shutting down")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Storefront stopped:", err)
	}
}
