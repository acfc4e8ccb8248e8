package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"street-bites/api-gateway/internal/gateway"
	"street-bites/config"
)

func main() {
	config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := gateway.Config{
		StorefrontURL: config.GetEnv("STOREFRONT_URL", "http://localhost:8081"),
		StaticDir:     config.GetEnv("STATIC_DIR", "./frontend"),
	}

	gw := gateway.NewGateway(cfg, &http.Client{Timeout: 30 * time.Second})

	r := gw.SetupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   config.GetEnvList("CORS_ORIGINS", []string{"http://localhost:8080", "http://127.0.0.1:8080"}),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID", "X-Storefront-Mode", "Retry-After"},
		AllowCredentials: true,
	})

	port := config.GetEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("API Gateway starting on port %s, storefront at %s", port, cfg.StorefrontURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
