package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"street-bites/config"
	"street-bites/tally-svc/internal/service"
	"street-bites/tally-svc/internal/storage"
)

func main() {
	config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := config.MustInitRedis()
	defer rdb.Close()

	reader := config.NewKafkaReader(config.OrderEventsTopic, config.GetEnv("KAFKA_GROUP", "tally-svc"))
	defer reader.Close()

	consumer := service.NewConsumer(reader, storage.NewStore(rdb), time.Local)
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("[tally] consumer stopped: %v", err)
	}
	log.Println("[tally] shut down")
}
