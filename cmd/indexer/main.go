package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/idol-catalog/config"
	"github.com/oksasatya/idol-catalog/internal/application"
	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/pkg/events"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

// Consumes idol events and mirrors them into the Elasticsearch index.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.IdolEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	indexer := application.NewIdolIndexer(es, cfg.ESIdolsIndex, logger)
	if indexer == nil {
		log.Fatal("Elasticsearch not configured (ELASTICSEARCH_ADDRS)")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.IdolEventsQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.IdolEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var evt events.IdolEvent
			if err := json.Unmarshal(msg.Body, &evt); err != nil {
				logger.WithError(err).Warn("bad message")
				_ = msg.Nack(false, false)
				continue
			}
			if evt.Type == "" {
				evt.Type = msg.Type
			}
			if err := indexer.Handle(ctx, evt); err != nil {
				logger.WithError(err).WithField("idol_id", evt.IdolID).Error("index failed")
				_ = msg.Nack(false, !errors.Is(err, domain.ErrInvalidArgument))
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("idol indexer listening on queue=%s index=%s", cfg.IdolEventsQueue, cfg.ESIdolsIndex)
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
