// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/config"
	"github.com/Gabrieexl/proyecto-calidad/internal/db"
	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/queue"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

func main() {
	auditFile := pflag.String("audit-file", "", "append audit entries to this file instead of stdout")
	pflag.Parse()

	cfg, _, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.AMQPURL == "" {
		logger.Fatal("AMQP_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var customers repository.CustomerRepositoryInterface
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database unavailable", zap.Error(err))
		}
		defer conn.Close()
		customers = &repository.CustomerRepository{DB: conn, DSN: cfg.DatabaseURL, Logger: logger}
	} else {
		logger.Warn("no database configured, audit entries will carry ids only")
	}

	out := io.Writer(os.Stdout)
	if *auditFile != "" {
		f, err := os.OpenFile(*auditFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Fatal("open audit file", zap.String("path", *auditFile), zap.Error(err))
		}
		defer f.Close()
		out = f
	}

	q, err := queue.DialAMQP(cfg.AMQPURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer q.Close()

	worker := service.NewChangeWorker(customers, jsonLines(out), logger)
	if err := worker.Start(q); err != nil {
		logger.Fatal("failed to register consumer", zap.Error(err))
	}

	logger.Info("worker running, waiting for client changes", zap.String("topic", queue.TopicClientChanges))
	<-ctx.Done()
	logger.Info("worker stopping")
}

// jsonLines writes each entry as one JSON document per line.
func jsonLines(w io.Writer) func(service.AuditEntry) error {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(e service.AuditEntry) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(e)
	}
}
