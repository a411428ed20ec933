// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gabrieexl/proyecto-calidad/internal/config"
	"github.com/Gabrieexl/proyecto-calidad/internal/controller"
	"github.com/Gabrieexl/proyecto-calidad/internal/db"
	"github.com/Gabrieexl/proyecto-calidad/internal/handler"
	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/queue"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !envLoaded {
		logger.Info("no .env file found, relying on OS environment variables")
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
		if err := db.Migrate(ctx, conn); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		customers = &repository.CustomerRepository{DB: conn, DSN: cfg.DatabaseURL, Logger: logger}
		logger.Info("connected to database")
	} else {
		logger.Warn("no database configured, using in-memory clientes store")
		customers = repository.NewMemoryCustomerRepository()
	}

	var q queue.Queue
	if cfg.AMQPURL != "" {
		aq, err := queue.DialAMQP(cfg.AMQPURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer aq.Close()
		q = aq
	} else {
		q = queue.NewInMemoryQueue(logger)
	}

	pending := &service.PendingService{Repo: customers, Location: cfg.CacheLocation, Logger: logger}
	if err := pending.SubscribeChanges(q); err != nil {
		logger.Fatal("failed to subscribe pending cache", zap.Error(err))
	}
	dashboard := &service.DashboardService{Repo: customers, Logger: logger}

	r := newRouter(cfg, logger, routerDeps{
		lists:     &service.SessionLists{Repo: customers, Queue: q, Logger: logger},
		dashboard: dashboard,
		pending:   pending,
		reports: &service.ReportService{
			Customers: customers,
			Store:     &repository.ReportRepository{Dir: cfg.ReportsDir},
			Location:  cfg.CacheLocation,
			Logger:    logger,
		},
		inventory: &service.InventoryService{
			URL:    cfg.InventoryAPIURL,
			Client: &http.Client{Timeout: cfg.RequestTimeout},
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := dashboard.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		dashboard.Stop()
		return nil
	})
	g.Go(func() error {
		logger.Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

type routerDeps struct {
	lists     *service.SessionLists
	dashboard *service.DashboardService
	pending   *service.PendingService
	reports   *service.ReportService
	inventory *service.InventoryService
}

func newRouter(cfg *config.Config, logger *zap.Logger, deps routerDeps) http.Handler {
	sessionHandler := &handler.SessionHandler{Production: cfg.Production()}
	inventoryHandler := &handler.InventoryHandler{Service: deps.inventory, Logger: logger}
	dashboardHandler := &handler.DashboardHandler{Dashboard: deps.dashboard, Pending: deps.pending, Logger: logger}
	reportHandler := &handler.ReportHandler{Service: deps.reports, Logger: logger}
	clientController := &controller.ClientController{Lists: deps.lists, Timeout: cfg.RequestTimeout, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logging.Requests(logger))

	r.Post("/api/set-session", sessionHandler.SetSession)
	r.Get("/api/inventory", inventoryHandler.GetInventory)

	r.Route("/api/clientes", func(r chi.Router) {
		r.Use(handler.RequireAPISession)
		r.Get("/", clientController.ListClients)
		r.Post("/", clientController.CreateClient)
		r.Get("/export", clientController.ExportClients)
		r.Put("/{id}", clientController.UpdateClient)
		r.Delete("/{id}", clientController.DeleteClient)
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(handler.RequireAPISession)
		r.Get("/", reportHandler.ListReports)
		r.Post("/", reportHandler.CreateReport)
		r.Get("/{name}", reportHandler.GetReport)
		r.Delete("/{name}", reportHandler.DeleteReport)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(handler.RequireSession)
		r.Get("/stats", dashboardHandler.GetStats)
		r.Get("/pending", dashboardHandler.GetPending)
	})

	return r
}
