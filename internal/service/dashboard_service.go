// internal/service/dashboard_service.go
package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

// DashboardService keeps live counts over the clientes collection.
type DashboardService struct {
	Repo   repository.CustomerRepositoryInterface
	Logger *zap.Logger

	// startMu serializes Start. mu is never held across Listen.
	startMu sync.Mutex
	mu      sync.Mutex
	stats   model.DashboardStats
	sub     repository.Subscription
}

// CountStats totals the collection and counts the tracked stages.
func CountStats(customers []model.Customer) model.DashboardStats {
	s := model.DashboardStats{Total: len(customers), Loaded: true}
	for _, c := range customers {
		switch strings.TrimSpace(c.Etapa) {
		case model.StageFinalizado:
			s.Finalizado++
		case model.StageContactoInicial:
			s.ContactoInicial++
		case model.StageRetomarContacto:
			s.RetomarContacto++
		}
	}
	return s
}

// Start subscribes to the collection. Calling Start on a running service is a no-op.
func (s *DashboardService) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	running := s.sub != nil
	s.mu.Unlock()
	if running {
		return nil
	}

	log := logging.OrNop(s.Logger)
	sub, err := s.Repo.Listen(ctx,
		func(snapshot []model.Customer) {
			stats := CountStats(snapshot)
			s.mu.Lock()
			s.stats = stats
			s.mu.Unlock()
		},
		func(err error) {
			log.Warn("clientes listener error", zap.Error(err))
			s.mu.Lock()
			s.stats.Loaded = true
			s.stats.Error = err.Error()
			s.mu.Unlock()
		},
	)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	log.Info("dashboard subscription started")
	return nil
}

// Stop unsubscribes. It is safe to call more than once.
func (s *DashboardService) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (s *DashboardService) Stats() model.DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
