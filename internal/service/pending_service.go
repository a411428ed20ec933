// internal/service/pending_service.go
package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/queue"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

const pendingLimit = 10

// PendingStages are the etapa values treated as "needs follow-up".
var PendingStages = []string{model.StageRetomarContacto, "Retomar", "retomar"}

// PendingService lists follow-up clients, querying the store at most once
// per calendar day unless a client change invalidates the cache.
type PendingService struct {
	Repo     repository.CustomerRepositoryInterface
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger

	mu        sync.Mutex
	cached    []model.Customer
	writtenAt time.Time
	valid     bool
	gen       uint64
}

func (s *PendingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func (s *PendingService) Pending(ctx context.Context) ([]model.Customer, error) {
	now := s.now()

	s.mu.Lock()
	if s.valid && SameDay(s.writtenAt, now, s.Location) {
		out := slices.Clone(s.cached)
		s.mu.Unlock()
		return out, nil
	}
	gen := s.gen
	s.mu.Unlock()

	clients, err := s.Repo.ListByField(ctx, "etapa", PendingStages, pendingLimit)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// a change seen during the fetch may not be reflected in clients
	if s.gen == gen {
		s.cached = clients
		s.writtenAt = now
		s.valid = true
	}
	s.mu.Unlock()

	logging.OrNop(s.Logger).Debug("pending clientes refreshed", zap.Int("count", len(clients)))
	return slices.Clone(clients), nil
}

func (s *PendingService) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.gen++
	s.mu.Unlock()
}

// SubscribeChanges invalidates the cache on every client change event.
func (s *PendingService) SubscribeChanges(q queue.Queue) error {
	return q.Subscribe(queue.TopicClientChanges, func(payload any) error {
		if _, err := queue.DecodeClientChange(payload); err != nil {
			logging.OrNop(s.Logger).Warn("ignoring malformed client change", zap.Error(err))
			return nil
		}
		s.Invalidate()
		return nil
	})
}
