package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/queue"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

// SessionTTL matches the lifetime of the session cookie.
const SessionTTL = 24 * time.Hour

// SessionLists keeps one ClientList per session token.
type SessionLists struct {
	Repo   repository.CustomerRepositoryInterface
	Queue  queue.Queue
	Logger *zap.Logger
	Now    func() time.Time

	mu    sync.Mutex
	lists map[string]*sessionEntry
}

type sessionEntry struct {
	list     *ClientList
	lastUsed time.Time
}

// Get returns the list for token, creating it on first use. Lists idle for
// longer than SessionTTL are dropped.
func (s *SessionLists) Get(token string) *ClientList {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lists == nil {
		s.lists = make(map[string]*sessionEntry)
	}
	for t, e := range s.lists {
		if now.Sub(e.lastUsed) > SessionTTL {
			delete(s.lists, t)
		}
	}

	e, ok := s.lists[token]
	if !ok {
		e = &sessionEntry{list: &ClientList{Repo: s.Repo, Queue: s.Queue, Logger: s.Logger}}
		s.lists[token] = e
	}
	e.lastUsed = now
	return e.list
}

func (s *SessionLists) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists)
}
