// internal/service/client_list.go
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/queue"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

const (
	PageSize   = 10
	OrderField = "nombre"
)

type Direction string

const (
	DirStart Direction = "start"
	DirNext  Direction = "next"
	DirPrev  Direction = "prev"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirStart, DirNext, DirPrev:
		return d, nil
	}
	return "", appErrors.Validation("unknown direction %q", s)
}

// PageView is a read-only copy of a list's page window.
type PageView struct {
	Records []model.Customer
	Page    int
	HasNext bool
	HasPrev bool
	Loaded  bool
	Err     string
}

// ClientList is one user's window over the clientes collection: the current
// page, its cursor boundaries and a back-stack of earlier first boundaries.
// Writes go to the store first and are reconciled into the window only after
// they succeed; the window is never re-fetched after a write.
type ClientList struct {
	Repo   repository.CustomerRepositoryInterface
	Queue  queue.Queue
	Logger *zap.Logger

	mu        sync.Mutex
	records   []model.Customer
	first     *repository.Cursor
	last      *repository.Cursor
	backStack []*repository.Cursor
	page      int
	hasNext   bool
	loaded    bool
	fetching  bool
	lastErr   error
}

// FetchPage replaces the window with the page in direction dir.
// next without a last boundary and prev with an empty back-stack are no-ops.
// A next that finds nothing leaves the window as is and clears HasNext.
func (l *ClientList) FetchPage(ctx context.Context, dir Direction) (PageView, error) {
	q := repository.PageQuery{OrderBy: OrderField, Limit: PageSize + 1}

	l.mu.Lock()
	if l.fetching {
		l.mu.Unlock()
		return l.View(Filter{}), appErrors.ErrFetchInProgress
	}
	switch dir {
	case DirStart:
	case DirNext:
		if l.last == nil {
			l.mu.Unlock()
			return l.View(Filter{}), nil
		}
		q.Cursor, q.Mode = l.last, repository.StartAfter
	case DirPrev:
		if len(l.backStack) == 0 {
			l.mu.Unlock()
			return l.View(Filter{}), nil
		}
		q.Cursor, q.Mode = l.backStack[len(l.backStack)-1], repository.StartAt
	default:
		l.mu.Unlock()
		return l.View(Filter{}), appErrors.Validation("unknown direction %q", dir)
	}
	l.fetching = true
	l.mu.Unlock()

	docs, err := l.Repo.ListPage(ctx, q)

	l.mu.Lock()
	l.fetching = false
	if err != nil {
		l.lastErr = err
		l.mu.Unlock()
		logging.OrNop(l.Logger).Warn("fetch clientes page failed", zap.String("direction", string(dir)), zap.Error(err))
		return l.View(Filter{}), fmt.Errorf("fetch %s page: %w", dir, err)
	}
	l.lastErr = nil

	more := len(docs) > PageSize
	if more {
		docs = docs[:PageSize]
	}

	switch {
	case dir == DirNext && len(docs) == 0:
		l.hasNext = false
		l.mu.Unlock()
		return l.View(Filter{}), nil
	case dir == DirStart:
		l.backStack = nil
		l.page = 1
	case dir == DirNext:
		if l.first != nil {
			l.backStack = append(l.backStack, l.first)
			l.page++
		}
	case dir == DirPrev:
		l.backStack = l.backStack[:len(l.backStack)-1]
		l.page = max(1, l.page-1)
	}

	l.records = docs
	l.first, l.last = nil, nil
	if len(docs) > 0 {
		l.first = repository.CursorFor(docs[0], OrderField)
		l.last = repository.CursorFor(docs[len(docs)-1], OrderField)
	}
	l.hasNext = more
	l.loaded = true
	l.mu.Unlock()

	return l.View(Filter{}), nil
}

// View returns the window narrowed by f.
func (l *ClientList) View(f Filter) PageView {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := PageView{
		Records: FilterClients(l.records, f),
		Page:    max(1, l.page),
		HasNext: l.hasNext,
		HasPrev: len(l.backStack) > 0,
		Loaded:  l.loaded,
	}
	if l.lastErr != nil {
		v.Err = l.lastErr.Error()
	}
	return v
}

// Loaded reports whether at least one page has been fetched.
func (l *ClientList) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Get returns the record with id from the window.
func (l *ClientList) Get(id string) (model.Customer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return model.Customer{}, false
	}
	return l.records[i], true
}

func (l *ClientList) indexOf(id string) int {
	return slices.IndexFunc(l.records, func(c model.Customer) bool { return c.ID == id })
}

// Create inserts fields and prepends the new record to the window.
func (l *ClientList) Create(ctx context.Context, fields model.CustomerFields) (model.Customer, error) {
	if strings.TrimSpace(fields.Nombre) == "" {
		return model.Customer{}, appErrors.Validation("nombre is required")
	}

	id, err := l.Repo.Insert(ctx, fields)
	if err != nil {
		logging.OrNop(l.Logger).Warn("create cliente failed", zap.Error(err))
		return model.Customer{}, fmt.Errorf("create cliente: %w", err)
	}

	c := model.Customer{ID: id, CustomerFields: fields}
	l.mu.Lock()
	l.records = append([]model.Customer{c}, l.records...)
	l.mu.Unlock()

	l.publish(model.ChangeCreate, id)
	return c, nil
}

// Update merges patch remotely and then over the window's copy, in place.
func (l *ClientList) Update(ctx context.Context, id string, patch map[string]string) error {
	if unknown := model.UnknownKeys(patch); len(unknown) > 0 {
		slices.Sort(unknown)
		return appErrors.Validation("unknown fields: %s", strings.Join(unknown, ", "))
	}

	if err := l.Repo.UpdateFields(ctx, id, patch); err != nil {
		logging.OrNop(l.Logger).Warn("update cliente failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("update cliente %s: %w", id, err)
	}

	l.mu.Lock()
	if i := l.indexOf(id); i >= 0 {
		l.records[i].Apply(patch)
	}
	l.mu.Unlock()

	l.publish(model.ChangeUpdate, id)
	return nil
}

// Delete removes id remotely and from the window. Nothing is sent unless
// confirmed is true.
func (l *ClientList) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return appErrors.ErrDeleteNotConfirmed
	}

	if err := l.Repo.Delete(ctx, id); err != nil {
		logging.OrNop(l.Logger).Warn("delete cliente failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete cliente %s: %w", id, err)
	}

	l.mu.Lock()
	l.records = slices.DeleteFunc(l.records, func(c model.Customer) bool { return c.ID == id })
	l.mu.Unlock()

	l.publish(model.ChangeDelete, id)
	return nil
}

func (l *ClientList) publish(op model.ChangeOp, id string) {
	if l.Queue == nil {
		return
	}
	err := l.Queue.Publish(queue.TopicClientChanges, model.ClientChange{Op: op, ID: id, At: time.Now().UTC()})
	if err != nil && !errors.Is(err, queue.ErrNoSubscribers) {
		logging.OrNop(l.Logger).Warn("publish client change failed", zap.String("op", string(op)), zap.Error(err))
	}
}
