package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
)

// MemoryCustomerRepository is an in-process document store with the same
// ordering and cursor semantics as CustomerRepository.
type MemoryCustomerRepository struct {
	// notifyMu orders snapshot delivery; it is taken before mu.
	notifyMu sync.Mutex
	mu       sync.Mutex
	docs     map[string]model.CustomerFields
	subs     map[int]*memorySubscription
	nextID   int
}

func NewMemoryCustomerRepository(seed ...model.Customer) *MemoryCustomerRepository {
	r := &MemoryCustomerRepository{
		docs: make(map[string]model.CustomerFields),
		subs: make(map[int]*memorySubscription),
	}
	for _, c := range seed {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		r.docs[id] = c.CustomerFields
	}
	return r
}

func compareDocs(orderBy string, a, b model.Customer) int {
	if c := strings.Compare(a.Value(orderBy), b.Value(orderBy)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func (r *MemoryCustomerRepository) sorted(orderBy string) []model.Customer {
	all := make([]model.Customer, 0, len(r.docs))
	for id, f := range r.docs {
		all = append(all, model.Customer{ID: id, CustomerFields: f})
	}
	slices.SortFunc(all, func(a, b model.Customer) int { return compareDocs(orderBy, a, b) })
	return all
}

func (r *MemoryCustomerRepository) ListPage(ctx context.Context, q PageQuery) ([]model.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	page := []model.Customer{}
	for _, c := range r.sorted(q.OrderBy) {
		if q.Cursor != nil {
			cmp := compareDocs(q.OrderBy, c, model.Customer{ID: q.Cursor.ID, CustomerFields: fieldsWith(q.OrderBy, q.Cursor.Value)})
			if cmp < 0 || (cmp == 0 && q.Mode == StartAfter) {
				continue
			}
		}
		page = append(page, c)
		if len(page) == q.Limit {
			break
		}
	}
	return page, nil
}

func fieldsWith(key, value string) model.CustomerFields {
	var f model.CustomerFields
	f.Apply(map[string]string{key: value})
	return f
}

func (r *MemoryCustomerRepository) Insert(ctx context.Context, fields model.CustomerFields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()

	r.mu.Lock()
	r.docs[id] = fields
	r.mu.Unlock()

	r.notify()
	return id, nil
}

func (r *MemoryCustomerRepository) UpdateFields(ctx context.Context, id string, patch map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if unknown := model.UnknownKeys(patch); len(unknown) > 0 {
		return appErrors.Validation("unknown fields: %s", strings.Join(unknown, ", "))
	}

	r.mu.Lock()
	f, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return appErrors.NewCustomerNotFound(id)
	}
	f.Apply(patch)
	r.docs[id] = f
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *MemoryCustomerRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	if _, ok := r.docs[id]; !ok {
		r.mu.Unlock()
		return appErrors.NewCustomerNotFound(id)
	}
	delete(r.docs, id)
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *MemoryCustomerRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Customer{}
	for _, c := range r.sorted("nombre") {
		if slices.Contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryCustomerRepository) ListByField(ctx context.Context, field string, values []string, limit int) ([]model.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !model.IsField(field) {
		return nil, appErrors.Validation("cannot filter by %q", field)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Customer{}
	for _, c := range r.sorted("nombre") {
		if len(out) == limit {
			break
		}
		if slices.Contains(values, c.Value(field)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryCustomerRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted("nombre"), nil
}

// Listen delivers the current snapshot before returning and again,
// synchronously, after every write.
func (r *MemoryCustomerRepository) Listen(ctx context.Context, onSnapshot func([]model.Customer), onError func(error)) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	sub := &memorySubscription{onSnapshot: onSnapshot}
	sub.cancel = func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
	r.subs[id] = sub
	snapshot := r.sorted("nombre")
	r.mu.Unlock()

	context.AfterFunc(ctx, sub.Unsubscribe)
	onSnapshot(snapshot)
	return sub, nil
}

func (r *MemoryCustomerRepository) notify() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if len(r.subs) == 0 {
		r.mu.Unlock()
		return
	}
	snapshot := r.sorted("nombre")
	subs := make([]*memorySubscription, 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	r.mu.Unlock()

	for _, s := range subs {
		s.onSnapshot(slices.Clone(snapshot))
	}
}

type memorySubscription struct {
	once       sync.Once
	cancel     func()
	onSnapshot func([]model.Customer)
}

func (s *memorySubscription) Unsubscribe() { s.once.Do(s.cancel) }

var _ CustomerRepositoryInterface = (*MemoryCustomerRepository)(nil)
