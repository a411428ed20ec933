package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
)

// CursorMode selects how a page query resumes from its cursor boundary.
type CursorMode int

const (
	// StartAfter resumes strictly after the boundary document.
	StartAfter CursorMode = iota
	// StartAt resumes at the boundary document, including it.
	StartAt
)

// Cursor identifies a boundary document by its sort value and id.
type Cursor struct {
	Value string
	ID    string
}

// CursorFor builds the boundary for c when ordering by orderBy.
func CursorFor(c model.Customer, orderBy string) *Cursor {
	return &Cursor{Value: c.Value(orderBy), ID: c.ID}
}

// PageQuery is one ordered page request. Documents are ordered by the
// OrderBy field ascending, ties broken by id. Missing fields sort as "".
type PageQuery struct {
	OrderBy string
	Cursor  *Cursor
	Mode    CursorMode
	Limit   int
}

// Subscription is a live listener registration.
type Subscription interface {
	Unsubscribe()
}

// CustomerRepositoryInterface is the document store surface used by services.
type CustomerRepositoryInterface interface {
	ListPage(ctx context.Context, q PageQuery) ([]model.Customer, error)
	Insert(ctx context.Context, fields model.CustomerFields) (string, error)
	UpdateFields(ctx context.Context, id string, patch map[string]string) error
	Delete(ctx context.Context, id string) error
	GetByIDs(ctx context.Context, ids []string) ([]model.Customer, error)
	ListByField(ctx context.Context, field string, values []string, limit int) ([]model.Customer, error)
	ListAll(ctx context.Context) ([]model.Customer, error)
	// Listen delivers the full collection on subscribe and after every change.
	Listen(ctx context.Context, onSnapshot func([]model.Customer), onError func(error)) (Subscription, error)
}

const notifyChannel = "clientes_changed"

// CustomerRepository stores client documents as JSONB rows in Postgres.
type CustomerRepository struct {
	DB     *sql.DB
	DSN    string // used by Listen to open a dedicated LISTEN connection
	Logger *zap.Logger
}

func validateQuery(q PageQuery) error {
	if !model.IsField(q.OrderBy) {
		return appErrors.Validation("cannot order by %q", q.OrderBy)
	}
	if q.Limit < 1 {
		return appErrors.Validation("limit must be positive, got %d", q.Limit)
	}
	return nil
}

func buildPageQuery(q PageQuery) (string, []any) {
	sortKey := `COALESCE(data->>$1, '') COLLATE "C"`
	args := []any{q.OrderBy}

	query := `SELECT id, data FROM clientes`
	if q.Cursor != nil {
		op := ">"
		if q.Mode == StartAt {
			op = ">="
		}
		query += fmt.Sprintf(` WHERE (%s, id COLLATE "C") %s ($2, $3)`, sortKey, op)
		args = append(args, q.Cursor.Value, q.Cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY %s, id COLLATE "C" LIMIT $%d`, sortKey, len(args)+1)
	args = append(args, q.Limit)
	return query, args
}

func (r *CustomerRepository) ListPage(ctx context.Context, q PageQuery) ([]model.Customer, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	query, args := buildPageQuery(q)
	return r.query(ctx, query, args...)
}

func (r *CustomerRepository) Insert(ctx context.Context, fields model.CustomerFields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx, `INSERT INTO clientes (id, data) VALUES ($1, $2)`, id, data)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *CustomerRepository) UpdateFields(ctx context.Context, id string, patch map[string]string) error {
	if unknown := model.UnknownKeys(patch); len(unknown) > 0 {
		return appErrors.Validation("unknown fields: %s", strings.Join(unknown, ", "))
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE clientes SET data = data || $1::jsonb, updated_at = NOW() WHERE id = $2`, data, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (r *CustomerRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Customer, error) {
	if len(ids) == 0 {
		return []model.Customer{}, nil
	}
	return r.query(ctx, `SELECT id, data FROM clientes WHERE id = ANY($1) ORDER BY COALESCE(data->>'nombre', '') COLLATE "C", id`, pq.Array(ids))
}

func (r *CustomerRepository) ListByField(ctx context.Context, field string, values []string, limit int) ([]model.Customer, error) {
	if !model.IsField(field) {
		return nil, appErrors.Validation("cannot filter by %q", field)
	}
	return r.query(ctx, `SELECT id, data FROM clientes WHERE data->>$1 = ANY($2) LIMIT $3`, field, pq.Array(values), limit)
}

func (r *CustomerRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	return r.query(ctx, `SELECT id, data FROM clientes ORDER BY COALESCE(data->>'nombre', '') COLLATE "C", id`)
}

func (r *CustomerRepository) query(ctx context.Context, query string, args ...any) ([]model.Customer, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var (
			c    model.Customer
			data []byte
		)
		if err := rows.Scan(&c.ID, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &c.CustomerFields); err != nil {
			return nil, fmt.Errorf("decode cliente %s: %w", c.ID, err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCustomerNotFound(id)
	}
	return nil
}

// Listen opens a LISTEN connection on the clientes_changed channel and
// reloads the collection after every burst of notifications.
func (r *CustomerRepository) Listen(ctx context.Context, onSnapshot func([]model.Customer), onError func(error)) (Subscription, error) {
	log := logging.OrNop(r.Logger)
	listener := pq.NewListener(r.DSN, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("clientes listener event", zap.Int("event", int(ev)), zap.Error(err))
			onError(err)
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &pgSubscription{cancel: cancel}

	go func() {
		defer listener.Close()
		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()

		r.deliver(ctx, onSnapshot, onError)
		for {
			select {
			case <-ctx.Done():
				return
			case <-listener.Notify:
				// a nil notification means the connection was re-established; reload anyway
				drain(listener.Notify)
				r.deliver(ctx, onSnapshot, onError)
			case <-ping.C:
				go listener.Ping()
			}
		}
	}()
	return sub, nil
}

func (r *CustomerRepository) deliver(ctx context.Context, onSnapshot func([]model.Customer), onError func(error)) {
	all, err := r.ListAll(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		onError(err)
		return
	}
	onSnapshot(all)
}

func drain(ch <-chan *pq.Notification) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

type pgSubscription struct {
	cancel context.CancelFunc
}

func (s *pgSubscription) Unsubscribe() { s.cancel() }

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
