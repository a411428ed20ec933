package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/queue"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

// AuditEntry is one processed client change.
type AuditEntry struct {
	Op     model.ChangeOp `json:"op"`
	ID     string         `json:"id"`
	Nombre string         `json:"nombre,omitempty"`
	Etapa  string         `json:"etapa,omitempty"`
	At     time.Time      `json:"at"`
}

// ChangeWorker turns client change events into audit entries, resolving the
// current record for creates and updates.
type ChangeWorker struct {
	Customers repository.CustomerRepositoryInterface
	Record    func(AuditEntry) error
	Timeout   time.Duration
	Logger    *zap.Logger
}

func NewChangeWorker(customers repository.CustomerRepositoryInterface, record func(AuditEntry) error, logger *zap.Logger) *ChangeWorker {
	return &ChangeWorker{
		Customers: customers,
		Record:    record,
		Timeout:   5 * time.Second,
		Logger:    logger,
	}
}

// Start subscribes the worker to the client change topic.
func (w *ChangeWorker) Start(q queue.Queue) error {
	return q.Subscribe(queue.TopicClientChanges, w.Handle)
}

// Handle processes a single change. Returning an error lets the queue retry.
func (w *ChangeWorker) Handle(payload any) error {
	change, err := queue.DecodeClientChange(payload)
	if err != nil {
		// malformed events are not retried
		logging.OrNop(w.Logger).Warn("dropping invalid client change", zap.Error(err))
		return nil
	}

	entry := AuditEntry{Op: change.Op, ID: change.ID, At: change.At}
	if change.Op != model.ChangeDelete && w.Customers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout())
		found, err := w.Customers.GetByIDs(ctx, []string{change.ID})
		cancel()
		if err != nil {
			return err
		}
		// a record deleted before we got here is still audited by id
		if len(found) == 1 {
			entry.Nombre = found[0].Nombre
			entry.Etapa = found[0].Etapa
		}
	}

	if w.Record == nil {
		return nil
	}
	return w.Record(entry)
}

func (w *ChangeWorker) timeout() time.Duration {
	if w.Timeout <= 0 {
		return 5 * time.Second
	}
	return w.Timeout
}
