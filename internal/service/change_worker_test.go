package service_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/queue"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

func TestChangeWorker_ResolvesRecord(t *testing.T) {
	repo := repository.NewMemoryCustomerRepository(model.Customer{
		ID:             "c1",
		CustomerFields: model.CustomerFields{Nombre: "Acme", Etapa: model.StageFinalizado},
	})

	var got []service.AuditEntry
	w := service.NewChangeWorker(repo, func(e service.AuditEntry) error {
		got = append(got, e)
		return nil
	}, nil)

	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	require.NoError(t, w.Handle(model.ClientChange{Op: model.ChangeUpdate, ID: "c1", At: at}))
	require.NoError(t, w.Handle(model.ClientChange{Op: model.ChangeDelete, ID: "gone", At: at}))

	raw, _ := json.Marshal(model.ClientChange{Op: model.ChangeCreate, ID: "missing", At: at})
	require.NoError(t, w.Handle(json.RawMessage(raw)))

	require.Len(t, got, 3)
	assert.Equal(t, service.AuditEntry{Op: model.ChangeUpdate, ID: "c1", Nombre: "Acme", Etapa: model.StageFinalizado, At: at}, got[0])
	assert.Equal(t, service.AuditEntry{Op: model.ChangeDelete, ID: "gone", At: at}, got[1])
	assert.Equal(t, "missing", got[2].ID)
	assert.Empty(t, got[2].Nombre)
}

func TestChangeWorker_DropsInvalidPayload(t *testing.T) {
	called := false
	w := service.NewChangeWorker(nil, func(service.AuditEntry) error {
		called = true
		return nil
	}, nil)

	assert.NoError(t, w.Handle(42))
	assert.NoError(t, w.Handle(json.RawMessage(`{not json`)))
	assert.False(t, called)
}

func TestChangeWorker_StoreErrorIsRetried(t *testing.T) {
	repo := &FailingRepo{MemoryCustomerRepository: repository.NewMemoryCustomerRepository()}
	repo.FailReads = true

	w := service.NewChangeWorker(repo, nil, nil)
	assert.ErrorIs(t, w.Handle(model.ClientChange{Op: model.ChangeCreate, ID: "x"}), errStore)
}

func TestChangeWorker_ConsumesQueue(t *testing.T) {
	repo := repository.NewMemoryCustomerRepository()
	q := queue.NewInMemoryQueue(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var mu sync.Mutex
	var got []service.AuditEntry
	w := service.NewChangeWorker(repo, func(e service.AuditEntry) error {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		wg.Done()
		return nil
	}, nil)
	require.NoError(t, w.Start(q))

	list := &service.ClientList{Repo: repo, Queue: q}
	created, err := list.Create(t.Context(), model.CustomerFields{Nombre: "Nuevo"})
	require.NoError(t, err)

	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, model.ChangeCreate, got[0].Op)
	assert.Equal(t, created.ID, got[0].ID)
	assert.Equal(t, "Nuevo", got[0].Nombre)
}
