package service_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

var errStore = errors.New("store unavailable")

func seedClientes(n int) []model.Customer {
	out := make([]model.Customer, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Customer{
			ID:             fmt.Sprintf("id-%02d", i),
			CustomerFields: model.CustomerFields{Nombre: fmt.Sprintf("Cliente %02d", i)},
		})
	}
	return out
}

func nombres(cs []model.Customer) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Nombre
	}
	return out
}

// FailingRepo wraps the memory store and fails the operations whose flag is set.
type FailingRepo struct {
	*repository.MemoryCustomerRepository
	FailList   bool
	FailWrites bool
	FailReads  bool
	ListCalls  int
}

func (r *FailingRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Customer, error) {
	if r.FailReads {
		return nil, errStore
	}
	return r.MemoryCustomerRepository.GetByIDs(ctx, ids)
}

func (r *FailingRepo) ListPage(ctx context.Context, q repository.PageQuery) ([]model.Customer, error) {
	r.ListCalls++
	if r.FailList {
		return nil, errStore
	}
	return r.MemoryCustomerRepository.ListPage(ctx, q)
}

func (r *FailingRepo) Insert(ctx context.Context, f model.CustomerFields) (string, error) {
	if r.FailWrites {
		return "", errStore
	}
	return r.MemoryCustomerRepository.Insert(ctx, f)
}

func (r *FailingRepo) UpdateFields(ctx context.Context, id string, patch map[string]string) error {
	if r.FailWrites {
		return errStore
	}
	return r.MemoryCustomerRepository.UpdateFields(ctx, id, patch)
}

func (r *FailingRepo) Delete(ctx context.Context, id string) error {
	if r.FailWrites {
		return errStore
	}
	return r.MemoryCustomerRepository.Delete(ctx, id)
}

// BlockingRepo holds ListPage until release is closed.
type BlockingRepo struct {
	*repository.MemoryCustomerRepository
	entered chan struct{}
	release chan struct{}
}

func (r *BlockingRepo) ListPage(ctx context.Context, q repository.PageQuery) ([]model.Customer, error) {
	r.entered <- struct{}{}
	<-r.release
	return r.MemoryCustomerRepository.ListPage(ctx, q)
}
