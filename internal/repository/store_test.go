package repository_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabrieexl/proyecto-calidad/internal/db"
	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

type newStore func(t *testing.T, seed ...model.Customer) repository.CustomerRepositoryInterface

// stores returns the memory store and, when DATABASE_URL is set, a Postgres
// store backed by a throwaway schema.
func stores(t *testing.T) map[string]newStore {
	out := map[string]newStore{
		"memory": func(t *testing.T, seed ...model.Customer) repository.CustomerRepositoryInterface {
			return repository.NewMemoryCustomerRepository(seed...)
		},
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		out["postgres"] = func(t *testing.T, seed ...model.Customer) repository.CustomerRepositoryInterface {
			return postgresStore(t, dsn, seed...)
		}
	} else {
		t.Log("DATABASE_URL not set, running against the memory store only")
	}
	return out
}

func withSearchPath(t *testing.T, dsn, schema string) string {
	t.Helper()
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		require.NoError(t, err)
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " search_path=" + schema
}

func postgresStore(t *testing.T, dsn string, seed ...model.Customer) repository.CustomerRepositoryInterface {
	t.Helper()
	ctx := context.Background()

	admin, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	schema := "clientes_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+pq.QuoteIdentifier(schema))
	require.NoError(t, err)

	conn, err := db.Open(ctx, withSearchPath(t, dsn, schema))
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		admin.ExecContext(context.Background(), "DROP SCHEMA "+pq.QuoteIdentifier(schema)+" CASCADE")
		admin.Close()
	})
	require.NoError(t, db.Migrate(ctx, conn))

	for _, c := range seed {
		insertWithID(t, conn, c)
	}
	return &repository.CustomerRepository{DB: conn}
}

func insertWithID(t *testing.T, conn *sql.DB, c model.Customer) {
	t.Helper()
	data, err := json.Marshal(c.CustomerFields)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO clientes (id, data) VALUES ($1, $2)`, c.ID, data)
	require.NoError(t, err)
}

func TestStoresOrderAndResumeAlike(t *testing.T) {
	seed := []model.Customer{
		{ID: "b", CustomerFields: model.CustomerFields{Nombre: "Ana"}},
		{ID: "a", CustomerFields: model.CustomerFields{Nombre: "Ana"}},
		{ID: "c"},
		{ID: "d", CustomerFields: model.CustomerFields{Nombre: "Zeta"}},
		{ID: "e", CustomerFields: model.CustomerFields{Nombre: "ana"}},
		{ID: "f", CustomerFields: model.CustomerFields{Nombre: "Beto"}},
	}
	pageIDs := func(cs []model.Customer) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.ID
		}
		return out
	}

	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t, seed...)

			// byte order: "" < "Ana" < "Beto" < "Zeta" < "ana", ties by id
			all, err := repo.ListPage(ctx, repository.PageQuery{OrderBy: "nombre", Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "a", "b", "f", "d", "e"}, pageIDs(all))

			after, err := repo.ListPage(ctx, repository.PageQuery{
				OrderBy: "nombre", Cursor: repository.CursorFor(all[1], "nombre"), Mode: repository.StartAfter, Limit: 2,
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"b", "f"}, pageIDs(after))

			at, err := repo.ListPage(ctx, repository.PageQuery{
				OrderBy: "nombre", Cursor: repository.CursorFor(all[1], "nombre"), Mode: repository.StartAt, Limit: 2,
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, pageIDs(at))

			tail, err := repo.ListPage(ctx, repository.PageQuery{
				OrderBy: "nombre", Cursor: repository.CursorFor(all[5], "nombre"), Mode: repository.StartAfter, Limit: 2,
			})
			require.NoError(t, err)
			assert.Empty(t, tail)
		})
	}
}

func TestStoresMergeUpdatesAndReportMissing(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t, model.Customer{ID: "x1", CustomerFields: model.CustomerFields{Nombre: "Ana", Telefono: "111", Etapa: model.StageFinalizado}})

			require.NoError(t, repo.UpdateFields(ctx, "x1", map[string]string{"telefono": "999", "etapa": model.StageRetomarContacto}))
			got, err := repo.GetByIDs(ctx, []string{"x1", "nope"})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Ana", got[0].Nombre)
			assert.Equal(t, "999", got[0].Telefono)

			pending, err := repo.ListByField(ctx, "etapa", []string{model.StageRetomarContacto}, 10)
			require.NoError(t, err)
			assert.Len(t, pending, 1)

			var nf *appErrors.ErrCustomerNotFound
			assert.ErrorAs(t, repo.UpdateFields(ctx, "nope", map[string]string{"nombre": "x"}), &nf)
			require.NoError(t, repo.Delete(ctx, "x1"))
			assert.ErrorAs(t, repo.Delete(ctx, "x1"), &nf)
		})
	}
}
