// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/config"
	"github.com/Gabrieexl/proyecto-calidad/internal/db"
	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/repository"
)

func main() {
	file := pflag.StringP("file", "f", "seed/clientes.json", "JSON array of clientes to insert")
	migrate := pflag.Bool("migrate", true, "apply the schema before seeding")
	pflag.Parse()

	cfg, _, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL or DB_HOST is required")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	if *migrate {
		if err := db.Migrate(ctx, conn); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
	}

	clientes, err := readSeed(*file)
	if err != nil {
		logger.Fatal("failed to read seed", zap.String("file", *file), zap.Error(err))
	}

	repo := &repository.CustomerRepository{DB: conn, Logger: logger}
	n, err := seed(ctx, repo, clientes)
	if err != nil {
		logger.Fatal("seeding failed", zap.Int("inserted", n), zap.Error(err))
	}
	logger.Info("database seeding completed", zap.String("file", *file), zap.Int("inserted", n))
}

func readSeed(path string) ([]model.CustomerFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var clientes []model.CustomerFields
	if err := json.Unmarshal(data, &clientes); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return clientes, nil
}

// seed inserts every cliente with a nombre and returns how many were written.
func seed(ctx context.Context, repo repository.CustomerRepositoryInterface, clientes []model.CustomerFields) (int, error) {
	n := 0
	for i, c := range clientes {
		if strings.TrimSpace(c.Nombre) == "" {
			continue
		}
		if _, err := repo.Insert(ctx, c); err != nil {
			return n, fmt.Errorf("insert entry %d: %w", i, err)
		}
		n++
	}
	return n, nil
}
