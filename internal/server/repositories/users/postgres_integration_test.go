//go:build integration

package users_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/dbsauth/internal/common"
	"github.com/dmitrijs2005/dbsauth/internal/server/models"
	"github.com/dmitrijs2005/dbsauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dbsauth/internal/server/repositories/users"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dbsauth_test"),
		postgres.WithUsername("dbsauth"),
		postgres.WithPassword("dbsauth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = db.Close() })

	m := repomanager.NewPostgresRepositoryManager()
	require.NoError(t, m.RunMigrations(ctx, db))

	return pool
}

func TestPostgresRepository_Integration(t *testing.T) {
	pool := setupPostgres(t)
	repo := users.NewPostgresRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "$2a$10$x"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "$2a$10$x", got.PasswordHash)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Create(ctx, &models.User{Name: "Other", Email: "alice@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrUserExists)
}

func TestPostgresRepository_ConcurrentDuplicateRegistration(t *testing.T) {
	pool := setupPostgres(t)
	repo := users.NewPostgresRepository(pool)
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		existed   atomic.Int32
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.User{
				Name: fmt.Sprintf("racer-%d", i), Email: "race@example.com", PasswordHash: "h",
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, common.ErrUserExists):
				existed.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, n-1, existed.Load())
}
