package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"divops/internal/config"
	"divops/internal/infra/db"
	repo "divops/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// 本物のPostgreSQLで確認する。
// 実行: GO_TEST_INTEGRATION=1 go test ./internal/infra/repository -run Postgres -v
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	gormDB, err := db.Open(ctx, config.DBConfig{
		Driver:      config.DriverPostgres,
		DatabaseURL: fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gormDB) })

	require.NoError(t, db.Migrate(ctx, gormDB))
	return gormDB
}

// 同じidentityへの同時書き込みでも最後は1件
func TestPostgres_SessionRepository_ConcurrentReplaceConverges(t *testing.T) {
	gormDB := startPostgres(t)
	r := NewSessionRepository(gormDB)
	ctx := context.Background()
	exp := time.Now().UTC().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.CreateOrReplace(ctx, newSession("race@x.com", fmt.Sprintf("h-%d", i), exp))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), countSessions(t, gormDB, "race@x.com"))
}

func TestPostgres_UserRepository_DuplicateEmail(t *testing.T) {
	gormDB := startPostgres(t)
	r := NewUserGormRepository(gormDB)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("dup@x.com")))
	assert.ErrorIs(t, r.Create(ctx, newUser("dup@x.com")), repo.ErrEmailAlreadyExists)
}
