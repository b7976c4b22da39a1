//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/keyip-citation-network/internal/infrastructure/database/postgres"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
)

// startPostgres launches PostgreSQL 16, applies the real migrations and
// returns a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "citenet_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/citenet_test?sslmode=disable", host, port.Port())
	require.NoError(t, postgres.MigrateUp(dsn, "../migrations"))

	version, dirty, err := postgres.MigrationStatus(dsn, "../migrations")
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestCitationSource_Postgres(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO patent_citations (citing_patent_id, cited_patent_id, sequence, category, cited_date) VALUES
		('US10006624B2', 'US8000002B2', 2, 'cited by examiner', '2016-01-05'),
		('US10006624B2', 'US8000001B2', 1, 'cited by applicant', NULL),
		('US11000001B2', 'US10006624B2', 1, 'cited by examiner', '2020-07-01')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO patent_details (patent_id, title, assignee, classification_codes) VALUES
		('US10006624B2', 'Root', 'Acme Corp', ARRAY['G06F 16/00']),
		('US8000001B2', 'Older', 'Beta Inc', '{}')`)
	require.NoError(t, err)

	src := repositories.NewCitationSource(pool, 10, logging.NewNopLogger())

	backward, err := src.GetBackwardCitations(ctx, "US10006624B2")
	require.NoError(t, err)
	require.Len(t, backward, 2)
	assert.Equal(t, "US8000001B2", backward[0].CitedPatentID)
	assert.Nil(t, backward[0].Date)
	require.NotNil(t, backward[1].Date)
	assert.Equal(t, 2016, backward[1].Date.Year())

	forward, err := src.GetForwardCitations(ctx, "US10006624B2")
	require.NoError(t, err)
	require.Len(t, forward, 1)
	assert.Equal(t, "US11000001B2", forward[0].CitingPatentID)

	none, err := src.GetForwardCitations(ctx, "US11000001B2")
	require.NoError(t, err)
	assert.Empty(t, none)

	details, err := src.GetPatentDetails(ctx, []string{"US10006624B2", "US8000001B2", "US404"})
	require.NoError(t, err)
	assert.Len(t, details, 2)
	assert.Equal(t, []string{"G06F 16/00"}, details["US10006624B2"].ClassificationCodes)
	assert.Empty(t, details["US8000001B2"].ClassificationCodes)

	assert.NoError(t, src.HealthCheck(ctx))
}

//Personal.AI order the ending
