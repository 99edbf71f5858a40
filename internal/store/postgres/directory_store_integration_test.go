//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/secunda/directory/internal/directory"
	"github.com/secunda/directory/internal/models"
	"github.com/secunda/directory/internal/seed"
	"github.com/secunda/directory/internal/store"
	"github.com/secunda/directory/internal/store/memory"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	// Start postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestIntegration_DirectoryQueries(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	pgStore := NewDirectoryStore(pool, nil)
	require.NoError(t, pgStore.Start())
	defer func() { require.NoError(t, pgStore.Stop()) }()

	ds := seed.Generate(seed.Options{Seed: 42, TagChildren: true})
	require.NoError(t, ds.Validate())
	require.NoError(t, pgStore.Load(ctx, ds))

	memStore := memory.NewDirectoryStore()
	require.NoError(t, memStore.Load(ctx, ds))

	pg := directory.NewService(pgStore)
	mem := directory.NewService(memStore)

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, RunMigrations(ctx, pool))
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, pgStore.Ping(ctx))
	})

	t.Run("organizations by address", func(t *testing.T) {
		for _, b := range ds.Buildings {
			want, err := mem.OrganizationsByAddress(ctx, b.Address)
			require.NoError(t, err)
			got, err := pg.OrganizationsByAddress(ctx, b.Address)
			require.NoError(t, err)
			require.ElementsMatch(t, want, got)
		}
	})

	t.Run("organizations by activity", func(t *testing.T) {
		for _, a := range ds.Activities {
			want, err := mem.OrganizationsByActivity(ctx, a.Name)
			require.NoError(t, err)
			got, err := pg.OrganizationsByActivity(ctx, a.Name)
			require.NoError(t, err)
			require.ElementsMatch(t, want, got)
		}
	})

	t.Run("activity tree", func(t *testing.T) {
		got, err := pg.OrganizationsByActivityTree(ctx, "Машины")
		require.NoError(t, err)
		require.Len(t, got, 3)
		for _, o := range got {
			require.Len(t, o.Activities, 1)
		}

		want, err := mem.OrganizationsByActivityTree(ctx, "Машины")
		require.NoError(t, err)
		require.ElementsMatch(t, want, got)

		_, err = pg.OrganizationsByActivityTree(ctx, "Колонки")
		require.ErrorIs(t, err, store.ErrActivityNotFound)
	})

	t.Run("list activities", func(t *testing.T) {
		roots, err := pg.ListActivities(ctx, "")
		require.NoError(t, err)
		require.Len(t, roots, 3)
		require.Equal(t, "Еда", roots[0].Name)

		tree, err := pg.ListActivities(ctx, "Продукты")
		require.NoError(t, err)
		require.Len(t, tree, 4)

		want, err := mem.ListActivities(ctx, "Продукты")
		require.NoError(t, err)
		require.Equal(t, want, tree)
	})

	t.Run("nearby", func(t *testing.T) {
		center := ds.Buildings[0].ID

		zero, err := pg.Nearby(ctx, center, 0, 10)
		require.NoError(t, err)
		require.NotEmpty(t, zero.Buildings)
		var found bool
		for _, b := range zero.Buildings {
			require.Zero(t, b.DistanceMeters)
			found = found || b.ID == center
		}
		require.True(t, found)

		got, err := pg.Nearby(ctx, center, 20000, 10)
		require.NoError(t, err)
		want, err := mem.Nearby(ctx, center, 20000, 10)
		require.NoError(t, err)
		require.Len(t, got.Buildings, len(ds.Buildings))
		require.Equal(t, len(want.Buildings), len(got.Buildings))
		for i := range got.Buildings {
			require.Equal(t, want.Buildings[i].ID, got.Buildings[i].ID)
			require.ElementsMatch(t, want.Buildings[i].Organizations, got.Buildings[i].Organizations)
			require.LessOrEqual(t, got.Buildings[i].DistanceMeters, 20000.0)
		}

		_, err = pg.Nearby(ctx, uuid.New(), 100, 10)
		require.ErrorIs(t, err, store.ErrBuildingNotFound)
	})

	t.Run("search", func(t *testing.T) {
		got, err := pg.SearchOrganizations(ctx, "ООО", 100)
		require.NoError(t, err)
		want, err := mem.SearchOrganizations(ctx, "ООО", 100)
		require.NoError(t, err)
		require.Equal(t, want.Count, got.Count)
		require.ElementsMatch(t, want.Organizations, got.Organizations)

		none, err := pg.SearchOrganizations(ctx, "%", 10)
		require.NoError(t, err)
		require.Zero(t, none.Count)
		require.Empty(t, none.Organizations)

		capped, err := pg.SearchOrganizations(ctx, "", 2)
		require.NoError(t, err)
		require.Equal(t, 2, capped.Count)
	})

	t.Run("get organization", func(t *testing.T) {
		org := ds.Organizations[0]

		got, err := pg.GetOrganization(ctx, org.ID)
		require.NoError(t, err)
		require.Equal(t, org.BuildingID, got.Building.ID)
		require.Len(t, got.PhoneNumbers, 1)
		require.Len(t, got.Activities, 1)

		_, err = pg.GetOrganization(ctx, uuid.New())
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})
}

func TestIntegration_LoadRejectsInvalidDataset(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	st := NewDirectoryStore(pool, nil)
	valid := seed.Generate(seed.Options{Seed: 1})
	require.NoError(t, st.Load(ctx, valid))

	dangling := seed.Generate(seed.Options{Seed: 2})
	dangling.Organizations[0].BuildingID = uuid.New()

	err := st.Load(ctx, dangling)
	require.ErrorIs(t, err, models.ErrInvalidDataset)

	// the failed load rolled back, so the first dataset is still served
	svc := directory.NewService(st)
	got, err := svc.GetOrganization(ctx, valid.Organizations[0].ID)
	require.NoError(t, err)
	require.Equal(t, valid.Organizations[0].Name, got.Name)
}
