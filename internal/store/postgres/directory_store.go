package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/secunda/directory/internal/models"
	"github.com/secunda/directory/internal/store"
)

// DirectoryStore implements store.DirectoryStore using PostgreSQL.
// Every ReadTx runs in a REPEATABLE READ, READ ONLY transaction so the queries
// of one operation share a snapshot.
type DirectoryStore struct {
	pool *pgxpool.Pool
	cfg  *StoreConfig

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewDirectoryStore creates a PostgreSQL-backed directory store on an existing pool.
// The pool stays owned by the caller.
func NewDirectoryStore(pool *pgxpool.Pool, cfg *StoreConfig) *DirectoryStore {
	if cfg == nil {
		cfg = &StoreConfig{}
	}
	cfg.ApplyDefaults()

	return &DirectoryStore{
		pool:   pool,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
}

// Start begins logging connection pool statistics.
func (s *DirectoryStore) Start() error {
	log.Info().Msg("Starting PostgreSQL directory store")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.monitorConnectionPool()
	}()

	return nil
}

// Stop halts background tasks. It does not close the pool.
func (s *DirectoryStore) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()

	log.Info().Msg("PostgreSQL directory store stopped")
	return nil
}

func (s *DirectoryStore) monitorConnectionPool() {
	ticker := time.NewTicker(time.Duration(s.cfg.PoolStatsIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := s.pool.Stat()
			log.Debug().
				Int32("total_conns", stats.TotalConns()).
				Int32("idle_conns", stats.IdleConns()).
				Int32("acquired_conns", stats.AcquiredConns()).
				Int64("acquire_count", stats.AcquireCount()).
				Int64("acquire_duration_ns", stats.AcquireDuration().Nanoseconds()).
				Msg("Connection pool stats")
		case <-s.stopCh:
			return
		}
	}
}

// Ping verifies the database is reachable.
func (s *DirectoryStore) Ping(ctx context.Context) error {
	return mapPostgresError(s.pool.Ping(ctx))
}

// ReadTx runs fn inside a read-only snapshot transaction. The transaction is
// always rolled back or committed before ReadTx returns.
func (s *DirectoryStore) ReadTx(ctx context.Context, fn func(ctx context.Context, r store.Reader) error) error {
	if s.cfg.QueryTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.QueryTimeoutSeconds)*time.Second)
		defer cancel()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", mapPostgresError(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	if err := fn(ctx, &txReader{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit read transaction: %w", mapPostgresError(err))
	}
	return nil
}

// txReader implements store.Reader on top of a single transaction.
type txReader struct {
	tx pgx.Tx
}

const buildingColumns = `id, address, latitude_longitude`

func (r *txReader) ListBuildings(ctx context.Context, withCoordinate bool) ([]*models.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings`
	if withCoordinate {
		query += ` WHERE latitude_longitude IS NOT NULL`
	}
	query += ` ORDER BY id`

	return r.queryBuildings(ctx, query)
}

func (r *txReader) GetBuilding(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	var b models.Building
	err := r.tx.QueryRow(ctx, `
		SELECT `+buildingColumns+`
		FROM buildings
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Address, &b.Coordinate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to get building: %w", mapPostgresError(err))
	}
	return &b, nil
}

func (r *txReader) ListBuildingsByAddress(ctx context.Context, address string) ([]*models.Building, error) {
	return r.queryBuildings(ctx, `
		SELECT `+buildingColumns+`
		FROM buildings
		WHERE address = $1
		ORDER BY id
	`, address)
}

func (r *txReader) queryBuildings(ctx context.Context, query string, args ...any) ([]*models.Building, error) {
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var buildings []*models.Building
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Address, &b.Coordinate); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		buildings = append(buildings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buildings: %w", mapPostgresError(err))
	}

	return buildings, nil
}

const organizationColumns = `id, name, buildings_id`

func (r *txReader) ListOrganizationsByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Organization, error) {
	return r.queryOrganizations(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE buildings_id = $1
		ORDER BY id
	`, buildingID)
}

func (r *txReader) SearchOrganizationsByName(ctx context.Context, fragment string, limit int) ([]*models.Organization, error) {
	if limit <= 0 {
		return nil, nil
	}

	return r.queryOrganizations(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY name COLLATE "C", id
		LIMIT $2
	`, escapeLike(fragment), limit)
}

func (r *txReader) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var o models.Organization
	err := r.tx.QueryRow(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.BuildingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}
	return &o, nil
}

func (r *txReader) queryOrganizations(ctx context.Context, query string, args ...any) ([]*models.Organization, error) {
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.BuildingID); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", mapPostgresError(err))
	}

	return orgs, nil
}

func (r *txReader) ListPhoneNumbers(ctx context.Context, organizationID uuid.UUID) ([]string, error) {
	return r.queryStrings(ctx, `
		SELECT phone_number
		FROM organization_phones
		WHERE organization_id = $1
		ORDER BY id
	`, organizationID)
}

func (r *txReader) ListActivityNames(ctx context.Context, organizationID uuid.UUID) ([]string, error) {
	return r.queryStrings(ctx, `
		SELECT a.name
		FROM organization_activities oa
		JOIN activities a ON a.id = oa.activity_id
		WHERE oa.organization_id = $1
		ORDER BY oa.id
	`, organizationID)
}

func (r *txReader) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", mapPostgresError(err))
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows: %w", mapPostgresError(err))
	}
	return values, nil
}

const activityColumns = `id, name, parent_id`

func (r *txReader) ListRootActivitiesByName(ctx context.Context, name string) ([]*models.Activity, error) {
	return r.queryActivities(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE parent_id IS NULL AND name = $1
		ORDER BY id
	`, name)
}

func (r *txReader) ListActivitiesByName(ctx context.Context, name string) ([]*models.Activity, error) {
	return r.queryActivities(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE name = $1
		ORDER BY id
	`, name)
}

func (r *txReader) ListChildActivities(ctx context.Context, parentID uuid.UUID) ([]*models.Activity, error) {
	return r.queryActivities(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE parent_id = $1
		ORDER BY id
	`, parentID)
}

func (r *txReader) ListRootActivities(ctx context.Context) ([]*models.Activity, error) {
	return r.queryActivities(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE parent_id IS NULL
		ORDER BY id
	`)
}

func (r *txReader) queryActivities(ctx context.Context, query string, args ...any) ([]*models.Activity, error) {
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.ParentID); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", mapPostgresError(err))
	}

	return activities, nil
}

func (r *txReader) ListTaggedOrganizations(ctx context.Context, activityIDs []uuid.UUID) ([]*store.TaggedOrganization, error) {
	if len(activityIDs) == 0 {
		return nil, nil
	}

	rows, err := r.tx.Query(ctx, `
		SELECT o.id, o.name, o.buildings_id, a.id, a.name
		FROM organizations o
		JOIN organization_activities oa ON oa.organization_id = o.id
		JOIN activities a ON a.id = oa.activity_id
		JOIN buildings b ON b.id = o.buildings_id
		WHERE oa.activity_id = ANY($1)
		ORDER BY oa.id
	`, activityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list tagged organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var tagged []*store.TaggedOrganization
	for rows.Next() {
		var t store.TaggedOrganization
		if err := rows.Scan(&t.OrganizationID, &t.OrganizationName, &t.BuildingID, &t.ActivityID, &t.ActivityName); err != nil {
			return nil, fmt.Errorf("failed to scan tagged organization: %w", err)
		}
		tagged = append(tagged, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tagged organizations: %w", mapPostgresError(err))
	}

	return tagged, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards so the fragment matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
