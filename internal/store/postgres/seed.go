package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/secunda/directory/internal/models"
)

// Load replaces all directory data with the dataset in a single transaction.
// Constraint violations are reported as models.ErrInvalidDataset.
func (s *DirectoryStore) Load(ctx context.Context, ds *models.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapPostgresError(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	_, err = tx.Exec(ctx, `
		TRUNCATE organization_activities, organization_phones, organizations, activities, buildings
	`)
	if err != nil {
		return fmt.Errorf("failed to truncate directory tables: %w", mapPostgresError(err))
	}

	batch := &pgx.Batch{}
	for _, b := range ds.Buildings {
		batch.Queue(`INSERT INTO buildings (id, address, latitude_longitude) VALUES ($1, $2, $3)`,
			b.ID, b.Address, b.Coordinate)
	}
	// parent_id is checked at commit so insertion order does not matter
	for _, a := range ds.Activities {
		batch.Queue(`INSERT INTO activities (id, name, parent_id) VALUES ($1, $2, $3)`,
			a.ID, a.Name, a.ParentID)
	}
	for _, o := range ds.Organizations {
		batch.Queue(`INSERT INTO organizations (id, name, buildings_id) VALUES ($1, $2, $3)`,
			o.ID, o.Name, o.BuildingID)
	}
	for _, p := range ds.OrganizationPhones {
		batch.Queue(`INSERT INTO organization_phones (id, organization_id, phone_number) VALUES ($1, $2, $3)`,
			p.ID, p.OrganizationID, p.PhoneNumber)
	}
	for _, t := range ds.OrganizationActivities {
		batch.Queue(`INSERT INTO organization_activities (id, organization_id, activity_id) VALUES ($1, $2, $3)`,
			t.ID, t.OrganizationID, t.ActivityID)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert dataset: %w", mapPostgresError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", mapPostgresError(err))
	}

	log.Info().
		Int("buildings", len(ds.Buildings)).
		Int("activities", len(ds.Activities)).
		Int("organizations", len(ds.Organizations)).
		Int("phones", len(ds.OrganizationPhones)).
		Int("tags", len(ds.OrganizationActivities)).
		Msg("Loaded directory dataset")

	return nil
}
