package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/secunda/directory/internal/logger"
	"github.com/secunda/directory/internal/seed"
	postgresstore "github.com/secunda/directory/internal/store/postgres"
)

type SeedCmd struct {
	Out string `help:"write the dataset as YAML to this path instead of loading it into PostgreSQL" type:"path"`

	Dataset       DatasetFlags       `embed:"" prefix:"dataset-"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Debug)

	ds, err := c.Dataset.load()
	if err != nil {
		return err
	}

	if c.Out != "" {
		if err := seed.SaveFile(c.Out, ds); err != nil {
			return fmt.Errorf("failed to write dataset: %w", err)
		}
		log.Info().Str("path", c.Out).Int("organizations", len(ds.Organizations)).Msg("Dataset written")
		return nil
	}

	pool, err := c.PostgresStore.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgresstore.NewDirectoryStore(pool, nil).Load(ctx, ds); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	log.Info().
		Int("buildings", len(ds.Buildings)).
		Int("activities", len(ds.Activities)).
		Int("organizations", len(ds.Organizations)).
		Int("phones", len(ds.OrganizationPhones)).
		Msg("Dataset loaded")
	return nil
}
