package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/secunda/directory/internal/logger"
)

type MigrateCmd struct {
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Debug)

	// connect runs the migrations
	c.PostgresStore.AutoMigrate = true

	pool, err := c.PostgresStore.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return nil
}
