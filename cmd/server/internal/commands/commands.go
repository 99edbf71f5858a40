package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/secunda/directory/internal/models"
	"github.com/secunda/directory/internal/seed"
	postgresstore "github.com/secunda/directory/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString     string        `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	ConnectTimeout time.Duration `help:"how long to keep retrying the initial connection" default:"30s" env:"DIRECTORY_POSTGRES_CONNECT_TIMEOUT"`

	// Store Configuration
	QueryTimeout int32 `help:"per query transaction timeout in seconds, negative disables" default:"10" env:"DIRECTORY_POSTGRES_QUERY_TIMEOUT"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"DIRECTORY_POSTGRES_AUTO_MIGRATE"`
}

// validate is called by the commands that need Postgres; the flags are also
// embedded in serve where the memory store leaves them unset.
func (s *PostgresStoreFlags) validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

// connect opens the pool, retrying until the database accepts connections,
// and applies migrations when AutoMigrate is set.
func (s *PostgresStoreFlags) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	poolCfg := &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	}

	pool, err := postgresstore.ConnectWithRetry(ctx, poolCfg, s.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if s.AutoMigrate {
		if err := postgresstore.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Msg("Database migrations completed")
	}

	return pool, nil
}

// DatasetFlags selects the dataset to serve or load: a YAML file when File is
// set, otherwise the generated sample.
type DatasetFlags struct {
	File        string `help:"YAML dataset file" type:"existingfile" env:"DIRECTORY_DATASET_FILE"`
	Seed        uint64 `help:"seed for the generated sample dataset" default:"1" env:"DIRECTORY_DATASET_SEED"`
	TagChildren bool   `help:"tag generated organizations with child activities instead of the root" default:"false"`
}

func (d *DatasetFlags) load() (*models.Dataset, error) {
	if d.File != "" {
		ds, err := seed.LoadFile(d.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset %s: %w", d.File, err)
		}
		return ds, nil
	}

	ds := seed.Generate(seed.Options{Seed: d.Seed, TagChildren: d.TagChildren})
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("generated dataset is invalid: %w", err)
	}
	return ds, nil
}
