package container

import (
	"context"
	"fmt"

	feed "drawlab/adapters/api"
	"drawlab/adapters/db"
	"drawlab/adapters/memory"
	"drawlab/adapters/rng"
	"drawlab/app"
	"drawlab/internal/config"
	"drawlab/internal/errors"
	"drawlab/internal/migration"
	"drawlab/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger zerolog.Logger

	// Infrastructure; DB is nil for the memory driver
	DB *sqlx.DB

	RNG     ports.RNGPort
	RunRepo ports.RunRepository

	Analysis *app.AnalysisService
}

// New creates the container, opening and migrating the run store named by
// the database config.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		RNG:    rng.NewSeededAdapter(),
	}

	if err := c.initRunStore(ctx); err != nil {
		return nil, err
	}
	c.Analysis = app.NewAnalysisService(c.RNG, c.RunRepo, logger)

	logger.Info().Str("database", cfg.Database.Driver).Msg("container initialized")
	return c, nil
}

// initRunStore picks the run repository for the configured driver
func (c *Container) initRunStore(ctx context.Context) error {
	driver := c.Config.Database.Driver
	if driver == "" || driver == "memory" {
		c.RunRepo = memory.NewRunRepository()
		return nil
	}

	conn, err := sqlx.ConnectContext(ctx, driver, c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to connect to %s", driver), err)
	}
	if driver == "sqlite3" {
		// sqlite serializes writers; one connection also keeps :memory: databases shared
		conn.SetMaxOpenConns(1)
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, conn); err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to migrate run store")
	}
	c.Logger.Info().Str("driver", driver).Str("schema", runner.Version()).Msg("run store ready")

	c.DB = conn
	c.RunRepo = db.NewRunRepository(conn)
	return nil
}

// FeedReader builds a reader for the configured results feed
func (c *Container) FeedReader() (*feed.FeedReader, error) {
	f := c.Config.Feed
	if f.URL == "" {
		return nil, errors.ConfigInvalid("FEED_URL is not set")
	}
	return feed.NewFeedReader(feed.FeedSource{
		URL:          f.URL,
		DataPath:     f.DataPath,
		NumbersField: f.NumbersField,
		OrderField:   f.OrderField,
		NewestFirst:  f.NewestFirst,
		AuthMethod:   f.AuthMethod,
		AuthToken:    f.AuthToken,
		Timeout:      f.Timeout,
	}, c.Logger)
}

// Close releases the database connection
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
