package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/civeni/civeni-api/internal/api"
	"github.com/civeni/civeni-api/internal/config"
	"github.com/civeni/civeni-api/internal/db"
	"github.com/civeni/civeni-api/internal/logger"
)

const ConfigPath = "./cmd/app/config.yml"

// Setup loads the config, initializes the logger and connects to postgres.
// DATABASE_URL wins over the postgres section when set.
func Setup(configPath string) (*config.AppConfig, *gorm.DB, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	return conf, postgresDB, nil
}

func Start() error {
	return Serve(ConfigPath, true)
}

func Serve(configPath string, migrate bool) error {
	conf, postgresDB, err := Setup(configPath)
	if err != nil {
		return err
	}

	if migrate {
		if err = db.Migrate(postgresDB); err != nil {
			return fmt.Errorf("failed to migrate database -> %w", err)
		}
	}

	if !conf.Stripe.Configured() {
		zap.L().Warn("stripe secret key is empty, paid registrations and webhooks are disabled")
	}

	s := api.NewServer(conf, postgresDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub.Run(ctx)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
