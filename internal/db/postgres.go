package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/civeni/civeni-api/internal/config"
	"github.com/civeni/civeni-api/internal/repository/dao"
)

func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	return open(conf.DSN())
}

// OpenPostgresWithURL accepts a postgres:// URL, as provided by hosting
// platforms in DATABASE_URL.
func OpenPostgresWithURL(url string) (*gorm.DB, error) {
	return open(url)
}

func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	zap.L().Info("connected to postgres")

	return db, nil
}

// Migrate creates or updates every table and the finance_daily view.
func Migrate(db *gorm.DB) error {
	if err := dao.InitTables(db); err != nil {
		return fmt.Errorf("dao.InitTables -> %w", err)
	}

	zap.L().Info("database migrated")

	return nil
}
