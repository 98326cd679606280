package sqlite

import (
	"context"
	"embed"

	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open открывает файл базы SQLite. SQLite допускает одного писателя,
// поэтому пул ограничен одним соединением.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// RunMigrations применяет встроенные миграции.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
