package db

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/studyowl/tutor-backend/internal/domain"
	"github.com/studyowl/tutor-backend/internal/platform/envutil"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the template store. DB_DRIVER=sqlite switches to a local file
// database for development; everything else goes through Postgres.
func New(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	gormLog := gormLogger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{Logger: gormLog}

	driver := strings.ToLower(envutil.Get("DB_DRIVER", "postgres"))
	if driver == "sqlite" {
		path := envutil.Get("SQLITE_PATH", "tutor.db")
		gdb, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite at %s: %w", path, err)
		}
		return &Service{db: gdb, log: serviceLog}, nil
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envutil.Get("POSTGRES_USER", "postgres"),
		envutil.Get("POSTGRES_PASSWORD", ""),
		envutil.Get("POSTGRES_HOST", "localhost"),
		envutil.Get("POSTGRES_PORT", "5432"),
		envutil.Get("POSTGRES_NAME", "tutor"),
		envutil.Get("POSTGRES_SSLMODE", "disable"),
	)
	gdb, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

// AutoMigrateAll keeps the read-side schema in step with the admin console's
// writer. Only tables this service touches are listed.
func (s *Service) AutoMigrateAll() error {
	return s.db.AutoMigrate(
		&domain.PromptTemplate{},
	)
}
