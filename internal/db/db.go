package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/envutil"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

// Service owns the *gorm.DB handle for the process and knows how to bring
// the schema up to date.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgresService opens a Postgres connection using DATABASE_URL if set,
// falling back to the discrete POSTGRES_* variables the way the rest of
// this codebase's ambient config resolves.
func NewPostgresService(baseLog *logger.Logger) (*Service, error) {
	serviceLog := baseLog.With("service", "db.Service")

	dsn := envutil.String("DATABASE_URL", "", baseLog)
	if dsn == "" {
		host := envutil.String("POSTGRES_HOST", "localhost", baseLog)
		port := envutil.String("POSTGRES_PORT", "5432", baseLog)
		user := envutil.String("POSTGRES_USER", "postgres", baseLog)
		pass := envutil.String("POSTGRES_PASSWORD", "", baseLog)
		name := envutil.String("POSTGRES_NAME", "inquiry_os", baseLog)
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name)
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		serviceLog.Error("failed to connect to postgres", "error", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Warn("failed to enable uuid-ossp extension (non-fatal, IDs are assigned in-app)", "error", err)
	}

	return &Service{db: gormDB, log: serviceLog}, nil
}

// NewSQLiteService opens an in-memory (or file-backed, if dsn is a path)
// SQLite database. Used by the test suite and local dev without Postgres.
func NewSQLiteService(dsn string, baseLog *logger.Logger) (*Service, error) {
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	return &Service{db: gormDB, log: baseLog.With("service", "db.Service")}, nil
}

func newGormLogger() gormLogger.Interface {
	return gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("auto migrating tables...")
	err := s.db.AutoMigrate(
		&research.Run{},
		&research.Step{},
		&research.Source{},
		&research.Answer{},
		&research.Event{},
	)
	if err != nil {
		s.log.Error("automigrate failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB { return s.db }
