package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "vespa", log)
	sslMode := utils.GetEnv("POSTGRES_SSLMODE", "disable", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName, sslMode)

	log.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Establishment{},
		&types.EstablishmentCycle{},
		&types.Account{},
		&types.Student{},
		&types.Staff{},
		&types.StaffRole{},
		&types.StaffStudentConnection{},
		&types.Activity{},
		&types.ActivityQuestion{},
		&types.ActivityResponse{},
		&types.StudentActivity{},
		&types.VespaScore{},
		&types.QuestionResponse{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
