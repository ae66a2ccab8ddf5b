package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

type EstablishmentRepo interface {
	GetByKnackID(ctx context.Context, tx *gorm.DB, knackID string) (*types.Establishment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Establishment, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Establishment, error)
	Upsert(ctx context.Context, tx *gorm.DB, est *types.Establishment) error
	ListActive(ctx context.Context, tx *gorm.DB) ([]types.Establishment, error)
	// Cycles returns the configured questionnaire windows for an establishment
	// ordered by cycle number. An empty result means no windows are configured.
	Cycles(ctx context.Context, tx *gorm.DB, establishmentID uuid.UUID) ([]types.EstablishmentCycle, error)
	UpsertCycle(ctx context.Context, tx *gorm.DB, cycle *types.EstablishmentCycle) error
}

type establishmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEstablishmentRepo(db *gorm.DB, baseLog *logger.Logger) EstablishmentRepo {
	return &establishmentRepo{db: db, log: baseLog.With("repo", "EstablishmentRepo")}
}

func (r *establishmentRepo) GetByKnackID(ctx context.Context, tx *gorm.DB, knackID string) (*types.Establishment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if knackID == "" {
		return nil, nil
	}
	var row types.Establishment
	err := transaction.WithContext(ctx).
		Where("knack_id = ?", knackID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *establishmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Establishment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Establishment
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *establishmentRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Establishment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if name == "" {
		return nil, nil
	}
	var row types.Establishment
	err := transaction.WithContext(ctx).
		Where("name = ?", name).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *establishmentRepo) Upsert(ctx context.Context, tx *gorm.DB, est *types.Establishment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if est == nil || est.KnackID == "" {
		return nil
	}
	if est.ID == uuid.Nil {
		est.ID = uuid.New()
	}
	est.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "knack_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "status", "is_australian", "use_standard_year", "updated_at",
			}),
		}).
		Create(est).Error
}

func (r *establishmentRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]types.Establishment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.Establishment
	err := transaction.WithContext(ctx).
		Where("status = ?", "Active").
		Order("name asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *establishmentRepo) Cycles(ctx context.Context, tx *gorm.DB, establishmentID uuid.UUID) ([]types.EstablishmentCycle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.EstablishmentCycle
	err := transaction.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Order("cycle asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *establishmentRepo) UpsertCycle(ctx context.Context, tx *gorm.DB, cycle *types.EstablishmentCycle) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if cycle == nil || cycle.EstablishmentID == uuid.Nil || cycle.Cycle == 0 {
		return nil
	}
	if cycle.ID == uuid.Nil {
		cycle.ID = uuid.New()
	}
	cycle.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "establishment_id"}, {Name: "cycle"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"start_date", "end_date", "updated_at",
			}),
		}).
		Create(cycle).Error
}
