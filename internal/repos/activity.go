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

type ActivityRepo interface {
	GetByKnackID(ctx context.Context, tx *gorm.DB, knackID string) (*types.Activity, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Activity, error)
	Upsert(ctx context.Context, tx *gorm.DB, activity *types.Activity) error
	// MapByKnackID loads every activity keyed on its legacy record id, the
	// lookup table the response import resolves references through.
	MapByKnackID(ctx context.Context, tx *gorm.DB) (map[string]types.Activity, error)
	MapByName(ctx context.Context, tx *gorm.DB) (map[string]types.Activity, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]types.Activity, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) GetByKnackID(ctx context.Context, tx *gorm.DB, knackID string) (*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if knackID == "" {
		return nil, nil
	}
	var row types.Activity
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

func (r *activityRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if name == "" {
		return nil, nil
	}
	var row types.Activity
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

func (r *activityRepo) Upsert(ctx context.Context, tx *gorm.DB, activity *types.Activity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if activity == nil || activity.KnackID == "" {
		return nil
	}
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	activity.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "knack_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "slug", "vespa_category", "level", "difficulty",
				"time_minutes", "score_threshold_min", "score_threshold_max",
				"content", "color", "display_order", "is_active", "updated_at",
			}),
		}).
		Create(activity).Error
}

func (r *activityRepo) MapByKnackID(ctx context.Context, tx *gorm.DB) (map[string]types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.Activity
	if err := transaction.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]types.Activity, len(rows))
	for _, a := range rows {
		out[a.KnackID] = a
	}
	return out, nil
}

func (r *activityRepo) MapByName(ctx context.Context, tx *gorm.DB) (map[string]types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.Activity
	if err := transaction.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]types.Activity, len(rows))
	for _, a := range rows {
		out[a.Name] = a
	}
	return out, nil
}

func (r *activityRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.Activity
	err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("vespa_category asc, name asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
