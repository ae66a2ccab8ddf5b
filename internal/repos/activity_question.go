package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

type ActivityQuestionRepo interface {
	// Insert writes one question, bumping display_order past any occupied
	// slot for the activity so the unique (activity_id, display_order) pair
	// always lands on a free position.
	Insert(ctx context.Context, tx *gorm.DB, q *types.ActivityQuestion) error
	ListForActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]types.ActivityQuestion, error)
	DeleteForActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) error
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type activityQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityQuestionRepo(db *gorm.DB, baseLog *logger.Logger) ActivityQuestionRepo {
	return &activityQuestionRepo{db: db, log: baseLog.With("repo", "ActivityQuestionRepo")}
}

func (r *activityQuestionRepo) Insert(ctx context.Context, tx *gorm.DB, q *types.ActivityQuestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if q == nil || q.ActivityID == uuid.Nil {
		return nil
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	for {
		var taken int64
		err := transaction.WithContext(ctx).
			Model(&types.ActivityQuestion{}).
			Where("activity_id = ? AND display_order = ?", q.ActivityID, q.DisplayOrder).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken == 0 {
			break
		}
		q.DisplayOrder++
	}
	q.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).Create(q).Error
}

func (r *activityQuestionRepo) ListForActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]types.ActivityQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.ActivityQuestion
	err := transaction.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("display_order asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityQuestionRepo) DeleteForActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Delete(&types.ActivityQuestion{}).Error
}

func (r *activityQuestionRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.ActivityQuestion{}).
		Count(&n).Error
	return n, err
}
