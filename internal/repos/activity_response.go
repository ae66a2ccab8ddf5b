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

type ActivityResponseRepo interface {
	// Upsert writes one response keyed on
	// (student_email, activity_id, cycle_number). Re-imports of the same
	// attempt update the row in place.
	Upsert(ctx context.Context, tx *gorm.DB, resp *types.ActivityResponse) error
	UpsertBatch(ctx context.Context, tx *gorm.DB, resps []*types.ActivityResponse) error
	Get(ctx context.Context, tx *gorm.DB, studentEmail string, activityID uuid.UUID, cycle int) (*types.ActivityResponse, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentEmail string) ([]types.ActivityResponse, error)
	CountCompleted(ctx context.Context, tx *gorm.DB, studentEmail string) (int64, error)
}

type activityResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityResponseRepo(db *gorm.DB, baseLog *logger.Logger) ActivityResponseRepo {
	return &activityResponseRepo{db: db, log: baseLog.With("repo", "ActivityResponseRepo")}
}

var responseConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "student_email"}, {Name: "activity_id"}, {Name: "cycle_number"},
	},
	DoUpdates: clause.AssignmentColumns([]string{
		"knack_id", "academic_year", "responses", "responses_text", "word_count",
		"status", "selected_via", "started_at", "completed_at",
		"staff_feedback", "staff_feedback_by", "year_group", "student_group",
		"updated_at",
	}),
}

func (r *activityResponseRepo) Upsert(ctx context.Context, tx *gorm.DB, resp *types.ActivityResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if resp == nil || resp.StudentEmail == "" || resp.ActivityID == uuid.Nil {
		return nil
	}
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	resp.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(responseConflict).
		Create(resp).Error
}

func (r *activityResponseRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, resps []*types.ActivityResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(resps) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, resp := range resps {
		if resp.ID == uuid.Nil {
			resp.ID = uuid.New()
		}
		resp.UpdatedAt = now
	}
	return transaction.WithContext(ctx).
		Clauses(responseConflict).
		Create(&resps).Error
}

func (r *activityResponseRepo) Get(ctx context.Context, tx *gorm.DB, studentEmail string, activityID uuid.UUID, cycle int) (*types.ActivityResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.ActivityResponse
	err := transaction.WithContext(ctx).
		Where("student_email = ? AND activity_id = ? AND cycle_number = ?", studentEmail, activityID, cycle).
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

func (r *activityResponseRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentEmail string) ([]types.ActivityResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.ActivityResponse
	err := transaction.WithContext(ctx).
		Where("student_email = ?", studentEmail).
		Order("cycle_number asc, updated_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityResponseRepo) CountCompleted(ctx context.Context, tx *gorm.DB, studentEmail string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.ActivityResponse{}).
		Where("student_email = ? AND status = ?", studentEmail, types.ResponseStatusCompleted).
		Count(&n).Error
	return n, err
}
