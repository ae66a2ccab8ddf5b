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

type QuestionResponseRepo interface {
	// UpsertBatch writes per-question answers for one submission in a single
	// statement, keyed on (student_id, cycle, academic_year, question_id).
	UpsertBatch(ctx context.Context, tx *gorm.DB, resps []*types.QuestionResponse) error
	ListForCycle(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, cycle int, academicYear string) ([]types.QuestionResponse, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type questionResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionResponseRepo(db *gorm.DB, baseLog *logger.Logger) QuestionResponseRepo {
	return &questionResponseRepo{db: db, log: baseLog.With("repo", "QuestionResponseRepo")}
}

func (r *questionResponseRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, resps []*types.QuestionResponse) error {
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
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"}, {Name: "cycle"},
				{Name: "academic_year"}, {Name: "question_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"response_value", "updated_at"}),
		}).
		Create(&resps).Error
}

func (r *questionResponseRepo) ListForCycle(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, cycle int, academicYear string) ([]types.QuestionResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.QuestionResponse
	err := transaction.WithContext(ctx).
		Where("student_id = ? AND cycle = ? AND academic_year = ?", studentID, cycle, academicYear).
		Order("question_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *questionResponseRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.QuestionResponse{}).
		Count(&n).Error
	return n, err
}
