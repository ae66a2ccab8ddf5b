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

type StudentActivityRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, sa *types.StudentActivity) error
	UpsertBatch(ctx context.Context, tx *gorm.DB, sas []*types.StudentActivity) error
	ListForStudent(ctx context.Context, tx *gorm.DB, studentEmail string, cycle int) ([]types.StudentActivity, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type studentActivityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentActivityRepo(db *gorm.DB, baseLog *logger.Logger) StudentActivityRepo {
	return &studentActivityRepo{db: db, log: baseLog.With("repo", "StudentActivityRepo")}
}

var assignmentConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "student_email"}, {Name: "activity_id"}, {Name: "cycle_number"},
	},
	DoUpdates: clause.AssignmentColumns([]string{
		"assigned_by", "assigned_reason", "status", "assigned_at", "updated_at",
	}),
}

func (r *studentActivityRepo) Upsert(ctx context.Context, tx *gorm.DB, sa *types.StudentActivity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if sa == nil || sa.StudentEmail == "" || sa.ActivityID == uuid.Nil {
		return nil
	}
	if sa.ID == uuid.Nil {
		sa.ID = uuid.New()
	}
	sa.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(assignmentConflict).
		Create(sa).Error
}

func (r *studentActivityRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, sas []*types.StudentActivity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sas) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, sa := range sas {
		if sa.ID == uuid.Nil {
			sa.ID = uuid.New()
		}
		sa.UpdatedAt = now
	}
	return transaction.WithContext(ctx).
		Clauses(assignmentConflict).
		Create(&sas).Error
}

func (r *studentActivityRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentEmail string, cycle int) ([]types.StudentActivity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("student_email = ?", studentEmail)
	if cycle > 0 {
		q = q.Where("cycle_number = ?", cycle)
	}
	var rows []types.StudentActivity
	if err := q.Order("cycle_number asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *studentActivityRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.StudentActivity{}).
		Count(&n).Error
	return n, err
}
