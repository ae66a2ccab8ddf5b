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

type StudentRepo interface {
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Student, error)
	Insert(ctx context.Context, tx *gorm.DB, students []*types.Student) error
	// Upsert creates or refreshes a student row keyed on email; mutable fields
	// are overwritten, the row is never duplicated.
	Upsert(ctx context.Context, tx *gorm.DB, student *types.Student) error
	UpdateByEmail(ctx context.Context, tx *gorm.DB, email string, updates map[string]any) error
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return &studentRepo{db: db, log: baseLog.With("repo", "StudentRepo")}
}

func (r *studentRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if email == "" {
		return nil, nil
	}
	var row types.Student
	err := transaction.WithContext(ctx).
		Where("email = ?", email).
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

func (r *studentRepo) Insert(ctx context.Context, tx *gorm.DB, students []*types.Student) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(students) == 0 {
		return nil
	}
	for _, s := range students {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}
	return transaction.WithContext(ctx).Create(&students).Error
}

func (r *studentRepo) Upsert(ctx context.Context, tx *gorm.DB, student *types.Student) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if student == nil || student.Email == "" {
		return nil
	}
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	student.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_knack_id", "first_name", "last_name", "full_name",
				"school_id", "school_name", "current_year_group", "student_group",
				"current_level", "status", "is_active", "last_synced_from_knack",
				"updated_at",
			}),
		}).
		Create(student).Error
}

func (r *studentRepo) UpdateByEmail(ctx context.Context, tx *gorm.DB, email string, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if email == "" || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Student{}).
		Where("email = ?", email).
		Updates(updates).Error
}
