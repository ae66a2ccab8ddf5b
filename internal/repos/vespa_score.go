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

type VespaScoreRepo interface {
	// Upsert writes one score row keyed on (student_id, cycle, academic_year).
	Upsert(ctx context.Context, tx *gorm.DB, score *types.VespaScore) error
	Get(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, cycle int, academicYear string) (*types.VespaScore, error)
	// GetLockedYear returns the academic year recorded at Cycle 1 for a
	// student, or "" when no Cycle 1 score exists. Cycles 2 and 3 must file
	// under this year regardless of the calendar date they are submitted on.
	GetLockedYear(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (string, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]types.VespaScore, error)
	CompletedCycles(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, academicYear string) ([]int, error)
}

type vespaScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVespaScoreRepo(db *gorm.DB, baseLog *logger.Logger) VespaScoreRepo {
	return &vespaScoreRepo{db: db, log: baseLog.With("repo", "VespaScoreRepo")}
}

func (r *vespaScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, score *types.VespaScore) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if score == nil || score.StudentID == uuid.Nil || score.Cycle == 0 || score.AcademicYear == "" {
		return nil
	}
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	score.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"}, {Name: "cycle"}, {Name: "academic_year"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"vision", "effort", "systems", "practice", "attitude", "overall",
				"completion_date", "updated_at",
			}),
		}).
		Create(score).Error
}

func (r *vespaScoreRepo) Get(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, cycle int, academicYear string) (*types.VespaScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.VespaScore
	err := transaction.WithContext(ctx).
		Where("student_id = ? AND cycle = ? AND academic_year = ?", studentID, cycle, academicYear).
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

func (r *vespaScoreRepo) GetLockedYear(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.VespaScore
	err := transaction.WithContext(ctx).
		Where("student_id = ? AND cycle = ?", studentID, 1).
		Order("created_at desc").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return "", err
	}
	if row.ID == uuid.Nil {
		return "", nil
	}
	return row.AcademicYear, nil
}

func (r *vespaScoreRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]types.VespaScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.VespaScore
	err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("cycle asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *vespaScoreRepo) CompletedCycles(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, academicYear string) ([]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []types.VespaScore
	err := transaction.WithContext(ctx).
		Select("cycle").
		Where("student_id = ? AND academic_year = ?", studentID, academicYear).
		Order("cycle asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	cycles := make([]int, 0, len(rows))
	for _, row := range rows {
		cycles = append(cycles, row.Cycle)
	}
	return cycles, nil
}
