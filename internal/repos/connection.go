package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

type ConnectionRepo interface {
	// Create inserts a connection, silently keeping the existing row when the
	// (staff_email, student_email, connection_type) triple already exists.
	// The bool reports whether a new row was written.
	Create(ctx context.Context, tx *gorm.DB, conn *types.StaffStudentConnection) (bool, error)
	ListForStudent(ctx context.Context, tx *gorm.DB, studentEmail string) ([]types.StaffStudentConnection, error)
	ListForStaff(ctx context.Context, tx *gorm.DB, staffEmail string) ([]types.StaffStudentConnection, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type connectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConnectionRepo(db *gorm.DB, baseLog *logger.Logger) ConnectionRepo {
	return &connectionRepo{db: db, log: baseLog.With("repo", "ConnectionRepo")}
}

func (r *connectionRepo) Create(ctx context.Context, tx *gorm.DB, conn *types.StaffStudentConnection) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if conn == nil || conn.StaffEmail == "" || conn.StudentEmail == "" || conn.ConnectionType == "" {
		return false, nil
	}
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "staff_email"}, {Name: "student_email"}, {Name: "connection_type"},
			},
			DoNothing: true,
		}).
		Create(conn)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *connectionRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentEmail string) ([]types.StaffStudentConnection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var conns []types.StaffStudentConnection
	err := transaction.WithContext(ctx).
		Where("student_email = ?", studentEmail).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *connectionRepo) ListForStaff(ctx context.Context, tx *gorm.DB, staffEmail string) ([]types.StaffStudentConnection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var conns []types.StaffStudentConnection
	err := transaction.WithContext(ctx).
		Where("staff_email = ?", staffEmail).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *connectionRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.StaffStudentConnection{}).
		Count(&n).Error
	return n, err
}
