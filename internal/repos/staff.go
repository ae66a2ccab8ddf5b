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

type StaffRepo interface {
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Staff, error)
	Upsert(ctx context.Context, tx *gorm.DB, staff *types.Staff) error
	// AssignRole creates or refreshes one role for an account. The upsert key
	// is (account_id, role_type) so repeated runs never duplicate roles.
	AssignRole(ctx context.Context, tx *gorm.DB, role *types.StaffRole) error
	RolesForAccount(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) ([]types.StaffRole, error)
}

type staffRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStaffRepo(db *gorm.DB, baseLog *logger.Logger) StaffRepo {
	return &staffRepo{db: db, log: baseLog.With("repo", "StaffRepo")}
}

func (r *staffRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Staff, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if email == "" {
		return nil, nil
	}
	var row types.Staff
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

func (r *staffRepo) Upsert(ctx context.Context, tx *gorm.DB, staff *types.Staff) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if staff == nil || staff.Email == "" {
		return nil
	}
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	staff.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"account_id", "school_id", "school_name", "department",
				"position_title", "active_academic_year", "updated_at",
			}),
		}).
		Create(staff).Error
}

func (r *staffRepo) AssignRole(ctx context.Context, tx *gorm.DB, role *types.StaffRole) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if role == nil || role.AccountID == uuid.Nil || role.RoleType == "" {
		return nil
	}
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	role.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}, {Name: "role_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email", "role_data", "is_primary", "updated_at",
			}),
		}).
		Create(role).Error
}

func (r *staffRepo) RolesForAccount(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) ([]types.StaffRole, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var roles []types.StaffRole
	err := transaction.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("role_type asc").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}
