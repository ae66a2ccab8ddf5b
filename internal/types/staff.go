package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Staff struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email              string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	AccountID          *uuid.UUID `gorm:"type:uuid;column:account_id;index" json:"account_id,omitempty"`
	SchoolID           *uuid.UUID `gorm:"type:uuid;column:school_id;index" json:"school_id,omitempty"`
	SchoolName         string     `gorm:"column:school_name" json:"school_name"`
	Department         string     `gorm:"column:department" json:"department"`
	PositionTitle      string     `gorm:"column:position_title" json:"position_title"`
	ActiveAcademicYear string     `gorm:"column:active_academic_year" json:"active_academic_year"`
	CreatedAt          time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Staff) TableName() string {
	return "vespa_staff"
}

// StaffRole is one discrete role held by a staff account. A staff member can
// hold several role types; (account_id, role_type) is the upsert key so
// re-running assignment never duplicates a role.
type StaffRole struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID uuid.UUID      `gorm:"type:uuid;not null;column:account_id;index:idx_account_role,unique" json:"account_id"`
	Email     string         `gorm:"not null;column:email;index" json:"email"`
	RoleType  string         `gorm:"not null;column:role_type;index:idx_account_role,unique" json:"role_type"`
	RoleData  datatypes.JSON `gorm:"type:jsonb;column:role_data" json:"role_data"`
	IsPrimary bool           `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (StaffRole) TableName() string {
	return "staff_roles"
}

const (
	RoleStaffAdmin       = "staff_admin"
	RoleTutor            = "tutor"
	RoleHeadOfYear       = "head_of_year"
	RoleSubjectTeacher   = "subject_teacher"
	RoleGeneralStaff     = "general_staff"
	RoleHeadOfDepartment = "head_of_department"
)
