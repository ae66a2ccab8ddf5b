package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StaffStudentConnection is the first-class join entity replacing the legacy
// denormalized per-student relationship lists. Uniqueness is on
// (staff_email, student_email, connection_type).
type StaffStudentConnection struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StaffEmail     string         `gorm:"not null;column:staff_email;index:idx_staff_student_type,unique" json:"staff_email"`
	StudentEmail   string         `gorm:"not null;column:student_email;index:idx_staff_student_type,unique" json:"student_email"`
	ConnectionType string         `gorm:"not null;column:connection_type;index:idx_staff_student_type,unique" json:"connection_type"`
	Context        datatypes.JSON `gorm:"type:jsonb;column:context" json:"context"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (StaffStudentConnection) TableName() string {
	return "staff_student_connections"
}

const (
	ConnectionStaffAdmin     = "staff_admin"
	ConnectionTutor          = "tutor"
	ConnectionHeadOfYear     = "head_of_year"
	ConnectionSubjectTeacher = "subject_teacher"
)
