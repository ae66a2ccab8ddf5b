package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Student struct {
	ID                       uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email                    string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	AccountID                *uuid.UUID     `gorm:"type:uuid;column:account_id;index" json:"account_id,omitempty"`
	SchoolID                 *uuid.UUID     `gorm:"type:uuid;column:school_id;index" json:"school_id,omitempty"`
	SchoolName               string         `gorm:"column:school_name" json:"school_name"`
	CurrentKnackID           string         `gorm:"column:current_knack_id;index" json:"current_knack_id"`
	HistoricalKnackIDs       datatypes.JSON `gorm:"type:jsonb;column:historical_knack_ids" json:"historical_knack_ids"`
	FirstName                string         `gorm:"column:first_name" json:"first_name"`
	LastName                 string         `gorm:"column:last_name" json:"last_name"`
	FullName                 string         `gorm:"column:full_name" json:"full_name"`
	CurrentYearGroup         string         `gorm:"column:current_year_group" json:"current_year_group"`
	StudentGroup             string         `gorm:"column:student_group" json:"student_group"`
	CurrentAcademicYear      string         `gorm:"column:current_academic_year" json:"current_academic_year"`
	CurrentLevel             string         `gorm:"column:current_level" json:"current_level"`
	CurrentCycle             int            `gorm:"column:current_cycle;not null;default:1" json:"current_cycle"`
	CycleUnlocked            bool           `gorm:"column:cycle_unlocked;not null;default:false" json:"cycle_unlocked"`
	TotalActivitiesCompleted int            `gorm:"column:total_activities_completed;not null;default:0" json:"total_activities_completed"`
	TotalPoints              int            `gorm:"column:total_points;not null;default:0" json:"total_points"`
	Preferences              datatypes.JSON `gorm:"type:jsonb;column:preferences" json:"preferences"`
	AuthProvider             string         `gorm:"column:auth_provider;default:'knack'" json:"auth_provider"`
	Status                   string         `gorm:"column:status;default:'active'" json:"status"`
	IsActive                 bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	SISStudentID             string         `gorm:"column:sis_student_id" json:"sis_student_id"`
	LastSyncedFromKnack      *time.Time     `gorm:"column:last_synced_from_knack" json:"last_synced_from_knack,omitempty"`
	CreatedAt                time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Student) TableName() string {
	return "vespa_students"
}
