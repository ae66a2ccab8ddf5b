package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityResponse is one student's attempt at one activity in one cycle.
// (student_email, activity_id, cycle_number) is the upsert key; later writes
// for the same key update in place.
type ActivityResponse struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	KnackID         string         `gorm:"column:knack_id;index" json:"knack_id"`
	StudentEmail    string         `gorm:"not null;column:student_email;index:idx_student_activity_cycle,unique" json:"student_email"`
	ActivityID      uuid.UUID      `gorm:"type:uuid;not null;column:activity_id;index:idx_student_activity_cycle,unique" json:"activity_id"`
	CycleNumber     int            `gorm:"not null;column:cycle_number;index:idx_student_activity_cycle,unique" json:"cycle_number"`
	AcademicYear    string         `gorm:"column:academic_year" json:"academic_year"`
	Responses       datatypes.JSON `gorm:"type:jsonb;column:responses" json:"responses"`
	ResponsesText   string         `gorm:"column:responses_text" json:"responses_text"`
	WordCount       int            `gorm:"column:word_count;not null;default:0" json:"word_count"`
	Status          string         `gorm:"column:status;default:'assigned'" json:"status"`
	SelectedVia     string         `gorm:"column:selected_via" json:"selected_via"`
	StartedAt       *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	StaffFeedback   string         `gorm:"column:staff_feedback" json:"staff_feedback"`
	StaffFeedbackBy string         `gorm:"column:staff_feedback_by" json:"staff_feedback_by"`
	YearGroup       string         `gorm:"column:year_group" json:"year_group"`
	StudentGroup    string         `gorm:"column:student_group" json:"student_group"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ActivityResponse) TableName() string {
	return "activity_responses"
}

const (
	ResponseStatusAssigned   = "assigned"
	ResponseStatusInProgress = "in_progress"
	ResponseStatusCompleted  = "completed"
)

// StudentActivity links a student to an activity for a cycle independent of
// completion. assigned_by records who put it there: auto, student or staff.
type StudentActivity struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentEmail   string     `gorm:"not null;column:student_email;index:idx_assignment_key,unique" json:"student_email"`
	ActivityID     uuid.UUID  `gorm:"type:uuid;not null;column:activity_id;index:idx_assignment_key,unique" json:"activity_id"`
	CycleNumber    int        `gorm:"not null;column:cycle_number;index:idx_assignment_key,unique" json:"cycle_number"`
	AssignedBy     string     `gorm:"column:assigned_by;default:'auto'" json:"assigned_by"`
	AssignedReason string     `gorm:"column:assigned_reason" json:"assigned_reason"`
	Status         string     `gorm:"column:status;default:'assigned'" json:"status"`
	AssignedAt     *time.Time `gorm:"column:assigned_at" json:"assigned_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (StudentActivity) TableName() string {
	return "student_activities"
}

const (
	AssignedByAuto    = "auto"
	AssignedByStudent = "student"
	AssignedByStaff   = "staff"
)
