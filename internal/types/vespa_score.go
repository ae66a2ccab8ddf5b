package types

import (
	"time"

	"github.com/google/uuid"
)

// VespaScore holds the five trait scores plus overall for one
// (student, cycle, academic year). The academic year written at Cycle 1 is
// permanently bound to the student's year; Cycles 2 and 3 copy it.
type VespaScore struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID      uuid.UUID  `gorm:"type:uuid;not null;column:student_id;index:idx_score_key,unique" json:"student_id"`
	Cycle          int        `gorm:"not null;column:cycle;index:idx_score_key,unique" json:"cycle"`
	AcademicYear   string     `gorm:"not null;column:academic_year;index:idx_score_key,unique" json:"academic_year"`
	Vision         int        `gorm:"column:vision;not null;default:0" json:"vision"`
	Effort         int        `gorm:"column:effort;not null;default:0" json:"effort"`
	Systems        int        `gorm:"column:systems;not null;default:0" json:"systems"`
	Practice       int        `gorm:"column:practice;not null;default:0" json:"practice"`
	Attitude       int        `gorm:"column:attitude;not null;default:0" json:"attitude"`
	Overall        int        `gorm:"column:overall;not null;default:0" json:"overall"`
	CompletionDate *time.Time `gorm:"column:completion_date" json:"completion_date,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (VespaScore) TableName() string {
	return "vespa_scores"
}

type QuestionResponse struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID     uuid.UUID `gorm:"type:uuid;not null;column:student_id;index:idx_question_key,unique" json:"student_id"`
	Cycle         int       `gorm:"not null;column:cycle;index:idx_question_key,unique" json:"cycle"`
	AcademicYear  string    `gorm:"not null;column:academic_year;index:idx_question_key,unique" json:"academic_year"`
	QuestionID    string    `gorm:"not null;column:question_id;index:idx_question_key,unique" json:"question_id"`
	ResponseValue int       `gorm:"not null;column:response_value" json:"response_value"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuestionResponse) TableName() string {
	return "question_responses"
}
