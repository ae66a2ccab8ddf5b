package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity is catalog reference data: imported once, read-only afterwards.
type Activity struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	KnackID           string         `gorm:"uniqueIndex;not null;column:knack_id" json:"knack_id"`
	Name              string         `gorm:"not null;column:name;index" json:"name"`
	Slug              string         `gorm:"column:slug" json:"slug"`
	VespaCategory     string         `gorm:"not null;column:vespa_category;index" json:"vespa_category"`
	Level             string         `gorm:"column:level" json:"level"`
	Difficulty        int            `gorm:"column:difficulty;not null;default:0" json:"difficulty"`
	TimeMinutes       *int           `gorm:"column:time_minutes" json:"time_minutes,omitempty"`
	ScoreThresholdMin *int           `gorm:"column:score_threshold_min" json:"score_threshold_min,omitempty"`
	ScoreThresholdMax *int           `gorm:"column:score_threshold_max" json:"score_threshold_max,omitempty"`
	Content           datatypes.JSON `gorm:"type:jsonb;column:content" json:"content"`
	Color             string         `gorm:"column:color" json:"color"`
	DisplayOrder      *int           `gorm:"column:display_order" json:"display_order,omitempty"`
	IsActive          bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ProblemMappings   datatypes.JSON `gorm:"type:jsonb;column:problem_mappings" json:"problem_mappings"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Activity) TableName() string {
	return "activities"
}

type ActivityQuestion struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ActivityID        uuid.UUID      `gorm:"type:uuid;not null;column:activity_id;index:idx_activity_order,unique" json:"activity_id"`
	QuestionTitle     string         `gorm:"column:question_title" json:"question_title"`
	TextAboveQuestion string         `gorm:"column:text_above_question" json:"text_above_question"`
	QuestionType      string         `gorm:"column:question_type" json:"question_type"`
	DropdownOptions   datatypes.JSON `gorm:"type:jsonb;column:dropdown_options" json:"dropdown_options"`
	DisplayOrder      int            `gorm:"not null;column:display_order;index:idx_activity_order,unique" json:"display_order"`
	IsActive          bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	AnswerRequired    bool           `gorm:"column:answer_required;not null;default:false" json:"answer_required"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ActivityQuestion) TableName() string {
	return "activity_questions"
}
