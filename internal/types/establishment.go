package types

import (
	"time"

	"github.com/google/uuid"
)

type Establishment struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	KnackID         string    `gorm:"uniqueIndex;not null;column:knack_id" json:"knack_id"`
	Name            string    `gorm:"not null;column:name" json:"name"`
	Status          string    `gorm:"column:status;default:'Active'" json:"status"`
	IsAustralian    bool      `gorm:"column:is_australian;not null;default:false" json:"is_australian"`
	UseStandardYear *bool     `gorm:"column:use_standard_year" json:"use_standard_year,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Establishment) TableName() string {
	return "establishments"
}

// EstablishmentCycle is one configured questionnaire date window. An
// establishment with no rows here leaves the questionnaire open all year.
type EstablishmentCycle struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EstablishmentID uuid.UUID  `gorm:"type:uuid;not null;column:establishment_id;index:idx_establishment_cycle,unique" json:"establishment_id"`
	Cycle           int        `gorm:"not null;column:cycle;index:idx_establishment_cycle,unique" json:"cycle"`
	StartDate       *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (EstablishmentCycle) TableName() string {
	return "establishment_cycles"
}
