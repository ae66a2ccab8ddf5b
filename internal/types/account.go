package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Account is the single identity record per email. Staff supersedes student
// for AccountType when a person holds both kinds of role; the student profile
// still exists alongside in that case.
type Account struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	AccountType     string         `gorm:"column:account_type;not null" json:"account_type"`
	PortalType      string         `gorm:"column:portal_type" json:"portal_type"`
	FirstName       string         `gorm:"column:first_name" json:"first_name"`
	LastName        string         `gorm:"column:last_name" json:"last_name"`
	FullName        string         `gorm:"column:full_name" json:"full_name"`
	SchoolID        *uuid.UUID     `gorm:"type:uuid;column:school_id;index" json:"school_id,omitempty"`
	SchoolName      string         `gorm:"column:school_name" json:"school_name"`
	KnackAttributes datatypes.JSON `gorm:"type:jsonb;column:knack_attributes" json:"knack_attributes"`
	Preferences     datatypes.JSON `gorm:"type:jsonb;column:preferences" json:"preferences"`
	NeedsReview     bool           `gorm:"column:needs_review;not null;default:false" json:"needs_review"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Account) TableName() string {
	return "vespa_accounts"
}

const (
	AccountTypeStudent = "student"
	AccountTypeStaff   = "staff"
)

const (
	PortalCoaching = "COACHING PORTAL"
	PortalResource = "RESOURCE PORTAL"
)
