package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/repos"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// AccountAttrs carries the identity details extracted from a legacy record.
type AccountAttrs struct {
	FirstName  string
	LastName   string
	FullName   string
	SchoolID   *uuid.UUID
	SchoolName string
	PortalType string
	// Raw legacy attributes preserved for audit on the account row.
	KnackAttributes map[string]any
}

// ResolverService resolves emails to account keys, creating accounts on
// first sight. Staff supersedes student: an existing student account seen
// again with a staff role is promoted, never demoted.
type ResolverService struct {
	accounts repos.AccountRepo
	log      *logger.Logger
}

func NewResolverService(accounts repos.AccountRepo, baseLog *logger.Logger) *ResolverService {
	return &ResolverService{
		accounts: accounts,
		log:      baseLog.With("service", "ResolverService"),
	}
}

// ResolveOrCreate returns the account id for an email, creating the account
// when absent. Safe to call repeatedly and concurrently for the same email.
func (s *ResolverService) ResolveOrCreate(ctx context.Context, tx *gorm.DB, email, accountType string, attrs AccountAttrs) (uuid.UUID, error) {
	if email == "" {
		return uuid.Nil, nil
	}

	existing, err := s.accounts.GetByEmail(ctx, tx, email)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		if accountType == types.AccountTypeStaff && existing.AccountType == types.AccountTypeStudent {
			err := s.accounts.UpdateDetails(ctx, tx, existing.ID, map[string]any{
				"account_type": types.AccountTypeStaff,
			})
			if err != nil {
				return uuid.Nil, err
			}
			s.log.Info("promoted student account to staff", "email", email)
		}
		return existing.ID, nil
	}

	account := &types.Account{
		Email:       email,
		AccountType: accountType,
		PortalType:  attrs.PortalType,
		FirstName:   attrs.FirstName,
		LastName:    attrs.LastName,
		FullName:    attrs.FullName,
		SchoolID:    attrs.SchoolID,
		SchoolName:  attrs.SchoolName,
	}
	if len(attrs.KnackAttributes) > 0 {
		if raw, err := json.Marshal(attrs.KnackAttributes); err == nil {
			account.KnackAttributes = datatypes.JSON(raw)
		}
	}
	return s.accounts.GetOrCreate(ctx, tx, account)
}
