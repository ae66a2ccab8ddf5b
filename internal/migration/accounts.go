package migration

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/services"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// profileIDs normalizes the legacy profile-list field: a CSV string, a list
// of profile keys, or a list of objects carrying an id.
func profileIDs(v any) []string {
	switch val := v.(type) {
	case string:
		var ids []string
		for _, part := range strings.Split(val, ",") {
			part = strings.TrimSpace(knack.StripTags(part))
			if part != "" {
				ids = append(ids, part)
			}
		}
		return ids
	case []any:
		var ids []string
		for _, item := range val {
			switch entry := item.(type) {
			case string:
				if entry = strings.TrimSpace(entry); entry != "" {
					ids = append(ids, entry)
				}
			case map[string]any:
				if id, ok := entry["id"].(string); ok && id != "" {
					ids = append(ids, id)
				} else if name, ok := entry["identifier"].(string); ok && name != "" {
					ids = append(ids, name)
				}
			}
		}
		return ids
	default:
		return nil
	}
}

// runAccounts migrates user accounts one establishment at a time: fetch the
// legacy accounts for the establishment, classify each by profile, resolve
// the identity, then write student profiles in batches and staff profiles
// with their role assignments.
func (r *Runner) runAccounts(ctx context.Context, stats *PhaseStats) error {
	ests, err := r.establishments.ListActive(ctx, nil)
	if err != nil {
		return err
	}

	for i := range ests {
		est := &ests[i]
		if r.cfg.IsExcluded(est.KnackID) {
			stats.Incr("establishments_excluded")
			continue
		}
		r.log.Info("migrating accounts", "establishment", est.Name, "knack_id", est.KnackID)

		records, err := r.knack.GetRecords(ctx, knack.ObjectAccounts, knack.And(knack.FilterRule{
			Field:    knack.FieldAccountEstablishment,
			Operator: "is",
			Value:    est.KnackID,
		}))
		if err != nil {
			r.log.Error("account fetch failed", "establishment", est.Name, "error", err)
			stats.Incr("errors")
			continue
		}
		stats.Add("accounts_fetched", len(records))

		var students []*types.Student
		for _, rec := range records {
			student, err := r.migrateAccount(ctx, rec, est, stats)
			if err != nil {
				r.log.Error("account migration failed", "record", rec.ID(), "error", err)
				stats.Incr("errors")
				continue
			}
			if student != nil {
				students = append(students, student)
			}
		}

		res := InsertInBatches(ctx, students, r.cfg.BatchSize, r.cfg.RateLimitDelay(),
			func(ctx context.Context, batch []*types.Student) error {
				return r.students.Insert(ctx, nil, batch)
			},
			func(ctx context.Context, s *types.Student) error {
				return r.students.Upsert(ctx, nil, s)
			},
			r.log,
		)
		stats.Add("students_created", res.Success)
		stats.Add("errors", res.Errors)
	}
	return nil
}

// migrateAccount classifies one legacy account record and writes everything
// except the batched student row, which it returns for the caller to insert.
func (r *Runner) migrateAccount(ctx context.Context, rec knack.Record, est *types.Establishment, stats *PhaseStats) (*types.Student, error) {
	email := knack.ExtractEmail(rec.GetPreferRaw(knack.FieldAccountEmail))
	if email == "" {
		stats.Incr("skipped_no_email")
		return nil, nil
	}
	email = strings.ToLower(email)

	c := ClassifyProfiles(profileIDs(rec.GetPreferRaw(knack.FieldAccountProfiles)))
	if c.AccountType == "" {
		stats.Incr("skipped_unrecognized_profile")
		return nil, nil
	}
	if c.MultiRole {
		stats.Incr("multi_role")
	}

	name := knack.ExtractName(rec.GetPreferRaw(knack.FieldAccountName), est.Name)
	portal, defaulted := NormalizePortalTier(rec.GetString(knack.FieldAccountPortalType))

	accountID, err := r.resolver.ResolveOrCreate(ctx, nil, email, c.AccountType, services.AccountAttrs{
		FirstName:  name.First,
		LastName:   name.Last,
		FullName:   name.Full,
		SchoolID:   &est.ID,
		SchoolName: est.Name,
		PortalType: portal,
		KnackAttributes: map[string]any{
			"knack_id": rec.ID(),
			"profiles": c.Roles,
			"language": rec.GetString(knack.FieldAccountLanguage),
		},
	})
	if err != nil {
		return nil, err
	}
	if defaulted {
		stats.Incr("portal_type_defaulted")
		if err := r.accounts.UpdateDetails(ctx, nil, accountID, map[string]any{"needs_review": true}); err != nil {
			r.log.Warn("needs_review flag update failed", "email", email, "error", err)
		}
	}

	if c.IsStaff {
		if err := r.staff.Upsert(ctx, nil, &types.Staff{
			Email:      email,
			AccountID:  &accountID,
			SchoolID:   &est.ID,
			SchoolName: est.Name,
			Department: rec.GetString(knack.FieldAccountDepartment),
		}); err != nil {
			return nil, err
		}
		stats.Incr("staff_created")

		for _, assignment := range BuildRoleAssignments(c, rec) {
			roleData, err := json.Marshal(assignment.RoleData)
			if err != nil {
				return nil, err
			}
			err = r.staff.AssignRole(ctx, nil, &types.StaffRole{
				AccountID: accountID,
				Email:     email,
				RoleType:  assignment.RoleType,
				RoleData:  datatypes.JSON(roleData),
				IsPrimary: assignment.IsPrimary,
			})
			if err != nil {
				return nil, err
			}
			stats.Incr("roles_assigned")
		}
	}

	if !c.IsStudent {
		return nil, nil
	}
	now := time.Now()
	return &types.Student{
		Email:               email,
		AccountID:           &accountID,
		SchoolID:            &est.ID,
		SchoolName:          est.Name,
		CurrentKnackID:      rec.ID(),
		FirstName:           name.First,
		LastName:            name.Last,
		FullName:            name.Full,
		CurrentYearGroup:    rec.GetString(knack.FieldAccountYearGroup),
		StudentGroup:        rec.GetString(knack.FieldAccountGroup),
		CurrentAcademicYear: r.cfg.DefaultAcademicYear,
		CurrentLevel:        r.cfg.DefaultLevel,
		CurrentCycle:        1,
		AuthProvider:        "knack",
		Status:              "active",
		IsActive:            true,
		SISStudentID:        rec.GetString(knack.FieldAccountSISID),
		LastSyncedFromKnack: &now,
	}, nil
}
