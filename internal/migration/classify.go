package migration

import (
	"strings"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// Legacy role names as they appear after profile mapping.
const (
	roleNameStudent          = "Student"
	roleNameStaffAdmin       = "Staff Admin"
	roleNameTutor            = "Tutor"
	roleNameHeadOfYear       = "Head of Year"
	roleNameSubjectTeacher   = "Subject Teacher"
	roleNameGeneralStaff     = "General Staff"
	roleNameHeadOfDepartment = "Head of Department"
)

var staffRoleNames = map[string]bool{
	roleNameStaffAdmin:       true,
	roleNameTutor:            true,
	roleNameHeadOfYear:       true,
	roleNameSubjectTeacher:   true,
	roleNameGeneralStaff:     true,
	roleNameHeadOfDepartment: true,
}

// Classification is the outcome of classifying one legacy account.
type Classification struct {
	Roles     []string
	IsStudent bool
	IsStaff   bool
	MultiRole bool
	// AccountType is "student" or "staff" (staff supersedes student), or ""
	// when the account holds no recognized role and must be skipped.
	AccountType string
}

// ClassifyProfiles maps legacy profile identifiers to roles and decides the
// account type. Unrecognized profile ids are kept verbatim in Roles for the
// audit trail but never grant an account type.
func ClassifyProfiles(profileIDs []string) Classification {
	c := Classification{}
	for _, pid := range profileIDs {
		role, ok := knack.ProfileToRole[pid]
		if !ok {
			role = pid
		}
		c.Roles = append(c.Roles, role)
		if role == roleNameStudent {
			c.IsStudent = true
		}
		if staffRoleNames[role] {
			c.IsStaff = true
		}
	}
	c.MultiRole = c.IsStudent && c.IsStaff
	switch {
	case c.IsStaff:
		c.AccountType = types.AccountTypeStaff
	case c.IsStudent:
		c.AccountType = types.AccountTypeStudent
	}
	return c
}

// NormalizePortalTier maps the many legacy tier spellings onto the two portal
// products. The bool reports whether the value was empty and the default was
// applied, which flags the account for review.
func NormalizePortalTier(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.PortalCoaching, true
	}
	upper := strings.ToUpper(trimmed)
	for _, keyword := range []string{"COACHING", "GOLD", "SILVER", "BRONZE"} {
		if strings.Contains(upper, keyword) {
			return types.PortalCoaching, false
		}
	}
	if strings.Contains(upper, "RESOURCE") {
		return types.PortalResource, false
	}
	return trimmed, false
}

// RoleAssignment pairs a role type with its role-specific metadata, ready
// for the staff_roles upsert.
type RoleAssignment struct {
	RoleType  string
	RoleData  map[string]any
	IsPrimary bool
}

// BuildRoleAssignments produces one assignment per staff role, with the
// metadata each role type carries. is_primary holds iff the account has
// exactly one non-student role.
func BuildRoleAssignments(c Classification, account knack.Record) []RoleAssignment {
	nonStudent := 0
	for _, role := range c.Roles {
		if role != roleNameStudent && staffRoleNames[role] {
			nonStudent++
		}
	}
	primary := nonStudent == 1

	var out []RoleAssignment
	for _, role := range c.Roles {
		var roleType string
		var roleData map[string]any

		switch role {
		case roleNameStaffAdmin:
			roleType = types.RoleStaffAdmin
			roleData = map[string]any{"admin_level": "full"}
		case roleNameTutor:
			roleType = types.RoleTutor
			roleData = map[string]any{
				"tutor_group": account.GetString(knack.FieldAccountGroup),
				"year_group":  account.GetString(knack.FieldAccountYearGroup),
			}
		case roleNameHeadOfYear:
			roleType = types.RoleHeadOfYear
			roleData = map[string]any{
				"year_group": account.GetString(knack.FieldAccountYearGroup),
			}
		case roleNameSubjectTeacher:
			roleType = types.RoleSubjectTeacher
			roleData = map[string]any{
				"subject":        account.GetString(knack.FieldAccountDepartment),
				"subject_code":   account.GetString(knack.FieldAccountSubjectCode),
				"teaching_group": account.GetString(knack.FieldAccountTeachingGroup),
			}
		case roleNameGeneralStaff:
			roleType = types.RoleGeneralStaff
			roleData = map[string]any{"access_level": "view_only"}
		case roleNameHeadOfDepartment:
			roleType = types.RoleHeadOfDepartment
			roleData = map[string]any{
				"department": account.GetString(knack.FieldAccountDepartment),
			}
		default:
			continue
		}

		out = append(out, RoleAssignment{
			RoleType:  roleType,
			RoleData:  roleData,
			IsPrimary: primary,
		})
	}
	return out
}
