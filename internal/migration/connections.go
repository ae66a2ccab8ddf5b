package migration

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// Legacy relationship field per connection type on the student object.
var connectionFields = []struct {
	field    string
	connType string
}{
	{knack.FieldStudentStaffAdmins, types.ConnectionStaffAdmin},
	{knack.FieldStudentTutors, types.ConnectionTutor},
	{knack.FieldStudentHeadsOfYear, types.ConnectionHeadOfYear},
	{knack.FieldStudentTeachers, types.ConnectionSubjectTeacher},
}

// runConnections rebuilds the staff-student connection graph from the
// denormalized relationship lists on the legacy student records. Staff that
// never made it into the account table are dropped silently; the accounts
// phase is the fix, then this phase re-runs.
func (r *Runner) runConnections(ctx context.Context, stats *PhaseStats) error {
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

		knownStaff, err := r.accounts.EmailMapBySchool(ctx, nil, est.ID)
		if err != nil {
			r.log.Error("staff lookup failed", "establishment", est.Name, "error", err)
			stats.Incr("errors")
			continue
		}

		records, err := r.knack.GetRecords(ctx, knack.ObjectStudents, knack.And(knack.FilterRule{
			Field:    knack.FieldStudentEstablishment,
			Operator: "is",
			Value:    est.KnackID,
		}))
		if err != nil {
			r.log.Error("student fetch failed", "establishment", est.Name, "error", err)
			stats.Incr("errors")
			continue
		}
		stats.Add("students_fetched", len(records))

		for _, rec := range records {
			studentEmail := strings.ToLower(knack.ExtractEmail(rec.GetPreferRaw(knack.FieldStudentEmail)))
			if studentEmail == "" {
				stats.Incr("skipped_no_email")
				continue
			}

			for _, cf := range connectionFields {
				for _, ref := range knack.ExtractConnections(rec.GetPreferRaw(cf.field)) {
					staffEmail := strings.ToLower(knack.ExtractEmail(ref.Name))
					if staffEmail == "" {
						stats.Incr("skipped_unresolvable_staff")
						continue
					}
					if _, ok := knownStaff[staffEmail]; !ok {
						stats.Incr("skipped_unknown_staff")
						continue
					}

					contextJSON, _ := json.Marshal(map[string]any{
						"source":      "knack",
						"school_name": est.Name,
					})
					created, err := r.connections.Create(ctx, nil, &types.StaffStudentConnection{
						StaffEmail:     staffEmail,
						StudentEmail:   studentEmail,
						ConnectionType: cf.connType,
						Context:        datatypes.JSON(contextJSON),
					})
					if err != nil {
						r.log.Error("connection write failed",
							"student", studentEmail, "staff", staffEmail, "type", cf.connType, "error", err)
						stats.Incr("errors")
						continue
					}
					if created {
						stats.Incr("connections_created")
					} else {
						stats.Incr("connections_existing")
					}
				}
			}
		}
	}
	return nil
}
