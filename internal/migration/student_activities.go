package migration

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// runStudentActivities syncs per-student activity state from the legacy
// student records: prescribed, finished, student-added and staff-added
// lists, plus the preference booleans and the derived totals.
func (r *Runner) runStudentActivities(ctx context.Context, stats *PhaseStats) error {
	records, err := r.knack.GetRecords(ctx, knack.ObjectStudents, nil)
	if err != nil {
		return err
	}
	stats.Add("students_fetched", len(records))

	byKnackID, err := r.activities.MapByKnackID(ctx, nil)
	if err != nil {
		return err
	}
	byName, err := r.activities.MapByName(ctx, nil)
	if err != nil {
		return err
	}

	var toWrite []*types.StudentActivity

	for _, rec := range records {
		email := strings.ToLower(knack.ExtractEmail(rec.GetPreferRaw(knack.FieldStudentEmail)))
		if email == "" {
			stats.Incr("skipped_no_email")
			continue
		}

		finished := map[string]bool{}
		for _, id := range knack.CommaSeparatedIDs(rec.Get(knack.FieldStudentFinished)) {
			finished[id] = true
		}

		assignments := map[string]*types.StudentActivity{}
		collect := func(field, assignedBy, reason string) {
			for _, ref := range knack.ExtractConnections(rec.GetPreferRaw(field)) {
				activity, ok := lookupActivity(ref, byName, byKnackID)
				if !ok {
					stats.Incr("skipped_unknown_activity")
					continue
				}
				// First assignment source wins; prescribed runs first.
				if _, dup := assignments[activity.KnackID]; dup {
					continue
				}
				status := "assigned"
				if finished[activity.KnackID] {
					status = "completed"
				}
				now := time.Now()
				assignments[activity.KnackID] = &types.StudentActivity{
					StudentEmail:   email,
					ActivityID:     activity.ID,
					CycleNumber:    1,
					AssignedBy:     assignedBy,
					AssignedReason: reason,
					Status:         status,
					AssignedAt:     &now,
				}
			}
		}
		collect(knack.FieldStudentPrescribed, types.AssignedByAuto, "prescribed")
		collect(knack.FieldStudentSelfAdded, types.AssignedByStudent, "self_selected")
		collect(knack.FieldStudentStaffAdded, types.AssignedByStaff, "staff_assigned")

		completed := 0
		for _, sa := range assignments {
			if sa.Status == "completed" {
				completed++
			}
			toWrite = append(toWrite, sa)
		}
		if completed > 0 {
			stats.Add("completed_marked", completed)
		}

		prefs, _ := json.Marshal(map[string]any{
			"completed_first_questionnaire": knack.ParseBool(rec.Get(knack.FieldStudentCompletedOne), false),
			"notifications_enabled":         knack.ParseBool(rec.Get(knack.FieldStudentNotifications), true),
		})
		err := r.students.UpdateByEmail(ctx, nil, email, map[string]any{
			"total_activities_completed": completed,
			"total_points":               completed * 10,
			"preferences":                prefs,
		})
		if err != nil {
			r.log.Error("student totals update failed", "email", email, "error", err)
			stats.Incr("errors")
		}
	}

	res := InsertInBatches(ctx, toWrite, r.cfg.BatchSize, r.cfg.RateLimitDelay(),
		func(ctx context.Context, batch []*types.StudentActivity) error {
			return r.assignments.UpsertBatch(ctx, nil, batch)
		},
		func(ctx context.Context, sa *types.StudentActivity) error {
			return r.assignments.Upsert(ctx, nil, sa)
		},
		r.log,
	)
	stats.Add("assignments_created", res.Success)
	stats.Add("errors", res.Errors)
	return nil
}

// lookupActivity resolves a legacy reference name-first: the prescribed list
// stores display names, the finished list stores record ids.
func lookupActivity(ref knack.ConnectionRef, byName, byKnackID map[string]types.Activity) (types.Activity, bool) {
	if ref.Name != "" {
		if activity, ok := byName[ref.Name]; ok {
			return activity, true
		}
	}
	if ref.KnackID != "" {
		if activity, ok := byKnackID[ref.KnackID]; ok {
			return activity, true
		}
	}
	return types.Activity{}, false
}
