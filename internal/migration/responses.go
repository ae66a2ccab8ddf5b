package migration

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/services"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// runResponses imports historical activity responses. Only records completed
// after the configured cutoff with a non-blank student connection qualify.
// Missing student rows are created on the fly so a response never dangles.
func (r *Runner) runResponses(ctx context.Context, stats *PhaseStats) error {
	records, err := r.knack.GetRecords(ctx, knack.ObjectActivityAnswer, knack.And(
		knack.FilterRule{Field: knack.FieldAnswerCompletionDate, Operator: "is after", Value: r.cfg.ResponsesSince},
		knack.FilterRule{Field: knack.FieldAnswerStudent, Operator: "is not blank"},
	))
	if err != nil {
		return err
	}
	stats.Add("responses_fetched", len(records))

	byKnackID, err := r.activities.MapByKnackID(ctx, nil)
	if err != nil {
		return err
	}
	byName, err := r.activities.MapByName(ctx, nil)
	if err != nil {
		return err
	}

	seenStudents := map[string]bool{}
	var toWrite []*types.ActivityResponse

	for _, rec := range records {
		refs := knack.ExtractConnections(rec.GetPreferRaw(knack.FieldAnswerStudent))
		if len(refs) == 0 {
			stats.Incr("skipped_no_student")
			continue
		}
		studentEmail := strings.ToLower(knack.ExtractEmail(refs[0].Name))
		if studentEmail == "" {
			stats.Incr("skipped_no_student")
			continue
		}

		activity, ok := r.resolveActivity(rec.GetPreferRaw(knack.FieldAnswerActivity), byKnackID, byName)
		if !ok {
			stats.Incr("skipped_unknown_activity")
			continue
		}

		if !seenStudents[studentEmail] {
			existing, err := r.students.GetByEmail(ctx, nil, studentEmail)
			if err != nil {
				r.log.Error("student lookup failed", "email", studentEmail, "error", err)
				stats.Incr("errors")
				continue
			}
			if existing == nil {
				err := r.students.Upsert(ctx, nil, &types.Student{
					Email:               studentEmail,
					FullName:            refs[0].Name,
					CurrentAcademicYear: r.cfg.DefaultAcademicYear,
					CurrentLevel:        r.cfg.DefaultLevel,
					CurrentCycle:        1,
					AuthProvider:        "knack",
					Status:              "active",
					IsActive:            true,
				})
				if err != nil {
					r.log.Error("student create failed", "email", studentEmail, "error", err)
					stats.Incr("errors")
					continue
				}
				stats.Incr("students_created")
			}
			seenStudents[studentEmail] = true
		}

		completedAt := knack.ParseDate(rec.Get(knack.FieldAnswerCompletionDate))
		status := types.ResponseStatusInProgress
		academicYear := r.cfg.DefaultAcademicYear
		if completedAt != nil {
			status = types.ResponseStatusCompleted
			academicYear = services.AcademicYearFromDate(*completedAt, false)
		}

		text := knack.StripTags(rec.GetString(knack.FieldAnswerText))

		toWrite = append(toWrite, &types.ActivityResponse{
			KnackID:         rec.ID(),
			StudentEmail:    studentEmail,
			ActivityID:      activity.ID,
			CycleNumber:     1,
			AcademicYear:    academicYear,
			Responses:       responseJSON(rec.GetString(knack.FieldAnswerJSON)),
			ResponsesText:   text,
			WordCount:       len(strings.Fields(text)),
			Status:          status,
			SelectedVia:     "knack_import",
			CompletedAt:     completedAt,
			StaffFeedback:   knack.StripTags(rec.GetString(knack.FieldAnswerStaffFeedback)),
			StaffFeedbackBy: feedbackAuthor(rec),
			YearGroup:       rec.GetString(knack.FieldAnswerYearGroup),
			StudentGroup:    rec.GetString(knack.FieldAnswerStudentGroup),
		})
	}

	res := InsertInBatches(ctx, toWrite, r.cfg.BatchSize, r.cfg.RateLimitDelay(),
		func(ctx context.Context, batch []*types.ActivityResponse) error {
			return r.responses.UpsertBatch(ctx, nil, batch)
		},
		func(ctx context.Context, resp *types.ActivityResponse) error {
			return r.responses.Upsert(ctx, nil, resp)
		},
		r.log,
	)
	stats.Add("responses_migrated", res.Success)
	stats.Add("errors", res.Errors)
	return nil
}

// resolveActivity tries the legacy record id first, then the display name.
func (r *Runner) resolveActivity(v any, byKnackID, byName map[string]types.Activity) (types.Activity, bool) {
	for _, ref := range knack.ExtractConnections(v) {
		if ref.KnackID != "" {
			if activity, ok := byKnackID[ref.KnackID]; ok {
				return activity, true
			}
		}
		if ref.Name != "" {
			if activity, ok := byName[ref.Name]; ok {
				return activity, true
			}
		}
	}
	return types.Activity{}, false
}

// responseJSON keeps a valid answers document as-is and wraps anything else
// so malformed legacy payloads survive the import for manual repair.
func responseJSON(raw string) datatypes.JSON {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return datatypes.JSON([]byte(`{}`))
	}
	if json.Valid([]byte(raw)) {
		return datatypes.JSON([]byte(raw))
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": raw})
	return datatypes.JSON(wrapped)
}

// feedbackAuthor prefers the tutor connection, then the staff admin.
func feedbackAuthor(rec knack.Record) string {
	for _, field := range []string{knack.FieldAnswerTutor, knack.FieldAnswerStaffAdmin} {
		for _, ref := range knack.ExtractConnections(rec.GetPreferRaw(field)) {
			if ref.Name != "" {
				return ref.Name
			}
		}
	}
	return ""
}
