package migration

import (
	"context"
	"strings"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/services"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// cycleScoreRow reads one cycle's aggregate scores off a legacy result
// record. Returns false when the cycle has never been taken (every field
// empty or zero).
func cycleScoreRow(rec knack.Record, fields knack.ScoreFields) (types.VespaScore, bool) {
	row := types.VespaScore{
		Vision:   knack.ParseInt(rec.GetPreferRaw(fields.Vision), 0),
		Effort:   knack.ParseInt(rec.GetPreferRaw(fields.Effort), 0),
		Systems:  knack.ParseInt(rec.GetPreferRaw(fields.Systems), 0),
		Practice: knack.ParseInt(rec.GetPreferRaw(fields.Practice), 0),
		Attitude: knack.ParseInt(rec.GetPreferRaw(fields.Attitude), 0),
		Overall:  knack.ParseInt(rec.GetPreferRaw(fields.Overall), 0),
	}
	populated := row.Vision > 0 || row.Effort > 0 || row.Systems > 0 ||
		row.Practice > 0 || row.Attitude > 0 || row.Overall > 0
	return row, populated
}

// runScores backfills historical questionnaire state from the legacy VESPA
// result records: the per-cycle score rows the eligibility check counts as
// completions, and the staff-set cycle unlock override on the student.
func (r *Runner) runScores(ctx context.Context, stats *PhaseStats) error {
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

		records, err := r.knack.GetRecords(ctx, knack.ObjectVespaResults, knack.And(knack.FilterRule{
			Field:    knack.FieldResultCustomer,
			Operator: "is",
			Value:    est.KnackID,
		}))
		if err != nil {
			r.log.Error("result fetch failed", "establishment", est.Name, "error", err)
			stats.Incr("errors")
			continue
		}
		stats.Add("results_fetched", len(records))

		for _, rec := range records {
			email := strings.ToLower(knack.ExtractEmail(rec.GetPreferRaw(knack.FieldResultEmail)))
			if email == "" {
				stats.Incr("skipped_no_email")
				continue
			}
			student, err := r.students.GetByEmail(ctx, nil, email)
			if err != nil {
				r.log.Error("student lookup failed", "email", email, "error", err)
				stats.Incr("errors")
				continue
			}
			if student == nil {
				stats.Incr("skipped_unknown_student")
				continue
			}

			unlocked := knack.ParseBool(rec.GetPreferRaw(knack.FieldResultCycleUnlocked), false)
			if unlocked != student.CycleUnlocked {
				err := r.students.UpdateByEmail(ctx, nil, email, map[string]any{
					"cycle_unlocked": unlocked,
				})
				if err != nil {
					r.log.Error("cycle unlock write failed", "email", email, "error", err)
					stats.Incr("errors")
				} else if unlocked {
					stats.Incr("overrides_set")
				}
			}

			// All cycles on one result record file under the same academic
			// year; Cycle 1 binds it and Cycles 2 and 3 copy it.
			completedAt := knack.ParseDate(rec.GetPreferRaw(knack.FieldResultCompletionDate))
			year := r.cfg.DefaultAcademicYear
			if completedAt != nil {
				year = services.AcademicYearFor(*completedAt, est.IsAustralian, est.UseStandardYear)
			}

			for cycle := 1; cycle <= 3; cycle++ {
				row, populated := cycleScoreRow(rec, knack.CycleScoreFields[cycle])
				if !populated {
					continue
				}
				row.StudentID = student.ID
				row.Cycle = cycle
				row.AcademicYear = year
				row.CompletionDate = completedAt
				if err := r.scores.Upsert(ctx, nil, &row); err != nil {
					r.log.Error("score write failed",
						"email", email, "cycle", cycle, "error", err)
					stats.Incr("errors")
					continue
				}
				stats.Incr("scores_written")
			}
		}
	}
	return nil
}
