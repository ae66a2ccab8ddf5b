package migration

import (
	"context"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// runCycleDates syncs the per-establishment questionnaire date windows from
// the legacy cycle-dates object. The eligibility service reads these windows
// from the canonical store, so without this phase every establishment falls
// back to unrestricted access.
func (r *Runner) runCycleDates(ctx context.Context, stats *PhaseStats) error {
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

		records, err := r.knack.GetRecords(ctx, knack.ObjectCycleDates, knack.And(knack.FilterRule{
			Field:    knack.FieldCycleCustomer,
			Operator: "is",
			Value:    est.KnackID,
		}))
		if err != nil {
			r.log.Error("cycle dates fetch failed", "establishment", est.Name, "error", err)
			stats.Incr("errors")
			continue
		}
		stats.Add("windows_fetched", len(records))

		for _, rec := range records {
			cycle := knack.ParseInt(rec.GetPreferRaw(knack.FieldCycleNumber), 0)
			if cycle < 1 || cycle > 3 {
				stats.Incr("skipped_invalid_cycle")
				continue
			}
			start := knack.ParseDate(rec.GetPreferRaw(knack.FieldCycleStartDate))
			end := knack.ParseDate(rec.GetPreferRaw(knack.FieldCycleEndDate))

			err := r.establishments.UpsertCycle(ctx, nil, &types.EstablishmentCycle{
				EstablishmentID: est.ID,
				Cycle:           cycle,
				StartDate:       start,
				EndDate:         end,
			})
			if err != nil {
				r.log.Error("cycle window write failed",
					"establishment", est.Name, "cycle", cycle, "error", err)
				stats.Incr("errors")
				continue
			}
			stats.Incr("windows_upserted")
		}
	}
	return nil
}
