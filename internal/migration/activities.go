package migration

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// runActivities imports the activity catalog. Upserts on the legacy record
// id, so a corrected catalog file can simply be re-imported.
func (r *Runner) runActivities(ctx context.Context, stats *PhaseStats) error {
	catalog, err := r.loadCatalog()
	if err != nil {
		return err
	}
	stats.Add("catalog_entries", len(catalog))

	for _, entry := range catalog {
		if entry.KnackID == "" || entry.Name == "" {
			stats.Incr("skipped_incomplete")
			continue
		}

		content, err := json.Marshal(entry.Content)
		if err != nil {
			stats.Incr("errors")
			continue
		}
		mappings, err := json.Marshal(entry.ProblemMappings)
		if err != nil {
			stats.Incr("errors")
			continue
		}

		activity := &types.Activity{
			KnackID:           entry.KnackID,
			Name:              entry.Name,
			Slug:              entry.Slug,
			VespaCategory:     entry.VespaCategory,
			Level:             entry.Level,
			Difficulty:        entry.Difficulty,
			TimeMinutes:       entry.TimeMinutes,
			ScoreThresholdMin: entry.ScoreThresholdMin,
			ScoreThresholdMax: entry.ScoreThresholdMax,
			Content:           datatypes.JSON(content),
			Color:             entry.Color,
			DisplayOrder:      entry.DisplayOrder,
			IsActive:          true,
			ProblemMappings:   datatypes.JSON(mappings),
		}
		if err := r.activities.Upsert(ctx, nil, activity); err != nil {
			r.log.Error("activity upsert failed", "knack_id", entry.KnackID, "name", entry.Name, "error", err)
			stats.Incr("errors")
			continue
		}
		stats.Incr("activities_upserted")
	}
	return nil
}

// runQuestions imports per-activity questions from the same catalog file.
// Existing questions for each activity are replaced wholesale; the insert
// path bumps display_order past collisions within the file itself.
func (r *Runner) runQuestions(ctx context.Context, stats *PhaseStats) error {
	catalog, err := r.loadCatalog()
	if err != nil {
		return err
	}

	byKnackID, err := r.activities.MapByKnackID(ctx, nil)
	if err != nil {
		return err
	}

	for _, entry := range catalog {
		activity, ok := byKnackID[entry.KnackID]
		if !ok {
			stats.Incr("skipped_unknown_activity")
			continue
		}
		if len(entry.Questions) == 0 {
			continue
		}

		if err := r.questions.DeleteForActivity(ctx, nil, activity.ID); err != nil {
			r.log.Error("question reset failed", "activity", entry.Name, "error", err)
			stats.Incr("errors")
			continue
		}

		for _, q := range entry.Questions {
			options, err := json.Marshal(q.DropdownOptions)
			if err != nil {
				stats.Incr("errors")
				continue
			}
			err = r.questions.Insert(ctx, nil, &types.ActivityQuestion{
				ActivityID:        activity.ID,
				QuestionTitle:     q.Title,
				TextAboveQuestion: q.TextAbove,
				QuestionType:      q.Type,
				DropdownOptions:   datatypes.JSON(options),
				DisplayOrder:      q.DisplayOrder,
				IsActive:          true,
				AnswerRequired:    q.Required,
			})
			if err != nil {
				r.log.Error("question insert failed", "activity", entry.Name, "question", q.Title, "error", err)
				stats.Incr("errors")
				continue
			}
			stats.Incr("questions_created")
		}
	}
	return nil
}
