package migration

import (
	"encoding/json"
	"fmt"
	"os"
)

// CatalogQuestion is one question of a catalog activity.
type CatalogQuestion struct {
	Title           string   `json:"question_title"`
	TextAbove       string   `json:"text_above_question"`
	Type            string   `json:"question_type"`
	DropdownOptions []string `json:"dropdown_options,omitempty"`
	DisplayOrder    int      `json:"display_order"`
	Required        bool     `json:"answer_required"`
}

// CatalogActivity is one entry of the structured activity catalog file.
type CatalogActivity struct {
	KnackID           string            `json:"knack_id"`
	Name              string            `json:"name"`
	Slug              string            `json:"slug"`
	VespaCategory     string            `json:"vespa_category"`
	Level             string            `json:"level"`
	Difficulty        int               `json:"difficulty"`
	TimeMinutes       *int              `json:"time_minutes,omitempty"`
	ScoreThresholdMin *int              `json:"score_threshold_min,omitempty"`
	ScoreThresholdMax *int              `json:"score_threshold_max,omitempty"`
	Color             string            `json:"color"`
	DisplayOrder      *int              `json:"display_order,omitempty"`
	Content           map[string]any    `json:"content,omitempty"`
	ProblemMappings   map[string]any    `json:"problem_mappings,omitempty"`
	Questions         []CatalogQuestion `json:"questions,omitempty"`
}

// loadCatalog reads the activity catalog JSON. The catalog is the source of
// truth for reference data; a missing or malformed file aborts the phase.
func (r *Runner) loadCatalog() ([]CatalogActivity, error) {
	path := r.cfg.ActivitiesCatalog
	if path == "" {
		return nil, fmt.Errorf("activities_catalog not set in config")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read activity catalog: %w", err)
	}
	var catalog []CatalogActivity
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parse activity catalog: %w", err)
	}
	return catalog, nil
}
