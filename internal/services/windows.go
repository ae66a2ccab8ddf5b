package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/repos"
)

// repoWindowSource reads cycle windows straight from the datastore.
type repoWindowSource struct {
	establishments repos.EstablishmentRepo
	log            *logger.Logger
}

func NewRepoWindowSource(establishments repos.EstablishmentRepo, baseLog *logger.Logger) CycleWindowSource {
	return &repoWindowSource{
		establishments: establishments,
		log:            baseLog.With("service", "RepoWindowSource"),
	}
}

func (s *repoWindowSource) WindowsFor(ctx context.Context, tx *gorm.DB, est *EstablishmentInfo) ([]CycleWindow, error) {
	if est == nil {
		return nil, nil
	}
	rows, err := s.establishments.Cycles(ctx, tx, est.ID)
	if err != nil {
		return nil, err
	}
	windows := make([]CycleWindow, 0, len(rows))
	for _, row := range rows {
		windows = append(windows, CycleWindow{
			Cycle: row.Cycle,
			Start: row.StartDate,
			End:   row.EndDate,
		})
	}
	return windows, nil
}
