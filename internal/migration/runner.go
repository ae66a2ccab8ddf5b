package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/repos"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/services"
)

// Phase names accepted by Run.
const (
	PhaseAccounts          = "accounts"
	PhaseConnections       = "connections"
	PhaseCycleDates        = "cycle-dates"
	PhaseScores            = "scores"
	PhaseActivities        = "activities"
	PhaseQuestions         = "questions"
	PhaseResponses         = "responses"
	PhaseStudentActivities = "student-activities"
	PhaseAll               = "all"
)

var phaseOrder = []string{
	PhaseAccounts,
	PhaseConnections,
	PhaseCycleDates,
	PhaseScores,
	PhaseActivities,
	PhaseQuestions,
	PhaseResponses,
	PhaseStudentActivities,
}

// LegacyStore is the read side of the legacy application; satisfied by
// *knack.Client.
type LegacyStore interface {
	GetRecords(ctx context.Context, objectKey string, filters *knack.Filters) ([]knack.Record, error)
}

// Runner owns one migration run: legacy reads through the Knack client,
// canonical writes through the repositories. Phases are sequential and
// individually re-runnable; every write is keyed on natural keys.
type Runner struct {
	cfg   *Config
	db    *gorm.DB
	knack LegacyStore

	accounts       repos.AccountRepo
	students       repos.StudentRepo
	staff          repos.StaffRepo
	connections    repos.ConnectionRepo
	establishments repos.EstablishmentRepo
	activities     repos.ActivityRepo
	questions      repos.ActivityQuestionRepo
	responses      repos.ActivityResponseRepo
	assignments    repos.StudentActivityRepo
	scores         repos.VespaScoreRepo

	resolver *services.ResolverService
	log      *logger.Logger
}

func NewRunner(cfg *Config, db *gorm.DB, client LegacyStore, baseLog *logger.Logger) *Runner {
	log := baseLog.With("component", "MigrationRunner")
	accounts := repos.NewAccountRepo(db, baseLog)
	return &Runner{
		cfg:            cfg,
		db:             db,
		knack:          client,
		accounts:       accounts,
		students:       repos.NewStudentRepo(db, baseLog),
		staff:          repos.NewStaffRepo(db, baseLog),
		connections:    repos.NewConnectionRepo(db, baseLog),
		establishments: repos.NewEstablishmentRepo(db, baseLog),
		activities:     repos.NewActivityRepo(db, baseLog),
		questions:      repos.NewActivityQuestionRepo(db, baseLog),
		responses:      repos.NewActivityResponseRepo(db, baseLog),
		assignments:    repos.NewStudentActivityRepo(db, baseLog),
		scores:         repos.NewVespaScoreRepo(db, baseLog),
		resolver:       services.NewResolverService(accounts, baseLog),
		log:            log,
	}
}

// Run executes one named phase, or every phase in order for "all". The
// returned report carries per-phase counters; phase-level failures are
// counted, not propagated, so a long run always produces a summary.
func (r *Runner) Run(ctx context.Context, phase string) (*Report, error) {
	report := NewReport()

	phases := []string{phase}
	if phase == PhaseAll {
		phases = phaseOrder
	}

	for _, name := range phases {
		var err error
		switch name {
		case PhaseAccounts:
			err = r.runAccounts(ctx, report.Phase(name))
		case PhaseConnections:
			err = r.runConnections(ctx, report.Phase(name))
		case PhaseCycleDates:
			err = r.runCycleDates(ctx, report.Phase(name))
		case PhaseScores:
			err = r.runScores(ctx, report.Phase(name))
		case PhaseActivities:
			err = r.runActivities(ctx, report.Phase(name))
		case PhaseQuestions:
			err = r.runQuestions(ctx, report.Phase(name))
		case PhaseResponses:
			err = r.runResponses(ctx, report.Phase(name))
		case PhaseStudentActivities:
			err = r.runStudentActivities(ctx, report.Phase(name))
		default:
			return report, fmt.Errorf("unknown phase %q", name)
		}
		if err != nil {
			return report, fmt.Errorf("phase %s: %w", name, err)
		}
	}
	return report, nil
}
