package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/repos"
)

// Eligibility reason codes returned to the questionnaire frontend.
const (
	ReasonNoRecord              = "no_record"
	ReasonAllCompleted          = "all_completed"
	ReasonNoCycleDates          = "no_cycle_dates"
	ReasonCycleUnlockedActive   = "cycle_unlocked_with_active_cycle"
	ReasonCycleUnlockedOverride = "cycle_unlocked_override"
	ReasonBeforeStart           = "before_start"
	ReasonNoActiveCycle         = "no_active_cycle"
	ReasonError                 = "error"
)

// CycleWindow is one configured questionnaire date window.
type CycleWindow struct {
	Cycle int
	Start *time.Time
	End   *time.Time
}

// EligibilitySnapshot is everything the decision needs, gathered up front so
// the decision itself is a pure function.
type EligibilitySnapshot struct {
	HasRecord        bool
	CompletedCycles  map[int]bool
	OverrideUnlocked bool
	Windows          []CycleWindow
	Australian       bool
	UseStandardYear  *bool
}

// EligibilityDecision is the outcome of a validation check.
type EligibilityDecision struct {
	Allowed       bool   `json:"allowed"`
	Cycle         int    `json:"cycle,omitempty"`
	Reason        string `json:"reason"`
	Message       string `json:"message"`
	AcademicYear  string `json:"academicYear,omitempty"`
	NextStartDate string `json:"nextStartDate,omitempty"`
}

// DecideEligibility determines whether a student may take the questionnaire
// now, and which cycle they would be taking.
func DecideEligibility(now time.Time, snap EligibilitySnapshot) EligibilityDecision {
	if !snap.HasRecord {
		return EligibilityDecision{
			Allowed: false,
			Reason:  ReasonNoRecord,
			Message: "No VESPA record found for your account. Please contact your tutor.",
		}
	}

	today := now
	year := AcademicYearFor(today, snap.Australian, snap.UseStandardYear)

	if snap.OverrideUnlocked {
		if w := activeWindow(today, snap); w != nil {
			return EligibilityDecision{
				Allowed:      true,
				Cycle:        w.Cycle,
				Reason:       ReasonCycleUnlockedActive,
				Message:      fmt.Sprintf("Cycle %d is currently active", w.Cycle),
				AcademicYear: year,
			}
		}
		next := nextCycleByProgression(snap.CompletedCycles)
		return EligibilityDecision{
			Allowed:      true,
			Cycle:        next,
			Reason:       ReasonCycleUnlockedOverride,
			Message:      fmt.Sprintf("Override enabled - taking Cycle %d", next),
			AcademicYear: year,
		}
	}

	if snap.CompletedCycles[3] {
		return EligibilityDecision{
			Allowed: false,
			Reason:  ReasonAllCompleted,
			Message: "You have completed all three VESPA questionnaire cycles for this academic year.",
		}
	}
	next := nextCycleByProgression(snap.CompletedCycles)

	if len(snap.Windows) == 0 {
		return EligibilityDecision{
			Allowed:      true,
			Cycle:        next,
			Reason:       ReasonNoCycleDates,
			Message:      fmt.Sprintf("Taking Cycle %d", next),
			AcademicYear: year,
		}
	}

	if w := activeWindow(today, snap); w != nil {
		return EligibilityDecision{
			Allowed:      true,
			Cycle:        w.Cycle,
			Reason:       fmt.Sprintf("cycle_%d_active", w.Cycle),
			Message:      fmt.Sprintf("Cycle %d is currently open", w.Cycle),
			AcademicYear: year,
		}
	}

	if w, start := nearestFutureWindow(today, snap); w != nil {
		return EligibilityDecision{
			Allowed:       false,
			Cycle:         w.Cycle,
			Reason:        ReasonBeforeStart,
			Message:       fmt.Sprintf("The next questionnaire cycle (Cycle %d) will open on %s.", w.Cycle, start.Format("02 January 2006")),
			NextStartDate: start.Format("2006-01-02"),
		}
	}

	return EligibilityDecision{
		Allowed: false,
		Reason:  ReasonNoActiveCycle,
		Message: "All questionnaire cycles have ended for this academic year. Please contact your tutor.",
	}
}

// activeWindow returns the first uncompleted window containing today.
func activeWindow(today time.Time, snap EligibilitySnapshot) *CycleWindow {
	day := dateOnly(today)
	for i := range snap.Windows {
		w := snap.Windows[i]
		if snap.CompletedCycles[w.Cycle] {
			continue
		}
		if w.Start == nil || w.End == nil {
			continue
		}
		if !day.Before(dateOnly(*w.Start)) && !day.After(dateOnly(*w.End)) {
			return &w
		}
	}
	return nil
}

// nearestFutureWindow returns the uncompleted window with the earliest start
// date after today.
func nearestFutureWindow(today time.Time, snap EligibilitySnapshot) (*CycleWindow, time.Time) {
	day := dateOnly(today)
	var best *CycleWindow
	var bestStart time.Time
	for i := range snap.Windows {
		w := snap.Windows[i]
		if snap.CompletedCycles[w.Cycle] {
			continue
		}
		if w.Start == nil {
			continue
		}
		start := dateOnly(*w.Start)
		if !start.After(day) {
			continue
		}
		if best == nil || start.Before(bestStart) {
			best = &w
			bestStart = start
		}
	}
	if best == nil {
		return nil, time.Time{}
	}
	return best, bestStart
}

// nextCycleByProgression picks the next cycle to take: the first incomplete
// one, wrapping back to 1 once all three are done.
func nextCycleByProgression(completed map[int]bool) int {
	next := 1
	if completed[1] {
		next = 2
	}
	if completed[2] {
		next = 3
	}
	if completed[3] {
		next = 1
	}
	return next
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EligibilityService assembles the snapshot from the datastore and applies
// the decision.
type EligibilityService struct {
	students       repos.StudentRepo
	scores         repos.VespaScoreRepo
	establishments repos.EstablishmentRepo
	windows        CycleWindowSource
	log            *logger.Logger
	now            func() time.Time
}

// CycleWindowSource yields the configured questionnaire windows for an
// establishment; the Redis-backed cache and the bare repo both satisfy it.
type CycleWindowSource interface {
	WindowsFor(ctx context.Context, tx *gorm.DB, establishment *EstablishmentInfo) ([]CycleWindow, error)
}

// EstablishmentInfo is the establishment context the eligibility and
// submission paths need.
type EstablishmentInfo struct {
	ID              uuid.UUID
	Australian      bool
	UseStandardYear *bool
}

func NewEligibilityService(
	students repos.StudentRepo,
	scores repos.VespaScoreRepo,
	establishments repos.EstablishmentRepo,
	windows CycleWindowSource,
	baseLog *logger.Logger,
) *EligibilityService {
	return &EligibilityService{
		students:       students,
		scores:         scores,
		establishments: establishments,
		windows:        windows,
		log:            baseLog.With("service", "EligibilityService"),
		now:            time.Now,
	}
}

// Validate checks whether the student behind an email may take the
// questionnaire right now.
func (s *EligibilityService) Validate(ctx context.Context, email string) (EligibilityDecision, error) {
	student, err := s.students.GetByEmail(ctx, nil, email)
	if err != nil {
		return EligibilityDecision{
			Allowed: false,
			Reason:  ReasonError,
			Message: "Unable to verify questionnaire access. Please try again later.",
		}, err
	}
	if student == nil {
		return DecideEligibility(s.now(), EligibilitySnapshot{HasRecord: false}), nil
	}

	snap := EligibilitySnapshot{
		HasRecord:        true,
		OverrideUnlocked: student.CycleUnlocked,
		CompletedCycles:  map[int]bool{},
	}

	if student.SchoolID != nil {
		est, err := s.establishments.GetByID(ctx, nil, *student.SchoolID)
		if err != nil {
			s.log.Error("load establishment", "email", email, "error", err)
		}
		if est != nil {
			snap.Australian = est.IsAustralian
			snap.UseStandardYear = est.UseStandardYear
			info := &EstablishmentInfo{
				ID:              est.ID,
				Australian:      est.IsAustralian,
				UseStandardYear: est.UseStandardYear,
			}
			windows, err := s.windows.WindowsFor(ctx, nil, info)
			if err != nil {
				s.log.Error("load cycle windows", "email", email, "error", err)
			}
			snap.Windows = windows
		}
	}

	// The completions lookup year follows the establishment's calendar
	// unless a Cycle 1 row has already bound the year.
	year := AcademicYearFor(s.now(), snap.Australian, snap.UseStandardYear)
	if locked, err := s.scores.GetLockedYear(ctx, nil, student.ID); err == nil && locked != "" {
		year = locked
	}
	cycles, err := s.scores.CompletedCycles(ctx, nil, student.ID, year)
	if err != nil {
		s.log.Error("load completed cycles", "email", email, "error", err)
	}
	for _, c := range cycles {
		snap.CompletedCycles[c] = true
	}

	return DecideEligibility(s.now(), snap), nil
}
