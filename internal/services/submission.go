package services

import (
	"context"
	"strconv"
	"time"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	apperrors "github.com/4Sighteducation/VESPA-questionniare-v2/internal/pkg/errors"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/repos"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

// LegacyMirror is the slice of the legacy client the submission path needs
// for the dual-write.
type LegacyMirror interface {
	SearchRecords(ctx context.Context, objectKey string, filters *knack.Filters) ([]knack.Record, error)
	UpdateRecord(ctx context.Context, objectKey, recordID string, fields map[string]any) error
}

// SubmitRequest is a completed questionnaire from the frontend. Scores are
// always recomputed server-side; any client-supplied scores are ignored.
type SubmitRequest struct {
	StudentEmail  string         `json:"studentEmail"`
	StudentName   string         `json:"studentName"`
	Cycle         int            `json:"cycle"`
	Responses     map[string]int `json:"responses"`
	KnackRecordID string         `json:"knackRecordId"`
	AcademicYear  string         `json:"academicYear"`
}

// SubmitResult reports both write targets independently: the canonical store
// and the legacy mirror can each succeed or fail on their own.
type SubmitResult struct {
	Success          bool           `json:"success"`
	CanonicalWritten bool           `json:"supabaseWritten"`
	LegacyWritten    bool           `json:"knackWritten"`
	Scores           map[string]int `json:"scores"`
	AcademicYear     string         `json:"academicYear"`
	Cycle            int            `json:"cycle"`
	Message          string         `json:"message"`
}

// SubmissionService persists a questionnaire submission to the canonical
// store and mirrors it into the legacy application.
type SubmissionService struct {
	students          repos.StudentRepo
	scores            repos.VespaScoreRepo
	questionResponses repos.QuestionResponseRepo
	establishments    repos.EstablishmentRepo
	legacy            LegacyMirror
	log               *logger.Logger
	now               func() time.Time
}

func NewSubmissionService(
	students repos.StudentRepo,
	scores repos.VespaScoreRepo,
	questionResponses repos.QuestionResponseRepo,
	establishments repos.EstablishmentRepo,
	legacy LegacyMirror,
	baseLog *logger.Logger,
) *SubmissionService {
	return &SubmissionService{
		students:          students,
		scores:            scores,
		questionResponses: questionResponses,
		establishments:    establishments,
		legacy:            legacy,
		log:               baseLog.With("service", "SubmissionService"),
		now:               time.Now,
	}
}

// Submit validates, scores and persists one questionnaire submission.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if req.StudentEmail == "" || req.Cycle < 1 || req.Cycle > 3 || len(req.Responses) == 0 {
		return SubmitResult{}, apperrors.ErrInvalidArgument
	}

	calc := CalculateScores(req.Responses)
	s.log.Info("scored submission",
		"email", req.StudentEmail, "cycle", req.Cycle, "scores", calc.Scores, "overall", calc.Overall)

	student, err := s.students.GetByEmail(ctx, nil, req.StudentEmail)
	if err != nil {
		return SubmitResult{}, err
	}
	if student == nil {
		return SubmitResult{}, apperrors.ErrNotFound
	}

	academicYear := s.resolveAcademicYear(ctx, student, req)

	canonicalWritten := s.writeCanonical(ctx, student, req, calc, academicYear)
	legacyWritten := s.writeLegacy(ctx, req, calc)

	result := SubmitResult{
		Success:          true,
		CanonicalWritten: canonicalWritten,
		LegacyWritten:    legacyWritten,
		Scores:           scoresWithOverall(calc),
		AcademicYear:     academicYear,
		Cycle:            req.Cycle,
	}
	if canonicalWritten || legacyWritten {
		result.Message = "Questionnaire submitted successfully"
	} else {
		result.Message = "Partial success - some writes failed"
	}
	return result, nil
}

// resolveAcademicYear picks the year the submission files under. Cycle 1
// computes it from the establishment convention and thereby locks it; later
// cycles reuse the locked year, falling back to the client-provided or
// computed year only when no Cycle 1 record exists.
func (s *SubmissionService) resolveAcademicYear(ctx context.Context, student *types.Student, req SubmitRequest) string {
	now := s.now()

	if req.Cycle == 1 {
		australian := false
		var useStandardYear *bool
		if student.SchoolID != nil {
			est, err := s.establishments.GetByID(ctx, nil, *student.SchoolID)
			if err != nil {
				s.log.Error("load establishment for year", "email", student.Email, "error", err)
			}
			if est != nil {
				australian = est.IsAustralian
				useStandardYear = est.UseStandardYear
			}
		}
		year := AcademicYearFor(now, australian, useStandardYear)
		s.log.Info("locking academic year at cycle 1", "email", student.Email, "year", year)
		return year
	}

	locked, err := s.scores.GetLockedYear(ctx, nil, student.ID)
	if err != nil {
		s.log.Error("load locked year", "email", student.Email, "error", err)
	}
	if locked != "" {
		return locked
	}
	if req.AcademicYear != "" {
		s.log.Warn("no cycle 1 score found, using provided year",
			"email", student.Email, "year", req.AcademicYear)
		return req.AcademicYear
	}
	return AcademicYearFromDate(now, false)
}

func (s *SubmissionService) writeCanonical(ctx context.Context, student *types.Student, req SubmitRequest, calc ScoreResult, academicYear string) bool {
	rows := make([]*types.QuestionResponse, 0, len(req.Responses))
	for questionID, value := range req.Responses {
		rows = append(rows, &types.QuestionResponse{
			StudentID:     student.ID,
			Cycle:         req.Cycle,
			AcademicYear:  academicYear,
			QuestionID:    questionID,
			ResponseValue: value,
		})
	}
	if err := s.questionResponses.UpsertBatch(ctx, nil, rows); err != nil {
		s.log.Error("write question responses", "email", student.Email, "error", err)
		return false
	}

	completion := s.now()
	score := &types.VespaScore{
		StudentID:      student.ID,
		Cycle:          req.Cycle,
		AcademicYear:   academicYear,
		Vision:         calc.Scores[CategoryVision],
		Effort:         calc.Scores[CategoryEffort],
		Systems:        calc.Scores[CategorySystems],
		Practice:       calc.Scores[CategoryPractice],
		Attitude:       calc.Scores[CategoryAttitude],
		Overall:        calc.Overall,
		CompletionDate: &completion,
	}
	if err := s.scores.Upsert(ctx, nil, score); err != nil {
		s.log.Error("write vespa scores", "email", student.Email, "error", err)
		return false
	}
	return true
}

// writeLegacy mirrors the submission into the legacy store: the per-question
// record connected to the result record, then the result record itself.
func (s *SubmissionService) writeLegacy(ctx context.Context, req SubmitRequest, calc ScoreResult) bool {
	if s.legacy == nil || req.KnackRecordID == "" {
		return false
	}

	questionUpdate := map[string]any{}
	for questionID, value := range req.Responses {
		fields, ok := knack.QuestionFieldMapping[questionID]
		if !ok {
			continue
		}
		questionUpdate[fields.Current] = value
		if historical := fields.ForCycle(req.Cycle); historical != "" {
			questionUpdate[historical] = value
		}
	}
	questionUpdate[knack.FieldQuestionnaireCycle] = strconv.Itoa(req.Cycle)

	filters := knack.And(knack.FilterRule{
		Field:    knack.FieldQuestionnaireResult,
		Operator: "is",
		Value:    req.KnackRecordID,
	})
	records, err := s.legacy.SearchRecords(ctx, knack.ObjectQuestionnaires, filters)
	if err != nil {
		s.log.Error("search legacy questionnaire record", "error", err)
	} else if len(records) > 0 {
		if err := s.legacy.UpdateRecord(ctx, knack.ObjectQuestionnaires, records[0].ID(), questionUpdate); err != nil {
			s.log.Error("update legacy questionnaire record", "error", err)
		}
	}

	scoreUpdate := map[string]any{
		knack.CurrentScoreFields.Vision:   calc.Scores[CategoryVision],
		knack.CurrentScoreFields.Effort:   calc.Scores[CategoryEffort],
		knack.CurrentScoreFields.Systems:  calc.Scores[CategorySystems],
		knack.CurrentScoreFields.Practice: calc.Scores[CategoryPractice],
		knack.CurrentScoreFields.Attitude: calc.Scores[CategoryAttitude],
		knack.CurrentScoreFields.Overall:  calc.Overall,
	}
	if cycleFields, ok := knack.CycleScoreFields[req.Cycle]; ok {
		scoreUpdate[cycleFields.Vision] = calc.Scores[CategoryVision]
		scoreUpdate[cycleFields.Effort] = calc.Scores[CategoryEffort]
		scoreUpdate[cycleFields.Systems] = calc.Scores[CategorySystems]
		scoreUpdate[cycleFields.Practice] = calc.Scores[CategoryPractice]
		scoreUpdate[cycleFields.Attitude] = calc.Scores[CategoryAttitude]
		scoreUpdate[cycleFields.Overall] = calc.Overall
	}
	scoreUpdate[knack.FieldResultCurrentCycle] = strconv.Itoa(req.Cycle)
	scoreUpdate[knack.FieldResultCompletionDate] = s.now().Format("02/01/2006")

	if err := s.legacy.UpdateRecord(ctx, knack.ObjectVespaResults, req.KnackRecordID, scoreUpdate); err != nil {
		s.log.Error("update legacy result record", "error", err)
		return false
	}
	return true
}

func scoresWithOverall(calc ScoreResult) map[string]int {
	out := make(map[string]int, len(calc.Scores)+1)
	for category, score := range calc.Scores {
		out[category] = score
	}
	out["OVERALL"] = calc.Overall
	return out
}

// StatusSummary is the per-cycle completion view for one student.
type StatusSummary struct {
	StudentID       string         `json:"student_id"`
	Email           string         `json:"email"`
	CurrentCycle    int            `json:"current_cycle"`
	CompletedCycles []int          `json:"completed_cycles"`
	Scores          map[string]int `json:"scores,omitempty"`
	AcademicYear    string         `json:"academic_year,omitempty"`
}

// Status reports which cycles a student has completed and their latest
// scores.
func (s *SubmissionService) Status(ctx context.Context, email string) (*StatusSummary, error) {
	student, err := s.students.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperrors.ErrNotFound
	}

	scores, err := s.scores.ListForStudent(ctx, nil, student.ID)
	if err != nil {
		return nil, err
	}

	summary := &StatusSummary{
		StudentID:    student.ID.String(),
		Email:        student.Email,
		CurrentCycle: student.CurrentCycle,
	}
	for _, score := range scores {
		summary.CompletedCycles = append(summary.CompletedCycles, score.Cycle)
		summary.AcademicYear = score.AcademicYear
		summary.Scores = map[string]int{
			CategoryVision:   score.Vision,
			CategoryEffort:   score.Effort,
			CategorySystems:  score.Systems,
			CategoryPractice: score.Practice,
			CategoryAttitude: score.Attitude,
			"OVERALL":        score.Overall,
		}
	}
	return summary, nil
}
