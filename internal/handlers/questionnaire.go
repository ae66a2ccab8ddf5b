package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	apperrors "github.com/4Sighteducation/VESPA-questionniare-v2/internal/pkg/errors"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/services"
)

// QuestionnaireHandler exposes the questionnaire API: eligibility check,
// submission and per-student status.
type QuestionnaireHandler struct {
	eligibility *services.EligibilityService
	submissions *services.SubmissionService
	log         *logger.Logger
}

func NewQuestionnaireHandler(
	eligibility *services.EligibilityService,
	submissions *services.SubmissionService,
	baseLog *logger.Logger,
) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		eligibility: eligibility,
		submissions: submissions,
		log:         baseLog.With("handler", "QuestionnaireHandler"),
	}
}

// Validate reports whether the student may take the questionnaire right now.
// On an internal failure the conservative decision (denied, reason "error")
// still ships in the 5xx body so clients never have to guess.
func (h *QuestionnaireHandler) Validate(c *gin.Context) {
	email := normalizeEmail(c.Query("email"))
	if email == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_EMAIL", errors.New("email query parameter is required"))
		return
	}

	decision, err := h.eligibility.Validate(c.Request.Context(), email)
	if err != nil {
		h.log.Error("eligibility check failed", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, decision)
		return
	}
	RespondOK(c, decision)
}

// Submit scores and persists one questionnaire submission.
func (h *QuestionnaireHandler) Submit(c *gin.Context) {
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	req.StudentEmail = normalizeEmail(req.StudentEmail)

	result, err := h.submissions.Submit(c.Request.Context(), req)
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "MISSING_FIELDS",
			errors.New("studentEmail, cycle (1-3) and responses are required"))
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "STUDENT_NOT_FOUND",
			errors.New("no student record for "+req.StudentEmail))
	case err != nil:
		h.log.Error("submission failed", "email", req.StudentEmail, "cycle", req.Cycle, "error", err)
		c.JSON(http.StatusInternalServerError, result)
	default:
		RespondOK(c, result)
	}
}

// Status returns the per-cycle completion summary for a student.
func (h *QuestionnaireHandler) Status(c *gin.Context) {
	email := normalizeEmail(c.Query("email"))
	if email == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_EMAIL", errors.New("email query parameter is required"))
		return
	}

	summary, err := h.submissions.Status(c.Request.Context(), email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "STUDENT_NOT_FOUND", errors.New("no student record for "+email))
	case err != nil:
		h.log.Error("status lookup failed", "email", email, "error", err)
		RespondError(c, http.StatusInternalServerError, "INTERNAL", err)
	default:
		RespondOK(c, summary)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
