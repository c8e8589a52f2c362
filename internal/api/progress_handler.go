package api

import (
	"errors"
	"net/http"
	"strconv"

	"rehabtrack/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler exposes the progress-logging and compliance endpoints.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// --- DTOs ---

type LogProgressRequest struct {
	AssignmentID string `json:"assignmentId" binding:"required"`
	Notes        string `json:"notes"`
	PainLevel    *int   `json:"painLevel"`
	Difficulty   *int   `json:"difficulty"`
}

type UpdateProgressRequest struct {
	Notes      string `json:"notes"`
	PainLevel  *int   `json:"painLevel"`
	Difficulty *int   `json:"difficulty"`
}

// --- Handler Methods ---

// LogProgress godoc
// @Summary Log a completion for an assignment
// @Description Records today's completion. At most one entry per assignment per day. Notifies the trainer.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param progress body LogProgressRequest true "Completion details"
// @Success 201 {object} domain.Progress
// @Failure 400 {object} gin.H "Invalid input or already logged today"
// @Failure 403 {object} gin.H "Assignment belongs to another athlete"
// @Failure 404 {object} gin.H "Assignment not found"
// @Router /progress [post]
func (h *ProgressHandler) LogProgress(c *gin.Context) {
	var req LogProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	callerID, callerRole, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	assignmentID, ok := parseObjectID(c, req.AssignmentID, "assignmentId")
	if !ok {
		return
	}

	input := service.ProgressInput{
		Notes:      req.Notes,
		PainLevel:  req.PainLevel,
		Difficulty: req.Difficulty,
	}

	progress, err := h.progressService.Log(c.Request.Context(), callerID, callerRole, assignmentID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPainLevel), errors.Is(err, service.ErrInvalidDifficulty):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrProgressAlreadyLogged):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAssignmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAccessDenied):
			abortWithError(c, http.StatusForbidden, "Access denied.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to log progress")
		}
		return
	}

	c.JSON(http.StatusCreated, progress)
}

// UpdateProgress godoc
// @Summary Correct a progress entry
// @Description Updates notes and scores on an existing entry. The completion date never changes.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Progress ID"
// @Param progress body UpdateProgressRequest true "Fields to update"
// @Success 200 {object} domain.Progress
// @Failure 403 {object} gin.H "Access denied"
// @Failure 404 {object} gin.H "Progress entry not found"
// @Router /progress/{id} [put]
func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	progressID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	callerID, callerRole, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	input := service.ProgressInput{
		Notes:      req.Notes,
		PainLevel:  req.PainLevel,
		Difficulty: req.Difficulty,
	}

	progress, err := h.progressService.Update(c.Request.Context(), callerID, callerRole, progressID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPainLevel), errors.Is(err, service.ErrInvalidDifficulty):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrProgressNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAccessDenied):
			abortWithError(c, http.StatusForbidden, "Access denied.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update progress")
		}
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetAssignmentProgress godoc
// @Summary List progress for an assignment
// @Description Completion history for one assignment, newest first.
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {array} domain.Progress
// @Failure 403 {object} gin.H "Access denied"
// @Failure 404 {object} gin.H "Assignment not found"
// @Router /progress/assignment/{assignmentId} [get]
func (h *ProgressHandler) GetAssignmentProgress(c *gin.Context) {
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	callerID, callerRole, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	entries, err := h.progressService.ListForAssignment(c.Request.Context(), callerID, callerRole, assignmentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAccessDenied):
			abortWithError(c, http.StatusForbidden, "Access denied.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to list progress")
		}
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetAthleteProgress godoc
// @Summary Recent progress for an athlete
// @Description The athlete's most recent completions across all assignments, with exercise details attached.
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param athleteId path string true "Athlete ID"
// @Success 200 {array} service.ProgressWithExercise
// @Failure 403 {object} gin.H "Access denied"
// @Router /progress/athlete/{athleteId} [get]
func (h *ProgressHandler) GetAthleteProgress(c *gin.Context) {
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	callerID, callerRole, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	entries, err := h.progressService.ListForAthlete(c.Request.Context(), callerID, callerRole, athleteID)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			abortWithError(c, http.StatusForbidden, "Access denied.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to list progress")
		}
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetComplianceReport godoc
// @Summary Compliance report for an athlete
// @Description Expected versus completed counts per active assignment over a trailing window (default 30 days).
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param athleteId path string true "Athlete ID"
// @Param days query int false "Window length in days" default(30)
// @Success 200 {object} service.ComplianceReport
// @Failure 403 {object} gin.H "Access denied"
// @Router /progress/compliance/{athleteId} [get]
func (h *ProgressHandler) GetComplianceReport(c *gin.Context) {
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	callerID, callerRole, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	days := service.DefaultComplianceWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, http.StatusBadRequest, "Invalid days parameter")
			return
		}
		days = parsed
	}

	report, err := h.progressService.Compliance(c.Request.Context(), callerID, callerRole, athleteID, days)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			abortWithError(c, http.StatusForbidden, "Access denied.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to build compliance report")
		}
		return
	}

	c.JSON(http.StatusOK, report)
}
