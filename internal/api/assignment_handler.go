package api

import (
	"errors"
	"net/http"
	"time"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AssignmentHandler exposes the exercise-assignment endpoints.
type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// --- DTOs ---

type CreateAssignmentRequest struct {
	AthleteID  string     `json:"athleteId" binding:"required"`
	ExerciseID string     `json:"exerciseId" binding:"required"`
	Frequency  string     `json:"frequency" binding:"required"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
	Notes      string     `json:"notes"`
}

type UpdateAssignmentRequest struct {
	Frequency string     `json:"frequency"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Notes     string     `json:"notes"`
	Status    string     `json:"status"`
}

// --- Handler Methods ---

// CreateAssignment godoc
// @Summary Assign an exercise to an athlete
// @Description Trainers only. Notifies the athlete about the new assignment.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignment body CreateAssignmentRequest true "Assignment details"
// @Success 201 {object} domain.Assignment
// @Failure 400 {object} gin.H "Invalid input or frequency"
// @Failure 404 {object} gin.H "Athlete or exercise not found"
// @Router /assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token")
		return
	}

	athleteID, ok := parseObjectID(c, req.AthleteID, "athleteId")
	if !ok {
		return
	}
	exerciseID, ok := parseObjectID(c, req.ExerciseID, "exerciseId")
	if !ok {
		return
	}

	input := service.AssignmentInput{
		Frequency: domain.Frequency(req.Frequency),
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	}
	if req.StartDate != nil {
		input.StartDate = *req.StartDate
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), trainerID, athleteID, exerciseID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFrequency):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAthleteNotFound), errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create assignment")
		}
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// UpdateAssignment godoc
// @Summary Update an assignment
// @Description Trainers only; the assignment must belong to the caller.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param assignment body UpdateAssignmentRequest true "Fields to update"
// @Success 200 {object} domain.Assignment
// @Failure 404 {object} gin.H "Assignment not found or access denied"
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	assignmentID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token")
		return
	}

	input := service.AssignmentInput{
		Frequency: domain.Frequency(req.Frequency),
		EndDate:   req.EndDate,
		Notes:     req.Notes,
		Status:    domain.AssignmentStatus(req.Status),
	}
	if req.StartDate != nil {
		input.StartDate = *req.StartDate
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), trainerID, assignmentID, input)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update assignment")
		}
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment godoc
// @Summary Delete an assignment
// @Description Trainers only; the assignment must belong to the caller. Progress entries are kept.
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H "Assignment not found or access denied"
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	assignmentID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	trainerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token")
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), trainerID, assignmentID); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete assignment")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}

// GetTrainerAssignments godoc
// @Summary List a trainer's assignments
// @Description Returns every assignment the trainer created, with exercise, athlete, and progress attached. Trainers may only view their own.
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {array} service.AssignmentDetails
// @Failure 403 {object} gin.H "Access denied"
// @Router /assignments/trainer/{trainerId} [get]
func (h *AssignmentHandler) GetTrainerAssignments(c *gin.Context) {
	trainerID, ok := pathObjectID(c, "trainerId")
	if !ok {
		return
	}

	callerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	if callerID != trainerID {
		abortWithError(c, http.StatusForbidden, "Access denied.")
		return
	}

	assignments, err := h.assignmentService.ListForTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list assignments")
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// GetTrainerStats godoc
// @Summary Trainer dashboard statistics
// @Description Total and active assignment counts plus assignments completed in the past week. Trainers may only view their own.
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {object} service.TrainerStats
// @Failure 403 {object} gin.H "Access denied"
// @Router /assignments/stats/{trainerId} [get]
func (h *AssignmentHandler) GetTrainerStats(c *gin.Context) {
	trainerID, ok := pathObjectID(c, "trainerId")
	if !ok {
		return
	}

	callerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	if callerID != trainerID {
		abortWithError(c, http.StatusForbidden, "Access denied.")
		return
	}

	stats, err := h.assignmentService.StatsForTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
