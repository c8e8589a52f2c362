package api

import (
	"errors"
	"net/http"

	"rehabtrack/rehab-app/internal/repository"
	"rehabtrack/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler exposes the exercise library endpoints.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

type ExerciseRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
	BodyPart     string `json:"bodyPart" binding:"required"`
	Category     string `json:"category" binding:"required"`
	Duration     *int   `json:"duration"`
	Sets         *int   `json:"sets"`
	Reps         *int   `json:"reps"`
}

type VideoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmVideoRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

func (r ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:         r.Name,
		Description:  r.Description,
		Instructions: r.Instructions,
		BodyPart:     r.BodyPart,
		Category:     r.Category,
		Duration:     r.Duration,
		Sets:         r.Sets,
		Reps:         r.Reps,
	}
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Adds an exercise to the library. Trainers only.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token")
		return
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), trainerID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrExerciseValidation) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise")
		}
		return
	}

	c.JSON(http.StatusCreated, exercise)
}

// ListExercises godoc
// @Summary List exercises
// @Description Returns the exercise library, optionally filtered by bodyPart, category, or createdBy.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param bodyPart query string false "Filter by body part"
// @Param category query string false "Filter by category"
// @Param createdBy query string false "Filter by creating trainer ID"
// @Success 200 {array} service.ExerciseWithTrainer
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filter := repository.ExerciseFilter{
		BodyPart: c.Query("bodyPart"),
		Category: c.Query("category"),
	}
	if createdBy := c.Query("createdBy"); createdBy != "" {
		id, err := primitive.ObjectIDFromHex(createdBy)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid createdBy format")
			return
		}
		filter.CreatedBy = id
	}

	exercises, err := h.exerciseService.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list exercises")
		return
	}

	c.JSON(http.StatusOK, exercises)
}

// GetExercise godoc
// @Summary Get an exercise by ID
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} service.ExerciseWithTrainer
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetByID(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch exercise")
		}
		return
	}

	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise godoc
// @Summary Update an exercise
// @Description Trainers only; the exercise must belong to the caller.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} domain.Exercise
// @Failure 404 {object} gin.H "Exercise not found or access denied"
// @Router /exercises/{id} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token")
		return
	}

	exercise, err := h.exerciseService.Update(c.Request.Context(), trainerID, exerciseID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise")
		}
		return
	}

	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise godoc
// @Summary Delete an exercise
// @Description Trainers only; the exercise must belong to the caller.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H "Exercise not found or access denied"
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	trainerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token")
		return
	}

	if err := h.exerciseService.Delete(c.Request.Context(), trainerID, exerciseID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exercise deleted successfully"})
}

// GetCategories returns the distinct exercise categories in use.
func (h *ExerciseHandler) GetCategories(c *gin.Context) {
	categories, err := h.exerciseService.Categories(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetBodyParts returns the distinct body parts in use.
func (h *ExerciseHandler) GetBodyParts(c *gin.Context) {
	bodyParts, err := h.exerciseService.BodyParts(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch body parts")
		return
	}
	c.JSON(http.StatusOK, bodyParts)
}

// RequestVideoUploadURL godoc
// @Summary Request a presigned upload URL for an exercise video
// @Description Returns a temporary PUT URL; the caller uploads directly to the media store and then confirms.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param request body VideoUploadURLRequest true "Content type of the video"
// @Success 200 {object} service.VideoUploadTicket
// @Failure 400 {object} gin.H "Invalid content type"
// @Failure 404 {object} gin.H "Exercise not found or access denied"
// @Router /exercises/{id}/video-upload-url [post]
func (h *ExerciseHandler) RequestVideoUploadURL(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req VideoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token")
		return
	}

	ticket, err := h.exerciseService.RequestVideoUploadURL(c.Request.Context(), trainerID, exerciseID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVideoType):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		}
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ConfirmVideoUpload godoc
// @Summary Confirm an exercise video upload
// @Description Records the uploaded object's URL on the exercise.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param request body ConfirmVideoRequest true "Uploaded object key"
// @Success 200 {object} domain.Exercise
// @Failure 404 {object} gin.H "Exercise not found or access denied"
// @Router /exercises/{id}/video [put]
func (h *ExerciseHandler) ConfirmVideoUpload(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req ConfirmVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token")
		return
	}

	exercise, err := h.exerciseService.ConfirmVideoUpload(c.Request.Context(), trainerID, exerciseID, req.ObjectKey)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm video upload")
		}
		return
	}

	c.JSON(http.StatusOK, exercise)
}
