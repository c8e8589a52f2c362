package api

import (
	"errors"
	"net/http"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes the user directory and profile endpoints.
type UserHandler struct {
	userService       service.UserService
	assignmentService service.AssignmentService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, assignmentService service.AssignmentService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		assignmentService: assignmentService,
	}
}

// --- DTOs ---

type UpdateProfileRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Sport     string `json:"sport"`
	Position  string `json:"position"`
}

// --- Handler Methods ---

// ListAthletes godoc
// @Summary List all athletes
// @Description Returns the athlete directory. Trainers only.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Router /users/athletes [get]
func (h *UserHandler) ListAthletes(c *gin.Context) {
	_, role, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller from token")
		return
	}

	athletes, err := h.userService.ListAthletes(c.Request.Context(), role)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			abortWithError(c, http.StatusForbidden, "Access denied. Trainers only.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to list athletes")
		}
		return
	}

	c.JSON(http.StatusOK, mapUsersToResponse(athletes))
}

// ListTrainers godoc
// @Summary List all trainers
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /users/trainers [get]
func (h *UserHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.userService.ListTrainers(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list trainers")
		return
	}

	c.JSON(http.StatusOK, mapUsersToResponse(trainers))
}

// GetUser godoc
// @Summary Get a user profile
// @Description Athletes may only view their own profile; trainers may view any.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	callerID, role, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller from token")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), callerID, role, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			abortWithError(c, http.StatusForbidden, "Access denied.")
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch user")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile godoc
// @Summary Update a user profile
// @Description Users may only update their own profile. Role and email are immutable.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param profile body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} gin.H
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	callerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller from token")
		return
	}

	err = h.userService.UpdateProfile(c.Request.Context(), callerID, userID, req.FirstName, req.LastName, req.Sport, req.Position)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			abortWithError(c, http.StatusForbidden, "Access denied.")
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// GetUserAssignments godoc
// @Summary Get an athlete's active assignments with progress history
// @Description Athletes may only view their own; trainers may view any athlete's.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "Athlete ID"
// @Success 200 {array} service.AssignmentDetails
// @Failure 403 {object} gin.H "Forbidden"
// @Router /users/{id}/assignments [get]
func (h *UserHandler) GetUserAssignments(c *gin.Context) {
	athleteID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	callerID, role, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller from token")
		return
	}

	assignments, err := h.assignmentService.ListForAthlete(c.Request.Context(), callerID, role, athleteID)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			abortWithError(c, http.StatusForbidden, "Access denied.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch assignments")
		}
		return
	}

	c.JSON(http.StatusOK, assignments)
}

func mapUsersToResponse(users []domain.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i := range users {
		result[i] = MapUserToResponse(&users[i])
	}
	return result
}
