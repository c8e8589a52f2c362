package api

import (
	"errors"
	"net/http"

	"rehabtrack/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the in-app notification endpoints.
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications godoc
// @Summary List a user's notifications
// @Description Most recent notifications first. Users may only view their own.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} domain.Notification
// @Failure 403 {object} gin.H "Access denied"
// @Router /notifications/{id} [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	callerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	notifications, err := h.notificationService.ListForUser(c.Request.Context(), callerID, userID)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			abortWithError(c, http.StatusForbidden, "Access denied.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to list notifications")
		}
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead godoc
// @Summary Mark a notification as read
// @Description Idempotent. The notification must belong to the caller.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H "Notification not found"
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	notificationID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	callerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), callerID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to mark notification read")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead godoc
// @Summary Mark all of a user's notifications as read
// @Description Users may only mark their own.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} gin.H
// @Failure 403 {object} gin.H "Access denied"
// @Router /notifications/{id}/read-all [put]
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	callerID, _, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), callerID, userID); err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			abortWithError(c, http.StatusForbidden, "Access denied.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to mark notifications read")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
