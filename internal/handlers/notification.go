package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
)

type NotificationHandler struct {
	notificationRepo repos.NotificationRepo
}

func NewNotificationHandler(notificationRepo repos.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

func (nh *NotificationHandler) List(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		RespondError(c, apierr.Unauthorized("authentication required"))
		return
	}
	page, size := pageParams(c)
	notifications, err := nh.notificationRepo.ListByRecipient(c.Request.Context(), nil, rd.UserID, page, size)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"notifications": notifications})
}

func (nh *NotificationHandler) MarkRead(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		RespondError(c, apierr.Unauthorized("authentication required"))
		return
	}
	notificationID, err := uuid.Parse(c.Param("notificationID"))
	if err != nil {
		RespondBadRequest(c, "invalid notification id")
		return
	}
	if err := nh.notificationRepo.MarkRead(c.Request.Context(), nil, notificationID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"notification_id": notificationID, "read": true})
}
