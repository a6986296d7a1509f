package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/notify"
)

type NotificationsController struct {
	center *notify.Center
}

func NewNotificationsController(center *notify.Center) *NotificationsController {
	return &NotificationsController{center: center}
}

// GetNotifications drains pending toasts for the UI to display.
func (controller *NotificationsController) GetNotifications(c *gin.Context) {
	notifications := controller.center.Drain()
	if notifications == nil {
		notifications = []notify.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
