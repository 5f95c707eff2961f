package worker

import (
	"github.com/spec-kit/coupon-saver/internal/service"
)

// StartAnnouncementWorker registers announcement handlers.
func StartAnnouncementWorker(announcementService *service.AnnouncementService) {
	if announcementService == nil {
		return
	}
	announcementService.RegisterHandlers()
}
