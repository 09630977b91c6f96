package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	dto "kelasku_backend/internals/features/notifications/notifications/dto"
	"kelasku_backend/internals/features/notifications/notifications/service"
	helper "kelasku_backend/internals/helpers"
)

type NotificationController struct {
	Svc *service.NotificationService
}

func NewNotificationController(svc *service.NotificationService) *NotificationController {
	return &NotificationController{Svc: svc}
}

// 🟢 GET /api/u/notifications?unread=true&page=&per_page=
func (ctrl *NotificationController) ListMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	unread := strings.EqualFold(strings.TrimSpace(c.Query("unread")), "true")
	p := helper.ResolvePaging(c, 20, 100)

	rows, total, err := ctrl.Svc.ListMine(c.UserContext(), userID, unread, p.Offset, p.Limit)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	pg.Count = len(rows)
	return helper.JsonList(c, "ok", dto.FromModels(rows), &pg)
}

// 🟡 PATCH /api/u/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctrl.Svc.MarkRead(c.UserContext(), userID, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Notifikasi ditandai dibaca", fiber.Map{"notification_id": id})
}

// 🟡 PATCH /api/u/notifications/read-all
func (ctrl *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	n, err := ctrl.Svc.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Semua notifikasi ditandai dibaca", fiber.Map{"updated": n})
}
