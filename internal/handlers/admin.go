// internal/handlers/admin.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sobrazero/sobrazero-backend/internal/i18n"
	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	sweeperService *services.SweeperService
}

func NewAdminHandler(adminService *services.AdminService, sweeperService *services.SweeperService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		sweeperService: sweeperService,
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, stats)
}

func (h *AdminHandler) ListPendingComercios(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	comercios, total, err := h.adminService.ListPendingComercios(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(comercios, total, params))
}

func (h *AdminHandler) ApproveCommerce(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	comercio, err := h.adminService.ApproveCommerce(id)
	if err != nil {
		h.reviewError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, comercio, gin.H{
		"message": i18n.T(lang, i18n.KeyComercioApproved),
	})
}

func (h *AdminHandler) RejectCommerce(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.RejectCommerceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	comercio, err := h.adminService.RejectCommerce(id, req.Motivo)
	if err != nil {
		h.reviewError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, comercio, gin.H{
		"message": i18n.T(lang, i18n.KeyComercioRejected),
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.adminService.ListUsers(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	user, err := h.adminService.UpdateUserStatus(id, req.Status)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			utils.NotFoundResponse(c, "user")
		case strings.Contains(err.Error(), "admin account"):
			utils.ForbiddenResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}
	utils.SuccessResponse(c, user)
}

func (h *AdminHandler) ListNotifications(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	notifications, total, err := h.adminService.ListNotifications(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(notifications, total, params))
}

func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.MarkNotificationRead(id); err != nil {
		utils.NotFoundResponse(c, "notification")
		return
	}
	utils.SuccessResponse(c, gin.H{"read": true})
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.adminService.ListAuditLogs(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}

// RunSweep triggers an expiry pass on demand, the same one the sweeper
// binary and the background ticker run.
func (h *AdminHandler) RunSweep(c *gin.Context) {
	summary, err := h.sweeperService.Sweep(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, summary)
}

func (h *AdminHandler) reviewError(c *gin.Context, err error) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		utils.NotFoundResponse(c, "comercio")
	case strings.Contains(err.Error(), "not pending"):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.InternalErrorResponse(c, "")
	}
}
