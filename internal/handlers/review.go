// internal/handlers/review.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sobrazero/sobrazero-backend/internal/i18n"
	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resena, err := h.reviewService.Create(userID, &req)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		switch {
		case errors.Is(err, services.ErrReviewNotAllowed):
			utils.ErrorResponse(c, http.StatusForbidden, "NOT_ELIGIBLE",
				i18n.T(lang, i18n.KeyResenaNotEligible), nil)
		case errors.Is(err, services.ErrReviewExists):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyResenaDuplicate))
		default:
			utils.NotFoundResponse(c, "comercio")
		}
		return
	}
	utils.CreatedResponse(c, resena)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resena, err := h.reviewService.Update(id, userID, &req)
	if err != nil {
		utils.NotFoundResponse(c, "resena")
		return
	}
	utils.SuccessResponse(c, resena)
}

func (h *ReviewHandler) ListByCommerce(c *gin.Context) {
	comercioID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	resenas, total, err := h.reviewService.ListByCommerce(comercioID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(resenas, total, params))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.reviewService.Delete(id, userID, isAdmin); err != nil {
		utils.NotFoundResponse(c, "resena")
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
