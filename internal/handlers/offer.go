// internal/handlers/offer.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type OfferHandler struct {
	offerService *services.OfferService
}

func NewOfferHandler(offerService *services.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

func (h *OfferHandler) Create(c *gin.Context) {
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	oferta, err := h.offerService.Create(userID, isAdmin, &req)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			utils.NotFoundResponse(c, "oferta")
		case strings.Contains(err.Error(), "unauthorized"):
			utils.ForbiddenResponse(c, "")
		case strings.Contains(err.Error(), "insufficient stock"):
			utils.ConflictResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}
	utils.CreatedResponse(c, oferta)
}

func (h *OfferHandler) ListPublic(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	ofertas, total, err := h.offerService.ListPublic(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(ofertas, total, params))
}

func (h *OfferHandler) ListByCommerce(c *gin.Context) {
	comercioID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ofertas, err := h.offerService.ListByCommerce(comercioID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, ofertas)
}

func (h *OfferHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	oferta, err := h.offerService.Get(id)
	if err != nil {
		utils.NotFoundResponse(c, "oferta")
		return
	}
	utils.SuccessResponse(c, oferta)
}

func (h *OfferHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	oferta, err := h.offerService.Update(id, userID, isAdmin, &req)
	if err != nil {
		h.offerError(c, err)
		return
	}
	utils.SuccessResponse(c, oferta)
}

func (h *OfferHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.offerService.Delete(id, userID, isAdmin); err != nil {
		if strings.Contains(err.Error(), "published") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		h.offerError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}

func (h *OfferHandler) offerError(c *gin.Context, err error) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		utils.NotFoundResponse(c, "oferta")
	case strings.Contains(err.Error(), "unauthorized"):
		utils.ForbiddenResponse(c, "")
	case strings.Contains(err.Error(), "invalid offer state"):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, "")
	}
}
