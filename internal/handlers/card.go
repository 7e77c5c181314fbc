// internal/handlers/card.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type CardHandler struct {
	cardService *services.CardService
}

func NewCardHandler(cardService *services.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

func (h *CardHandler) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	tarjeta, err := h.cardService.Create(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.CreatedResponse(c, tarjeta)
}

func (h *CardHandler) List(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tarjetas, err := h.cardService.List(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, tarjetas)
}

func (h *CardHandler) SetPreferred(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tarjeta, err := h.cardService.SetPreferred(id, userID)
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			utils.NotFoundResponse(c, "tarjeta")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, tarjeta)
}

func (h *CardHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.cardService.Delete(id, userID); err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			utils.NotFoundResponse(c, "tarjeta")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
