// internal/handlers/commerce.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sobrazero/sobrazero-backend/internal/i18n"
	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type CommerceHandler struct {
	commerceService *services.CommerceService
	storageService  *services.StorageService
}

func NewCommerceHandler(commerceService *services.CommerceService, storageService *services.StorageService) *CommerceHandler {
	return &CommerceHandler{
		commerceService: commerceService,
		storageService:  storageService,
	}
}

func (h *CommerceHandler) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCommerceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	comercio, err := h.commerceService.Create(userID, &req)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.CreatedResponse(c, comercio)
}

// ListPublic is the consumer-facing catalog of approved, active commerces.
func (h *CommerceHandler) ListPublic(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	comercios, total, err := h.commerceService.ListPublic(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(comercios, total, params))
}

// ListAll serves the legacy read-all route, gated by a feature flag at
// router level.
func (h *CommerceHandler) ListAll(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	comercios, total, err := h.commerceService.ListAll(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(comercios, total, params))
}

func (h *CommerceHandler) ListMine(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	comercios, err := h.commerceService.ListByOwner(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, comercios)
}

func (h *CommerceHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	comercio, err := h.commerceService.Get(id)
	if err != nil {
		utils.NotFoundResponse(c, "comercio")
		return
	}
	utils.SuccessResponse(c, comercio)
}

func (h *CommerceHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateCommerceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	comercio, err := h.commerceService.Update(id, userID, isAdmin, &req)
	if err != nil {
		h.commerceError(c, err)
		return
	}
	utils.SuccessResponse(c, comercio)
}

func (h *CommerceHandler) Activate(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	comercio, err := h.commerceService.Activate(id, userID, isAdmin)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		switch {
		case strings.Contains(err.Error(), "not found"):
			utils.NotFoundResponse(c, "comercio")
		case strings.Contains(err.Error(), "unauthorized"):
			utils.ForbiddenResponse(c, "")
		default:
			utils.ErrorResponse(c, 422, "CANNOT_ACTIVATE",
				i18n.T(lang, i18n.KeyComercioCannotActivate), err.Error())
		}
		return
	}
	utils.SuccessResponse(c, comercio)
}

func (h *CommerceHandler) Deactivate(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	comercio, err := h.commerceService.Deactivate(id, userID, isAdmin)
	if err != nil {
		h.commerceError(c, err)
		return
	}
	utils.SuccessResponse(c, comercio)
}

func (h *CommerceHandler) AddProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	producto, err := h.commerceService.AddProduct(id, userID, isAdmin, &req)
	if err != nil {
		if strings.Contains(err.Error(), "price") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		h.commerceError(c, err)
		return
	}
	utils.CreatedResponse(c, producto)
}

func (h *CommerceHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	productoID, ok := parseUUIDParam(c, "productoId")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	producto, err := h.commerceService.UpdateProduct(id, productoID, userID, isAdmin, &req)
	if err != nil {
		if strings.Contains(err.Error(), "price") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		h.commerceError(c, err)
		return
	}
	utils.SuccessResponse(c, producto)
}

func (h *CommerceHandler) RemoveProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	productoID, ok := parseUUIDParam(c, "productoId")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.commerceService.RemoveProduct(id, productoID, userID, isAdmin); err != nil {
		h.commerceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// UploadImage stores a commerce photo and appends its URL to the listing.
func (h *CommerceHandler) UploadImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("imagen")
	if err != nil {
		utils.BadRequestResponse(c, "Missing image file", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadImage(file, header, h.storageService.ImageUploadOptions("comercios"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	comercio, err := h.commerceService.AddImage(id, userID, isAdmin, result.URL)
	if err != nil {
		h.commerceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"comercio": comercio, "upload": result})
}

func (h *CommerceHandler) commerceError(c *gin.Context, err error) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		utils.NotFoundResponse(c, "comercio")
	case strings.Contains(err.Error(), "unauthorized"):
		utils.ForbiddenResponse(c, "")
	default:
		utils.InternalErrorResponse(c, "")
	}
}
