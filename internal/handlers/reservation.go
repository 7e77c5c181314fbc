// internal/handlers/reservation.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sobrazero/sobrazero-backend/internal/i18n"
	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type ReservationHandler struct {
	reservationService *services.ReservationService
}

func NewReservationHandler(reservationService *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	reserva, oferta, err := h.reservationService.Create(userID, &req)
	if err != nil {
		lang := utils.GetLangFromContext(c)

		var stockErr *services.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_STOCK",
				i18n.T(lang, i18n.KeyReservaInsufficientStock, stockErr.Remaining),
				gin.H{"remaining": stockErr.Remaining})
		case errors.Is(err, services.ErrOfferNotAvailable):
			utils.NotFoundResponse(c, "oferta")
		case errors.Is(err, services.ErrItemNotFound):
			utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND",
				i18n.T(lang, i18n.KeyReservaProductoNotFound), nil)
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}
	utils.CreatedResponse(c, gin.H{
		"reserva":           reserva,
		"ofertaActualizada": oferta,
	})
}

func (h *ReservationHandler) ListMine(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	reservas, total, err := h.reservationService.ListByUser(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(reservas, total, params))
}

// ListByCommerce is the merchant-facing view of incoming reservations.
func (h *ReservationHandler) ListByCommerce(c *gin.Context) {
	comercioID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	reservas, total, err := h.reservationService.ListByCommerce(comercioID, userID, isAdmin, params)
	if err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			utils.NotFoundResponse(c, "comercio")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(reservas, total, params))
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	reserva, err := h.reservationService.GetForUser(id, userID, isAdmin)
	if err != nil {
		utils.NotFoundResponse(c, "reserva")
		return
	}
	utils.SuccessResponse(c, reserva)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	reserva, err := h.reservationService.Cancel(id, userID, isAdmin)
	if err != nil {
		h.reservationError(c, err)
		return
	}
	utils.SuccessResponse(c, reserva)
}

// MarkPickedUp confirms the user collected a paid reservation.
func (h *ReservationHandler) MarkPickedUp(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	reserva, err := h.reservationService.MarkPickedUp(id, userID, isAdmin)
	if err != nil {
		h.reservationError(c, err)
		return
	}
	utils.SuccessResponse(c, reserva)
}

func (h *ReservationHandler) reservationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrReservationNotFound):
		utils.NotFoundResponse(c, "reserva")
	case errors.Is(err, services.ErrInvalidTransition):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.InternalErrorResponse(c, "")
	}
}
