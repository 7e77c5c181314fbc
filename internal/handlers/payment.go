// internal/handlers/payment.go
package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
	"github.com/sobrazero/sobrazero-backend/internal/worker"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	pool           *worker.Pool
}

func NewPaymentHandler(paymentService *services.PaymentService, pool *worker.Pool) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, pool: pool}
}

// CreatePreference opens a hosted checkout for a pending reservation.
func (h *PaymentHandler) CreatePreference(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	// precio_total is accepted for compatibility with older clients but the
	// charge amount always comes from the stored reservation.
	var req struct {
		ReservaID   string  `json:"reservaId" validate:"required,uuid"`
		PrecioTotal float64 `json:"precio_total,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	reservaID, err := uuid.Parse(req.ReservaID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid reservaId", nil)
		return
	}

	checkout, err := h.paymentService.CreatePreference(reservaID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			utils.NotFoundResponse(c, "reserva")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, "reservation is not payable")
		case errors.Is(err, services.ErrPaymentNotConfigured):
			utils.InternalErrorResponse(c, "payment provider unavailable")
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}
	utils.CreatedResponse(c, checkout)
}

// Webhook receives provider notifications. It always answers 200 once the
// signature checks out, so the provider stops retrying; the actual
// confirmation runs on the worker pool.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.Status(400)
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if err := h.paymentService.VerifyWebhookSignature(body, signature); err != nil {
		logrus.WithField("remote", c.ClientIP()).Warn("Webhook with invalid signature rejected")
		c.Status(401)
		return
	}

	reference, err := services.ExtractPaymentReference(c.Request.URL.Query(), body)
	if err != nil {
		// Notification types we do not handle. Acknowledge anyway.
		logrus.Debug("Webhook without payment reference, acknowledged")
		c.Status(200)
		return
	}

	job := worker.Job{
		Name: "payment-webhook",
		Run: func(ctx context.Context) error {
			return h.paymentService.ProcessWebhook(ctx, reference)
		},
	}
	if err := h.pool.Enqueue(job); err != nil {
		// Let the provider redeliver later instead of dropping the event.
		logrus.WithError(err).Error("Webhook queue full, asking provider to retry")
		c.Status(503)
		return
	}

	c.Status(200)
}
