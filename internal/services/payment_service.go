// internal/services/payment_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

var (
	ErrPaymentNotConfigured = errors.New("payment provider is not configured")
	ErrNoPaymentReference   = errors.New("no payment reference in webhook payload")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)

// CheckoutSession is what the client needs to hand the user over to the
// provider's hosted checkout page.
type CheckoutSession struct {
	PreferenceID string `json:"preference_id"`
	InitPoint    string `json:"init_point"`
	Mode         string `json:"mode"`
}

// PaymentResult is the provider's verdict on a payment reference.
type PaymentResult struct {
	ReservaID uuid.UUID
	Reference string
	Paid      bool
}

// CheckoutProvider abstracts the payment gateway so the webhook flow and
// the tests do not depend on live provider calls.
type CheckoutProvider interface {
	CreateCheckout(reserva *models.Reserva, payerEmail string) (*CheckoutSession, error)
	ResolvePayment(reference string) (*PaymentResult, error)
}

type PaymentService struct {
	db       *gorm.DB
	cfg      *config.Config
	provider CheckoutProvider
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, provider CheckoutProvider) *PaymentService {
	return &PaymentService{db: db, cfg: cfg, provider: provider}
}

// CreatePreference opens a hosted checkout for a pending reservation owned
// by the caller.
func (s *PaymentService) CreatePreference(reservaID, userID uuid.UUID) (*CheckoutSession, error) {
	if s.provider == nil {
		return nil, ErrPaymentNotConfigured
	}

	var reserva models.Reserva
	if err := s.db.First(&reserva, reservaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if reserva.UsuarioID != userID {
		return nil, ErrReservationNotFound
	}
	if reserva.Estado != models.ReservationStatusPendiente {
		return nil, ErrInvalidTransition
	}
	if time.Now().After(reserva.ExpiresAt) {
		return nil, ErrInvalidTransition
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	checkout, err := s.provider.CreateCheckout(&reserva, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"reserva_id":    reserva.ID,
		"preference_id": checkout.PreferenceID,
		"mode":          checkout.Mode,
	}).Info("Checkout preference created")

	return checkout, nil
}

// VerifyWebhookSignature checks the provider signature header against the
// raw body. An empty configured secret disables verification, for sandbox
// setups that do not sign.
func (s *PaymentService) VerifyWebhookSignature(body []byte, signature string) error {
	if s.cfg.Payment.WebhookSecret == "" {
		return nil
	}
	if signature == "" || !utils.VerifySignature(body, s.cfg.Payment.WebhookSecret, signature) {
		return ErrInvalidSignature
	}
	return nil
}

// ProcessWebhook resolves a payment reference with the provider and, if it
// is paid, confirms the reservation. The pendiente to pagada transition is
// one conditional UPDATE, so replayed webhook deliveries are no-ops.
func (s *PaymentService) ProcessWebhook(ctx context.Context, reference string) error {
	if s.provider == nil {
		return ErrPaymentNotConfigured
	}

	result, err := s.provider.ResolvePayment(reference)
	if err != nil {
		return fmt.Errorf("failed to resolve payment %s: %w", reference, err)
	}
	if !result.Paid {
		logrus.WithField("reference", reference).Info("Webhook for unpaid payment, ignoring")
		return nil
	}
	if result.ReservaID == uuid.Nil {
		return fmt.Errorf("payment %s carries no reservation id", reference)
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Reserva{}).
		Where("id = ? AND estado = ?", result.ReservaID, models.ReservationStatusPendiente).
		UpdateColumns(map[string]interface{}{
			"estado":          models.ReservationStatusPagada,
			"pago_referencia": result.Reference,
			"pagada_at":       &now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to confirm reservation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Already confirmed, cancelled or expired. Replays land here.
		logrus.WithFields(logrus.Fields{
			"reserva_id": result.ReservaID,
			"reference":  result.Reference,
		}).Info("Webhook ignored, reservation not pending")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"reserva_id": result.ReservaID,
		"reference":  result.Reference,
	}).Info("Reservation confirmed by webhook")
	return nil
}

var resourceIDPattern = regexp.MustCompile(`/([A-Za-z0-9_-]+)/?$`)

// ExtractPaymentReference pulls the provider's payment id out of a webhook
// delivery. Providers send it in several shapes depending on notification
// type and API version, so every known variant is tried in order:
//
//	?data.id=X            query parameter
//	?id=X&topic=payment   legacy query parameters
//	?resource=https://.../X          resource URL query parameter
//	{"data":{"object":{"id":"X"}}}   event envelope body
//	{"data":{"id":"X"}}              flat body
//	{"resource":"https://.../X"}     resource URL body
func ExtractPaymentReference(query url.Values, body []byte) (string, error) {
	if id := query.Get("data.id"); id != "" {
		return id, nil
	}
	if id := query.Get("id"); id != "" && query.Get("topic") == "payment" {
		return id, nil
	}
	if resource := query.Get("resource"); resource != "" {
		if m := resourceIDPattern.FindStringSubmatch(resource); m != nil {
			return m[1], nil
		}
	}

	if len(body) > 0 {
		var payload struct {
			Data struct {
				ID     string `json:"id"`
				Object struct {
					ID string `json:"id"`
				} `json:"object"`
			} `json:"data"`
			Resource string `json:"resource"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Data.Object.ID != "" {
				return payload.Data.Object.ID, nil
			}
			if payload.Data.ID != "" {
				return payload.Data.ID, nil
			}
			if payload.Resource != "" {
				if m := resourceIDPattern.FindStringSubmatch(payload.Resource); m != nil {
					return m[1], nil
				}
			}
		}
	}

	return "", ErrNoPaymentReference
}

// StripeProvider drives hosted checkout sessions against Stripe.
type StripeProvider struct {
	cfg *config.Config
}

func NewStripeProvider(cfg *config.Config) *StripeProvider {
	if cfg.Payment.SecretKey == "" {
		return nil
	}
	stripe.Key = cfg.Payment.SecretKey
	return &StripeProvider{cfg: cfg}
}

func (p *StripeProvider) CreateCheckout(reserva *models.Reserva, payerEmail string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.cfg.Payment.SuccessURL),
		CancelURL:         stripe.String(p.cfg.Payment.FailureURL),
		CustomerEmail:     stripe.String(payerEmail),
		ClientReferenceID: stripe.String(reserva.ID.String()),
		ExpiresAt:         stripe.Int64(reserva.ExpiresAt.Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(int64(reserva.Cantidad)),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.cfg.Payment.Currency),
					UnitAmount: stripe.Int64(int64(reserva.PrecioUnitario * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(reserva.ProductoNombre),
					},
				},
			},
		},
	}
	params.AddMetadata("reserva_id", reserva.ID.String())

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe session: %w", err)
	}

	return &CheckoutSession{
		PreferenceID: sess.ID,
		InitPoint:    sess.URL,
		Mode:         p.cfg.PaymentMode(),
	}, nil
}

func (p *StripeProvider) ResolvePayment(reference string) (*PaymentResult, error) {
	sess, err := session.Get(reference, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe session lookup: %w", err)
	}

	result := &PaymentResult{
		Reference: sess.ID,
		Paid:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}

	reservaRef := sess.ClientReferenceID
	if reservaRef == "" {
		reservaRef = sess.Metadata["reserva_id"]
	}
	if reservaRef != "" {
		if id, err := uuid.Parse(reservaRef); err == nil {
			result.ReservaID = id
		}
	}
	return result, nil
}
