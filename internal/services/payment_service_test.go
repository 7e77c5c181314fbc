// internal/services/payment_service_test.go
package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

// fakeProvider answers payment lookups from a fixed table.
type fakeProvider struct {
	payments map[string]*PaymentResult
	checkout *CheckoutSession
}

func (f *fakeProvider) CreateCheckout(reserva *models.Reserva, payerEmail string) (*CheckoutSession, error) {
	return f.checkout, nil
}

func (f *fakeProvider) ResolvePayment(reference string) (*PaymentResult, error) {
	if result, ok := f.payments[reference]; ok {
		return result, nil
	}
	return &PaymentResult{Reference: reference, Paid: false}, nil
}

type PaymentServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	provider *fakeProvider
	service  *PaymentService
	user     *models.User
	reserva  *models.Reserva
	item     *models.OfertaItem
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.provider = &fakeProvider{
		payments: map[string]*PaymentResult{},
		checkout: &CheckoutSession{PreferenceID: "pref_1", InitPoint: "https://pay.example/p1", Mode: "sandbox"},
	}

	cfg := testConfig()
	cfg.Payment.WebhookSecret = "whsec_test"
	s.service = NewPaymentService(s.db, cfg, s.provider)

	s.user = createTestUser(s.T(), s.db, "cliente@example.com")
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Medialunas", 10)
	s.item = item
	s.reserva = createPendingReservation(s.T(), s.db, s.user, oferta, item, 2,
		time.Now().Add(30*time.Minute))
}

func (s *PaymentServiceTestSuite) TestCreatePreference() {
	checkout, err := s.service.CreatePreference(s.reserva.ID, s.user.ID)
	s.Require().NoError(err)
	s.Equal("pref_1", checkout.PreferenceID)
	s.Equal("https://pay.example/p1", checkout.InitPoint)
}

func (s *PaymentServiceTestSuite) TestCreatePreferenceRejectsForeignReservation() {
	stranger := createTestUser(s.T(), s.db, "ajeno@example.com")
	_, err := s.service.CreatePreference(s.reserva.ID, stranger.ID)
	s.ErrorIs(err, ErrReservationNotFound)
}

func (s *PaymentServiceTestSuite) TestCreatePreferenceRejectsExpiredReservation() {
	s.Require().NoError(s.db.Model(&models.Reserva{}).Where("id = ?", s.reserva.ID).
		UpdateColumn("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err := s.service.CreatePreference(s.reserva.ID, s.user.ID)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *PaymentServiceTestSuite) TestWebhookConfirmsPendingReservation() {
	s.provider.payments["pay_1"] = &PaymentResult{
		ReservaID: s.reserva.ID,
		Reference: "pay_1",
		Paid:      true,
	}

	s.Require().NoError(s.service.ProcessWebhook(context.Background(), "pay_1"))

	var fresh models.Reserva
	s.Require().NoError(s.db.First(&fresh, s.reserva.ID).Error)
	s.Equal(models.ReservationStatusPagada, fresh.Estado)
	s.Equal("pay_1", fresh.PagoReferencia)
	s.NotNil(fresh.PagadaAt)
}

// Providers redeliver webhooks. The second delivery must change nothing.
func (s *PaymentServiceTestSuite) TestWebhookReplayIsNoOp() {
	s.provider.payments["pay_1"] = &PaymentResult{
		ReservaID: s.reserva.ID,
		Reference: "pay_1",
		Paid:      true,
	}

	s.Require().NoError(s.service.ProcessWebhook(context.Background(), "pay_1"))

	var afterFirst models.Reserva
	s.Require().NoError(s.db.First(&afterFirst, s.reserva.ID).Error)
	paidAt := afterFirst.PagadaAt

	s.Require().NoError(s.service.ProcessWebhook(context.Background(), "pay_1"))

	var afterSecond models.Reserva
	s.Require().NoError(s.db.First(&afterSecond, s.reserva.ID).Error)
	s.Equal(models.ReservationStatusPagada, afterSecond.Estado)
	s.Equal(paidAt.Unix(), afterSecond.PagadaAt.Unix())
}

func (s *PaymentServiceTestSuite) TestWebhookIgnoresUnpaidPayment() {
	s.provider.payments["pay_2"] = &PaymentResult{
		ReservaID: s.reserva.ID,
		Reference: "pay_2",
		Paid:      false,
	}

	s.Require().NoError(s.service.ProcessWebhook(context.Background(), "pay_2"))

	var fresh models.Reserva
	s.Require().NoError(s.db.First(&fresh, s.reserva.ID).Error)
	s.Equal(models.ReservationStatusPendiente, fresh.Estado)
}

func (s *PaymentServiceTestSuite) TestWebhookDoesNotResurrectExpiredReservation() {
	s.Require().NoError(s.db.Model(&models.Reserva{}).Where("id = ?", s.reserva.ID).
		UpdateColumns(map[string]interface{}{
			"estado":         models.ReservationStatusExpirada,
			"stock_devuelto": true,
		}).Error)

	s.provider.payments["pay_late"] = &PaymentResult{
		ReservaID: s.reserva.ID,
		Reference: "pay_late",
		Paid:      true,
	}

	s.Require().NoError(s.service.ProcessWebhook(context.Background(), "pay_late"))

	var fresh models.Reserva
	s.Require().NoError(s.db.First(&fresh, s.reserva.ID).Error)
	s.Equal(models.ReservationStatusExpirada, fresh.Estado)
}

func (s *PaymentServiceTestSuite) TestVerifyWebhookSignature() {
	body := []byte(`{"data":{"id":"pay_1"}}`)
	good := utils.SignPayload(body, "whsec_test")

	s.NoError(s.service.VerifyWebhookSignature(body, good))
	s.ErrorIs(s.service.VerifyWebhookSignature(body, "bad"), ErrInvalidSignature)
	s.ErrorIs(s.service.VerifyWebhookSignature(body, ""), ErrInvalidSignature)
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func TestExtractPaymentReference(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		body    string
		want    string
		wantErr bool
	}{
		{name: "query data.id", query: "data.id=pay_123", want: "pay_123"},
		{name: "query id with payment topic", query: "id=pay_456&topic=payment", want: "pay_456"},
		{name: "query id without topic is ignored", query: "id=pay_456", wantErr: true},
		{name: "event envelope body", body: `{"data":{"object":{"id":"cs_789"}}}`, want: "cs_789"},
		{name: "flat data body", body: `{"data":{"id":"pay_abc"}}`, want: "pay_abc"},
		{name: "resource url body", body: `{"resource":"https://api.example.com/v1/payments/pay_xyz"}`, want: "pay_xyz"},
		{name: "resource url query", query: "resource=" + url.QueryEscape("https://api.example.com/v1/payments/pay_qr"), want: "pay_qr"},
		{name: "query wins over body", query: "data.id=pay_q", body: `{"data":{"id":"pay_b"}}`, want: "pay_q"},
		{name: "empty delivery", wantErr: true},
		{name: "malformed body", body: `{not json`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			got, err := ExtractPaymentReference(query, []byte(tc.body))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNoPaymentReference)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
