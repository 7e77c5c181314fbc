// internal/services/reservation_service_test.go
package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
)

type ReservationServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ReservationService
	user    *models.User
}

func (s *ReservationServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewReservationService(s.db, testConfig())
	s.user = createTestUser(s.T(), s.db, "cliente@example.com")
}

func (s *ReservationServiceTestSuite) TestCreateDecrementsAllCounters() {
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Medialunas", 10)

	reserva, actualizada, err := s.service.Create(s.user.ID, &CreateReservationRequest{
		OfertaID: oferta.ID,
		ItemID:   item.ID,
		Cantidad: 3,
	})
	s.Require().NoError(err)

	s.Equal(models.ReservationStatusPendiente, reserva.Estado)
	s.Equal("Medialunas", reserva.ProductoNombre)
	s.InDelta(4.5*3, reserva.Total, 0.001)
	s.True(reserva.ExpiresAt.After(time.Now()))
	s.Equal(7, actualizada.UnidadesDisponibles)

	s.Equal(7, itemStock(s.T(), s.db, item.ID))

	var freshOferta models.Oferta
	s.Require().NoError(s.db.First(&freshOferta, oferta.ID).Error)
	s.Equal(7, freshOferta.UnidadesDisponibles)

	var freshComercio models.Comercio
	s.Require().NoError(s.db.First(&freshComercio, comercio.ID).Error)
	s.Equal(7, freshComercio.Disponibles)
}

// Two buyers racing for more units than exist between them. Exactly one
// reservation must win and the counter must land on the true remainder.
func (s *ReservationServiceTestSuite) TestConcurrentReservationsNeverOversell() {
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Medialunas", 24)

	otherUser := createTestUser(s.T(), s.db, "otro@example.com")

	var wg sync.WaitGroup
	results := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, results[0] = s.service.Create(s.user.ID, &CreateReservationRequest{
			OfertaID: oferta.ID, ItemID: item.ID, Cantidad: 20,
		})
	}()
	go func() {
		defer wg.Done()
		_, _, results[1] = s.service.Create(otherUser.ID, &CreateReservationRequest{
			OfertaID: oferta.ID, ItemID: item.ID, Cantidad: 20,
		})
	}()
	wg.Wait()

	successes, stockErrors := 0, 0
	for _, err := range results {
		var stockErr *InsufficientStockError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &stockErr):
			stockErrors++
			s.Equal(4, stockErr.Remaining)
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, successes)
	s.Equal(1, stockErrors)

	s.Equal(4, itemStock(s.T(), s.db, item.ID))

	var count int64
	s.db.Model(&models.Reserva{}).Count(&count)
	s.EqualValues(1, count)
}

func (s *ReservationServiceTestSuite) TestInsufficientStockLeavesCountersUntouched() {
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Facturas", 5)

	_, _, err := s.service.Create(s.user.ID, &CreateReservationRequest{
		OfertaID: oferta.ID,
		ItemID:   item.ID,
		Cantidad: 6,
	})

	var stockErr *InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Equal(5, stockErr.Remaining)

	s.Equal(5, itemStock(s.T(), s.db, item.ID))

	var count int64
	s.db.Model(&models.Reserva{}).Count(&count)
	s.EqualValues(0, count)
}

// Legacy clients send the product label instead of the item id. Accent and
// case differences must still match the snapshot.
func (s *ReservationServiceTestSuite) TestLegacyNameFallbackMatchesNormalized() {
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Café con Leche", 4)

	reserva, _, err := s.service.Create(s.user.ID, &CreateReservationRequest{
		OfertaID: oferta.ID,
		Producto: "  cafe CON leche ",
		Cantidad: 1,
	})
	s.Require().NoError(err)
	s.Equal(item.ID, reserva.ItemID)
	s.Equal(3, itemStock(s.T(), s.db, item.ID))
}

func (s *ReservationServiceTestSuite) TestCreateRejectsUnpublishedOffer() {
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Pan", 5)

	s.Require().NoError(s.db.Model(&models.Oferta{}).Where("id = ?", oferta.ID).
		UpdateColumn("estado", models.OfferStatusPausada).Error)

	_, _, err := s.service.Create(s.user.ID, &CreateReservationRequest{
		OfertaID: oferta.ID, ItemID: item.ID, Cantidad: 1,
	})
	s.ErrorIs(err, ErrOfferNotAvailable)
}

func (s *ReservationServiceTestSuite) TestCancelReturnsStockExactlyOnce() {
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Tartas", 10)

	reserva, _, err := s.service.Create(s.user.ID, &CreateReservationRequest{
		OfertaID: oferta.ID, ItemID: item.ID, Cantidad: 4,
	})
	s.Require().NoError(err)
	s.Equal(6, itemStock(s.T(), s.db, item.ID))

	cancelled, err := s.service.Cancel(reserva.ID, s.user.ID, false)
	s.Require().NoError(err)
	s.Equal(models.ReservationStatusCancelada, cancelled.Estado)
	s.True(cancelled.StockDevuelto)
	s.Equal(10, itemStock(s.T(), s.db, item.ID))

	// Second cancel must not credit the stock again.
	_, err = s.service.Cancel(reserva.ID, s.user.ID, false)
	s.ErrorIs(err, ErrInvalidTransition)
	s.Equal(10, itemStock(s.T(), s.db, item.ID))
}

func (s *ReservationServiceTestSuite) TestCancelRejectsForeignReservation() {
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Pan", 5)

	reserva, _, err := s.service.Create(s.user.ID, &CreateReservationRequest{
		OfertaID: oferta.ID, ItemID: item.ID, Cantidad: 1,
	})
	s.Require().NoError(err)

	stranger := createTestUser(s.T(), s.db, "ajeno@example.com")
	_, err = s.service.Cancel(reserva.ID, stranger.ID, false)
	s.ErrorIs(err, ErrReservationNotFound)
}

func (s *ReservationServiceTestSuite) TestMarkPickedUpRequiresPaidState() {
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Pan", 5)

	reserva, _, err := s.service.Create(s.user.ID, &CreateReservationRequest{
		OfertaID: oferta.ID, ItemID: item.ID, Cantidad: 1,
	})
	s.Require().NoError(err)

	// Still pending, pickup must be refused.
	_, err = s.service.MarkPickedUp(reserva.ID, owner.ID, false)
	s.ErrorIs(err, ErrInvalidTransition)

	s.Require().NoError(s.db.Model(&models.Reserva{}).Where("id = ?", reserva.ID).
		UpdateColumn("estado", models.ReservationStatusPagada).Error)

	picked, err := s.service.MarkPickedUp(reserva.ID, owner.ID, false)
	s.Require().NoError(err)
	s.Equal(models.ReservationStatusRetirada, picked.Estado)
}

func TestReservationServiceSuite(t *testing.T) {
	suite.Run(t, new(ReservationServiceTestSuite))
}
