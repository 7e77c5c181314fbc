// internal/services/sweeper_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
)

type SweeperServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *SweeperService
}

func (s *SweeperServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewSweeperService(s.db)
}

func (s *SweeperServiceTestSuite) TestSweepExpiresStaleAndReturnsStock() {
	user := createTestUser(s.T(), s.db, "cliente@example.com")
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Medialunas", 10)

	// Simulate a reservation whose deadline already passed. Its units were
	// taken out of the counters when it was created.
	s.db.Model(&models.OfertaItem{}).Where("id = ?", item.ID).
		UpdateColumn("unidades_disponibles", gorm.Expr("unidades_disponibles - ?", 3))
	stale := createPendingReservation(s.T(), s.db, user, oferta, item, 3,
		time.Now().Add(-time.Hour))

	// A fresh reservation must survive the sweep.
	s.db.Model(&models.OfertaItem{}).Where("id = ?", item.ID).
		UpdateColumn("unidades_disponibles", gorm.Expr("unidades_disponibles - ?", 2))
	fresh := createPendingReservation(s.T(), s.db, user, oferta, item, 2,
		time.Now().Add(time.Hour))

	summary, err := s.service.Sweep(context.Background())
	s.Require().NoError(err)
	s.Equal(1, summary.Scanned)
	s.Equal(1, summary.Expired)
	s.Equal(0, summary.Errored)

	var expired models.Reserva
	s.Require().NoError(s.db.First(&expired, stale.ID).Error)
	s.Equal(models.ReservationStatusExpirada, expired.Estado)
	s.True(expired.StockDevuelto)

	var pending models.Reserva
	s.Require().NoError(s.db.First(&pending, fresh.ID).Error)
	s.Equal(models.ReservationStatusPendiente, pending.Estado)

	// 10 - 3 - 2 + 3 back from the expired one.
	s.Equal(8, itemStock(s.T(), s.db, item.ID))
}

// A second sweep over the same data must not credit units twice.
func (s *SweeperServiceTestSuite) TestDoubleSweepDoesNotDoubleCredit() {
	user := createTestUser(s.T(), s.db, "cliente@example.com")
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Pan", 10)

	s.db.Model(&models.OfertaItem{}).Where("id = ?", item.ID).
		UpdateColumn("unidades_disponibles", gorm.Expr("unidades_disponibles - ?", 4))
	createPendingReservation(s.T(), s.db, user, oferta, item, 4,
		time.Now().Add(-time.Minute))

	first, err := s.service.Sweep(context.Background())
	s.Require().NoError(err)
	s.Equal(1, first.Expired)
	s.Equal(10, itemStock(s.T(), s.db, item.ID))

	second, err := s.service.Sweep(context.Background())
	s.Require().NoError(err)
	s.Equal(0, second.Scanned)
	s.Equal(0, second.Expired)
	s.Equal(10, itemStock(s.T(), s.db, item.ID))
}

func (s *SweeperServiceTestSuite) TestSweepIgnoresPaidAndCancelled() {
	user := createTestUser(s.T(), s.db, "cliente@example.com")
	owner := createTestUser(s.T(), s.db, "dueno@example.com")
	comercio := createApprovedCommerce(s.T(), s.db, owner.ID)
	oferta, item := createPublishedOffer(s.T(), s.db, comercio, "Pan", 10)

	paid := createPendingReservation(s.T(), s.db, user, oferta, item, 2,
		time.Now().Add(-time.Hour))
	s.Require().NoError(s.db.Model(&models.Reserva{}).Where("id = ?", paid.ID).
		UpdateColumn("estado", models.ReservationStatusPagada).Error)

	summary, err := s.service.Sweep(context.Background())
	s.Require().NoError(err)
	s.Equal(0, summary.Scanned)

	var reserva models.Reserva
	s.Require().NoError(s.db.First(&reserva, paid.ID).Error)
	s.Equal(models.ReservationStatusPagada, reserva.Estado)
	s.False(reserva.StockDevuelto)
}

func TestSweeperServiceSuite(t *testing.T) {
	suite.Run(t, new(SweeperServiceTestSuite))
}
