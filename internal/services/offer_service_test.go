// internal/services/offer_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
)

type OfferServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *OfferService
	owner    *models.User
	comercio *models.Comercio
	producto *models.Producto
}

func (s *OfferServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewOfferService(s.db, nil)

	s.owner = createTestUser(s.T(), s.db, "dueno@example.com")
	s.comercio = createApprovedCommerce(s.T(), s.db, s.owner.ID)
	s.producto = &models.Producto{
		ComercioID:      s.comercio.ID,
		Nombre:          "Medialunas",
		Stock:           30,
		PrecioOriginal:  10.0,
		PrecioDescuento: 4.5,
	}
	s.Require().NoError(s.db.Create(s.producto).Error)
}

func (s *OfferServiceTestSuite) TestCreateMovesStockIntoOffer() {
	oferta, err := s.service.Create(s.owner.ID, false, &CreateOfferRequest{
		ComercioID: s.comercio.ID,
		Titulo:     "Bolsa sorpresa de la tarde",
		Items:      []OfferItemRequest{{ProductoID: s.producto.ID, Unidades: 24}},
	})
	s.Require().NoError(err)

	s.Equal(models.OfferStatusBorrador, oferta.Estado)
	s.Equal(24, oferta.UnidadesDisponibles)
	s.Require().Len(oferta.Items, 1)
	s.Equal("medialunas", oferta.Items[0].NombreNormalizado)

	var producto models.Producto
	s.Require().NoError(s.db.First(&producto, s.producto.ID).Error)
	s.Equal(6, producto.Stock)

	var comercio models.Comercio
	s.Require().NoError(s.db.First(&comercio, s.comercio.ID).Error)
	s.Equal(24, comercio.Disponibles)
}

func (s *OfferServiceTestSuite) TestCreateRejectsOverdraft() {
	_, err := s.service.Create(s.owner.ID, false, &CreateOfferRequest{
		ComercioID: s.comercio.ID,
		Titulo:     "Demasiado grande",
		Items:      []OfferItemRequest{{ProductoID: s.producto.ID, Unidades: 31}},
	})
	s.ErrorContains(err, "insufficient stock")

	// Rollback must leave the product untouched.
	var producto models.Producto
	s.Require().NoError(s.db.First(&producto, s.producto.ID).Error)
	s.Equal(30, producto.Stock)
}

func (s *OfferServiceTestSuite) TestCreateRejectsForeignProduct() {
	otherOwner := createTestUser(s.T(), s.db, "otro@example.com")
	otherComercio := createApprovedCommerce(s.T(), s.db, otherOwner.ID)

	_, err := s.service.Create(otherOwner.ID, false, &CreateOfferRequest{
		ComercioID: otherComercio.ID,
		Titulo:     "Producto ajeno",
		Items:      []OfferItemRequest{{ProductoID: s.producto.ID, Unidades: 1}},
	})
	s.ErrorContains(err, "product not found")
}

func (s *OfferServiceTestSuite) TestDeleteDraftReturnsStock() {
	oferta, err := s.service.Create(s.owner.ID, false, &CreateOfferRequest{
		ComercioID: s.comercio.ID,
		Titulo:     "Bolsa sorpresa",
		Items:      []OfferItemRequest{{ProductoID: s.producto.ID, Unidades: 10}},
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(oferta.ID, s.owner.ID, false))

	var producto models.Producto
	s.Require().NoError(s.db.First(&producto, s.producto.ID).Error)
	s.Equal(30, producto.Stock)

	var comercio models.Comercio
	s.Require().NoError(s.db.First(&comercio, s.comercio.ID).Error)
	s.Equal(0, comercio.Disponibles)
}

func (s *OfferServiceTestSuite) TestDeleteRefusesPublishedOffer() {
	oferta, err := s.service.Create(s.owner.ID, false, &CreateOfferRequest{
		ComercioID: s.comercio.ID,
		Titulo:     "Bolsa sorpresa",
		Items:      []OfferItemRequest{{ProductoID: s.producto.ID, Unidades: 10}},
	})
	s.Require().NoError(err)

	_, err = s.service.Update(oferta.ID, s.owner.ID, false, &UpdateOfferRequest{
		Estado: models.OfferStatusPublicada,
	})
	s.Require().NoError(err)

	s.ErrorContains(s.service.Delete(oferta.ID, s.owner.ID, false), "published")
}

func (s *OfferServiceTestSuite) TestListPublicOnlyShowsPublishedWithStock() {
	published, err := s.service.Create(s.owner.ID, false, &CreateOfferRequest{
		ComercioID: s.comercio.ID,
		Titulo:     "Publicada",
		Items:      []OfferItemRequest{{ProductoID: s.producto.ID, Unidades: 5}},
	})
	s.Require().NoError(err)
	_, err = s.service.Update(published.ID, s.owner.ID, false, &UpdateOfferRequest{
		Estado: models.OfferStatusPublicada,
	})
	s.Require().NoError(err)

	_, err = s.service.Create(s.owner.ID, false, &CreateOfferRequest{
		ComercioID: s.comercio.ID,
		Titulo:     "Borrador",
		Items:      []OfferItemRequest{{ProductoID: s.producto.ID, Unidades: 5}},
	})
	s.Require().NoError(err)

	ofertas, total, err := s.service.ListPublic(newListParams())
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(ofertas, 1)
	s.Equal("Publicada", ofertas[0].Titulo)
}

func TestOfferServiceSuite(t *testing.T) {
	suite.Run(t, new(OfferServiceTestSuite))
}
