// internal/services/commerce_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type CommerceServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CommerceService
	owner   *models.User
}

func (s *CommerceServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	// nil cache and nil notifier exercise the degraded wiring
	s.service = NewCommerceService(s.db, nil, nil)
	s.owner = createTestUser(s.T(), s.db, "dueno@example.com")
}

func (s *CommerceServiceTestSuite) TestCreateStartsPendingAndInactive() {
	comercio, err := s.service.Create(s.owner.ID, &CreateCommerceRequest{
		Nombre:    "Verdulería Sol",
		Direccion: "Calle Falsa 123",
		Categoria: "verduleria",
		Telefono:  "+5411000000",
	})
	s.Require().NoError(err)
	s.Equal(models.ApprovalStatusPendienteRevision, comercio.EstadoAprobacion)
	s.False(comercio.Activo)
}

func (s *CommerceServiceTestSuite) TestActivateRequiresApproval() {
	comercio, err := s.service.Create(s.owner.ID, &CreateCommerceRequest{
		Nombre:    "Verdulería Sol",
		Direccion: "Calle Falsa 123",
		Categoria: "verduleria",
		Telefono:  "+5411000000",
		AliasPago: "verduleria.sol",
	})
	s.Require().NoError(err)

	_, err = s.service.Activate(comercio.ID, s.owner.ID, false)
	s.ErrorContains(err, "not approved")
}

func (s *CommerceServiceTestSuite) TestActivateRequiresProductAndAlias() {
	comercio, err := s.service.Create(s.owner.ID, &CreateCommerceRequest{
		Nombre:    "Verdulería Sol",
		Direccion: "Calle Falsa 123",
		Categoria: "verduleria",
		Telefono:  "+5411000000",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.Comercio{}).Where("id = ?", comercio.ID).
		UpdateColumn("estado_aprobacion", models.ApprovalStatusAprobado).Error)

	// Approved but no products yet.
	_, err = s.service.Activate(comercio.ID, s.owner.ID, false)
	s.ErrorContains(err, "at least one product")

	_, err = s.service.AddProduct(comercio.ID, s.owner.ID, false, &ProductRequest{
		Nombre:          "Bolsón de verdura",
		Stock:           10,
		PrecioOriginal:  8.0,
		PrecioDescuento: 3.0,
	})
	s.Require().NoError(err)

	// Has a product but no payout alias.
	_, err = s.service.Activate(comercio.ID, s.owner.ID, false)
	s.ErrorContains(err, "payout alias")

	_, err = s.service.Update(comercio.ID, s.owner.ID, false, &UpdateCommerceRequest{
		AliasPago: "verduleria.sol",
	})
	s.Require().NoError(err)

	activated, err := s.service.Activate(comercio.ID, s.owner.ID, false)
	s.Require().NoError(err)
	s.True(activated.Activo)
}

func (s *CommerceServiceTestSuite) TestActivateRejectsNonOwner() {
	comercio := createApprovedCommerce(s.T(), s.db, s.owner.ID)
	stranger := createTestUser(s.T(), s.db, "ajeno@example.com")

	_, err := s.service.Activate(comercio.ID, stranger.ID, false)
	s.ErrorContains(err, "unauthorized")
}

func (s *CommerceServiceTestSuite) TestAddProductRejectsDiscountAboveOriginal() {
	comercio := createApprovedCommerce(s.T(), s.db, s.owner.ID)

	_, err := s.service.AddProduct(comercio.ID, s.owner.ID, false, &ProductRequest{
		Nombre:          "Pan",
		Stock:           5,
		PrecioOriginal:  3.0,
		PrecioDescuento: 5.0,
	})
	s.ErrorContains(err, "cannot exceed original price")
}

func (s *CommerceServiceTestSuite) TestListPublicHidesUnapprovedAndInactive() {
	visible := createApprovedCommerce(s.T(), s.db, s.owner.ID)

	hiddenOwner := createTestUser(s.T(), s.db, "otro@example.com")
	pending, err := s.service.Create(hiddenOwner.ID, &CreateCommerceRequest{
		Nombre:    "Pendiente SRL",
		Direccion: "Otra calle 1",
		Categoria: "panaderia",
		Telefono:  "+5411000001",
	})
	s.Require().NoError(err)

	comercios, total, err := s.service.ListPublic(utils.PaginationParams{Page: 1, Limit: 20, Order: "desc"})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(comercios, 1)
	s.Equal(visible.ID, comercios[0].ID)
	s.NotEqual(pending.ID, comercios[0].ID)
}

func TestCommerceServiceSuite(t *testing.T) {
	suite.Run(t, new(CommerceServiceTestSuite))
}
