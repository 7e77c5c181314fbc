// internal/services/admin_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
)

type AdminServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AdminService
	owner   *models.User
}

func (s *AdminServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewAdminService(s.db, nil)
	s.owner = createTestUser(s.T(), s.db, "dueno@example.com")
}

func (s *AdminServiceTestSuite) createPendingCommerce() *models.Comercio {
	comercio := &models.Comercio{
		OwnerID:          s.owner.ID,
		Nombre:           "Pendiente SRL",
		Direccion:        "Calle 1",
		Categoria:        "panaderia",
		Telefono:         "+5411000000",
		EstadoAprobacion: models.ApprovalStatusPendienteRevision,
	}
	s.Require().NoError(s.db.Create(comercio).Error)
	return comercio
}

func (s *AdminServiceTestSuite) TestApproveLeavesCommerceInactive() {
	comercio := s.createPendingCommerce()

	approved, err := s.service.ApproveCommerce(comercio.ID)
	s.Require().NoError(err)
	s.Equal(models.ApprovalStatusAprobado, approved.EstadoAprobacion)

	// Approval alone never publishes; the owner activates explicitly.
	var fresh models.Comercio
	s.Require().NoError(s.db.First(&fresh, comercio.ID).Error)
	s.False(fresh.Activo)
}

func (s *AdminServiceTestSuite) TestApproveRejectsAlreadyReviewed() {
	comercio := s.createPendingCommerce()

	_, err := s.service.ApproveCommerce(comercio.ID)
	s.Require().NoError(err)

	_, err = s.service.ApproveCommerce(comercio.ID)
	s.ErrorContains(err, "not pending")
}

func (s *AdminServiceTestSuite) TestRejectStoresMotivo() {
	comercio := s.createPendingCommerce()

	rejected, err := s.service.RejectCommerce(comercio.ID, "Dirección inexistente")
	s.Require().NoError(err)
	s.Equal(models.ApprovalStatusRechazado, rejected.EstadoAprobacion)
	s.Equal("Dirección inexistente", rejected.MotivoRechazo)
}

func (s *AdminServiceTestSuite) TestUpdateUserStatusProtectsAdmins() {
	admin := createTestUser(s.T(), s.db, "admin@example.com")
	s.Require().NoError(s.db.Model(admin).Update("role", models.UserRoleAdmin).Error)

	_, err := s.service.UpdateUserStatus(admin.ID, models.UserStatusSuspended)
	s.ErrorContains(err, "admin account")

	suspended, err := s.service.UpdateUserStatus(s.owner.ID, models.UserStatusSuspended)
	s.Require().NoError(err)
	s.Equal(models.UserStatusSuspended, suspended.Status)
}

func (s *AdminServiceTestSuite) TestPendingQueueOldestFirst() {
	first := s.createPendingCommerce()
	second := &models.Comercio{
		OwnerID:          s.owner.ID,
		Nombre:           "Segundo SRL",
		Direccion:        "Calle 2",
		Categoria:        "verduleria",
		Telefono:         "+5411000001",
		EstadoAprobacion: models.ApprovalStatusPendienteRevision,
	}
	s.Require().NoError(s.db.Create(second).Error)

	comercios, total, err := s.service.ListPendingComercios(newListParams())
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Require().Len(comercios, 2)
	s.Equal(first.ID, comercios[0].ID)
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
