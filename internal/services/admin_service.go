// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type AdminService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type DashboardStats struct {
	TotalUsers           int64   `json:"total_users"`
	TotalComercios       int64   `json:"total_comercios"`
	PendingComercios     int64   `json:"pending_comercios"`
	ActiveComercios      int64   `json:"active_comercios"`
	PublishedOfertas     int64   `json:"published_ofertas"`
	ReservasHoy          int64   `json:"reservas_hoy"`
	ReservasPendientes   int64   `json:"reservas_pendientes"`
	ReservasPagadas      int64   `json:"reservas_pagadas"`
	IngresosTotales      float64 `json:"ingresos_totales"`
	UnidadesRecuperadas  int64   `json:"unidades_recuperadas"`
}

type RejectCommerceRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5,max=500"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active suspended banned"`
}

func NewAdminService(db *gorm.DB, notificationService *NotificationService) *AdminService {
	return &AdminService{db: db, notificationService: notificationService}
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.Comercio{}).Count(&stats.TotalComercios)
	s.db.Model(&models.Comercio{}).
		Where("estado_aprobacion = ?", models.ApprovalStatusPendienteRevision).
		Count(&stats.PendingComercios)
	s.db.Model(&models.Comercio{}).
		Where("estado_aprobacion = ? AND activo = ?", models.ApprovalStatusAprobado, true).
		Count(&stats.ActiveComercios)
	s.db.Model(&models.Oferta{}).
		Where("estado = ?", models.OfferStatusPublicada).
		Count(&stats.PublishedOfertas)

	today := time.Now().Truncate(24 * time.Hour)
	s.db.Model(&models.Reserva{}).Where("created_at >= ?", today).Count(&stats.ReservasHoy)
	s.db.Model(&models.Reserva{}).
		Where("estado = ?", models.ReservationStatusPendiente).
		Count(&stats.ReservasPendientes)
	s.db.Model(&models.Reserva{}).
		Where("estado IN ?", []models.ReservationStatus{
			models.ReservationStatusPagada, models.ReservationStatusRetirada,
		}).
		Count(&stats.ReservasPagadas)

	var totals struct {
		Ingresos float64
		Unidades int64
	}
	if err := s.db.Model(&models.Reserva{}).
		Where("estado IN ?", []models.ReservationStatus{
			models.ReservationStatusPagada, models.ReservationStatusRetirada,
		}).
		Select("COALESCE(SUM(total), 0) as ingresos, COALESCE(SUM(cantidad), 0) as unidades").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate reservations: %w", err)
	}
	stats.IngresosTotales = totals.Ingresos
	stats.UnidadesRecuperadas = totals.Unidades

	return stats, nil
}

// ListPendingComercios is the review queue, oldest first.
func (s *AdminService) ListPendingComercios(params utils.PaginationParams) ([]models.Comercio, int64, error) {
	query := s.db.Model(&models.Comercio{}).
		Where("estado_aprobacion = ?", models.ApprovalStatusPendienteRevision).
		Preload("Owner")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending commerces: %w", err)
	}

	query = query.Order("created_at ASC")
	query = utils.ApplyPagination(query, params)

	var comercios []models.Comercio
	if err := query.Find(&comercios).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch pending commerces: %w", err)
	}
	return comercios, total, nil
}

// ApproveCommerce moves a commerce out of review. Approval does not make
// it public; the owner still has to activate it.
func (s *AdminService) ApproveCommerce(id uuid.UUID) (*models.Comercio, error) {
	comercio, err := s.loadPending(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(comercio).UpdateColumns(map[string]interface{}{
		"estado_aprobacion": models.ApprovalStatusAprobado,
		"motivo_rechazo":    "",
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to approve commerce: %w", err)
	}
	comercio.EstadoAprobacion = models.ApprovalStatusAprobado
	comercio.MotivoRechazo = ""

	s.notifyOwner(comercio, true, "")
	return comercio, nil
}

func (s *AdminService) RejectCommerce(id uuid.UUID, motivo string) (*models.Comercio, error) {
	comercio, err := s.loadPending(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(comercio).UpdateColumns(map[string]interface{}{
		"estado_aprobacion": models.ApprovalStatusRechazado,
		"motivo_rechazo":    motivo,
		"activo":            false,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to reject commerce: %w", err)
	}
	comercio.EstadoAprobacion = models.ApprovalStatusRechazado
	comercio.MotivoRechazo = motivo

	s.notifyOwner(comercio, false, motivo)
	return comercio, nil
}

func (s *AdminService) loadPending(id uuid.UUID) (*models.Comercio, error) {
	var comercio models.Comercio
	if err := s.db.First(&comercio, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("commerce not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if comercio.EstadoAprobacion != models.ApprovalStatusPendienteRevision {
		return nil, errors.New("commerce is not pending review")
	}
	return &comercio, nil
}

func (s *AdminService) notifyOwner(comercio *models.Comercio, approved bool, motivo string) {
	if s.notificationService == nil {
		return
	}
	var owner models.User
	if err := s.db.First(&owner, comercio.OwnerID).Error; err != nil {
		return
	}
	go s.notificationService.SendApprovalEmail(&owner, comercio, approved, motivo)
}

func (s *AdminService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("nombre ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "nombre", "email", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

func (s *AdminService) UpdateUserStatus(id uuid.UUID, status models.UserStatus) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.IsAdmin() {
		return nil, errors.New("cannot change status of an admin account")
	}

	if err := s.db.Model(&user).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.Status = status
	return &user, nil
}

func (s *AdminService) ListNotifications(params utils.PaginationParams) ([]models.AdminNotification, int64, error) {
	query := s.db.Model(&models.AdminNotification{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var notifications []models.AdminNotification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *AdminService) MarkNotificationRead(id uuid.UUID) error {
	now := time.Now()
	res := s.db.Model(&models.AdminNotification{}).
		Where("id = ? AND status = ?", id, "unread").
		UpdateColumns(map[string]interface{}{
			"status":  "read",
			"read_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("notification not found or already read")
	}
	return nil
}

func (s *AdminService) ListAuditLogs(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}
