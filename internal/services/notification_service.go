// internal/services/notification_service.go
package services

import (
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/models"
)

// NotificationService writes admin inbox rows and sends transactional
// email. Email failures are logged, never surfaced to the triggering
// request.
type NotificationService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{db: db, cfg: cfg}
}

// NotifyAdmins drops a notification into the admin inbox.
func (s *NotificationService) NotifyAdmins(notifType, title, message, resourceType string, resourceID *uuid.UUID) error {
	notification := &models.AdminNotification{
		Type:                notifType,
		Title:               title,
		Message:             message,
		Priority:            "medium",
		Status:              "unread",
		RelatedResourceType: resourceType,
		RelatedResourceID:   resourceID,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create admin notification: %w", err)
	}
	return nil
}

// NotifyCommercePendingReview flags a new commerce for review.
func (s *NotificationService) NotifyCommercePendingReview(comercio *models.Comercio) {
	id := comercio.ID
	if err := s.NotifyAdmins(
		"comercio_pendiente",
		"Nuevo comercio pendiente de revisión",
		fmt.Sprintf("El comercio %q espera aprobación.", comercio.Nombre),
		"comercio", &id,
	); err != nil {
		logrus.WithError(err).Warn("Failed to notify admins about pending commerce")
	}
}

// SendApprovalEmail tells the owner the review outcome.
func (s *NotificationService) SendApprovalEmail(owner *models.User, comercio *models.Comercio, approved bool, motivo string) {
	var subject, body string
	if approved {
		subject = "Tu comercio fue aprobado"
		body = fmt.Sprintf("Hola %s,\r\n\r\nTu comercio %q fue aprobado. Ya podés activarlo y publicar ofertas.\r\n",
			owner.Nombre, comercio.Nombre)
	} else {
		subject = "Tu comercio fue rechazado"
		body = fmt.Sprintf("Hola %s,\r\n\r\nTu comercio %q fue rechazado.\r\nMotivo: %s\r\n",
			owner.Nombre, comercio.Nombre, motivo)
	}
	s.sendEmail(owner.Email, subject, body)
}

// SendReservationConfirmedEmail tells the user their payment landed.
func (s *NotificationService) SendReservationConfirmedEmail(user *models.User, reserva *models.Reserva) {
	body := fmt.Sprintf("Hola %s,\r\n\r\nTu reserva de %d x %s quedó confirmada. Pasá a retirarla antes de que cierre el comercio.\r\n",
		user.Nombre, reserva.Cantidad, reserva.ProductoNombre)
	s.sendEmail(user.Email, "Reserva confirmada", body)
}

func (s *NotificationService) sendEmail(to, subject, body string) {
	if s.cfg.Email.SMTPUsername == "" {
		logrus.WithField("to", to).Debug("SMTP not configured, skipping email")
		return
	}

	addr := s.cfg.Email.SMTPHost + ":" + s.cfg.Email.SMTPPort
	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.cfg.Email.FromName, s.cfg.Email.FromEmail, to, subject, body)

	if err := smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, []byte(msg)); err != nil {
		logrus.WithError(err).WithField("to", to).Warn("Failed to send email")
	}
}
