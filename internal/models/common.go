// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the ID client-side. There is no database-side
// default, so the schema migrates unchanged on drivers without a uuid
// function.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

// ApprovalStatus is the admin-controlled gate deciding whether a commerce
// is publicly visible.
type ApprovalStatus string

const (
	ApprovalStatusPendienteRevision ApprovalStatus = "pendiente_revision"
	ApprovalStatusAprobado          ApprovalStatus = "aprobado"
	ApprovalStatusRechazado         ApprovalStatus = "rechazado"
)

type ReservationStatus string

const (
	ReservationStatusPendiente ReservationStatus = "pendiente"
	ReservationStatusPagada    ReservationStatus = "pagada"
	ReservationStatusCancelada ReservationStatus = "cancelada"
	ReservationStatusExpirada  ReservationStatus = "expirada"
	ReservationStatusRetirada  ReservationStatus = "retirada"
)

type OfferStatus string

const (
	OfferStatusBorrador  OfferStatus = "borrador"
	OfferStatusPublicada OfferStatus = "publicada"
	OfferStatusPausada   OfferStatus = "pausada"
)

type PaymentMode string

const (
	PaymentModeSandbox    PaymentMode = "sandbox"
	PaymentModeProduction PaymentMode = "production"
)
