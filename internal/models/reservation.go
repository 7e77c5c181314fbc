// internal/models/reservation.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Reserva is a user's claim on quantity of a product within an offer,
// pending payment or pickup.
//
// Lifecycle: created `pendiente` with an expiry deadline; the payment
// webhook moves it to `pagada`; the sweeper moves stale ones to `expirada`
// and returns stock (guarded by StockDevuelto); pickup confirmation moves a
// paid reservation to `retirada`; the owner can cancel a pending one.
type Reserva struct {
	BaseModel
	UsuarioID      uuid.UUID         `json:"usuarioId" gorm:"type:uuid;not null;index"`
	OfertaID       uuid.UUID         `json:"ofertaId" gorm:"type:uuid;not null;index"`
	ComercioID     uuid.UUID         `json:"comercioId" gorm:"type:uuid;not null;index"`
	ItemID         uuid.UUID         `json:"itemId" gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID         `json:"productoId" gorm:"type:uuid;not null"`
	ProductoNombre string            `json:"productoNombre" gorm:"size:150;not null"`
	Cantidad       int               `json:"cantidad" gorm:"not null"`
	PrecioUnitario float64           `json:"precioUnitario" gorm:"type:decimal(10,2);not null"`
	Total          float64           `json:"total" gorm:"type:decimal(10,2);not null"`
	Estado         ReservationStatus `json:"estado" gorm:"type:varchar(20);default:'pendiente';index"`
	ExpiresAt      time.Time         `json:"expiresAt" gorm:"index"`
	StockDevuelto  bool              `json:"stockDevuelto" gorm:"default:false;index"`
	PagoReferencia string            `json:"pagoReferencia,omitempty" gorm:"size:255"`
	PagadaAt       *time.Time        `json:"pagadaAt,omitempty"`

	// Relationships
	Usuario  *User     `json:"usuario,omitempty" gorm:"foreignKey:UsuarioID"`
	Oferta   *Oferta   `json:"oferta,omitempty" gorm:"foreignKey:OfertaID"`
	Comercio *Comercio `json:"comercio,omitempty" gorm:"foreignKey:ComercioID"`
}
