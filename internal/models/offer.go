// internal/models/offer.go
package models

import (
	"github.com/google/uuid"
)

// Oferta is a sellable bundle of discounted products tied to one commerce.
type Oferta struct {
	BaseModel
	ComercioID uuid.UUID   `json:"comercioId" gorm:"type:uuid;not null;index"`
	Titulo     string      `json:"titulo" gorm:"size:200;not null"`
	Estado     OfferStatus `json:"estado" gorm:"type:varchar(20);default:'borrador';index"`
	// UnidadesDisponibles mirrors the sum of the item-level counters. Both
	// sides are always mutated inside the same transaction.
	UnidadesDisponibles int `json:"unidadesDisponibles" gorm:"default:0"`

	Comercio *Comercio    `json:"comercio,omitempty" gorm:"foreignKey:ComercioID"`
	Items    []OfertaItem `json:"items,omitempty" gorm:"foreignKey:OfertaID"`
}

// OfertaItem snapshots a product into an offer with its own stock counter.
// Reservations reference items by id; the product name is only a display
// snapshot and a legacy lookup key.
type OfertaItem struct {
	BaseModel
	OfertaID            uuid.UUID `json:"ofertaId" gorm:"type:uuid;not null;index"`
	ProductoID          uuid.UUID `json:"productoId" gorm:"type:uuid;not null;index"`
	Nombre              string    `json:"nombre" gorm:"size:150;not null"`
	NombreNormalizado   string    `json:"-" gorm:"size:150;index"`
	PrecioOriginal      float64   `json:"precioOriginal" gorm:"type:decimal(10,2);not null"`
	PrecioDescuento     float64   `json:"precioDescuento" gorm:"type:decimal(10,2);not null"`
	UnidadesDisponibles int       `json:"unidadesDisponibles" gorm:"default:0"`

	Oferta *Oferta `json:"-" gorm:"foreignKey:OfertaID"`
}
