// internal/models/commerce.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Comercio is a merchant account listing surplus-food offers. It only
// becomes publicly visible once an admin approves it and the owner
// activates it.
type Comercio struct {
	BaseModel
	OwnerID          uuid.UUID      `json:"ownerId" gorm:"type:uuid;not null;index"`
	Nombre           string         `json:"nombre" gorm:"size:150;not null;index"`
	Direccion        string         `json:"direccion" gorm:"size:255;not null"`
	Latitud          *float64       `json:"latitud,omitempty" gorm:"type:decimal(10,7)"`
	Longitud         *float64       `json:"longitud,omitempty" gorm:"type:decimal(10,7)"`
	Categoria        string         `json:"categoria" gorm:"size:50;index"`
	Telefono         string         `json:"telefono" gorm:"size:30"`
	EstadoAprobacion ApprovalStatus `json:"estadoAprobacion" gorm:"type:varchar(30);default:'pendiente_revision';index"`
	MotivoRechazo    string         `json:"motivoRechazo,omitempty" gorm:"type:text"`
	Activo           bool           `json:"activo" gorm:"default:false;index"`
	AliasPago        string         `json:"aliasPago" gorm:"size:100"`
	Imagenes         pq.StringArray `json:"imagenes" gorm:"type:text[]"`
	// Disponibles aggregates the available units across the active offers
	// of this commerce. Kept consistent by updating it in the same
	// transaction as every item-level stock mutation.
	Disponibles int     `json:"disponibles" gorm:"default:0"`
	Rating      float64 `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount int64   `json:"reviewCount" gorm:"default:0"`

	// Relationships
	Owner     User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Productos []Producto `json:"productos,omitempty" gorm:"foreignKey:ComercioID"`
	Ofertas   []Oferta   `json:"ofertas,omitempty" gorm:"foreignKey:ComercioID"`
}

// Producto is a surplus item a commerce can bundle into offers.
type Producto struct {
	BaseModel
	ComercioID      uuid.UUID `json:"comercioId" gorm:"type:uuid;not null;index"`
	Nombre          string    `json:"nombre" gorm:"size:150;not null"`
	Stock           int       `json:"stock" gorm:"default:0"`
	PesoGramos      *int      `json:"pesoGramos,omitempty"`
	PrecioOriginal  float64   `json:"precioOriginal" gorm:"type:decimal(10,2);not null"`
	PrecioDescuento float64   `json:"precioDescuento" gorm:"type:decimal(10,2);not null"`

	Comercio *Comercio `json:"comercio,omitempty" gorm:"foreignKey:ComercioID"`
}
