// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

// Resena holds one user's rating of a commerce. One review per
// (user, commerce) pair, enforced by the compound unique index.
type Resena struct {
	BaseModel
	UsuarioID        uuid.UUID `json:"usuarioId" gorm:"type:uuid;not null;uniqueIndex:idx_resenas_usuario_comercio"`
	ComercioID       uuid.UUID `json:"comercioId" gorm:"type:uuid;not null;uniqueIndex:idx_resenas_usuario_comercio;index"`
	Rating           int       `json:"rating" gorm:"not null"`
	Comentario       string    `json:"comentario" gorm:"size:500"`
	CompraVerificada bool      `json:"compraVerificada" gorm:"default:false"`

	Usuario  *User     `json:"usuario,omitempty" gorm:"foreignKey:UsuarioID"`
	Comercio *Comercio `json:"comercio,omitempty" gorm:"foreignKey:ComercioID"`
}
