// internal/models/card.go
package models

import (
	"github.com/google/uuid"
)

// Tarjeta stores tokenized card metadata only. The PAN never reaches this
// service; the provider token is what gets charged.
type Tarjeta struct {
	BaseModel
	UsuarioID  uuid.UUID `json:"usuarioId" gorm:"type:uuid;not null;index"`
	Token      string    `json:"-" gorm:"size:255;not null"`
	Marca      string    `json:"marca" gorm:"size:30"`
	Ultimos4   string    `json:"ultimos4" gorm:"size:4;not null"`
	VenceMes   int       `json:"venceMes" gorm:"not null"`
	VenceAnio  int       `json:"venceAnio" gorm:"not null"`
	Titular    string    `json:"titular" gorm:"size:100"`
	Preferida  bool      `json:"preferida" gorm:"default:false"`

	Usuario *User `json:"-" gorm:"foreignKey:UsuarioID"`
}
