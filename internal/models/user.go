// internal/models/user.go
package models

import (
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Nombre          string         `json:"nombre" gorm:"size:100;not null"`
	Email           string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string         `json:"-" gorm:"size:255;not null"`
	Role            UserRole       `json:"role" gorm:"type:varchar(20);default:'user';index"`
	Status          UserStatus     `json:"status" gorm:"type:varchar(20);default:'active'"`
	Telefono        string         `json:"telefono,omitempty" gorm:"size:30"`
	Latitud         *float64       `json:"latitud,omitempty" gorm:"type:decimal(10,7)"`
	Longitud        *float64       `json:"longitud,omitempty" gorm:"type:decimal(10,7)"`
	TutorialVisto   pq.StringArray `json:"tutorialVisto" gorm:"type:text[]"`
	ProfileData     JSONB          `json:"profile_data,omitempty" gorm:"type:jsonb"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time     `json:"last_login_at,omitempty"`

	// Relationships
	Comercios []Comercio `json:"comercios,omitempty" gorm:"foreignKey:OwnerID"`
	Reservas  []Reserva  `json:"reservas,omitempty" gorm:"foreignKey:UsuarioID"`
	Tarjetas  []Tarjeta  `json:"tarjetas,omitempty" gorm:"foreignKey:UsuarioID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
