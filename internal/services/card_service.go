// internal/services/card_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
)

var ErrCardNotFound = errors.New("card not found")

type CardService struct {
	db *gorm.DB
}

// CreateCardRequest carries provider-tokenized card data. The raw number
// never reaches this API.
type CreateCardRequest struct {
	Token     string `json:"token" validate:"required"`
	Marca     string `json:"marca,omitempty" validate:"max=30"`
	Ultimos4  string `json:"ultimos4" validate:"required,len=4,numeric"`
	VenceMes  int    `json:"venceMes" validate:"required,min=1,max=12"`
	VenceAnio int    `json:"venceAnio" validate:"required"`
	Titular   string `json:"titular,omitempty" validate:"max=100"`
	Preferida bool   `json:"preferida"`
}

func NewCardService(db *gorm.DB) *CardService {
	return &CardService{db: db}
}

func (s *CardService) Create(userID uuid.UUID, req *CreateCardRequest) (*models.Tarjeta, error) {
	if req.VenceAnio < time.Now().Year() {
		return nil, errors.New("card is expired")
	}

	tarjeta := &models.Tarjeta{
		UsuarioID: userID,
		Token:     req.Token,
		Marca:     req.Marca,
		Ultimos4:  req.Ultimos4,
		VenceMes:  req.VenceMes,
		VenceAnio: req.VenceAnio,
		Titular:   req.Titular,
		Preferida: req.Preferida,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.Preferida {
			if err := tx.Model(&models.Tarjeta{}).Where("usuario_id = ?", userID).
				UpdateColumn("preferida", false).Error; err != nil {
				return fmt.Errorf("failed to clear preferred card: %w", err)
			}
		}
		return tx.Create(tarjeta).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save card: %w", err)
	}
	return tarjeta, nil
}

func (s *CardService) List(userID uuid.UUID) ([]models.Tarjeta, error) {
	var tarjetas []models.Tarjeta
	if err := s.db.Where("usuario_id = ?", userID).
		Order("preferida DESC, created_at DESC").Find(&tarjetas).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cards: %w", err)
	}
	return tarjetas, nil
}

func (s *CardService) SetPreferred(id, userID uuid.UUID) (*models.Tarjeta, error) {
	var tarjeta models.Tarjeta
	if err := s.db.Where("id = ? AND usuario_id = ?", id, userID).First(&tarjeta).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tarjeta{}).Where("usuario_id = ?", userID).
			UpdateColumn("preferida", false).Error; err != nil {
			return err
		}
		return tx.Model(&tarjeta).UpdateColumn("preferida", true).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set preferred card: %w", err)
	}

	tarjeta.Preferida = true
	return &tarjeta, nil
}

func (s *CardService) Delete(id, userID uuid.UUID) error {
	res := s.db.Where("id = ? AND usuario_id = ?", id, userID).Delete(&models.Tarjeta{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete card: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}
