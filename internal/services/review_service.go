// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

var (
	ErrReviewNotAllowed = errors.New("user has no completed reservation with this commerce")
	ErrReviewExists     = errors.New("user already reviewed this commerce")
)

type ReviewService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	ComercioID uuid.UUID `json:"comercioId" validate:"required"`
	Rating     int       `json:"rating" validate:"required,min=1,max=5"`
	Comentario string    `json:"comentario,omitempty" validate:"max=500"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// Create records a review and recomputes the commerce aggregate in the same
// transaction. Only users with at least one qualifying reservation at the
// commerce may review it, once each; the database unique index backs up the
// duplicate check against races. The verified flag is granted only when a
// paid or picked-up reservation exists, a pending one merely opens the gate.
func (s *ReviewService) Create(userID uuid.UUID, req *CreateReviewRequest) (*models.Resena, error) {
	var comercio models.Comercio
	if err := s.db.First(&comercio, req.ComercioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("commerce not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var qualifying int64
	if err := s.db.Model(&models.Reserva{}).
		Where("usuario_id = ? AND comercio_id = ? AND estado IN ?",
			userID, req.ComercioID,
			[]models.ReservationStatus{
				models.ReservationStatusPendiente,
				models.ReservationStatusPagada,
				models.ReservationStatusRetirada,
			}).
		Count(&qualifying).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if qualifying == 0 {
		return nil, ErrReviewNotAllowed
	}

	var completed int64
	if err := s.db.Model(&models.Reserva{}).
		Where("usuario_id = ? AND comercio_id = ? AND estado IN ?",
			userID, req.ComercioID,
			[]models.ReservationStatus{models.ReservationStatusPagada, models.ReservationStatusRetirada}).
		Count(&completed).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.Resena
	if err := s.db.Where("usuario_id = ? AND comercio_id = ?", userID, req.ComercioID).
		First(&existing).Error; err == nil {
		return nil, ErrReviewExists
	}

	resena := &models.Resena{
		UsuarioID:        userID,
		ComercioID:       req.ComercioID,
		Rating:           req.Rating,
		Comentario:       req.Comentario,
		CompraVerificada: completed > 0,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(resena).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrReviewExists
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		return recomputeRating(tx, req.ComercioID)
	})
	if err != nil {
		return nil, err
	}
	return resena, nil
}

type UpdateReviewRequest struct {
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comentario string `json:"comentario,omitempty" validate:"max=500"`
}

// Update edits the caller's own review and refreshes the aggregate.
func (s *ReviewService) Update(id, userID uuid.UUID, req *UpdateReviewRequest) (*models.Resena, error) {
	var resena models.Resena
	if err := s.db.First(&resena, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("review not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if resena.UsuarioID != userID {
		return nil, errors.New("review not found")
	}

	resena.Rating = req.Rating
	resena.Comentario = req.Comentario

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&resena).Updates(map[string]interface{}{
			"rating":     req.Rating,
			"comentario": req.Comentario,
		}).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		return recomputeRating(tx, resena.ComercioID)
	})
	if err != nil {
		return nil, err
	}
	return &resena, nil
}

// Delete removes the caller's review (admins can remove any) and refreshes
// the aggregate.
func (s *ReviewService) Delete(id, userID uuid.UUID, isAdmin bool) error {
	var resena models.Resena
	if err := s.db.First(&resena, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("review not found")
		}
		return fmt.Errorf("database error: %w", err)
	}
	if !isAdmin && resena.UsuarioID != userID {
		return errors.New("review not found")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&resena).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return recomputeRating(tx, resena.ComercioID)
	})
}

func (s *ReviewService) ListByCommerce(comercioID uuid.UUID, params utils.PaginationParams) ([]models.Resena, int64, error) {
	query := s.db.Model(&models.Resena{}).Where("comercio_id = ?", comercioID).
		Preload("Usuario")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	allowedSortFields := []string{"created_at", "rating"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var resenas []models.Resena
	if err := query.Find(&resenas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return resenas, total, nil
}

// recomputeRating refreshes the denormalized rating columns from the
// review rows inside the caller's transaction.
func recomputeRating(tx *gorm.DB, comercioID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	if err := tx.Model(&models.Resena{}).
		Where("comercio_id = ?", comercioID).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate rating: %w", err)
	}

	if err := tx.Model(&models.Comercio{}).Where("id = ?", comercioID).
		UpdateColumns(map[string]interface{}{
			"rating":       agg.Avg,
			"review_count": agg.Count,
		}).Error; err != nil {
		return fmt.Errorf("failed to update commerce rating: %w", err)
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
