// internal/services/reservation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrOfferNotAvailable   = errors.New("offer is not available")
	ErrItemNotFound        = errors.New("offer item not found")
	ErrInvalidTransition   = errors.New("invalid reservation state transition")
)

// InsufficientStockError carries the remaining units so handlers can tell
// the client how many are actually left.
type InsufficientStockError struct {
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, %d units remaining", e.Remaining)
}

type ReservationService struct {
	db  *gorm.DB
	cfg *config.Config
}

type CreateReservationRequest struct {
	OfertaID uuid.UUID `json:"ofertaId" validate:"required"`
	// ItemID selects an item of the offer directly. Older clients send
	// ProductoNombre (or its shorter alias Producto) instead; it is matched
	// against the normalized snapshot name as a fallback.
	ItemID         uuid.UUID `json:"itemId,omitempty"`
	ProductoNombre string    `json:"productoNombre,omitempty"`
	Producto       string    `json:"producto,omitempty"`
	Cantidad       int       `json:"cantidad" validate:"required,min=1"`
}

func NewReservationService(db *gorm.DB, cfg *config.Config) *ReservationService {
	return &ReservationService{db: db, cfg: cfg}
}

// Create claims units of an offer item for the user and returns the
// reservation together with the offer as it looks after the decrement. The
// decrement is a single conditional UPDATE guarded by the current stock, so
// two concurrent reservations can never take the counter below zero no
// matter how the reads interleave.
func (s *ReservationService) Create(userID uuid.UUID, req *CreateReservationRequest) (*models.Reserva, *models.Oferta, error) {
	var reserva *models.Reserva
	var updated models.Oferta

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var oferta models.Oferta
		if err := tx.First(&oferta, req.OfertaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotAvailable
			}
			return fmt.Errorf("database error: %w", err)
		}
		if oferta.Estado != models.OfferStatusPublicada {
			return ErrOfferNotAvailable
		}

		item, err := s.resolveItem(tx, &oferta, req)
		if err != nil {
			return err
		}

		// Conditional decrement: only succeeds while enough units remain.
		res := tx.Model(&models.OfertaItem{}).
			Where("id = ? AND unidades_disponibles >= ?", item.ID, req.Cantidad).
			UpdateColumn("unidades_disponibles", gorm.Expr("unidades_disponibles - ?", req.Cantidad))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement item stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var remaining int
			tx.Model(&models.OfertaItem{}).Where("id = ?", item.ID).
				Select("unidades_disponibles").Scan(&remaining)
			return &InsufficientStockError{Remaining: remaining}
		}

		if err := tx.Model(&models.Oferta{}).Where("id = ?", oferta.ID).
			UpdateColumn("unidades_disponibles", gorm.Expr("unidades_disponibles - ?", req.Cantidad)).Error; err != nil {
			return fmt.Errorf("failed to update offer units: %w", err)
		}
		if err := tx.Model(&models.Comercio{}).Where("id = ?", oferta.ComercioID).
			UpdateColumn("disponibles", gorm.Expr("disponibles - ?", req.Cantidad)).Error; err != nil {
			return fmt.Errorf("failed to update commerce units: %w", err)
		}

		reserva = &models.Reserva{
			UsuarioID:      userID,
			OfertaID:       oferta.ID,
			ComercioID:     oferta.ComercioID,
			ItemID:         item.ID,
			ProductoID:     item.ProductoID,
			ProductoNombre: item.Nombre,
			Cantidad:       req.Cantidad,
			PrecioUnitario: item.PrecioDescuento,
			Total:          item.PrecioDescuento * float64(req.Cantidad),
			Estado:         models.ReservationStatusPendiente,
			ExpiresAt:      time.Now().Add(time.Duration(s.cfg.Reservation.TTLMinutes) * time.Minute),
		}
		if err := tx.Create(reserva).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		if err := tx.Preload("Items").First(&updated, oferta.ID).Error; err != nil {
			return fmt.Errorf("failed to reload offer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return reserva, &updated, nil
}

// resolveItem finds the offer item by id, or by normalized name for
// legacy clients that only know the product label.
func (s *ReservationService) resolveItem(tx *gorm.DB, oferta *models.Oferta, req *CreateReservationRequest) (*models.OfertaItem, error) {
	var item models.OfertaItem

	if req.ItemID != uuid.Nil {
		if err := tx.Where("id = ? AND oferta_id = ?", req.ItemID, oferta.ID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &item, nil
	}

	nombre := req.ProductoNombre
	if nombre == "" {
		nombre = req.Producto
	}
	if nombre == "" {
		return nil, ErrItemNotFound
	}
	normalized := utils.NormalizeName(nombre)
	if err := tx.Where("oferta_id = ? AND nombre_normalizado = ?", oferta.ID, normalized).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &item, nil
}

func (s *ReservationService) Get(id uuid.UUID) (*models.Reserva, error) {
	var reserva models.Reserva
	if err := s.db.Preload("Oferta").Preload("Comercio").First(&reserva, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &reserva, nil
}

// GetForUser loads a reservation visible to the caller: its owner, the
// commerce owner or an admin.
func (s *ReservationService) GetForUser(id, userID uuid.UUID, isAdmin bool) (*models.Reserva, error) {
	reserva, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if isAdmin || reserva.UsuarioID == userID {
		return reserva, nil
	}

	var comercio models.Comercio
	if err := s.db.First(&comercio, reserva.ComercioID).Error; err == nil && comercio.OwnerID == userID {
		return reserva, nil
	}
	return nil, ErrReservationNotFound
}

func (s *ReservationService) ListByUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Reserva, int64, error) {
	query := s.db.Model(&models.Reserva{}).Where("usuario_id = ?", userID).
		Preload("Comercio")
	return s.list(query, params)
}

// ListByCommerce is restricted to the commerce owner and admins.
func (s *ReservationService) ListByCommerce(comercioID, userID uuid.UUID, isAdmin bool, params utils.PaginationParams) ([]models.Reserva, int64, error) {
	if !isAdmin {
		var comercio models.Comercio
		if err := s.db.First(&comercio, comercioID).Error; err != nil {
			return nil, 0, ErrReservationNotFound
		}
		if comercio.OwnerID != userID {
			return nil, 0, ErrReservationNotFound
		}
	}

	query := s.db.Model(&models.Reserva{}).Where("comercio_id = ?", comercioID).
		Preload("Usuario")
	return s.list(query, params)
}

func (s *ReservationService) list(query *gorm.DB, params utils.PaginationParams) ([]models.Reserva, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	allowedSortFields := []string{"created_at", "estado", "expires_at", "total"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var reservas []models.Reserva
	if err := query.Find(&reservas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	return reservas, total, nil
}

// Cancel moves a pending reservation to `cancelada` and returns its units.
// The state transition and the stock-return flag flip in one conditional
// UPDATE, so a racing sweeper and a cancelling user cannot both credit the
// stock back.
func (s *ReservationService) Cancel(id, userID uuid.UUID, isAdmin bool) (*models.Reserva, error) {
	reserva, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && reserva.UsuarioID != userID {
		return nil, ErrReservationNotFound
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Reserva{}).
			Where("id = ? AND estado = ? AND stock_devuelto = ?", reserva.ID, models.ReservationStatusPendiente, false).
			UpdateColumns(map[string]interface{}{
				"estado":         models.ReservationStatusCancelada,
				"stock_devuelto": true,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel reservation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return returnStock(tx, reserva)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// MarkPickedUp confirms the user collected a paid reservation. Only the
// commerce owner or an admin may confirm.
func (s *ReservationService) MarkPickedUp(id, userID uuid.UUID, isAdmin bool) (*models.Reserva, error) {
	reserva, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !isAdmin {
		var comercio models.Comercio
		if err := s.db.First(&comercio, reserva.ComercioID).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if comercio.OwnerID != userID {
			return nil, ErrReservationNotFound
		}
	}

	res := s.db.Model(&models.Reserva{}).
		Where("id = ? AND estado = ?", reserva.ID, models.ReservationStatusPagada).
		UpdateColumn("estado", models.ReservationStatusRetirada)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark reservation picked up: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}
	return s.Get(id)
}

// returnStock credits a reservation's units back to its item, offer and
// commerce counters. Callers must already hold the stock_devuelto guard.
func returnStock(tx *gorm.DB, reserva *models.Reserva) error {
	if err := tx.Model(&models.OfertaItem{}).Where("id = ?", reserva.ItemID).
		UpdateColumn("unidades_disponibles", gorm.Expr("unidades_disponibles + ?", reserva.Cantidad)).Error; err != nil {
		return fmt.Errorf("failed to return item stock: %w", err)
	}
	if err := tx.Model(&models.Oferta{}).Where("id = ?", reserva.OfertaID).
		UpdateColumn("unidades_disponibles", gorm.Expr("unidades_disponibles + ?", reserva.Cantidad)).Error; err != nil {
		return fmt.Errorf("failed to return offer units: %w", err)
	}
	if err := tx.Model(&models.Comercio{}).Where("id = ?", reserva.ComercioID).
		UpdateColumn("disponibles", gorm.Expr("disponibles + ?", reserva.Cantidad)).Error; err != nil {
		return fmt.Errorf("failed to return commerce units: %w", err)
	}
	return nil
}
