// internal/services/offer_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/cache"
	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

const ofertasCachePrefix = "catalog:ofertas:"

type OfferService struct {
	db    *gorm.DB
	cache *cache.Cache
}

type OfferItemRequest struct {
	ProductoID uuid.UUID `json:"productoId" validate:"required"`
	Unidades   int       `json:"unidades" validate:"required,min=1"`
}

type CreateOfferRequest struct {
	ComercioID uuid.UUID          `json:"comercioId" validate:"required"`
	Titulo     string             `json:"titulo" validate:"required,min=3,max=200"`
	Items      []OfferItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateOfferRequest struct {
	Titulo string             `json:"titulo,omitempty" validate:"omitempty,min=3,max=200"`
	Estado models.OfferStatus `json:"estado,omitempty"`
}

func NewOfferService(db *gorm.DB, catalogCache *cache.Cache) *OfferService {
	return &OfferService{db: db, cache: catalogCache}
}

// Create builds an offer from commerce products. Each item snapshots the
// product name and prices and moves the requested units out of the
// product's base stock, all inside one transaction so the offer aggregate
// and the item counters cannot diverge.
func (s *OfferService) Create(userID uuid.UUID, isAdmin bool, req *CreateOfferRequest) (*models.Oferta, error) {
	var comercio models.Comercio
	if err := s.db.First(&comercio, req.ComercioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("commerce not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !isAdmin && comercio.OwnerID != userID {
		return nil, errors.New("unauthorized to manage this commerce")
	}

	oferta := &models.Oferta{
		ComercioID: comercio.ID,
		Titulo:     req.Titulo,
		Estado:     models.OfferStatusBorrador,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(oferta).Error; err != nil {
			return fmt.Errorf("failed to create offer: %w", err)
		}

		total := 0
		for _, itemReq := range req.Items {
			var producto models.Producto
			if err := tx.Where("id = ? AND comercio_id = ?", itemReq.ProductoID, comercio.ID).
				First(&producto).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.New("product not found")
				}
				return fmt.Errorf("database error: %w", err)
			}

			// Move units from base stock into the offer
			res := tx.Model(&models.Producto{}).
				Where("id = ? AND stock >= ?", producto.ID, itemReq.Unidades).
				UpdateColumn("stock", gorm.Expr("stock - ?", itemReq.Unidades))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve product stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("insufficient stock for product %s", producto.Nombre)
			}

			item := &models.OfertaItem{
				OfertaID:            oferta.ID,
				ProductoID:          producto.ID,
				Nombre:              producto.Nombre,
				NombreNormalizado:   utils.NormalizeName(producto.Nombre),
				PrecioOriginal:      producto.PrecioOriginal,
				PrecioDescuento:     producto.PrecioDescuento,
				UnidadesDisponibles: itemReq.Unidades,
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to create offer item: %w", err)
			}
			total += itemReq.Unidades
		}

		if err := tx.Model(oferta).UpdateColumn("unidades_disponibles", total).Error; err != nil {
			return fmt.Errorf("failed to set offer units: %w", err)
		}
		if err := tx.Model(&models.Comercio{}).Where("id = ?", comercio.ID).
			UpdateColumn("disponibles", gorm.Expr("disponibles + ?", total)).Error; err != nil {
			return fmt.Errorf("failed to update commerce units: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog()
	return s.Get(oferta.ID)
}

func (s *OfferService) Get(id uuid.UUID) (*models.Oferta, error) {
	var oferta models.Oferta
	if err := s.db.Preload("Items").Preload("Comercio").First(&oferta, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("offer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &oferta, nil
}

func (s *OfferService) Update(id, userID uuid.UUID, isAdmin bool, req *UpdateOfferRequest) (*models.Oferta, error) {
	oferta, err := s.getOwned(id, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Titulo != "" {
		updates["titulo"] = req.Titulo
	}
	if req.Estado != "" {
		switch req.Estado {
		case models.OfferStatusBorrador, models.OfferStatusPublicada, models.OfferStatusPausada:
			updates["estado"] = req.Estado
		default:
			return nil, errors.New("invalid offer state")
		}
	}

	if err := s.db.Model(oferta).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	s.invalidateCatalog()
	return s.Get(id)
}

// ListPublic returns published offers with remaining stock, cached.
func (s *OfferService) ListPublic(params utils.PaginationParams) ([]models.Oferta, int64, error) {
	cacheKey := fmt.Sprintf("%sp%d:l%d:s%s", ofertasCachePrefix, params.Page, params.Limit, params.Search)

	var cached struct {
		Ofertas []models.Oferta `json:"ofertas"`
		Total   int64           `json:"total"`
	}
	if s.cache.Get(context.Background(), cacheKey, &cached) {
		return cached.Ofertas, cached.Total, nil
	}

	query := s.db.Model(&models.Oferta{}).
		Where("estado = ? AND unidades_disponibles > 0", models.OfferStatusPublicada).
		Preload("Items").Preload("Comercio")

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(titulo) LIKE ?", searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	allowedSortFields := []string{"created_at", "titulo", "unidades_disponibles"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var ofertas []models.Oferta
	if err := query.Find(&ofertas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch offers: %w", err)
	}

	cached.Ofertas = ofertas
	cached.Total = total
	s.cache.Set(context.Background(), cacheKey, cached)

	return ofertas, total, nil
}

func (s *OfferService) ListByCommerce(comercioID uuid.UUID) ([]models.Oferta, error) {
	var ofertas []models.Oferta
	if err := s.db.Where("comercio_id = ?", comercioID).Preload("Items").
		Order("created_at DESC").Find(&ofertas).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch commerce offers: %w", err)
	}
	return ofertas, nil
}

// Delete removes a draft offer and returns its remaining units to the
// products' base stock.
func (s *OfferService) Delete(id, userID uuid.UUID, isAdmin bool) error {
	oferta, err := s.getOwned(id, userID, isAdmin)
	if err != nil {
		return err
	}
	if oferta.Estado == models.OfferStatusPublicada {
		return errors.New("cannot delete a published offer, pause it first")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var items []models.OfertaItem
		if err := tx.Where("oferta_id = ?", oferta.ID).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load offer items: %w", err)
		}

		returned := 0
		for _, item := range items {
			if item.UnidadesDisponibles > 0 {
				if err := tx.Model(&models.Producto{}).Where("id = ?", item.ProductoID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.UnidadesDisponibles)).Error; err != nil {
					return fmt.Errorf("failed to return product stock: %w", err)
				}
				returned += item.UnidadesDisponibles
			}
		}

		if returned > 0 {
			if err := tx.Model(&models.Comercio{}).Where("id = ?", oferta.ComercioID).
				UpdateColumn("disponibles", gorm.Expr("disponibles - ?", returned)).Error; err != nil {
				return fmt.Errorf("failed to update commerce units: %w", err)
			}
		}

		if err := tx.Where("oferta_id = ?", oferta.ID).Delete(&models.OfertaItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete offer items: %w", err)
		}
		return tx.Delete(oferta).Error
	})
	if err != nil {
		return err
	}

	s.invalidateCatalog()
	return nil
}

func (s *OfferService) getOwned(id, userID uuid.UUID, isAdmin bool) (*models.Oferta, error) {
	oferta, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return oferta, nil
	}

	var comercio models.Comercio
	if err := s.db.First(&comercio, oferta.ComercioID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if comercio.OwnerID != userID {
		return nil, errors.New("unauthorized to manage this offer")
	}
	return oferta, nil
}

func (s *OfferService) invalidateCatalog() {
	s.cache.InvalidatePrefix(context.Background(), ofertasCachePrefix)
}
