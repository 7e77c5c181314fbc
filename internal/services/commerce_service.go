// internal/services/commerce_service.go
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

const comerciosCachePrefix = "catalog:comercios:"

type CommerceService struct {
	db                  *gorm.DB
	cache               *cache.Cache
	notificationService *NotificationService
}

type CreateCommerceRequest struct {
	Nombre    string   `json:"nombre" validate:"required,min=2,max=150"`
	Direccion string   `json:"direccion" validate:"required,max=255"`
	Latitud   *float64 `json:"latitud,omitempty"`
	Longitud  *float64 `json:"longitud,omitempty"`
	Categoria string   `json:"categoria" validate:"required,max=50"`
	Telefono  string   `json:"telefono" validate:"required,max=30"`
	AliasPago string   `json:"aliasPago,omitempty" validate:"omitempty,payout_alias"`
}

type UpdateCommerceRequest struct {
	Nombre    string   `json:"nombre,omitempty" validate:"omitempty,min=2,max=150"`
	Direccion string   `json:"direccion,omitempty" validate:"omitempty,max=255"`
	Latitud   *float64 `json:"latitud,omitempty"`
	Longitud  *float64 `json:"longitud,omitempty"`
	Categoria string   `json:"categoria,omitempty" validate:"omitempty,max=50"`
	Telefono  string   `json:"telefono,omitempty" validate:"omitempty,max=30"`
	AliasPago string   `json:"aliasPago,omitempty" validate:"omitempty,payout_alias"`
}

type ProductRequest struct {
	Nombre          string  `json:"nombre" validate:"required,min=2,max=150"`
	Stock           int     `json:"stock" validate:"min=0"`
	PesoGramos      *int    `json:"pesoGramos,omitempty"`
	PrecioOriginal  float64 `json:"precioOriginal" validate:"required,gt=0"`
	PrecioDescuento float64 `json:"precioDescuento" validate:"required,gt=0"`
}

func NewCommerceService(db *gorm.DB, catalogCache *cache.Cache, notificationService *NotificationService) *CommerceService {
	return &CommerceService{
		db:                  db,
		cache:               catalogCache,
		notificationService: notificationService,
	}
}

func (s *CommerceService) Create(ownerID uuid.UUID, req *CreateCommerceRequest) (*models.Comercio, error) {
	comercio := &models.Comercio{
		OwnerID:          ownerID,
		Nombre:           req.Nombre,
		Direccion:        req.Direccion,
		Latitud:          req.Latitud,
		Longitud:         req.Longitud,
		Categoria:        req.Categoria,
		Telefono:         req.Telefono,
		AliasPago:        req.AliasPago,
		EstadoAprobacion: models.ApprovalStatusPendienteRevision,
		Activo:           false,
	}

	if err := s.db.Create(comercio).Error; err != nil {
		return nil, fmt.Errorf("failed to create commerce: %w", err)
	}

	if s.notificationService != nil {
		go s.notificationService.NotifyCommercePendingReview(comercio)
	}

	return comercio, nil
}

func (s *CommerceService) Get(id uuid.UUID) (*models.Comercio, error) {
	var comercio models.Comercio
	if err := s.db.Preload("Productos").First(&comercio, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("commerce not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &comercio, nil
}

// GetOwned loads a commerce and verifies ownership (admins bypass).
func (s *CommerceService) GetOwned(id, userID uuid.UUID, isAdmin bool) (*models.Comercio, error) {
	comercio, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && comercio.OwnerID != userID {
		return nil, errors.New("unauthorized to manage this commerce")
	}
	return comercio, nil
}

func (s *CommerceService) Update(id, userID uuid.UUID, isAdmin bool, req *UpdateCommerceRequest) (*models.Comercio, error) {
	comercio, err := s.GetOwned(id, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Nombre != "" {
		updates["nombre"] = req.Nombre
	}
	if req.Direccion != "" {
		updates["direccion"] = req.Direccion
	}
	if req.Latitud != nil {
		updates["latitud"] = *req.Latitud
	}
	if req.Longitud != nil {
		updates["longitud"] = *req.Longitud
	}
	if req.Categoria != "" {
		updates["categoria"] = req.Categoria
	}
	if req.Telefono != "" {
		updates["telefono"] = req.Telefono
	}
	if req.AliasPago != "" {
		updates["alias_pago"] = req.AliasPago
	}

	if err := s.db.Model(comercio).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update commerce: %w", err)
	}

	s.invalidateCatalog()
	return s.Get(id)
}

// ListPublic returns approved, active commerces. Results are served from
// the catalog cache when one is configured.
func (s *CommerceService) ListPublic(params utils.PaginationParams) ([]models.Comercio, int64, error) {
	cacheKey := fmt.Sprintf("%sp%d:l%d:s%s:c%s", comerciosCachePrefix,
		params.Page, params.Limit, params.Search, params.Categoria)

	var cached struct {
		Comercios []models.Comercio `json:"comercios"`
		Total     int64             `json:"total"`
	}
	if s.cache.Get(context.Background(), cacheKey, &cached) {
		return cached.Comercios, cached.Total, nil
	}

	query := s.db.Model(&models.Comercio{}).
		Where("estado_aprobacion = ? AND activo = ?", models.ApprovalStatusAprobado, true).
		Preload("Productos")

	if params.Categoria != "" {
		query = query.Where("categoria = ?", params.Categoria)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(nombre) LIKE ? OR LOWER(direccion) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commerces: %w", err)
	}

	allowedSortFields := []string{"created_at", "nombre", "rating", "disponibles"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var comercios []models.Comercio
	if err := query.Find(&comercios).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch commerces: %w", err)
	}

	cached.Comercios = comercios
	cached.Total = total
	s.cache.Set(context.Background(), cacheKey, cached)

	return comercios, total, nil
}

// ListAll is the legacy unauthenticated read-all path, plus the admin view.
func (s *CommerceService) ListAll(params utils.PaginationParams) ([]models.Comercio, int64, error) {
	query := s.db.Model(&models.Comercio{}).Preload("Productos")

	if params.Categoria != "" {
		query = query.Where("categoria = ?", params.Categoria)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commerces: %w", err)
	}

	allowedSortFields := []string{"created_at", "nombre", "estado_aprobacion"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var comercios []models.Comercio
	if err := query.Find(&comercios).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch commerces: %w", err)
	}

	return comercios, total, nil
}

func (s *CommerceService) ListByOwner(ownerID uuid.UUID) ([]models.Comercio, error) {
	var comercios []models.Comercio
	if err := s.db.Where("owner_id = ?", ownerID).Preload("Productos").
		Order("created_at DESC").Find(&comercios).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch owned commerces: %w", err)
	}
	return comercios, nil
}

// Activate flips the commerce to publicly visible. A commerce cannot go
// active without admin approval, at least one product and a payout alias.
func (s *CommerceService) Activate(id, userID uuid.UUID, isAdmin bool) (*models.Comercio, error) {
	comercio, err := s.GetOwned(id, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if comercio.EstadoAprobacion != models.ApprovalStatusAprobado {
		return nil, errors.New("commerce is not approved")
	}
	if len(comercio.Productos) == 0 {
		return nil, errors.New("commerce needs at least one product to be activated")
	}
	if strings.TrimSpace(comercio.AliasPago) == "" {
		return nil, errors.New("commerce needs a payout alias to be activated")
	}

	if err := s.db.Model(comercio).Update("activo", true).Error; err != nil {
		return nil, fmt.Errorf("failed to activate commerce: %w", err)
	}

	s.invalidateCatalog()
	comercio.Activo = true
	return comercio, nil
}

func (s *CommerceService) Deactivate(id, userID uuid.UUID, isAdmin bool) (*models.Comercio, error) {
	comercio, err := s.GetOwned(id, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(comercio).Update("activo", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate commerce: %w", err)
	}

	s.invalidateCatalog()
	comercio.Activo = false
	return comercio, nil
}

func (s *CommerceService) AddProduct(comercioID, userID uuid.UUID, isAdmin bool, req *ProductRequest) (*models.Producto, error) {
	comercio, err := s.GetOwned(comercioID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if req.PrecioDescuento > req.PrecioOriginal {
		return nil, errors.New("discounted price cannot exceed original price")
	}

	producto := &models.Producto{
		ComercioID:      comercio.ID,
		Nombre:          req.Nombre,
		Stock:           req.Stock,
		PesoGramos:      req.PesoGramos,
		PrecioOriginal:  req.PrecioOriginal,
		PrecioDescuento: req.PrecioDescuento,
	}

	if err := s.db.Create(producto).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateCatalog()
	return producto, nil
}

func (s *CommerceService) UpdateProduct(comercioID, productoID, userID uuid.UUID, isAdmin bool, req *ProductRequest) (*models.Producto, error) {
	if _, err := s.GetOwned(comercioID, userID, isAdmin); err != nil {
		return nil, err
	}

	var producto models.Producto
	if err := s.db.Where("id = ? AND comercio_id = ?", productoID, comercioID).First(&producto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.PrecioDescuento > req.PrecioOriginal {
		return nil, errors.New("discounted price cannot exceed original price")
	}

	updates := map[string]interface{}{
		"nombre":           req.Nombre,
		"stock":            req.Stock,
		"precio_original":  req.PrecioOriginal,
		"precio_descuento": req.PrecioDescuento,
	}
	if req.PesoGramos != nil {
		updates["peso_gramos"] = *req.PesoGramos
	}

	if err := s.db.Model(&producto).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateCatalog()
	return &producto, nil
}

func (s *CommerceService) RemoveProduct(comercioID, productoID, userID uuid.UUID, isAdmin bool) error {
	if _, err := s.GetOwned(comercioID, userID, isAdmin); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND comercio_id = ?", productoID, comercioID).Delete(&models.Producto{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("product not found")
	}

	s.invalidateCatalog()
	return nil
}

func (s *CommerceService) AddImage(comercioID, userID uuid.UUID, isAdmin bool, url string) (*models.Comercio, error) {
	comercio, err := s.GetOwned(comercioID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	comercio.Imagenes = append(comercio.Imagenes, url)
	if err := s.db.Model(comercio).Update("imagenes", comercio.Imagenes).Error; err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return comercio, nil
}

func (s *CommerceService) invalidateCatalog() {
	s.cache.InvalidatePrefix(context.Background(), comerciosCachePrefix)
}
