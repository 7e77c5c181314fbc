// internal/services/services_test.go
package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/models"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

// newTestDB opens an in-memory database limited to one connection so
// concurrent test goroutines serialize the way a single Postgres row lock
// would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Comercio{},
		&models.Producto{},
		&models.Oferta{},
		&models.OfertaItem{},
		&models.Reserva{},
		&models.Resena{},
		&models.Tarjeta{},
		&models.AuditLog{},
		&models.AdminNotification{},
	)
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Reservation: config.ReservationConfig{TTLMinutes: 30},
		Payment: config.PaymentConfig{
			Currency: "ars",
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Nombre: "Test User",
		Email:  email,
		Role:   models.UserRoleUser,
		Status: models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Passw0rd123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createApprovedCommerce(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *models.Comercio {
	t.Helper()

	comercio := &models.Comercio{
		OwnerID:          ownerID,
		Nombre:           "Panadería López",
		Direccion:        "Av. Corrientes 1234",
		Categoria:        "panaderia",
		Telefono:         "+5411000000",
		AliasPago:        "panaderia.lopez.mp",
		EstadoAprobacion: models.ApprovalStatusAprobado,
		Activo:           true,
	}
	require.NoError(t, db.Create(comercio).Error)
	return comercio
}

// createPublishedOffer sets up a published offer with one item holding the
// given stock, keeping the offer and commerce aggregates in line.
func createPublishedOffer(t *testing.T, db *gorm.DB, comercio *models.Comercio, productName string, stock int) (*models.Oferta, *models.OfertaItem) {
	t.Helper()

	producto := &models.Producto{
		ComercioID:      comercio.ID,
		Nombre:          productName,
		Stock:           0,
		PrecioOriginal:  10.0,
		PrecioDescuento: 4.5,
	}
	require.NoError(t, db.Create(producto).Error)

	oferta := &models.Oferta{
		ComercioID:          comercio.ID,
		Titulo:              "Bolsa sorpresa",
		Estado:              models.OfferStatusPublicada,
		UnidadesDisponibles: stock,
	}
	require.NoError(t, db.Create(oferta).Error)

	item := &models.OfertaItem{
		OfertaID:            oferta.ID,
		ProductoID:          producto.ID,
		Nombre:              productName,
		NombreNormalizado:   utils.NormalizeName(productName),
		PrecioOriginal:      producto.PrecioOriginal,
		PrecioDescuento:     producto.PrecioDescuento,
		UnidadesDisponibles: stock,
	}
	require.NoError(t, db.Create(item).Error)

	require.NoError(t, db.Model(comercio).
		UpdateColumn("disponibles", gorm.Expr("disponibles + ?", stock)).Error)

	return oferta, item
}

func createPendingReservation(t *testing.T, db *gorm.DB, user *models.User, oferta *models.Oferta, item *models.OfertaItem, cantidad int, expiresAt time.Time) *models.Reserva {
	t.Helper()

	reserva := &models.Reserva{
		UsuarioID:      user.ID,
		OfertaID:       oferta.ID,
		ComercioID:     oferta.ComercioID,
		ItemID:         item.ID,
		ProductoID:     item.ProductoID,
		ProductoNombre: item.Nombre,
		Cantidad:       cantidad,
		PrecioUnitario: item.PrecioDescuento,
		Total:          item.PrecioDescuento * float64(cantidad),
		Estado:         models.ReservationStatusPendiente,
		ExpiresAt:      expiresAt,
	}
	require.NoError(t, db.Create(reserva).Error)
	return reserva
}

func newListParams() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Order: "desc"}
}

func itemStock(t *testing.T, db *gorm.DB, itemID uuid.UUID) int {
	t.Helper()

	var item models.OfertaItem
	require.NoError(t, db.First(&item, itemID).Error)
	return item.UnidadesDisponibles
}
