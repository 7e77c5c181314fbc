// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
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

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",

		// Commerce indexes
		"CREATE INDEX IF NOT EXISTS idx_comercios_owner ON comercios(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_comercios_estado_activo ON comercios(estado_aprobacion, activo)",
		"CREATE INDEX IF NOT EXISTS idx_comercios_categoria ON comercios(categoria)",
		"CREATE INDEX IF NOT EXISTS idx_productos_comercio ON productos(comercio_id)",

		// Offer indexes
		"CREATE INDEX IF NOT EXISTS idx_ofertas_comercio_estado ON ofertas(comercio_id, estado)",
		"CREATE INDEX IF NOT EXISTS idx_oferta_items_oferta ON oferta_items(oferta_id)",
		"CREATE INDEX IF NOT EXISTS idx_oferta_items_nombre ON oferta_items(nombre_normalizado)",

		// Reservation indexes: the sweeper scan and the per-user listing
		"CREATE INDEX IF NOT EXISTS idx_reservas_usuario ON reservas(usuario_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_reservas_sweeper ON reservas(estado, expires_at, stock_devuelto)",
		"CREATE INDEX IF NOT EXISTS idx_reservas_comercio_estado ON reservas(comercio_id, estado)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_resenas_comercio ON resenas(comercio_id, created_at DESC)",

		// Admin indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_admin_notifications_status ON admin_notifications(status, priority)",

		// Full-text search over the public catalog
		"CREATE INDEX IF NOT EXISTS idx_comercios_search ON comercios USING GIN(to_tsvector('spanish', nombre || ' ' || direccion))",
		"CREATE INDEX IF NOT EXISTS idx_ofertas_search ON ofertas USING GIN(to_tsvector('spanish', titulo))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Nombre: "Administrador",
			Email:  "admin@sobrazero.app",
			Role:   models.UserRoleAdmin,
			Status: models.UserStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
