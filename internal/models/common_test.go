// internal/models/common_test.go
package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The schema has to migrate on the pure-Go sqlite driver, which rejects the
// unparenthesized function defaults Postgres accepts. Ids come from the
// BeforeCreate hook, not from the database.
func TestAutoMigrateWorksOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	models := []interface{}{
		&User{}, &Comercio{}, &Producto{}, &Oferta{}, &OfertaItem{},
		&Reserva{}, &Resena{}, &Tarjeta{}, &AuditLog{}, &AdminNotification{},
	}
	for _, model := range models {
		require.NoError(t, db.AutoMigrate(model), "migrating %T", model)
	}

	user := &User{Nombre: "Cliente", Email: "cliente@example.com"}
	require.NoError(t, user.SetPassword("Passw0rd!"))
	require.NoError(t, db.Create(user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)
}
