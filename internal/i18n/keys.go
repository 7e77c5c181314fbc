// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// User Management
	KeyUserNotFound  = "user.not_found"
	KeyUserSuspended = "user.suspended"

	// Commerces
	KeyComercioCreated       = "comercio.created"
	KeyComercioUpdated       = "comercio.updated"
	KeyComercioNotFound      = "comercio.not_found"
	KeyComercioApproved      = "comercio.approved"
	KeyComercioRejected      = "comercio.rejected"
	KeyComercioPendingReview = "comercio.pending_review"
	KeyComercioActivated     = "comercio.activated"
	KeyComercioCannotActivate = "comercio.cannot_activate"

	// Offers
	KeyOfertaCreated  = "oferta.created"
	KeyOfertaUpdated  = "oferta.updated"
	KeyOfertaNotFound = "oferta.not_found"

	// Reservations
	KeyReservaCreated           = "reserva.created"
	KeyReservaNotFound          = "reserva.not_found"
	KeyReservaProductoNotFound  = "reserva.producto_not_found"
	KeyReservaInsufficientStock = "reserva.insufficient_stock"
	KeyReservaCancelled         = "reserva.cancelled"
	KeyReservaPickedUp          = "reserva.picked_up"

	// Payments
	KeyPaymentSuccess = "payment.success"
	KeyPaymentFailed  = "payment.failed"

	// Reviews
	KeyResenaCreated       = "resena.created"
	KeyResenaUpdated       = "resena.updated"
	KeyResenaNotFound      = "resena.not_found"
	KeyResenaDuplicate     = "resena.duplicate"
	KeyResenaNotEligible   = "resena.not_eligible"

	// Cards
	KeyTarjetaCreated  = "tarjeta.created"
	KeyTarjetaDeleted  = "tarjeta.deleted"
	KeyTarjetaNotFound = "tarjeta.not_found"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"
)
