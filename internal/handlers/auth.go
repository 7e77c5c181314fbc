// internal/handlers/auth.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sobrazero/sobrazero-backend/internal/i18n"
	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	h.setAuthCookie(c, resp.AccessToken, resp.ExpiresIn)
	utils.CreatedResponse(c, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		switch {
		case strings.Contains(err.Error(), "suspended"):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyUserSuspended))
		case strings.Contains(err.Error(), "banned"):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyUserSuspended))
		default:
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
		}
		return
	}

	h.setAuthCookie(c, resp.AccessToken, resp.ExpiresIn)
	utils.SuccessResponse(c, resp)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resp, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	h.setAuthCookie(c, resp.AccessToken, resp.ExpiresIn)
	utils.SuccessResponse(c, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyAuthLogoutSuccess)})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		utils.NotFoundResponse(c, "user")
		return
	}
	utils.SuccessResponse(c, user)
}

// MarkTutorial records which onboarding screens the user already saw.
func (h *AuthHandler) MarkTutorial(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req struct {
		Step string `json:"step" validate:"required,max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	user, err := h.authService.MarkTutorialStep(userID, req.Step)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, user)
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie("token", token, maxAge, "/", "", false, true)
}
