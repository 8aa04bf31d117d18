package handler

import (
	"net/http"

	"stockroom/internal/dto"
	"stockroom/internal/middleware"
	"stockroom/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc    service.AuthService
	cookie CookieSettings
}

func NewAuthHandler(svc service.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SignupRequest true "Account"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} apierror.Envelope
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req, "Signup failed") {
		return
	}
	resp, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cookie.set(c, resp.Token)
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} apierror.Envelope
// @Failure 429 {object} apierror.Envelope
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, "Login failed") {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cookie.set(c, resp.Token)
	c.JSON(http.StatusOK, resp)
}

// Logout clears the cookie whether or not the token could be deleted.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.clear(c)
	if err := h.svc.Logout(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Logout successful"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ProfileResponse{
		Success:          true,
		User:             service.ToUserResponse(middleware.CurrentUser(c)),
		AuthenticatedVia: middleware.AuthenticatedVia(c),
	})
}

// PasswordResetRequest answers 404 with user_exists=false when no active
// account matches the email.
func (h *AuthHandler) PasswordResetRequest(c *gin.Context) {
	var req dto.PasswordResetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RequestPasswordReset(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if !resp.UserExists {
		c.JSON(http.StatusNotFound, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) PasswordResetConfirm(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfirmPasswordReset(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
