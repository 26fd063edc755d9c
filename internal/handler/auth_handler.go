package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/models"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

type authService interface {
	SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResponse, error)
	SignOut(ctx context.Context, userID string) error
}

type profileService interface {
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.ProfileUpdate) (*models.User, error)
}

// AuthHandler wires sign-in and profile endpoints.
type AuthHandler struct {
	auth    authService
	profile profileService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth authService, profile profileService) *AuthHandler {
	return &AuthHandler{auth: auth, profile: profile}
}

// SignIn godoc
// @Summary Sign in
// @Description Verify an educator's access code, registering the educator on first sign-in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignInRequest true "Sign-in payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if !bindJSON(c, &req, "sign-in") {
		return
	}

	res, err := h.auth.SignIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	response.JSON(c, status, res, nil)
}

// SignOut godoc
// @Summary Sign out
// @Description Clear the cached session of the current educator
// @Tags Authentication
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.auth.SignOut(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current profile
// @Description Restore the signed-in educator's profile and classes
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.profile.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// UpdateProfile godoc
// @Summary Edit profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ProfileUpdate true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ProfileUpdate
	if !bindJSON(c, &req, "profile") {
		return
	}
	user, err := h.profile.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
