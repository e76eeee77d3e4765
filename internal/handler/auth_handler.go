package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/middleware"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/service"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	auth *service.AuthService
	sync *service.SyncService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth *service.AuthService, sync *service.SyncService) *AuthHandler {
	return &AuthHandler{auth: auth, sync: sync}
}

// Login godoc
// @Summary Authenticate with an identity-provider token
// @Description Verify a device-minted ID token, resolve the user's role and issue a session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.TokenLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.TokenLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.auth.LoginWithIDToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.sync != nil {
		h.sync.Trigger(res.User)
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ManualLogin godoc
// @Summary Authenticate an office or parent account
// @Description Authenticate a manually registered account by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ManualLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/manual-login [post]
func (h *AuthHandler) ManualLogin(c *gin.Context) {
	var req models.ManualLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.auth.LoginManual(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.sync != nil {
		h.sync.Trigger(res.User)
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Register godoc
// @Summary Register a fresh identity-provider account
// @Description Provision a profile for a new account and sign the user in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Register payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid register payload"))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// RegisterManual godoc
// @Summary Register an office or parent account
// @Description Create an account authenticated with a locally stored password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body service.RegisterManualRequest true "Register payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/manual-register [post]
func (h *AuthHandler) RegisterManual(c *gin.Context) {
	var req service.RegisterManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid register payload"))
		return
	}

	reg, err := h.auth.RegisterManual(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, models.UserInfo{
		UID:      reg.ID,
		Email:    reg.Email,
		FullName: reg.FullName,
		Role:     reg.Role,
	})
}

// ChangePassword godoc
// @Summary Change the account password
// @Description Rotate the credential after re-authentication
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Password payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid password payload"))
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), user, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Logout godoc
// @Summary Logout current session
// @Description Clear the cached session and cancel any in-flight sync
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if h.sync != nil {
		h.sync.Cancel(user.UID)
	}
	if err := h.auth.Logout(c.Request.Context(), user.UID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Session godoc
// @Summary Current session snapshot
// @Description Return the cached session for the authenticated user
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	session, err := h.auth.CurrentSession(c.Request.Context(), user.UID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
