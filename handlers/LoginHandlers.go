package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vendorportal/logger"
	"vendorportal/models"
	"vendorportal/services"
	"vendorportal/utils"
)

// LoginHandler handles user authentication
// @Summary Login user
// @Description Authenticate user and return session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(auth *services.AuthService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			utils.BadRequestWithValidation(c, err)
			return
		}

		res, err := auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warnf(c.Request.Context(), "Failed login for %s", req.Email)
			utils.ErrorResponse(c, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			log.Errorf(c.Request.Context(), "login: %v", err)
			utils.ErrorResponse(c, "Failed to log in", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			Message:     "User successfully logged in",
			AccessToken: res.Token,
			Role:        res.User.Role,
			Vendor:      res.User.Vendor,
			ExpiresAt:   res.ExpiresAt.Unix(),
		})
	}
}

// LogoutHandler ends the caller's session.
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} object
// @Failure 401 {object} models.ErrorResponse
// @Router /api/logout [post]
func LogoutHandler(auth *services.AuthService, drafts *services.Drafts) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := currentPrincipal(c)
		if err := auth.Logout(c.Request.Context(), p.SessionID); err != nil {
			utils.ErrorResponse(c, "Invalid or expired session", http.StatusUnauthorized)
			return
		}
		drafts.Forget(p.SessionID)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
