package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/internal/auth"
)

func (h *Handlers) googleLogin(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(""))
}

// googleCallback exchanges the authorization code, upserts the user and
// sets the session cookie before bouncing back to the SPA.
func (h *Handlers) googleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("OAuth exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	user, err := h.users.UpsertUserByGoogleID(c.Request.Context(),
		profile.ID, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		h.logger.Error("Failed to upsert user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login."})
		return
	}

	token, err := auth.IssueToken(h.cfg.Auth.JWTSecret,
		user.ID, user.Name, user.Email, user.Avatar, h.cfg.Auth.TokenTTL)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login."})
		return
	}

	c.SetCookie(auth.CookieName, token,
		int(h.cfg.Auth.TokenTTL.Seconds()), "/", "", h.cfg.App.Env != "local", true)
	c.Redirect(http.StatusTemporaryRedirect, h.cfg.App.FrontendURL)
}

func (h *Handlers) logout(c *gin.Context) {
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.cfg.App.Env != "local", true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
