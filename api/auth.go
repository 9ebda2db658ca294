package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folio/common"
	"folio/service"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (m *Module) authRoutes(g *gin.RouterGroup) {
	limited := g.Group("")
	if m.AuthRate > 0 {
		limited.Use(RateLimit(m.AuthRate, m.AuthBurst))
	}
	limited.POST("/register", m.register)
	limited.POST("/login", m.login)
	limited.POST("/refresh", m.refresh)

	g.POST("/logout", m.logout)
	g.GET("/verify-email", m.verifyEmail)

	user := g.Group("")
	user.Use(RequireAuth(m.Auth))
	user.GET("/me", m.me)
	user.PUT("/me", m.updateProfile)
	user.POST("/change-password", m.changePassword)
	user.POST("/logout-all", m.logoutAll)
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}

func (m *Module) register(c *gin.Context) {
	in, ok := bind[service.RegisterInput](c)
	if !ok {
		return
	}
	res, err := m.Auth.Register(c.Request.Context(), in, clientInfo(c))
	common.RespondMessage(c, http.StatusCreated, res, "Account created", err)
}

func (m *Module) login(c *gin.Context) {
	in, ok := bind[service.LoginInput](c)
	if !ok {
		return
	}
	res, err := m.Auth.Login(c.Request.Context(), in, clientInfo(c))
	common.Respond(c, http.StatusOK, res, err)
}

func (m *Module) refresh(c *gin.Context) {
	req, ok := bind[refreshRequest](c)
	if !ok {
		return
	}
	res, err := m.Auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	common.Respond(c, http.StatusOK, res, err)
}

func (m *Module) logout(c *gin.Context) {
	req, ok := bind[refreshRequest](c)
	if !ok {
		return
	}
	_, err := m.Auth.Logout(c.Request.Context(), req.RefreshToken)
	common.RespondMessage(c, http.StatusOK, nil, "Logged out", err)
}

func (m *Module) logoutAll(c *gin.Context) {
	n, err := m.Auth.LogoutAllSessions(c.Request.Context(), currentUserID(c))
	common.RespondMessage(c, http.StatusOK, gin.H{"revoked": n}, "All sessions closed", err)
}

func (m *Module) verifyEmail(c *gin.Context) {
	user, err := m.Auth.VerifyEmail(c.Request.Context(), c.Query("token"))
	common.RespondMessage(c, http.StatusOK, user, "Email verified", err)
}

func (m *Module) me(c *gin.Context) {
	user, err := m.Auth.Me(c.Request.Context(), currentUserID(c))
	common.Respond(c, http.StatusOK, user, err)
}

func (m *Module) updateProfile(c *gin.Context) {
	in, ok := bind[service.ProfileInput](c)
	if !ok {
		return
	}
	user, err := m.Auth.UpdateProfile(c.Request.Context(), currentUserID(c), in)
	common.RespondMessage(c, http.StatusOK, user, "Profile updated", err)
}

func (m *Module) changePassword(c *gin.Context) {
	in, ok := bind[service.ChangePasswordInput](c)
	if !ok {
		return
	}
	err := m.Auth.ChangePassword(c.Request.Context(), currentUserID(c), in)
	common.RespondMessage(c, http.StatusOK, nil, "Password changed", err)
}
