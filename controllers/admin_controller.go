package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aagaur/studiocms/config"
	"github.com/aagaur/studiocms/middleware"
	"github.com/aagaur/studiocms/utils"
)

// AdminController signs the studio administrator in and out.
type AdminController struct{}

func NewAdminController() *AdminController {
	return &AdminController{}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the configured admin credentials and issues a bearer token.
func (a *AdminController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "username and password are required")
		return
	}
	cfg := config.Get()
	ip := ctx.ClientIP()
	if utils.LoginLocked(ip, cfg.AdminMaxFailedLogins) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many failed logins, try again later")
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Username)), []byte(cfg.AdminUsername)) == 1
	passOK := utils.CheckPassword(cfg.AdminPasswordHash, req.Password)
	if !userOK || !passOK {
		n := utils.LoginFailRecord(ip, time.Duration(cfg.AdminLockoutMinutes)*time.Minute)
		utils.Logger.Warn("admin login rejected", zap.String("ip", ip), zap.Int("failures", n))
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	utils.LoginFailReset(ip)

	token, expiresAt, err := utils.GenerateToken(cfg.AdminUsername, time.Duration(cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, 50010, "failed to issue token", err)
		return
	}
	utils.Success(ctx, gin.H{
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
		"username":  cfg.AdminUsername,
	})
}

// Logout revokes the presented token until it expires.
func (a *AdminController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if claims, ok := ctx.Get(middleware.ContextClaimsKey); ok {
		if c, ok := claims.(*utils.AdminClaims); ok && c.ExpiresAt != nil {
			utils.BlacklistToken(token, c.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

func (a *AdminController) Me(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"username": ctx.GetString(middleware.ContextAdminKey)})
}
