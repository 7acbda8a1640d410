package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardmarket-backend/internal/http/response"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, ah.log, invalidRequest(err))
		return
	}
	user, err := ah.authService.Register(dbctx.New(c.Request.Context()), req.Username, req.Email, req.Password)
	if err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, ah.log, invalidRequest(err))
		return
	}
	pair, err := ah.authService.Login(dbctx.New(c.Request.Context()), req.Username, req.Password)
	if err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/token/refresh
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, ah.log, invalidRequest(err))
		return
	}
	pair, err := ah.authService.Refresh(dbctx.New(c.Request.Context()), req.RefreshToken)
	if err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)
	ctx := c.Request.Context()
	if err := ah.authService.Logout(dbctx.New(ctx), ctxutil.UserID(ctx), req.RefreshToken); err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
