package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardmarket-backend/internal/http/response"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := uh.userService.GetMe(dbctx.New(ctx), ctxutil.UserID(ctx))
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// DELETE /api/me
func (uh *UserHandler) DeleteMe(c *gin.Context) {
	ctx := c.Request.Context()
	if err := uh.userService.DeleteAccount(dbctx.New(ctx), ctxutil.UserID(ctx)); err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
