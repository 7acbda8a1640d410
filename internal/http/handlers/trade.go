package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardmarket-backend/internal/http/response"
	"github.com/yungbote/cardmarket-backend/internal/ledger"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/services"
)

type TradeHandler struct {
	log          *logger.Logger
	tradeService services.TradeService
}

func NewTradeHandler(log *logger.Logger, tradeService services.TradeService) *TradeHandler {
	return &TradeHandler{log: log.With("handler", "TradeHandler"), tradeService: tradeService}
}

// POST /api/trades
func (th *TradeHandler) Create(c *gin.Context) {
	var req struct {
		RecipientUsername string `json:"recipient_username" binding:"required"`
		SenderCardID      string `json:"sender_card_id" binding:"required"`
		RecipientCardID   string `json:"recipient_card_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, th.log, invalidRequest(err))
		return
	}
	senderCardID, err := parseID(req.SenderCardID, "sender_card_id")
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	recipientCardID, err := parseID(req.RecipientCardID, "recipient_card_id")
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	ctx := c.Request.Context()
	offer, err := th.tradeService.CreateOffer(dbctx.New(ctx), ctxutil.UserID(ctx), req.RecipientUsername, senderCardID, recipientCardID)
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"trade": services.NewTradeView(offer)})
}

// POST /api/trades/:id/actions
// body: { "action": "accept" | "decline" | "cancel" }
func (th *TradeHandler) Respond(c *gin.Context) {
	offerID, err := parseID(c.Param("id"), "id")
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, th.log, invalidRequest(err))
		return
	}
	action, err := ledger.ParseAction(req.Action)
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	ctx := c.Request.Context()
	offer, err := th.tradeService.Respond(dbctx.New(ctx), ctxutil.UserID(ctx), offerID, action)
	if errors.Is(err, ledger.ErrStaleOwnership) && offer != nil {
		// The offer was canceled; hand back its final state with the conflict.
		c.JSON(http.StatusConflict, gin.H{
			"error": response.NewErrorEnvelope("stale_ownership", err).Error,
			"trade": services.NewTradeView(offer),
		})
		return
	}
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"message": "Trade offer " + string(offer.Status),
		"trade":   services.NewTradeView(offer),
	})
}

// GET /api/trades?status=
func (th *TradeHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	offers, err := th.tradeService.ListForUser(dbctx.New(ctx), ctxutil.UserID(ctx), c.Query("status"))
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	response.RespondOK(c, gin.H{"trades": services.NewTradeViews(offers)})
}

// GET /api/trades/:id
func (th *TradeHandler) Get(c *gin.Context) {
	offerID, err := parseID(c.Param("id"), "id")
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	ctx := c.Request.Context()
	offer, err := th.tradeService.Get(dbctx.New(ctx), ctxutil.UserID(ctx), offerID)
	if err != nil {
		response.RespondAPIError(c, th.log, err)
		return
	}
	response.RespondOK(c, gin.H{"trade": services.NewTradeView(offer)})
}
