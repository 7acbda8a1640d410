package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	"github.com/yungbote/cardmarket-backend/internal/http/response"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/services"
)

type CardHandler struct {
	log         *logger.Logger
	cardService services.CardService
}

func NewCardHandler(log *logger.Logger, cardService services.CardService) *CardHandler {
	return &CardHandler{log: log.With("handler", "CardHandler"), cardService: cardService}
}

// GET /api/cards/:id
func (ch *CardHandler) Get(c *gin.Context) {
	cardID, err := parseID(c.Param("id"), "id")
	if err != nil {
		response.RespondAPIError(c, ch.log, err)
		return
	}
	card, err := ch.cardService.Get(dbctx.New(c.Request.Context()), cardID)
	if err != nil {
		response.RespondAPIError(c, ch.log, err)
		return
	}
	response.RespondOK(c, gin.H{"card": services.NewCardView(card)})
}

// POST /api/cards/transfer
func (ch *CardHandler) Transfer(c *gin.Context) {
	var req struct {
		CardID            string `json:"card_id" binding:"required"`
		RecipientUsername string `json:"recipient_username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, ch.log, invalidRequest(err))
		return
	}
	cardID, err := parseID(req.CardID, "card_id")
	if err != nil {
		response.RespondAPIError(c, ch.log, err)
		return
	}
	ctx := c.Request.Context()
	card, err := ch.cardService.Transfer(dbctx.New(ctx), ctxutil.UserID(ctx), cardID, req.RecipientUsername)
	if err != nil {
		response.RespondAPIError(c, ch.log, err)
		return
	}
	response.RespondOK(c, gin.H{"card": services.NewCardView(card)})
}

// GET /api/users/:username/cards
func (ch *CardHandler) ListByUser(c *gin.Context) {
	ch.listByUser(c, repos.AnyListing)
}

// GET /api/users/:username/cards/unlisted
func (ch *CardHandler) ListUnlistedByUser(c *gin.Context) {
	ch.listByUser(c, repos.OnlyUnlisted)
}

func (ch *CardHandler) listByUser(c *gin.Context, filter repos.ListingFilter) {
	cards, err := ch.cardService.ListByOwner(dbctx.New(c.Request.Context()), c.Param("username"), filter)
	if err != nil {
		response.RespondAPIError(c, ch.log, err)
		return
	}
	response.RespondOK(c, gin.H{"cards": services.NewCardViews(cards)})
}
