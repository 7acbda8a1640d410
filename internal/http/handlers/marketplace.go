package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardmarket-backend/internal/http/response"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/services"
)

type MarketplaceHandler struct {
	log                *logger.Logger
	marketplaceService services.MarketplaceService
}

func NewMarketplaceHandler(log *logger.Logger, marketplaceService services.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{log: log.With("handler", "MarketplaceHandler"), marketplaceService: marketplaceService}
}

// GET /api/marketplace?name=
func (mh *MarketplaceHandler) Browse(c *gin.Context) {
	cards, err := mh.marketplaceService.ListMarketplace(dbctx.New(c.Request.Context()), c.Query("name"))
	if err != nil {
		response.RespondAPIError(c, mh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"cards": services.NewCardViews(cards)})
}

// POST /api/marketplace/listings
// body: { "card_id": "...", "price": 40 }; price -1 delists.
func (mh *MarketplaceHandler) ListForSale(c *gin.Context) {
	var req struct {
		CardID string `json:"card_id" binding:"required"`
		Price  *int64 `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, mh.log, invalidRequest(err))
		return
	}
	cardID, err := parseID(req.CardID, "card_id")
	if err != nil {
		response.RespondAPIError(c, mh.log, err)
		return
	}
	ctx := c.Request.Context()
	card, err := mh.marketplaceService.ListForSale(dbctx.New(ctx), ctxutil.UserID(ctx), cardID, *req.Price)
	if err != nil {
		response.RespondAPIError(c, mh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"card": services.NewCardView(card)})
}

// DELETE /api/marketplace/listings/:card_id
func (mh *MarketplaceHandler) Unlist(c *gin.Context) {
	cardID, err := parseID(c.Param("card_id"), "card_id")
	if err != nil {
		response.RespondAPIError(c, mh.log, err)
		return
	}
	ctx := c.Request.Context()
	card, err := mh.marketplaceService.Unlist(dbctx.New(ctx), ctxutil.UserID(ctx), cardID)
	if err != nil {
		response.RespondAPIError(c, mh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"card": services.NewCardView(card)})
}

// POST /api/marketplace/purchases
func (mh *MarketplaceHandler) Purchase(c *gin.Context) {
	var req struct {
		CardID string `json:"card_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, mh.log, invalidRequest(err))
		return
	}
	cardID, err := parseID(req.CardID, "card_id")
	if err != nil {
		response.RespondAPIError(c, mh.log, err)
		return
	}
	ctx := c.Request.Context()
	res, err := mh.marketplaceService.Purchase(dbctx.New(ctx), ctxutil.UserID(ctx), cardID)
	if err != nil {
		response.RespondAPIError(c, mh.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"card":        services.NewCardView(res.Card),
		"message":     "Card purchased successfully",
		"new_balance": res.NewBalance,
	})
}
