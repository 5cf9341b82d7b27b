package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"solana-trade-bot-go/internal/trade"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TradeService is the surface of the trade service the handlers need.
type TradeService interface {
	Buy(ctx context.Context, userID uint, tokenMint, amount string) (*trade.Receipt, error)
	Sell(ctx context.Context, userID, tradeID uint) (*trade.Receipt, error)
	PNL(ctx context.Context, userID uint) (*trade.PNLReport, error)
}

type handler struct {
	service TradeService
	logger  *zap.Logger
}

type buyRequest struct {
	UserID    uint   `json:"user_id" binding:"required,gt=0"`
	TokenMint string `json:"token_mint" binding:"required,min=1,max=64"`
	Amount    string `json:"amount" binding:"required,min=1,max=64"`
}

type sellRequest struct {
	UserID  uint `json:"user_id" binding:"required,gt=0"`
	TradeID uint `json:"trade_id" binding:"required,gt=0"`
}

func ok(c *gin.Context, result any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func fail(c *gin.Context, status int, description string) {
	c.JSON(status, gin.H{"success": false, "error_description": description})
}

func (h *handler) buy(c *gin.Context) {
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Buy(c.Request.Context(), req.UserID, req.TokenMint, req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, result)
}

func (h *handler) sell(c *gin.Context) {
	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Sell(c.Request.Context(), req.UserID, req.TradeID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, result)
}

func (h *handler) pnl(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil || userID == 0 {
		fail(c, http.StatusBadRequest, "userId must be a positive integer")
		return
	}

	result, err := h.service.PNL(c.Request.Context(), uint(userID))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, result)
}

// writeError maps service errors to HTTP statuses. Anything untyped is an
// internal failure and only logged in detail.
func (h *handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trade.ErrTradeNotFound), errors.Is(err, trade.ErrNoTrades):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trade.ErrTradeAlreadySold):
		fail(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Unhandled trade error", zap.Error(err))
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
