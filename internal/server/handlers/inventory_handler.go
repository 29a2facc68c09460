package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/server/metrics"
	"github.com/mamadbah2/stockroom/internal/service/inventory"
)

// InventoryHandler exposes the stock and sales operations over HTTP.
type InventoryHandler struct {
	svc    inventory.Manager
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc inventory.Manager, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// ListStocks returns every item and its amount.
func (h *InventoryHandler) ListStocks(c *gin.Context) {
	stocks, err := h.svc.ListStocks(c.Request.Context())
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	metrics.RecordOperation("list", metrics.OutcomeOK)
	c.JSON(http.StatusOK, stocks)
}

// GetStock returns {name: amount}; unknown items report zero.
func (h *InventoryHandler) GetStock(c *gin.Context) {
	stock, err := h.svc.GetStock(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	metrics.RecordOperation("get", metrics.OutcomeOK)
	c.JSON(http.StatusOK, stock)
}

// AddStock restocks an item and echoes the submitted payload.
func (h *InventoryHandler) AddStock(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.badRequest(c, "add", err)
		return
	}
	req, err := decodeStockRequest(body)
	if err != nil {
		h.badRequest(c, "add", err)
		return
	}

	item, err := h.svc.AddStock(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "add", err)
		return
	}

	metrics.RecordOperation("add", metrics.OutcomeOK)
	c.Header("Location", locationFor(c, item.Name))
	c.JSON(http.StatusOK, json.RawMessage(body))
}

// Sell records a sale and echoes the submitted payload.
func (h *InventoryHandler) Sell(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.badRequest(c, "sell", err)
		return
	}
	req, err := decodeSaleRequest(body)
	if err != nil {
		h.badRequest(c, "sell", err)
		return
	}

	res, err := h.svc.Sell(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "sell", err)
		return
	}

	metrics.RecordOperation("sell", metrics.OutcomeOK)
	if res.Priced {
		metrics.RecordRevenue(res.Revenue)
	}
	c.Header("Location", locationFor(c, res.Item.Name))
	c.JSON(http.StatusOK, json.RawMessage(body))
}

// CheckSales returns the cumulative sales total rounded to two decimals.
func (h *InventoryHandler) CheckSales(c *gin.Context) {
	total, err := h.svc.CheckSales(c.Request.Context())
	if err != nil {
		h.fail(c, "sales", err)
		return
	}
	metrics.RecordOperation("sales", metrics.OutcomeOK)
	c.JSON(http.StatusOK, gin.H{"sales": total})
}

// ClearAll deletes every item and the sales ledger.
func (h *InventoryHandler) ClearAll(c *gin.Context) {
	if err := h.svc.ClearAll(c.Request.Context()); err != nil {
		h.fail(c, "clear", err)
		return
	}
	metrics.RecordOperation("clear", metrics.OutcomeOK)
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, inventory.ErrValidation) {
		h.badRequest(c, op, err)
		return
	}
	metrics.RecordOperation(op, metrics.OutcomeError)
	h.logger.Error("inventory operation failed", zap.String("operation", op), zap.Error(err))
	abortWithError(c, http.StatusInternalServerError)
}

func (h *InventoryHandler) badRequest(c *gin.Context, op string, err error) {
	metrics.RecordOperation(op, metrics.OutcomeInvalid)
	h.logger.Warn("invalid request", zap.String("operation", op), zap.Error(err))
	abortWithError(c, http.StatusBadRequest)
}
