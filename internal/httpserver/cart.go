package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shopcart/internal/domain"
)

type cartHandlers struct {
	deps   Deps
	logger zerolog.Logger
}

// Quantity deliberately has no binding tag: zero and negative values must
// reach the mutation service so they map to the invalid-quantity error
// instead of a generic bad-request.
type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Lines   []domain.CartLine  `json:"lines"`
	Summary domain.CartSummary `json:"summary"`
}

func (h *cartHandlers) getCart(c *gin.Context) {
	userID := c.Param("userID")

	lines, err := h.deps.Lines.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.deps.Cache.Summary(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	c.JSON(http.StatusOK, cartResponse{Lines: lines, Summary: summary})
}

func (h *cartHandlers) getSummary(c *gin.Context) {
	summary, err := h.deps.Cache.Summary(c.Request.Context(), c.Param("userID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// findItem looks up the user's cart line for a product, served through the
// per-line cache.
func (h *cartHandlers) findItem(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
		return
	}

	line, err := h.deps.Cache.FindLine(c.Request.Context(), c.Param("userID"), productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *cartHandlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId and quantity required"})
		return
	}

	line, err := h.deps.CartSvc.AddItem(c.Request.Context(), c.Param("userID"), req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (h *cartHandlers) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
		return
	}

	lineID := c.Param("lineID")
	if !h.ownsLine(c, lineID) {
		return
	}

	line, err := h.deps.CartSvc.UpdateQuantity(c.Request.Context(), lineID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *cartHandlers) removeItem(c *gin.Context) {
	lineID := c.Param("lineID")
	if !h.ownsLine(c, lineID) {
		return
	}

	if err := h.deps.CartSvc.RemoveItem(c.Request.Context(), lineID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *cartHandlers) clearCart(c *gin.Context) {
	removed, err := h.deps.CartSvc.ClearCart(c.Request.Context(), c.Param("userID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *cartHandlers) listProducts(c *gin.Context) {
	products, err := h.deps.Products.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// ownsLine verifies the targeted line belongs to the path's user. The
// mutation service trusts its caller on authorization, so the check lives
// here. A foreign line reads as absent.
func (h *cartHandlers) ownsLine(c *gin.Context, lineID string) bool {
	line, err := h.deps.Lines.GetByID(c.Request.Context(), lineID)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	if line.UserID != c.Param("userID") {
		h.respondError(c, domain.ErrCartItemNotFound)
		return false
	}
	return true
}

func (h *cartHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting cart update, retry"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
