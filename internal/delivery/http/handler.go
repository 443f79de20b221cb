package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macronotes/backend/internal/domain"
	"github.com/macronotes/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	calc     *usecase.CalcService
	resolver *usecase.Resolver
	store    domain.DocumentStore
	cache    domain.BlockCache
}

// NewHandler creates a new HTTP handler
func NewHandler(calc *usecase.CalcService, resolver *usecase.Resolver, store domain.DocumentStore, cache domain.BlockCache) *Handler {
	return &Handler{calc: calc, resolver: resolver, store: store, cache: cache}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "macronotes-backend",
		"version": "1.0.0",
	})
}

// ListBlocks returns all stored block IDs.
func (h *Handler) ListBlocks(c *gin.Context) {
	ids, err := h.store.ListBlockIDs(c.Request.Context())
	if err != nil {
		log.Printf("[HTTP] ListBlocks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list blocks"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"blockIds": ids})
}

// GetBlock returns the parsed form of one macros block: its groups in
// display order plus block-level totals. Parsed results are served from
// the block cache when present.
func (h *Handler) GetBlock(c *gin.Context) {
	id := c.Param("id")

	if view, err := h.cache.Get(c.Request.Context(), id); err == nil {
		c.JSON(http.StatusOK, view)
		return
	}

	view, err := h.calc.GetBlock(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrBlockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "block not found", "id": id})
			return
		}
		log.Printf("[HTTP] GetBlock %q: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load block"})
		return
	}

	if err := h.cache.Set(c.Request.Context(), id, view); err != nil {
		log.Printf("[HTTP] caching block %q: %v", id, err)
	}
	c.JSON(http.StatusOK, view)
}

// putBlockRequest is the body of a block replacement request
type putBlockRequest struct {
	Lines []string `json:"lines" binding:"required"`
}

// PutBlock replaces a block's line list. The lines are normalized
// through the line merger before persisting, so duplicate bare items
// and meal declarations collapse on write.
func (h *Handler) PutBlock(c *gin.Context) {
	id := c.Param("id")

	var req putBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lines array is required"})
		return
	}

	merged := usecase.MergeLines(req.Lines)
	if err := h.store.SaveBlockLines(c.Request.Context(), id, merged); err != nil {
		log.Printf("[HTTP] PutBlock %q: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save block"})
		return
	}

	if err := h.cache.Delete(c.Request.Context(), id); err != nil {
		log.Printf("[HTTP] invalidating block %q: %v", id, err)
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "lines": merged})
}

// aggregateRequest is the body of a cross-block aggregation request
type aggregateRequest struct {
	BlockIDs []string `json:"blockIds" binding:"required"`
}

// Aggregate computes combined totals plus a per-block breakdown for the
// requested block IDs.
func (h *Handler) Aggregate(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.BlockIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "blockIds array is required"})
		return
	}

	result, err := h.calc.Aggregate(c.Request.Context(), req.BlockIDs)
	if err != nil {
		log.Printf("[HTTP] Aggregate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResolveFood resolves a single food query against the database,
// optionally scaled to an explicit gram quantity.
func (h *Handler) ResolveFood(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name parameter is required"})
		return
	}

	grams, hasGrams := usecase.ParseQuantityGrams(c.Query("quantity"))
	row, err := h.resolver.Resolve(c.Request.Context(), name, grams, hasGrams)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFoodNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "food not found", "name": name})
		case errors.Is(err, domain.ErrFoodAmbiguous):
			c.JSON(http.StatusConflict, gin.H{"error": "food query is ambiguous", "name": name})
		case errors.Is(err, domain.ErrInvalidServingSize):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "food entry has an invalid serving size", "name": name})
		default:
			log.Printf("[HTTP] ResolveFood %q: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "resolution failed"})
		}
		return
	}
	c.JSON(http.StatusOK, row)
}
