package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

type SnapshotHandler struct {
	svc *services.SnapshotService
}

func NewSnapshotHandler(svc *services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		svc: svc,
	}
}

type settingsRequest struct {
	SoundEnabled   bool   `json:"sound_enabled"`
	HapticsEnabled bool   `json:"haptics_enabled"`
	Theme          string `json:"theme"`
}

type patternRequest struct {
	Name   string `json:"name" binding:"required"`
	Inhale int    `json:"inhale" binding:"required"`
	Hold1  int    `json:"hold1"`
	Exhale int    `json:"exhale" binding:"required"`
	Hold2  int    `json:"hold2"`
}

func (h *SnapshotHandler) RegisterRoutes(router *gin.RouterGroup) {
	snapshot := router.Group("/snapshot")
	{
		snapshot.GET("/export", h.Export)
		snapshot.POST("/import", h.Import)
	}

	router.GET("/settings", h.Settings)
	router.PUT("/settings", h.UpdateSettings)

	patterns := router.Group("/patterns")
	{
		patterns.GET("", h.ListPatterns)
		patterns.POST("", h.CreatePattern)
	}
}

// Export hands back the full persisted record, the server-side
// equivalent of the client's local-storage dump.
func (h *SnapshotHandler) Export(c *gin.Context) {
	snap, err := h.svc.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Import replaces all stored collections with the posted snapshot.
func (h *SnapshotHandler) Import(c *gin.Context) {
	var snap domain.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Import(c.Request.Context(), &snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}

func (h *SnapshotHandler) Settings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings())
}

func (h *SnapshotHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := h.svc.UpdateSettings(domain.Settings{
		SoundEnabled:   req.SoundEnabled,
		HapticsEnabled: req.HapticsEnabled,
		Theme:          req.Theme,
	})

	c.JSON(http.StatusOK, settings)
}

func (h *SnapshotHandler) ListPatterns(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Patterns())
}

func (h *SnapshotHandler) CreatePattern(c *gin.Context) {
	var req patternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pattern, err := h.svc.AddPattern(req.Name, req.Inhale, req.Hold1, req.Exhale, req.Hold2)
	if err != nil {
		if errors.Is(err, domain.ErrPatternNameEmpty) || errors.Is(err, domain.ErrInvalidPattern) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, pattern)
}
