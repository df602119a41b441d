package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

type WorkingHandler struct {
	svc *services.WorkingService
}

func NewWorkingHandler(svc *services.WorkingService) *WorkingHandler {
	return &WorkingHandler{
		svc: svc,
	}
}

type workingRequest struct {
	Name      string `json:"name" binding:"required"`
	Intention string `json:"intention"`
	Duration  int    `json:"duration" binding:"required"`
	Status    string `json:"status"`
}

func (h *WorkingHandler) RegisterRoutes(router *gin.RouterGroup) {
	workings := router.Group("/workings")
	{
		workings.POST("", h.Create)
		workings.GET("", h.List)
		workings.DELETE("/:id", h.Delete)
		workings.POST("/:id/activate", h.Activate)
		workings.POST("/:id/pause", h.Pause)
		workings.POST("/:id/complete-day", h.CompleteDay)
	}
}

func (h *WorkingHandler) Create(c *gin.Context) {
	var req workingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	working, err := h.svc.Create(c.Request.Context(), services.WorkingInput{
		Name:      req.Name,
		Intention: req.Intention,
		Duration:  req.Duration,
		Status:    req.Status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrWorkingNameEmpty) ||
			errors.Is(err, domain.ErrInvalidWorkingLength) ||
			errors.Is(err, domain.ErrInvalidWorkingStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, working)
}

func (h *WorkingHandler) List(c *gin.Context) {
	workings, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, workings)
}

func (h *WorkingHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrWorkingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "working not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WorkingHandler) Activate(c *gin.Context) {
	working, err := h.svc.Activate(c.Request.Context(), c.Param("id"))
	h.respond(c, working, err)
}

func (h *WorkingHandler) Pause(c *gin.Context) {
	working, err := h.svc.Pause(c.Request.Context(), c.Param("id"))
	h.respond(c, working, err)
}

func (h *WorkingHandler) CompleteDay(c *gin.Context) {
	working, err := h.svc.CompleteDay(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrWorkingNotActive) ||
			errors.Is(err, domain.ErrWorkingAlreadyDone) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}
	h.respond(c, working, err)
}

func (h *WorkingHandler) respond(c *gin.Context, working *domain.WorkingGoal, err error) {
	if err != nil {
		if errors.Is(err, domain.ErrWorkingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "working not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, working)
}
