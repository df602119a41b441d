package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

type SessionHandler struct {
	svc *services.RunnerService
}

func NewSessionHandler(svc *services.RunnerService) *SessionHandler {
	return &SessionHandler{
		svc: svc,
	}
}

type startSessionRequest struct {
	FlowID string `json:"flow_id" binding:"required"`
}

type startBreathingRequest struct {
	Pattern string `json:"pattern"`
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	session := router.Group("/session")
	{
		session.GET("", h.State)
		session.POST("/start", h.Start)
		session.POST("/advance", h.Advance)
		session.POST("/skip", h.Skip)
		session.POST("/abort", h.Abort)
		session.POST("/pause", h.Pause)
		session.POST("/resume", h.Resume)
		session.POST("/tap", h.Tap)
		session.POST("/breathing/start", h.StartBreathing)
		session.POST("/breathing/stop", h.StopBreathing)
	}
}

func (h *SessionHandler) respondView(c *gin.Context, view services.SessionView, err error) {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFlowNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "flow not found"})
		case errors.Is(err, domain.ErrPatternNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "breathing pattern not found"})
		case errors.Is(err, services.ErrNoActiveSession),
			errors.Is(err, services.ErrNotRepsStep),
			errors.Is(err, services.ErrNotBreathing):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State())
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.Start(c.Request.Context(), req.FlowID)
	h.respondView(c, view, err)
}

func (h *SessionHandler) Advance(c *gin.Context) {
	view, err := h.svc.Advance(c.Request.Context())
	h.respondView(c, view, err)
}

func (h *SessionHandler) Skip(c *gin.Context) {
	view, err := h.svc.Skip(c.Request.Context())
	h.respondView(c, view, err)
}

func (h *SessionHandler) Abort(c *gin.Context) {
	if err := h.svc.Abort(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Pause(c *gin.Context) {
	if err := h.svc.Pause(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.State())
}

func (h *SessionHandler) Resume(c *gin.Context) {
	if err := h.svc.Resume(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.State())
}

func (h *SessionHandler) Tap(c *gin.Context) {
	view, err := h.svc.Tap()
	h.respondView(c, view, err)
}

func (h *SessionHandler) StartBreathing(c *gin.Context) {
	var req startBreathingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.StartBreathing(req.Pattern)
	h.respondView(c, view, err)
}

func (h *SessionHandler) StopBreathing(c *gin.Context) {
	view, err := h.svc.StopBreathing()
	h.respondView(c, view, err)
}
