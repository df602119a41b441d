package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

type PomodoroHandler struct {
	svc *services.PomodoroService
}

func NewPomodoroHandler(svc *services.PomodoroService) *PomodoroHandler {
	return &PomodoroHandler{
		svc: svc,
	}
}

type startPomodoroRequest struct {
	Mode string `json:"mode"`
}

func (h *PomodoroHandler) RegisterRoutes(router *gin.RouterGroup) {
	pomodoro := router.Group("/pomodoro")
	{
		pomodoro.GET("", h.State)
		pomodoro.POST("/start", h.Start)
		pomodoro.POST("/pause", h.Pause)
		pomodoro.POST("/resume", h.Resume)
		pomodoro.POST("/stop", h.Stop)
	}
}

func (h *PomodoroHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State())
}

func (h *PomodoroHandler) Start(c *gin.Context) {
	var req startPomodoroRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Mode == "" {
		req.Mode = services.PomodoroFocus
	}

	view, err := h.svc.Start(req.Mode)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPomodoroMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *PomodoroHandler) Pause(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Pause())
}

func (h *PomodoroHandler) Resume(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Resume())
}

func (h *PomodoroHandler) Stop(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stop())
}
