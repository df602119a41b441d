package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

type ScheduleHandler struct {
	svc *services.ScheduleService
}

func NewScheduleHandler(svc *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		svc: svc,
	}
}

type createEventRequest struct {
	Title  string `json:"title" binding:"required"`
	FlowID string `json:"flow_id"`
	Date   string `json:"date" binding:"required"`
	Time   string `json:"time"`
	Type   string `json:"type"`
}

func (h *ScheduleHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/agenda", h.Agenda)

	events := router.Group("/events")
	{
		events.POST("", h.CreateEvent)
		events.GET("", h.ListEvents)
		events.DELETE("/:id", h.DeleteEvent)
	}
}

// Agenda resolves what is due on a date (today when omitted).
func (h *ScheduleHandler) Agenda(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := domain.ParseDateKey(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
			return
		}
		date = parsed
	}

	agenda, err := h.svc.Resolve(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, agenda)
}

func (h *ScheduleHandler) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), services.CreateEventInput{
		Title:  req.Title,
		FlowID: req.FlowID,
		Date:   req.Date,
		Time:   req.Time,
		Type:   req.Type,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEventTitleEmpty) ||
			errors.Is(err, domain.ErrEventDateEmpty) ||
			errors.Is(err, domain.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *ScheduleHandler) ListEvents(c *gin.Context) {
	events, err := h.svc.ListEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *ScheduleHandler) DeleteEvent(c *gin.Context) {
	err := h.svc.DeleteEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
